package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
)

type orderServiceImpl struct {
	repo repository.OrderRepository
	now  func() time.Time
}

// NewOrderService creates an OrderService backed by the given repository.
func NewOrderService(repo repository.OrderRepository) OrderService {
	return &orderServiceImpl{repo: repo, now: time.Now}
}

func (s *orderServiceImpl) Submit(ctx context.Context, actor model.Actor, in OrderInput) (*model.Order, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Deadline = strings.TrimSpace(in.Deadline)
	for field, v := range map[string]string{
		"category": in.Category, "description": in.Description, "budget": in.Budget, "deadline": in.Deadline,
	} {
		if err := checkStorable(field, v); err != nil {
			return nil, err
		}
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	order := &model.Order{
		AuthorID:       actor.ID,
		Category:       in.Category,
		Description:    in.Description,
		Budget:         in.Budget,
		Deadline:       in.Deadline,
		Status:         model.OrderStatusPending,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, actor model.Actor, id string) (*model.Order, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	order, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if !order.CanParticipate(actor) {
		return nil, ErrUnauthorized
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, actor model.Actor, id string, status model.OrderStatus) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	if !status.Valid() {
		return invalid("status", "status must be one of: PENDING, IN_PROGRESS, COMPLETED, CANCELLED")
	}
	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *orderServiceImpl) ListForStaff(ctx context.Context, actor model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListAll(ctx, actor, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return nonNilSummaries(orders), nil
}

func (s *orderServiceImpl) ListForCustomer(ctx context.Context, actor model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	orders, err := s.repo.ListByAuthor(ctx, actor.ID, actor, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return nonNilSummaries(orders), nil
}

func nonNilSummaries(in []*model.OrderSummary) []*model.OrderSummary {
	if in == nil {
		return []*model.OrderSummary{}
	}
	return in
}
