package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo    repository.ContactRepository
	users   repository.UserRepository
	limiter *ContactRateLimiter
}

// NewContactService creates a ContactService backed by the given repositories and limiter.
func NewContactService(repo repository.ContactRepository, users repository.UserRepository, limiter *ContactRateLimiter) ContactService {
	return &contactServiceImpl{repo: repo, users: users, limiter: limiter}
}

type contactInput struct {
	Message string `json:"message" validate:"min=10,max=5000"`
}

// Submit checks the sender, then the rate limit, then the message, and
// records the origin in the ledger once the message is stored.
func (s *contactServiceImpl) Submit(ctx context.Context, actor model.Actor, origin, message string) (*model.ContactMessage, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.Name == "" || user.Email == "" {
		return nil, ErrUnauthorized
	}

	if err := s.limiter.Check(ctx, origin); err != nil {
		return nil, err
	}

	in := contactInput{Message: strings.TrimSpace(message)}
	if err := checkStorable("message", in.Message); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		Name:      user.Name,
		Email:     user.Email,
		Message:   in.Message,
		IPAddress: origin,
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}
	if err := s.limiter.Record(ctx, origin); err != nil {
		// The message is stored; a lost ledger entry only loosens the limit once.
		slog.Error("record contact submission failed", "error", err, "contact_id", msg.ID)
	}
	return msg, nil
}

// List returns contact messages according to the given filter/pagination options.
func (s *contactServiceImpl) List(ctx context.Context, actor model.Actor, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	messages, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	return messages, nil
}

func (s *contactServiceImpl) MarkRead(ctx context.Context, actor model.Actor, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return mapNotFound(s.repo.MarkRead(ctx, id))
}

func (s *contactServiceImpl) Delete(ctx context.Context, actor model.Actor, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return mapNotFound(s.repo.Delete(ctx, id))
}

func requireStaff(actor model.Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if !actor.IsStaff() {
		return ErrForbidden
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
