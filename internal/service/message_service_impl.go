package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
)

const maxMessageLength = 5000

type messageServiceImpl struct {
	orders   repository.OrderRepository
	messages repository.MessageRepository
	now      func() time.Time
}

// NewMessageService creates a MessageService backed by the given repositories.
func NewMessageService(orders repository.OrderRepository, messages repository.MessageRepository) MessageService {
	return newMessageService(orders, messages, time.Now)
}

func newMessageService(orders repository.OrderRepository, messages repository.MessageRepository, now func() time.Time) *messageServiceImpl {
	return &messageServiceImpl{orders: orders, messages: messages, now: now}
}

func (s *messageServiceImpl) Send(ctx context.Context, actor model.Actor, orderID, content string) (*model.Message, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "message cannot be empty")
	}
	if err := checkStorable("content", content); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, invalid("content", fmt.Sprintf("message must be at most %d characters long", maxMessageLength))
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanParticipate(actor) {
		return nil, ErrUnauthorized
	}

	// Postgres keeps microseconds; truncating makes the returned message equal the stored row.
	msg := model.NewMessage(actor, order.ID, content, s.now().UTC().Truncate(time.Microsecond))
	if err := s.messages.Append(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append message: %w", err)
	}
	return msg, nil
}

func (s *messageServiceImpl) MarkRead(ctx context.Context, actor model.Actor, orderID string) error {
	order, ok, err := s.participantOrder(ctx, actor, orderID)
	if err != nil || !ok {
		return err
	}
	n, err := s.messages.MarkRead(ctx, order.ID, actor.ID, actor.Role)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	slog.Debug("messages marked read", "order_id", order.ID, "actor_id", actor.ID, "role", actor.Role, "count", n)
	return nil
}

func (s *messageServiceImpl) ListForOrder(ctx context.Context, orderID string) ([]*model.Message, error) {
	messages, err := s.messages.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []*model.Message{}
	}
	return messages, nil
}

func (s *messageServiceImpl) UnreadCountFor(ctx context.Context, actor model.Actor, orderID string) (int, error) {
	order, ok, err := s.participantOrder(ctx, actor, orderID)
	if err != nil || !ok {
		return 0, err
	}
	n, err := s.messages.CountUnread(ctx, order.ID, actor.ID, actor.Role)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *messageServiceImpl) findOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

// participantOrder resolves the order for read-state operations. ok is false,
// with a nil error, when the actor is anonymous, the order is unknown or the
// actor does not take part in it: those cases are silent no-ops.
func (s *messageServiceImpl) participantOrder(ctx context.Context, actor model.Actor, orderID string) (*model.Order, bool, error) {
	if !actor.Authenticated() {
		return nil, false, nil
	}
	order, err := s.findOrder(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, order.CanParticipate(actor), nil
}
