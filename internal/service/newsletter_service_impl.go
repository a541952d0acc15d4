package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orderdesk/backend/internal/model"
	"github.com/orderdesk/backend/internal/repository"
)

type newsletterServiceImpl struct {
	repo repository.NewsletterRepository
}

// NewNewsletterService creates a NewsletterService backed by repo.
func NewNewsletterService(repo repository.NewsletterRepository) NewsletterService {
	return &newsletterServiceImpl{repo: repo}
}

type subscribeInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (s *newsletterServiceImpl) Subscribe(ctx context.Context, email string) (*model.NewsletterSubscription, error) {
	in := subscribeInput{Email: strings.ToLower(strings.TrimSpace(email))}
	if err := checkStorable("email", in.Email); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	sub := &model.NewsletterSubscription{Email: in.Email}
	err := s.repo.Subscribe(ctx, sub)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}
