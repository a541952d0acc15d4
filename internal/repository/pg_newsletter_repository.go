package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/backend/internal/model"
)

// PgNewsletterRepository は NewsletterRepository の PostgreSQL 実装
type PgNewsletterRepository struct {
	pool *pgxpool.Pool
}

// NewPgNewsletterRepository は PgNewsletterRepository を生成する
func NewPgNewsletterRepository(pool *pgxpool.Pool) *PgNewsletterRepository {
	return &PgNewsletterRepository{pool: pool}
}

var _ NewsletterRepository = (*PgNewsletterRepository)(nil)

// Subscribe は購読を登録する。既に登録済みなら ErrAlreadyExists
func (r *PgNewsletterRepository) Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO newsletter_subscriptions (email) VALUES ($1)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, created_at`,
		sub.Email,
	).Scan(&sub.ID, &sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAlreadyExists
	}
	return err
}
