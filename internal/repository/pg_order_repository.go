package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/backend/internal/model"
)

// PgOrderRepository is the PostgreSQL implementation of OrderRepository.
type PgOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPgOrderRepository creates a PgOrderRepository backed by the given pool.
func NewPgOrderRepository(pool *pgxpool.Pool) *PgOrderRepository {
	return &PgOrderRepository{pool: pool}
}

var _ OrderRepository = (*PgOrderRepository)(nil)

const orderSelectCols = `o.id, o.author_id, o.category, o.description, COALESCE(o.budget, ''), COALESCE(o.deadline, ''),
	o.status, o.created_at, o.last_activity_at`

// Create inserts the order. CreatedAt and LastActivityAt are set by the caller.
func (r *PgOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO orders (author_id, category, description, budget, deadline, status, created_at, last_activity_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
		 RETURNING id`,
		order.AuthorID, order.Category, order.Description, order.Budget, order.Deadline,
		string(order.Status), order.CreatedAt, order.LastActivityAt,
	).Scan(&order.ID)
}

// FindByID returns ErrNotFound when no such order exists.
func (r *PgOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderSelectCols+` FROM orders o WHERE o.id = $1`, id,
	).Scan(&o.ID, &o.AuthorID, &o.Category, &o.Description, &o.Budget, &o.Deadline, &status, &o.CreatedAt, &o.LastActivityAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}

// UpdateStatus changes the status only; last_activity_at belongs to the message log.
func (r *PgOrderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll は全注文を最終アクティビティ順に返す（閲覧者の未読数付き）
func (r *PgOrderRepository) ListAll(ctx context.Context, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	return r.list(ctx, "", reader, opts)
}

// ListByAuthor は指定ユーザーの注文を最終アクティビティ順に返す
func (r *PgOrderRepository) ListByAuthor(ctx context.Context, authorID string, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	return r.list(ctx, authorID, reader, opts)
}

func (r *PgOrderRepository) list(ctx context.Context, authorID string, reader model.Actor, opts model.OrderListOptions) ([]*model.OrderSummary, error) {
	col := readFlagColumn(reader.Role)
	args := []any{reader.ID, opts.Limit, opts.Offset}
	where := ""
	if authorID != "" {
		args = append(args, authorID)
		where = "WHERE o.author_id = $4"
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderSelectCols+`, COALESCE(u.name, ''),
		        (SELECT COUNT(*) FROM messages m
		          WHERE m.order_id = o.id AND m.`+col+` = FALSE AND m.sender_id <> $1)
		 FROM orders o
		 LEFT JOIN users u ON u.id = o.author_id
		 `+where+`
		 ORDER BY o.last_activity_at DESC, o.id
		 LIMIT NULLIF($2::int, 0) OFFSET $3`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.OrderSummary
	for rows.Next() {
		var s model.OrderSummary
		var status string
		if err := rows.Scan(
			&s.ID, &s.AuthorID, &s.Category, &s.Description, &s.Budget, &s.Deadline,
			&status, &s.CreatedAt, &s.LastActivityAt,
			&s.AuthorName, &s.UnreadCount,
		); err != nil {
			return nil, err
		}
		s.Status = model.OrderStatus(status)
		out = append(out, &s)
	}
	return out, rows.Err()
}
