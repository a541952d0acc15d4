package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/backend/internal/model"
)

// PgMessageRepository is the PostgreSQL implementation of MessageRepository.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository creates a PgMessageRepository backed by the given pool.
func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ MessageRepository = (*PgMessageRepository)(nil)

// Append inserts the message and bumps the order inside one transaction.
// GREATEST keeps last_activity_at from moving backwards when two senders race.
func (r *PgMessageRepository) Append(ctx context.Context, msg *model.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET last_activity_at = GREATEST(last_activity_at, $2) WHERE id = $1`,
		msg.OrderID, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("bump order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO messages (order_id, sender_id, content, created_at, is_read_by_staff, is_read_by_customer)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		msg.OrderID, msg.SenderID, msg.Content, msg.CreatedAt, msg.IsReadByStaff, msg.IsReadByCustomer,
	).Scan(&msg.ID); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return tx.Commit(ctx)
}

// ListByOrder returns the order's messages in insertion order.
func (r *PgMessageRepository) ListByOrder(ctx context.Context, orderID string) ([]*model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, sender_id, content, created_at, is_read_by_staff, is_read_by_customer
		 FROM messages
		 WHERE order_id = $1
		 ORDER BY created_at ASC, seq ASC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.Content, &m.CreatedAt, &m.IsReadByStaff, &m.IsReadByCustomer); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MarkRead flips only role's flag. The other side's flag is never written.
func (r *PgMessageRepository) MarkRead(ctx context.Context, orderID, readerID string, role model.Role) (int64, error) {
	col := readFlagColumn(role)
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET `+col+` = TRUE
		 WHERE order_id = $1 AND `+col+` = FALSE AND sender_id <> $2`,
		orderID, readerID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnread counts the rows MarkRead would change.
func (r *PgMessageRepository) CountUnread(ctx context.Context, orderID, readerID string, role model.Role) (int, error) {
	col := readFlagColumn(role)
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages
		 WHERE order_id = $1 AND `+col+` = FALSE AND sender_id <> $2`,
		orderID, readerID,
	).Scan(&n)
	return n, err
}
