package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orderdesk/backend/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Save inserts a new contact_messages row and populates msg.ID and CreatedAt
// from the database RETURNING clause.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (name, email, message, ip_address, is_read)
		 VALUES ($1, $2, $3, NULLIF($4, ''), FALSE)
		 RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Message, msg.IPAddress,
	).Scan(&msg.ID, &msg.CreatedAt)
}

// List returns contact messages filtered by read state and paginated by limit/offset.
// Status "" or "all" returns all messages.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	var args []any
	where := ""

	switch strings.TrimSpace(opts.Status) {
	case "unread":
		where = "WHERE is_read = FALSE"
	case "read":
		where = "WHERE is_read = TRUE"
	}

	args = append(args, opts.Limit, opts.Offset)
	query := `SELECT id, name, email, message, COALESCE(ip_address, ''), is_read, created_at
	          FROM contact_messages ` + where +
		` ORDER BY created_at DESC
		  LIMIT NULLIF($` + strconv.Itoa(len(args)-1) + `::int, 0) OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.IPAddress, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MarkRead marks one contact message as read. Marking twice is not an error.
func (r *PgContactRepository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one contact message.
func (r *PgContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PgSubmissionLedger keeps the contact rate-limit ledger in contact_submissions.
type PgSubmissionLedger struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionLedger creates a PgSubmissionLedger backed by the given pool.
func NewPgSubmissionLedger(pool *pgxpool.Pool) *PgSubmissionLedger {
	return &PgSubmissionLedger{pool: pool}
}

var _ SubmissionLedger = (*PgSubmissionLedger)(nil)

// ExistsSince uses the (origin_address, created_at) index.
func (l *PgSubmissionLedger) ExistsSince(ctx context.Context, origin string, since time.Time) (bool, error) {
	var exists bool
	err := l.pool.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM contact_submissions WHERE origin_address = $1 AND created_at >= $2
		 )`,
		origin, since,
	).Scan(&exists)
	return exists, err
}

// Record appends one ledger entry.
func (l *PgSubmissionLedger) Record(ctx context.Context, origin string, at time.Time) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO contact_submissions (origin_address, created_at) VALUES ($1, $2)`,
		origin, at,
	)
	return err
}
