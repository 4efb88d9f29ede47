package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tOgg1/scrollback/internal/models"
)

// Message repository errors.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidMessage  = errors.New("invalid message")
)

type execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// MessageRepository handles message persistence.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Query selects a page of one history.
type Query struct {
	History  models.History // Required
	BeforeID int64          // Only messages with a smaller id; zero for the newest
	Limit    int            // Max results, zero for all
}

// Create stores msg and fills in its ID, UID and CreatedAt.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.create(ctx, r.db, msg)
}

// CreateWithTx stores msg inside an existing transaction.
func (r *MessageRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, msg *models.Message) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	return r.create(ctx, tx, msg)
}

func (r *MessageRepository) create(ctx context.Context, ex execer, msg *models.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.UID == "" {
		msg.UID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var link *string
	if msg.Link != "" {
		link = &msg.Link
	}
	res, err := ex.ExecContext(ctx, `
		INSERT INTO messages (
			uid, history, kind, author, body, link, group_id,
			can_forward, can_delete, migrate_marker, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		msg.UID,
		string(msg.History),
		string(msg.Kind),
		msg.Author,
		msg.Body,
		link,
		msg.GroupID,
		boolToInt(msg.CanForward),
		boolToInt(msg.CanDelete),
		boolToInt(msg.MigrateMarker),
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}
	msg.ID = id
	return nil
}

const messageColumns = `id, uid, history, kind, author, body, link, group_id,
	can_forward, can_delete, migrate_marker, created_at`

// Get retrieves a message by id.
func (r *MessageRepository) Get(ctx context.Context, id int64) (*models.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	return msg, err
}

// List returns up to q.Limit messages of q.History older than q.BeforeID,
// oldest first.
func (r *MessageRepository) List(ctx context.Context, q Query) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE history = ?`
	args := []any{string(q.History)}
	if q.BeforeID > 0 {
		query += ` AND id < ?`
		args = append(args, q.BeforeID)
	}
	query += ` ORDER BY id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

// Delete removes a message.
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteMany removes ids in one transaction and returns the ids that
// existed. Unknown ids are skipped.
func (r *MessageRepository) DeleteMany(ctx context.Context, ids ...int64) ([]int64, error) {
	var deleted []int64
	err := r.db.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		deleted = deleted[:0]
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("failed to delete message %d: %w", id, err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				deleted = append(deleted, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Count returns how many messages history holds.
func (r *MessageRepository) Count(ctx context.Context, history models.History) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE history = ?`, string(history)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// Groups returns every album, members ordered by id.
func (r *MessageRepository) Groups(ctx context.Context) (map[int64][]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT group_id, id FROM messages WHERE group_id != 0 ORDER BY group_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := make(map[int64][]int64)
	for rows.Next() {
		var group, id int64
		if err := rows.Scan(&group, &id); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups[group] = append(groups[group], id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return groups, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*models.Message, error) {
	var (
		msg                         models.Message
		history, kind, createdAt    string
		link                        sql.NullString
		canForward, canDelete, mark int
	)
	err := s.Scan(
		&msg.ID, &msg.UID, &history, &kind, &msg.Author, &msg.Body, &link, &msg.GroupID,
		&canForward, &canDelete, &mark, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	msg.History = models.History(history)
	msg.Kind = models.MessageKind(kind)
	msg.Link = link.String
	msg.CanForward = canForward != 0
	msg.CanDelete = canDelete != 0
	msg.MigrateMarker = mark != 0
	if msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &msg, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
