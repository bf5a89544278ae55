package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
)

// History limits for GetRecentMessages.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// ErrInvalidMessage is returned by SaveMessage for incomplete records.
var ErrInvalidMessage = errors.New("invalid message")

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new conversation turn.
	SaveMessage(ctx context.Context, message *Message) error

	// GetRecentMessages returns the newest limit turns of a chat, oldest first.
	GetRecentMessages(ctx context.Context, chatID int64, limit int) ([]Message, error)

	// DeleteChatHistory removes every stored turn of a chat and reports how many were removed.
	DeleteChatHistory(ctx context.Context, chatID int64) (int64, error)

	// CountMessages returns the number of stored turns.
	CountMessages(ctx context.Context) (int64, error)

	// CountActiveChats returns the number of chats with stored history.
	CountActiveChats(ctx context.Context) (int64, error)

	// PruneMessagesBefore deletes turns older than cutoff and reports how many were removed.
	PruneMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func validateMessage(message *Message) error {
	switch {
	case message == nil:
		return fmt.Errorf("%w: nil message", ErrInvalidMessage)
	case message.ChatID == 0:
		return fmt.Errorf("%w: message must have a non-zero chat_id", ErrInvalidMessage)
	case message.Role != RoleUser && message.Role != RoleAssistant:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, message.Role)
	case message.Content == "":
		return fmt.Errorf("%w: message must have non-empty content", ErrInvalidMessage)
	case message.Timestamp.IsZero():
		return fmt.Errorf("%w: message must have a non-zero timestamp", ErrInvalidMessage)
	}
	return nil
}

// SaveMessage inserts a new conversation turn and sets its ID.
// Timestamps are stored in UTC so that text comparison orders them.
func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if err := validateMessage(message); err != nil {
		return err
	}

	message.Timestamp = message.Timestamp.UTC()
	message.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO messages (chat_id, user_id, role, content, timestamp, created_at)
        VALUES (:chat_id, :user_id, :role, :content, :timestamp, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "chat_id", message.ChatID, "role", message.Role, "error", err)
		return fmt.Errorf("failed to save message (chat %d): %w", message.ChatID, err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		//nolint:gosec // ids are positive
		message.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "error", err)
	}

	s.logger.DebugContext(ctx, "Message saved successfully",
		"chat_id", message.ChatID, "role", message.Role, "message_id", message.ID)
	return nil
}

// GetRecentMessages returns the newest limit turns of chatID in chronological order.
// A non-positive limit uses DefaultHistoryLimit; larger values are capped at MaxHistoryLimit.
func (s *sqlxStore) GetRecentMessages(ctx context.Context, chatID int64, limit int) ([]Message, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	} else if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var messages []Message
	query := `
        SELECT id, chat_id, user_id, role, content, timestamp, created_at
        FROM messages
        WHERE chat_id = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &messages, query, chatID, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching messages",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent messages", "chat_id", chatID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent messages for chat %d: %w", chatID, err)
	}

	slices.Reverse(messages)

	s.logger.DebugContext(ctx, "Fetched recent messages", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

// DeleteChatHistory removes all turns of chatID.
func (s *sqlxStore) DeleteChatHistory(ctx context.Context, chatID int64) (int64, error) {
	if chatID == 0 {
		return 0, fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?;`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting chat history", "chat_id", chatID, "error", err)
		return 0, fmt.Errorf("failed to delete history for chat %d: %w", chatID, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted messages: %w", err)
	}

	s.logger.InfoContext(ctx, "Chat history deleted", "chat_id", chatID, "deleted", deleted)
	return deleted, nil
}

// CountMessages returns the number of stored turns.
func (s *sqlxStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages;`); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// CountActiveChats returns the number of distinct chats with stored turns.
func (s *sqlxStore) CountActiveChats(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(DISTINCT chat_id) FROM messages;`); err != nil {
		return 0, fmt.Errorf("failed to count active chats: %w", err)
	}
	return count, nil
}

// PruneMessagesBefore deletes turns with a timestamp before cutoff.
func (s *sqlxStore) PruneMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("cutoff cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE timestamp < ?;`, cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning messages", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune messages: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned messages: %w", err)
	}

	s.logger.InfoContext(ctx, "Pruned old messages", "cutoff", cutoff.UTC(), "deleted", deleted)
	return deleted, nil
}

// RunSQLMaintenance executes VACUUM followed by PRAGMA optimize.
// VACUUM must run outside a transaction in SQLite.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		s.logger.ErrorContext(ctx, "PRAGMA optimize failed", "error", err)
		return fmt.Errorf("failed to execute PRAGMA optimize: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed successfully")
	return nil
}
