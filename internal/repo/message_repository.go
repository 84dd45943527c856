package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Medilink/internal/db"
	"Medilink/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrInvalidMessage   = errors.New("invalid message: message cannot be nil")
	ErrMissingIdentity  = errors.New("invalid identity: cannot be empty")
	ErrSelfConversation = errors.New("invalid conversation: sender and receiver are the same identity")
	ErrOperationTimeout = errors.New("operation timeout exceeded")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	// Retry configuration
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

type messageRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

// MessageRepository is the durable side of the chat: an append-only message
// log queried by conversation pair. Insert failures surface to the caller;
// a message that did not persist must never look delivered.
type MessageRepository interface {
	Insert(ctx context.Context, msg *model.Message) (string, error)
	History(ctx context.Context, a, b string) ([]model.Message, error)
	Involving(ctx context.Context, identity string) ([]model.Message, error)
	FindByID(ctx context.Context, id string) (*model.Message, error)
}

func NewMessageRepository(mongo *mongo.Database, repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		con:       mongo,
		mongoRepo: repo,
		logger:    logger,
	}
}

// -----------------------------------------------------------------------------
// Insert
// -----------------------------------------------------------------------------

func (m *messageRepository) Insert(ctx context.Context, msg *model.Message) (string, error) {
	if err := m.validateMessage(msg); err != nil {
		return "", err
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return "", err
			}
		}

		result, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			insertedID := ""
			if result.InsertedID != nil {
				if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
					insertedID = oid.Hex()
				} else if str, ok := result.InsertedID.(string); ok {
					insertedID = str
				}
			}

			m.logger.Info("message inserted",
				zap.String("inserted_id", insertedID),
				zap.String("sender", msg.Sender),
				zap.String("receiver", msg.Receiver),
				zap.Bool("has_attachment", msg.HasAttachment),
				zap.Int("attempt", attempt+1),
			)
			return insertedID, nil
		}

		lastErr = err

		// Don't retry on context cancellation or non-retryable errors
		if !m.isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("sender", msg.Sender),
		zap.String("receiver", msg.Receiver),
	)

	return "", fmt.Errorf("insert message failed: %w", lastErr)
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

// History returns the full conversation for the unordered identity pair,
// sorted ascending on the client-assigned timestamp. Argument order does not
// matter: the pair filter matches both directions.
func (m *messageRepository) History(ctx context.Context, a, b string) ([]model.Message, error) {
	if a == "" || b == "" {
		return nil, ErrMissingIdentity
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.Pair(a, b)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
			m.logger.Warn("retrying history query",
				zap.String("a", a),
				zap.String("b", b),
				zap.Int("attempt", attempt+1),
			)
		}

		messages, err := m.mongoRepo.FindAllSorted(ctx, filter, "timestamp", false)
		if err == nil {
			m.logger.Debug("history retrieved",
				zap.String("a", a),
				zap.String("b", b),
				zap.Int("count", len(messages)),
			)
			return messages, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}
	}

	return nil, m.handleReadError(lastErr, a, b)
}

// Involving returns every message where the identity is sender or receiver,
// newest first. Feeds the chat-list reduction in the service layer.
func (m *messageRepository) Involving(ctx context.Context, identity string) ([]model.Message, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	messages, err := m.mongoRepo.FindAllSorted(ctx, db.Involving(identity), "timestamp", true)
	if err != nil {
		return nil, m.handleReadError(err, identity, "")
	}
	return messages, nil
}

func (m *messageRepository) FindByID(ctx context.Context, id string) (*model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		m.logger.Error("failed to fetch message", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("fetch message failed: %w", err)
	}
	return msg, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func (m *messageRepository) validateMessage(msg *model.Message) error {
	if msg == nil {
		return ErrInvalidMessage
	}
	if msg.Sender == "" || msg.Receiver == "" {
		return ErrMissingIdentity
	}
	if msg.Sender == msg.Receiver {
		return ErrSelfConversation
	}
	return nil
}

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Check for MongoDB transient errors
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	return false
}

func (m *messageRepository) handleReadError(err error, a, b string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.String("a", a), zap.String("b", b))
		return ErrOperationTimeout
	}

	if errors.Is(err, context.Canceled) {
		m.logger.Debug("read cancelled", zap.String("a", a), zap.String("b", b))
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil // Not an error, just empty result
	}

	m.logger.Error("read failed", zap.Error(err), zap.String("a", a), zap.String("b", b))
	return fmt.Errorf("query messages failed: %w", err)
}
