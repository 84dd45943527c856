package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Medilink/internal/attachment"
	"Medilink/internal/model"
	"Medilink/internal/repo"

	"go.uber.org/zap"
)

var (
	ErrEmptyMessage         = errors.New("message needs text content or an attachment")
	ErrNotParticipant       = errors.New("requester is not part of this conversation")
	ErrAttachmentNotFound   = errors.New("message not found or carries no attachment")
	ErrInvalidAttachmentRef = errors.New("invalid attachment reference")
)

// MessageService sits between the REST handlers and the message log. The
// ordering rule lives here: Send must return success before the client
// mirrors the message over the socket, so a persistence failure is never
// shown as delivered.
type MessageService interface {
	Send(ctx context.Context, msg *model.Message) error
	History(ctx context.Context, requester, a, b string) ([]model.Message, error)
	Conversations(ctx context.Context, identity string) ([]model.ConversationPreview, error)
	Attachment(ctx context.Context, requester, messageID string) (*attachment.File, error)
}

type messageService struct {
	messages repo.MessageRepository
	logger   *zap.Logger
}

func NewMessageService(messages repo.MessageRepository, logger *zap.Logger) MessageService {
	return &messageService{
		messages: messages,
		logger:   logger,
	}
}

// Send validates the message at the boundary and appends it to the log.
// Attachment constraints are re-checked here even though the browser
// validates first; nothing invalid may create state.
func (s *messageService) Send(ctx context.Context, msg *model.Message) error {
	if msg.Content == "" && !msg.HasAttachment {
		return ErrEmptyMessage
	}

	if err := attachment.ValidatePayload(msg); err != nil {
		s.logger.Warn("attachment rejected",
			zap.String("sender", msg.Sender),
			zap.String("name", msg.AttachmentName),
			zap.Error(err),
		)
		return err
	}

	if !msg.HasAttachment {
		msg.AttachmentType = model.AttachmentNone
	}

	// The client-assigned composition time is the ordering key within a
	// conversation; only stamp when the client sent none.
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.Read = false

	if _, err := s.messages.Insert(ctx, msg); err != nil {
		return err
	}
	return nil
}

// History returns the pair's conversation, ascending by timestamp. The
// requester must be one of the two identities.
func (s *messageService) History(ctx context.Context, requester, a, b string) ([]model.Message, error) {
	if requester != a && requester != b {
		return nil, ErrNotParticipant
	}

	messages, err := s.messages.History(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}

// Conversations reduces the identity's message log to one preview per
// counterpart, newest conversation first.
func (s *messageService) Conversations(ctx context.Context, identity string) ([]model.ConversationPreview, error) {
	messages, err := s.messages.Involving(ctx, identity)
	if err != nil {
		return nil, err
	}

	previews := make([]model.ConversationPreview, 0)
	seen := make(map[string]struct{})
	for _, msg := range messages {
		partner := msg.Receiver
		if partner == identity {
			partner = msg.Sender
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		previews = append(previews, model.ConversationPreview{
			Partner:       partner,
			LastContent:   msg.Content,
			LastSender:    msg.Sender,
			LastTimestamp: msg.Timestamp,
			HasAttachment: msg.HasAttachment,
		})
	}
	return previews, nil
}

// Attachment reconstructs a downloadable file from a stored message. Only a
// participant of the conversation may fetch it.
func (s *messageService) Attachment(ctx context.Context, requester, messageID string) (*attachment.File, error) {
	if messageID == "" {
		return nil, ErrInvalidAttachmentRef
	}

	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("lookup attachment: %w", err)
	}
	if msg == nil || !msg.HasAttachment {
		return nil, ErrAttachmentNotFound
	}
	if requester != msg.Sender && requester != msg.Receiver {
		return nil, ErrNotParticipant
	}

	file, err := attachment.Decode(msg)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
