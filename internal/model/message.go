package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment type values carried on the wire. The frontend only ever sends
// "pdf" or "none"; anything else is rejected at the boundary.
const (
	AttachmentNone = "none"
	AttachmentPDF  = "pdf"
)

// Message is one chat message between two identities. Immutable once stored:
// the messages collection is an append-only log and conversations are derived
// by query, never materialized.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender         string             `json:"sender" bson:"sender"`
	Receiver       string             `json:"receiver" bson:"receiver"`
	Content        string             `json:"content" bson:"content"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	HasAttachment  bool               `json:"hasAttachment" bson:"has_attachment"`
	AttachmentType string             `json:"attachmentType" bson:"attachment_type"`
	AttachmentData string             `json:"attachmentData,omitempty" bson:"attachment_data,omitempty"`
	AttachmentName string             `json:"attachmentName,omitempty" bson:"attachment_name,omitempty"`
	Read           bool               `json:"read" bson:"read"`
}

// ErrorPayload represents an error response sent to a client via WebSocket
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
