package model

import "time"

// ConversationPreview is one entry on the chat-list page: the counterpart
// identity plus the most recent message exchanged with them. Conversations are
// not stored; previews are reduced from the message log per request.
type ConversationPreview struct {
	Partner       string    `json:"partner"`
	LastContent   string    `json:"lastContent"`
	LastSender    string    `json:"lastSender"`
	LastTimestamp time.Time `json:"lastTimestamp"`
	HasAttachment bool      `json:"hasAttachment"`
}
