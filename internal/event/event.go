package event

import "encoding/json"

// Event names as the frontend emits and consumes them. These are a wire
// contract shared with the browser client and must not be renamed.
const (
	// inbound (client -> server)
	EventUserOnline  = "user_online"
	EventTyping      = "typing"
	EventStopTyping  = "stop_typing"
	EventSendMessage = "send_message"

	// outbound (server -> client)
	EventUserStatus      = "user_status"
	EventTypingIndicator = "typing_indicator"
	EventReceiveMessage  = "receive_message"
	EventError           = "error"
)

// Envelope is the frame exchanged over the socket. Data holds the
// event-specific payload and is decoded by the handler for the event name.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// TypingPayload is the body of both "typing" and "stop_typing".
type TypingPayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// TypingIndicator is pushed to the receiving side of a typing pair.
type TypingIndicator struct {
	Sender   string `json:"sender"`
	IsTyping bool   `json:"isTyping"`
}

// New wraps a payload into an Envelope. Marshal errors cannot happen for the
// payload types used here, so they are swallowed into an empty body.
func New(name string, payload any) Envelope {
	data, _ := json.Marshal(payload)
	return Envelope{Event: name, Data: data}
}
