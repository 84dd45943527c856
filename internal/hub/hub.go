package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"Medilink/internal/event"
	"Medilink/internal/model"

	"github.com/gorilla/websocket"
)

type inboundEvent struct {
	env    event.Envelope
	client *Client
}

// Hub owns the realtime delivery channel: it tracks every connection, the
// presence table and the typing table, and fans inbound events out to the
// right connections. It never touches persistence; durable writes happen on
// the REST path before anything is mirrored over the socket.
type Hub struct {
	presence *presenceRegistry
	typing   *typingCoordinator

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	upgrader websocket.Upgrader
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewHub starts the manager loop and the inbound worker pool. allowedOrigins
// is the browser origin allowlist for the websocket handshake.
func NewHub(allowedOrigins []string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		presence:   newPresenceRegistry(),
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundEvent, 4096), // buffer for burst handling
		ctx:        ctx,
		cancel:     cancel,
	}
	h.typing = newTypingCoordinator(h.pushTypingIndicator)

	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// non-browser client
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in := <-h.inbound:
					h.handleEvent(in.env, in.client)
				}
			}
		}()
	}

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.presence.Add(c)
	log.Printf("client %s connected", c.ID)
}

// removeClient tears a connection down. Safe against duplicate close signals:
// the registry reports whether the connection was still tracked, and presence
// is only re-broadcast when an identity actually lost its last connection.
func (h *Hub) removeClient(c *Client) {
	wentOffline, removed := h.presence.Remove(c)
	if !removed {
		return
	}
	c.Close()
	log.Printf("client %s removed (identity %q)", c.ID, c.Identity())

	if wentOffline != "" {
		h.broadcastPresence()
	}
}

func (h *Hub) handleEvent(env event.Envelope, c *Client) {
	switch env.Event {
	case event.EventUserOnline:
		var identity string
		if err := json.Unmarshal(env.Data, &identity); err != nil || identity == "" {
			log.Printf("client %s: bad user_online payload: %v", c.ID, err)
			return
		}
		h.presence.Register(identity, c)
		h.broadcastPresence()

	case event.EventTyping:
		var p event.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("client %s: bad typing payload: %v", c.ID, err)
			return
		}
		h.typing.Typing(p.Sender, p.Receiver)

	case event.EventStopTyping:
		var p event.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("client %s: bad stop_typing payload: %v", c.ID, err)
			return
		}
		h.typing.StopTyping(p.Sender, p.Receiver)

	case event.EventSendMessage:
		var msg model.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			log.Printf("client %s: bad send_message payload: %v", c.ID, err)
			c.SafeSend(event.New(event.EventError, model.ErrorPayload{
				Code:    "bad_payload",
				Message: "send_message payload could not be decoded",
			}), sendTimeout)
			return
		}
		if msg.Sender == "" || msg.Receiver == "" {
			return
		}
		h.deliver(msg)

	default:
		log.Printf("unknown event type: %s", env.Event)
	}
}

// deliver mirrors a message to the receiver's live connections. When none
// exist the message is simply not delivered in real time; the receiver picks
// it up from history on the next load.
func (h *Hub) deliver(msg model.Message) {
	env := event.New(event.EventReceiveMessage, msg)
	for _, rc := range h.presence.ClientsFor(msg.Receiver) {
		if !rc.SafeSend(env, sendTimeout) {
			log.Printf("egress full for client %s, dropping receive_message", rc.ID)
			if kickOnFull {
				h.queueUnregister(rc)
			}
		}
	}
}

// broadcastPresence sends the full online snapshot to every connection,
// identified or not.
func (h *Hub) broadcastPresence() {
	env := event.New(event.EventUserStatus, h.presence.Snapshot())
	for _, c := range h.presence.All() {
		c.Send(env)
	}
}

func (h *Hub) pushTypingIndicator(sender, receiver string, isTyping bool) {
	env := event.New(event.EventTypingIndicator, event.TypingIndicator{
		Sender:   sender,
		IsTyping: isTyping,
	})
	for _, rc := range h.presence.ClientsFor(receiver) {
		if !rc.SafeSend(env, sendTimeout) {
			log.Printf("egress full for client %s, dropping typing_indicator", rc.ID)
		}
	}
}

// IsOnline reports whether an identity currently holds an open connection.
func (h *Hub) IsOnline(identity string) bool {
	return h.presence.IsOnline(identity)
}

func (h *Hub) queueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-time.After(unregisterTimeout):
		log.Printf("failed to unregister client %s: timeout", c.ID)
	}
}

// Stop shuts the hub down: cancels the loops, drops every timer and closes
// all client connections. Idempotent, like Client.Close: the server shutdown
// path and the container teardown may both call it. The inbound channel is
// never closed; workers exit on the cancelled context, and a read pump still
// between ReadJSON and its enqueue lands in the buffer instead of panicking.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		h.typing.stopAll()

		for _, c := range h.presence.All() {
			c.Close()
		}

		h.wg.Wait()
	})
}

// ServeWS upgrades an HTTP request and hands the connection to the hub. The
// identity arrives later over the socket via user_online, matching the
// browser client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(conn, h)
}
