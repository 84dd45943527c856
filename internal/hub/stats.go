package hub

// Stats is a point-in-time view of the hub for the ops endpoint.
type Stats struct {
	Status           string   `json:"status"`
	Connections      int      `json:"connections"`
	OnlineIdentities []string `json:"onlineIdentities"`
	TypingPairs      int      `json:"typingPairs"`
}

// Stats gathers current hub statistics.
func (h *Hub) Stats() Stats {
	connections, _ := h.presence.counts()

	status := "healthy"
	if connections == 0 {
		status = "idle"
	}

	return Stats{
		Status:           status,
		Connections:      connections,
		OnlineIdentities: h.presence.Snapshot(),
		TypingPairs:      h.typing.activePairs(),
	}
}
