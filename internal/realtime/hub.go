package realtime

import "sync"

// hub tracks local connections and their room memberships.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func newHub() *hub {
	return &hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (h *hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

// remove drops c and returns the rooms it was in.
func (h *hub) remove(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return nil
	}
	delete(h.clients, c.id)

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		h.detach(c, room)
		rooms = append(rooms, room)
	}
	return rooms
}

func (h *hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.id] = c
	c.rooms[room] = struct{}{}
}

// leave reports whether c was a member of room.
func (h *hub) leave(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[room]; !ok {
		return false
	}
	h.detach(c, room)
	return true
}

// detach must be called with the lock held.
func (h *hub) detach(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// deliver queues the payload for every local member of the room except the
// excluded connection and returns the number of recipients.
func (h *hub) deliver(env Envelope) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[env.Room]))
	for id, c := range h.rooms[env.Room] {
		if id != env.Except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(env.Payload) {
			delivered++
		}
	}
	return delivered
}

func (h *hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *hub) roomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
