package gateway

import "sync"

type broadcastFrame struct {
	event    OutboundEvent
	exceptID string
}

// Channel is one fan-out domain, either a room or a tenant notification
// feed. Membership is mutex guarded; a single run goroutine drains the
// broadcast queue so frames reach every member in submission order.
type Channel struct {
	ID string

	broadcast chan broadcastFrame
	done      chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool
}

func newChannel(id string) *Channel {
	ch := &Channel{
		ID:        id,
		broadcast: make(chan broadcastFrame, 64),
		done:      make(chan struct{}),
		clients:   make(map[*Client]bool),
	}
	go ch.run()
	return ch
}

func (ch *Channel) run() {
	for {
		select {
		case frame := <-ch.broadcast:
			ch.deliver(frame)
		case <-ch.done:
			return
		}
	}
}

func (ch *Channel) add(c *Client) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.clients[c] = true
}

func (ch *Channel) remove(c *Client) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	delete(ch.clients, c)
}

// deliver snapshots the membership before sending, so clients joining or
// leaving mid-broadcast never corrupt the iteration.
func (ch *Channel) deliver(frame broadcastFrame) {
	ch.mu.RLock()
	snapshot := make([]*Client, 0, len(ch.clients))
	for client := range ch.clients {
		snapshot = append(snapshot, client)
	}
	ch.mu.RUnlock()

	for _, client := range snapshot {
		if frame.exceptID != "" && client.ID == frame.exceptID {
			continue
		}
		client.enqueue(frame.event)
	}
}

func (ch *Channel) size() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.clients)
}

func (ch *Channel) stop() {
	close(ch.done)
}
