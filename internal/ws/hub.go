package ws

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Lifecycle event names.
const (
	EventNewOrder          = "new_order"
	EventOrderStatusUpdate = "order_status_update"
	EventOrderCancelled    = "order_cancelled"
)

// Event is one named notification.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Emitter publishes events to a channel. Delivery is best effort: no ack, no retry.
type Emitter interface {
	Emit(channel string, event Event)
}

func StoreChannel(id uuid.UUID) string { return fmt.Sprintf("store_%s", id) }

func UserChannel(id uuid.UUID) string { return fmt.Sprintf("user_%s", id) }

// Client is the subset of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription ties a client to the channels it listens on.
type Subscription struct {
	Client   Client
	Channels []string
}

type envelope struct {
	Channel string `json:"channel"`
	Event
}

type outbound struct {
	channel string
	data    []byte
}

type Hub struct {
	Clients    map[Client]map[string]bool
	Register   chan *Subscription
	Unregister chan Client
	Broadcast  chan outbound
	mutex      sync.Mutex

	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

// NewHub creates a hub whose outbound queue holds buffer messages.
func NewHub(buffer int) *Hub {
	return &Hub{
		Clients:    make(map[Client]map[string]bool),
		Register:   make(chan *Subscription),
		Unregister: make(chan Client),
		Broadcast:  make(chan outbound, buffer),
		done:       make(chan struct{}),
	}
}

// Emit queues event for channel. It never blocks; a full queue drops the event.
func (h *Hub) Emit(channel string, event Event) {
	data, err := json.Marshal(envelope{Channel: channel, Event: event})
	if err != nil {
		logrus.WithError(err).WithField("channel", channel).Warn("ws: unencodable event dropped")
		h.dropped.Add(1)
		return
	}

	select {
	case h.Broadcast <- outbound{channel: channel, data: data}:
	default:
		h.dropped.Add(1)
		logrus.WithFields(logrus.Fields{"channel": channel, "type": event.Type}).Warn("ws: queue full, event dropped")
	}
}

// Dropped counts events that were never queued.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribers returns how many clients listen on channel.
func (h *Hub) Subscribers(channel string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := 0
	for _, channels := range h.Clients {
		if channels[channel] {
			n++
		}
	}
	return n
}

// Run dispatches registrations and queued events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.Register:
			h.mutex.Lock()
			channels := make(map[string]bool, len(sub.Channels))
			for _, ch := range sub.Channels {
				channels[ch] = true
			}
			h.Clients[sub.Client] = channels
			h.mutex.Unlock()
			logrus.WithField("channels", sub.Channels).Debug("ws: client subscribed")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.Broadcast:
			h.mutex.Lock()
			for conn, channels := range h.Clients {
				if !channels[msg.channel] {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.done) })
}
