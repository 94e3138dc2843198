package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Klaiveft/What2Watch/internal/model"
)

const defaultBuffer = 16

// Subscription receives the change events of one room.
type Subscription struct {
	hub      *Hub
	roomCode string
	events   chan model.Event
	once     sync.Once
}

func (s *Subscription) RoomCode() string {
	return s.roomCode
}

// Events is closed after Close or when the hub stops.
func (s *Subscription) Events() <-chan model.Event {
	return s.events
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.done:
		}
	})
}

type roomEvent struct {
	// empty roomCode reaches every room
	roomCode string
	event    model.Event
}

// Hub fans change events out to the subscribers of a room. Delivery never
// blocks the publisher. A subscriber whose buffer is full misses the event but
// still holds unread ones, so it re-reads the room regardless.
type Hub struct {
	logger     *slog.Logger
	rooms      map[string]map[*Subscription]bool
	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan roomEvent
	done       chan struct{}
	bufferSize int
}

type Option func(*Hub)

func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		logger:     slog.Default(),
		rooms:      make(map[string]map[*Subscription]bool),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		broadcast:  make(chan roomEvent, 64),
		done:       make(chan struct{}),
		bufferSize: defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run owns the subscriber registry until ctx is done. All subscriptions are
// closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, subs := range h.rooms {
			for sub := range subs {
				close(sub.events)
			}
		}
		h.rooms = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.handleRegister(sub)

		case sub := <-h.unregister:
			h.handleUnregister(sub)

		case re := <-h.broadcast:
			if re.roomCode == "" {
				for code := range h.rooms {
					h.broadcastToRoom(code, re.event)
				}
				continue
			}
			h.broadcastToRoom(re.roomCode, re.event)
		}
	}
}

func (h *Hub) Subscribe(roomCode string) *Subscription {
	sub := &Subscription{
		hub:      h,
		roomCode: roomCode,
		events:   make(chan model.Event, h.bufferSize),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		close(sub.events)
	}
	return sub
}

func (h *Hub) Publish(e model.Event) {
	h.send(roomEvent{roomCode: e.RoomCode, event: e})
}

func (h *Hub) PublishAll(e model.Event) {
	h.send(roomEvent{event: e})
}

func (h *Hub) send(re roomEvent) {
	select {
	case h.broadcast <- re:
	case <-h.done:
	}
}

func (h *Hub) handleRegister(sub *Subscription) {
	if _, exists := h.rooms[sub.roomCode]; !exists {
		h.rooms[sub.roomCode] = make(map[*Subscription]bool)
	}
	h.rooms[sub.roomCode][sub] = true

	h.logger.Debug("subscriber registered", slog.String("room", sub.roomCode))
}

func (h *Hub) handleUnregister(sub *Subscription) {
	subs, exists := h.rooms[sub.roomCode]
	if !exists || !subs[sub] {
		return
	}

	delete(subs, sub)
	close(sub.events)
	if len(subs) == 0 {
		delete(h.rooms, sub.roomCode)
	}

	h.logger.Debug("subscriber unregistered", slog.String("room", sub.roomCode))
}

func (h *Hub) broadcastToRoom(roomCode string, e model.Event) {
	for sub := range h.rooms[roomCode] {
		select {
		case sub.events <- e:
		default:
			h.logger.Debug("subscriber buffer full, event skipped", slog.String("room", roomCode))
		}
	}
}
