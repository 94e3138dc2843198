package infra_postgres_listener

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type fakeNotifier struct {
	ch     chan *pq.Notification
	closed chan struct{}
}

func (f *fakeNotifier) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeNotifier) Ping() error                                  { return nil }
func (f *fakeNotifier) Close() error {
	close(f.closed)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
	all    []model.Event
}

func (r *recorder) Publish(e model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) PublishAll(e model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, e)
}

func (r *recorder) snapshot() ([]model.Event, []model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Event(nil), r.events...), append([]model.Event(nil), r.all...)
}

func TestListenerForwardsNotifications(t *testing.T) {
	n := &fakeNotifier{ch: make(chan *pq.Notification), closed: make(chan struct{})}
	rec := &recorder{}
	l := newListener(n, rec, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	n.ch <- &pq.Notification{Channel: "room_events", Extra: `{"table":"votes","room_code":"AB12CD","op":"INSERT"}`}
	n.ch <- &pq.Notification{Channel: "room_events", Extra: `not json`}
	n.ch <- nil

	assert.Eventually(t, func() bool {
		events, all := rec.snapshot()
		return len(events) == 1 && len(all) == 1
	}, time.Second, 10*time.Millisecond)

	events, all := rec.snapshot()
	assert.Equal(t, model.Event{Table: model.TableVotes, RoomCode: "AB12CD", Op: model.OpInsert}, events[0])
	assert.Equal(t, model.OpResync, all[0].Op)

	cancel()
	<-done
	select {
	case <-n.closed:
	default:
		t.Fatal("listener was not closed")
	}
}
