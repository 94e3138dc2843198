package infra_postgres_listener

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"github.com/Klaiveft/What2Watch/internal/config"
	"github.com/Klaiveft/What2Watch/internal/model"
	infra_pg_init "github.com/Klaiveft/What2Watch/internal/infra/postgres/init"
	"github.com/lib/pq"
)

type Publisher interface {
	Publish(e model.Event)
	// PublishAll reaches every subscriber. Used after a reconnect, when
	// notifications may have been missed.
	PublishAll(e model.Event)
}

type notifier interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// Listener turns row notifications from the database triggers into events.
type Listener struct {
	l      notifier
	pub    Publisher
	logger *slog.Logger

	pingInterval time.Duration
}

func MustListen(cfg config.Postgres, pub Publisher) *Listener {
	logger := slog.Default()

	l := pq.NewListener(cfg.DSN(), 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("room events listener", slog.Int("event", int(ev)), slog.String("error", err.Error()))
		}
	})
	if err := l.Listen(infra_pg_init.NotifyChannel); err != nil {
		log.Fatal(err)
	}

	return newListener(l, pub, logger)
}

func newListener(l notifier, pub Publisher, logger *slog.Logger) *Listener {
	return &Listener{
		l:            l,
		pub:          pub,
		logger:       logger,
		pingInterval: 90 * time.Second,
	}
}

// Run forwards notifications until ctx is done.
func (l *Listener) Run(ctx context.Context) {
	defer l.l.Close()

	ticker := time.NewTicker(l.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-l.l.NotificationChannel():
			if !ok {
				return
			}
			l.handle(n)
		case <-ticker.C:
			go func() {
				if err := l.l.Ping(); err != nil {
					l.logger.Warn("room events listener ping", slog.String("error", err.Error()))
				}
			}()
		}
	}
}

func (l *Listener) handle(n *pq.Notification) {
	// nil means the connection was re-established.
	if n == nil {
		l.pub.PublishAll(model.Event{Table: model.TableRooms, Op: model.OpResync})
		return
	}

	var e model.Event
	if err := json.Unmarshal([]byte(n.Extra), &e); err != nil {
		l.logger.Error("bad room event payload", slog.String("payload", n.Extra), slog.String("error", err.Error()))
		return
	}
	l.pub.Publish(e)
}
