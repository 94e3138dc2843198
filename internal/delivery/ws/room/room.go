package ws_room

import (
	"log/slog"
	"net/http"
	"time"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/Klaiveft/What2Watch/internal/service/notify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Subscriber interface {
	Subscribe(roomCode string) *notify.Subscription
}

type Controller struct {
	hub Subscriber

	auth   gin.HandlerFunc
	member gin.HandlerFunc
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	hub Subscriber,
	auth gin.HandlerFunc,
	member gin.HandlerFunc,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		hub:    hub,
		auth:   auth,
		member: member,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/rooms/:code/events", c.auth, c.member, c.events)
}

// Events streams the change notifications of a room
// @Summary Room events
// @Description Upgrades to a WebSocket that carries {table, room_code, op} change events. The first message is always a RESYNC; clients re-read the room on every message.
// @Tags Room
// @Param code path string true "Room code"
// @Param token query string true "Anonymous token"
// @Success 101 {object} model.Event "Switching protocols"
// @Failure 401 {object} http_common.ErrorResponse "Unknown token"
// @Failure 403 {object} http_common.ErrorResponse "Not a participant, see redirect"
// @Router /rooms/{code}/events [get]
func (c *Controller) events(ctx *gin.Context) {
	room := http_common.Room(ctx)

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		c.logger.Error("failed to upgrade to websocket",
			slog.String("room_code", room.Code),
			slog.String("error", err.Error()),
		)
		return
	}

	sub := c.hub.Subscribe(room.Code)
	c.logger.Info("events stream opened", slog.String("room_code", room.Code))

	go c.readPump(conn, sub)
	go c.writePump(conn, sub)
}

// readPump only drains control frames. It ends the subscription when the
// peer goes away.
func (c *Controller) readPump(conn *websocket.Conn, sub *notify.Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("events stream read failed",
					slog.String("room_code", sub.RoomCode()),
					slog.String("error", err.Error()),
				)
			}
			return
		}
	}
}

func (c *Controller) writePump(conn *websocket.Conn, sub *notify.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		c.logger.Info("events stream closed", slog.String("room_code", sub.RoomCode()))
	}()

	// Whatever changed between the client's last read and the subscription.
	if err := c.write(conn, model.Event{Table: model.TableRooms, RoomCode: sub.RoomCode(), Op: model.OpResync}); err != nil {
		return
	}

	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.write(conn, e); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Controller) write(conn *websocket.Conn, e model.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(e)
}
