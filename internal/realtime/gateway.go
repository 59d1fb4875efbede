package realtime

import (
	"context"
	"net/http"
	"time"

	"pet-adoption-marketplace/internal/auth"
	"pet-adoption-marketplace/internal/events"
	"pet-adoption-marketplace/internal/logger"
	appErrors "pet-adoption-marketplace/pkg/errors"
	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const eventTimeout = 5 * time.Second

// Gateway authenticates socket connections and relays room events. It keeps
// no state beyond live connections.
type Gateway struct {
	auth     *auth.Authenticator
	broker   Broker
	hub      *hub
	stats    *StatsTracker
	upgrader websocket.Upgrader
	log      *zap.Logger
	now      func() time.Time
}

// NewGateway creates a gateway. allowedOrigins may contain "*"; requests
// without an Origin header are always accepted.
func NewGateway(authenticator *auth.Authenticator, broker Broker, allowedOrigins []string) *Gateway {
	if broker == nil {
		broker = NewLocalBroker()
	}

	g := &Gateway{
		auth:   authenticator,
		broker: broker,
		hub:    newHub(),
		stats:  NewStatsTracker(),
		log:    logger.Named("realtime"),
		now:    time.Now,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return g
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Start subscribes to the broker. It must run before connections are served.
func (g *Gateway) Start(ctx context.Context) error {
	return g.broker.Subscribe(ctx, func(env Envelope) {
		g.hub.deliver(env)
	})
}

// ServeWS authenticates the handshake and upgrades the connection. Rejected
// handshakes get a 401 envelope and are never upgraded.
func (g *Gateway) ServeWS(c *gin.Context) {
	principal, appErr := g.authenticate(c.Request)
	if appErr != nil {
		g.stats.Update(func(s *Stats) { s.HandshakesRejected++ })
		g.log.Debug("Socket handshake rejected",
			zap.String("code", appErr.Code),
			zap.String("remote_addr", c.ClientIP()),
		)
		utils.AppErrorResponse(c, appErr)
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn("Socket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	client := &Client{
		id:        id,
		principal: principal,
		conn:      conn,
		gateway:   g,
		log:       g.log.With(zap.String("conn_id", id), zap.String("user_id", principal.ID.String())),
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		rooms:     make(map[string]struct{}),
	}

	g.hub.add(client)
	g.hub.join(client, UserRoom(principal.ID))
	g.stats.Update(func(s *Stats) {
		s.ConnectionsOpened++
		s.ConnectionsActive++
	})
	client.log.Debug("Socket connected")

	go client.writePump()
	go client.readPump()
}

func (g *Gateway) authenticate(r *http.Request) (*auth.Principal, *appErrors.AppError) {
	token := auth.HandshakeToken(r)
	if token == "" {
		return nil, appErrors.Unauthenticated("Unauthorized: no token", appErrors.ErrUnauthorized)
	}

	principal, err := g.auth.Authenticate(token)
	if err != nil {
		if appErr, ok := appErrors.As(err); ok {
			return nil, appErr
		}
		return nil, appErrors.Unauthenticated("Invalid or malformed token", err)
	}
	return principal, nil
}

// Publish forwards a listing event to the owner's personal room.
func (g *Gateway) Publish(ctx context.Context, event events.Event) error {
	return g.emit(ctx, UserRoom(event.OwnerID), "", EventPet, event)
}

// Emit sends an event to every member of room.
func (g *Gateway) Emit(ctx context.Context, room, event string, data any) error {
	return g.emit(ctx, room, "", event, data)
}

func (g *Gateway) emit(ctx context.Context, room, except, event string, data any) error {
	payload, err := encode(event, data)
	if err != nil {
		return err
	}

	if err := g.broker.Publish(ctx, Envelope{Room: room, Except: except, Payload: payload}); err != nil {
		return err
	}

	g.stats.Update(func(s *Stats) {
		s.EventsRelayed++
		s.LastEventAt = g.now().UTC()
	})
	return nil
}

func (g *Gateway) disconnect(c *Client) {
	rooms := g.hub.remove(c)
	if rooms == nil {
		return
	}

	g.stats.Update(func(s *Stats) { s.ConnectionsActive-- })
	c.log.Debug("Socket disconnected", zap.Int("rooms", len(rooms)))

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	for _, room := range rooms {
		convID, ok := conversationOf(room)
		if !ok {
			continue
		}
		g.announce(ctx, c, convID, false)
	}
}

func (g *Gateway) Stats() Stats {
	return g.stats.Snapshot()
}

// RoomSize returns the number of local members of room.
func (g *Gateway) RoomSize(room string) int {
	return g.hub.roomSize(room)
}

// Close drops every connection and closes the broker.
func (g *Gateway) Close() error {
	for _, c := range g.hub.snapshot() {
		c.close()
	}
	return g.broker.Close()
}
