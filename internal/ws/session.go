package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/api/metrics"
	"github.com/schoolrun/bus-tracking/internal/core/domain"
	"github.com/schoolrun/bus-tracking/internal/core/geo"
	"github.com/schoolrun/bus-tracking/internal/core/ports"
)

// Application close codes sent before dropping an unauthenticated or
// unauthorized stream.
const (
	closeUnauthorized = 4401
	closeForbidden    = 4403
)

const closeWriteTimeout = time.Second

// fixMessage is the client→server wire format. Pointer coordinates
// distinguish "missing" from zero.
type fixMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	SpeedKmh  *float64 `json:"speed_kmh"`
}

type errorMessage struct {
	Error string `json:"error"`
}

// sessionConn serializes writes to one websocket connection. The session
// goroutine writes error messages directly while the hub may broadcast to the
// same connection from another run session; gorilla allows one concurrent
// writer only.
type sessionConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *sessionConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *sessionConn) Close() error {
	return c.ws.Close()
}

func (c *sessionConn) writeClose(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
}

// SessionHandler owns the GPS streaming endpoint: one goroutine per
// connection, reading fixes in arrival order and fanning results out through
// the hub.
type SessionHandler struct {
	hub       *Hub
	runs      ports.RunRepository
	tracker   ports.TrackerService
	jwtSecret string
	upgrader  websocket.Upgrader
	log       zerolog.Logger
}

func NewSessionHandler(hub *Hub, runs ports.RunRepository, tracker ports.TrackerService, jwtSecret string, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		hub:       hub,
		runs:      runs,
		tracker:   tracker,
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			// Dashboards are served from other origins; auth happens via JWT.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// GPSSocket handles GET /ws/gps/:id. The connection is registered with the
// hub as soon as it is physically open, before authorization, so the registry
// always mirrors open connections; cleanup runs exactly once on every exit
// path through the single deferred block.
func (h *SessionHandler) GPSSocket(c echo.Context) error {
	runID := c.Param("id")

	raw, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	conn := &sessionConn{ws: raw}

	h.hub.Join(runID, conn)
	defer func() {
		h.hub.Leave(runID, conn)
		_ = conn.Close()
	}()

	ctx := c.Request().Context()

	driverID, ok := h.callerIdentity(c.Request())
	if !ok {
		conn.writeClose(closeUnauthorized, "unauthorized")
		return nil
	}

	run, err := h.runs.FindByID(ctx, runID)
	if err != nil || run.DriverID != driverID {
		_ = conn.WriteJSON(errorMessage{Error: "Not authorized for this run"})
		conn.writeClose(closeForbidden, "forbidden")
		return nil
	}

	h.log.Info().Str("run_id", runID).Str("driver_id", driverID).Msg("tracking session started")
	h.readLoop(ctx, conn, runID, driverID)
	h.log.Info().Str("run_id", runID).Str("driver_id", driverID).Msg("tracking session closed")
	return nil
}

// readLoop processes fixes strictly in arrival order until the transport
// reports a close or error. Validation and state errors are reported to the
// sender and skipped; they never terminate the session.
func (h *SessionHandler) readLoop(ctx context.Context, conn *sessionConn, runID, driverID string) {
	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			return
		}

		var msg fixMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			metrics.FixesProcessedTotal.WithLabelValues("invalid").Inc()
			_ = conn.WriteJSON(errorMessage{Error: "Invalid payload"})
			continue
		}

		if msg.Latitude == nil || msg.Longitude == nil || !geo.ValidateCoordinates(*msg.Latitude, *msg.Longitude) {
			metrics.FixesProcessedTotal.WithLabelValues("invalid").Inc()
			_ = conn.WriteJSON(errorMessage{Error: "Invalid GPS coordinates"})
			continue
		}

		start := time.Now()
		update, err := h.tracker.ProcessFix(ctx, runID, driverID, ports.FixInput{
			Latitude:  *msg.Latitude,
			Longitude: *msg.Longitude,
			SpeedKmh:  msg.SpeedKmh,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRunNotFound):
				metrics.FixesProcessedTotal.WithLabelValues("rejected").Inc()
				_ = conn.WriteJSON(errorMessage{Error: "Run not found"})
			case errors.Is(err, domain.ErrRunNotActive):
				metrics.FixesProcessedTotal.WithLabelValues("rejected").Inc()
				_ = conn.WriteJSON(errorMessage{Error: "Run is not active"})
			default:
				// Persistence failure: fatal for this fix only. The run row
				// keeps its last committed value and nothing is broadcast.
				metrics.FixErrorsTotal.WithLabelValues("persist_failed").Inc()
				h.log.Error().Err(err).Str("run_id", runID).Msg("fix processing failed")
				_ = conn.WriteJSON(errorMessage{Error: "Failed to record position"})
			}
			continue
		}

		metrics.FixesProcessedTotal.WithLabelValues("accepted").Inc()
		metrics.FixProcessingDuration.Observe(time.Since(start).Seconds())
		h.hub.Broadcast(runID, update)
	}
}

// callerIdentity resolves the driver id from the handshake JWT. Browsers
// cannot set headers on WebSocket dials, so a `token` query parameter is
// accepted alongside the Authorization header.
func (h *SessionHandler) callerIdentity(r *http.Request) (string, bool) {
	tokenStr := ""
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", false
	}

	driverID, _ := claims["driver_id"].(string)
	if driverID == "" {
		return "", false
	}
	return driverID, true
}
