// Package ws streams board invalidation events to connected clients.
package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/server/middleware"
	redisstore "github.com/planar-app/planar/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	events *redisstore.Client
}

// NewHub creates a new WebSocket hub.
func NewHub(events *redisstore.Client) *Hub {
	return &Hub{events: events}
}

// ServeBoard streams the workspace's invalidation events. Every open view
// of the workspace subscribes here; on each event the client refetches
// the affected containers, which is how a drop in one view appears in
// all the others.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	authWorkspaceID, ok := middleware.WorkspaceIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing workspace", http.StatusBadRequest)
		return
	}

	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		http.Error(w, "invalid workspace id", http.StatusBadRequest)
		return
	}
	if workspaceID != authWorkspaceID {
		http.Error(w, "workspace mismatch", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.events.Subscribe(ctx, workspaceID)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
