package server

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/planar-app/planar/internal/api/v1"
	"github.com/planar-app/planar/internal/api/ws"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/store/postgres"
	redisstore "github.com/planar-app/planar/internal/store/redis"
)

func registerAPIRoutes(
	api huma.API,
	store *postgres.Store,
	settings *redisstore.Client,
	mutator schedule.Mutator,
	planner v1.PlannerService,
	syncer v1.SyncService,
	loc *time.Location,
) {
	v1.RegisterTaskRoutes(api, store)
	v1.RegisterBoardRoutes(api, store, loc)
	v1.RegisterDropRoutes(api, store, mutator, loc)
	v1.RegisterPlannerRoutes(api, planner)
	v1.RegisterSyncRoutes(api, syncer)
	v1.RegisterIntegrationRoutes(api, store)
	v1.RegisterSettingsRoutes(api, settings)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board/{workspaceID}", hub.ServeBoard)
}
