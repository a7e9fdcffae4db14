package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reservation-engine/internal/handler/api"
	"reservation-engine/internal/handler/middleware"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, logger *slog.Logger, opsHandler *api.OpsHandler) {
	setupMiddleware(engine, logger)
	setupRoutes(engine, opsHandler)
}

func setupMiddleware(engine *gin.Engine, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewLogger(logger).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, opsHandler *api.OpsHandler) {
	addRoutes(&engine.RouterGroup, []route{
		{Method: http.MethodGet, Path: "/healthz", Handler: opsHandler.Healthz},
		{Method: http.MethodGet, Path: "/readyz", Handler: opsHandler.Readyz},
		{Method: http.MethodGet, Path: "/metrics", Handler: gin.WrapH(promhttp.Handler())},
	})

	ops := engine.Group("/ops")
	{
		addRoutes(ops, []route{
			{Method: http.MethodPost, Path: "/sweep", Handler: opsHandler.Sweep},
			{Method: http.MethodPost, Path: "/outbox/relay", Handler: opsHandler.RelayOutbox},
			{Method: http.MethodGet, Path: "/resources/:id/availability", Handler: opsHandler.Availability},
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}
