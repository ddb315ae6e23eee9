package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/userhub/internal/auth"
	"github.com/geocoder89/userhub/internal/cache"
	"github.com/geocoder89/userhub/internal/config"
	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/http/handlers"
	"github.com/geocoder89/userhub/internal/http/middlewares"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for a user payload

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("userhub"))

	// metrics registry scoped to this router so tests can build many routers
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories and the auth stack
	usersRepo := postgres.NewUsersRepo(pool).WithMetrics(prom)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	listCache := cache.New[[]user.User](30 * time.Second)

	usersHandler := handlers.NewUsersHandlerWithCache(usersRepo, listCache)
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager)

	r.GET("/", func(ctx *gin.Context) {
		ctx.String(200, "Welcome to the userhub API")
	})

	r.POST("/login", authHandler.Login)

	// reads are open, mutations need a verified admin token
	r.GET("/all", usersHandler.ListUsers)
	r.GET("/byId/:id", usersHandler.GetUserById)

	requireAdmin := authMiddleware.RequireRole(user.RoleAdmin)

	r.POST("/create", authMiddleware.RequireAuth(), requireAdmin, usersHandler.CreateUser)
	r.PUT("/update/:id", authMiddleware.RequireAuth(), requireAdmin, usersHandler.UpdateUser)
	r.DELETE("/delete/:id", authMiddleware.RequireAuth(), requireAdmin, usersHandler.DeleteUser)

	return r
}
