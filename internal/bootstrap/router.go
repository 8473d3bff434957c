package bootstrap

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/modelhub-io/go-modelapi-backend/internal/api"
	"github.com/modelhub-io/go-modelapi-backend/internal/crud"
	"github.com/modelhub-io/go-modelapi-backend/internal/health"
	"github.com/modelhub-io/go-modelapi-backend/internal/logentries"
	logrepo "github.com/modelhub-io/go-modelapi-backend/internal/logentries/repository"
	"github.com/modelhub-io/go-modelapi-backend/internal/middleware"
	"github.com/modelhub-io/go-modelapi-backend/internal/model"
	"github.com/modelhub-io/go-modelapi-backend/internal/projects"
	projrepo "github.com/modelhub-io/go-modelapi-backend/internal/projects/repository"
	"github.com/modelhub-io/go-modelapi-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	SQL         *sql.DB
	Redis       *redis.Client

	PageSize       int
	AdminKey       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// BuildRouter assembles the full HTTP surface: health probes, the read/write
// document API under /api/v1, and the form-backed CRUD endpoints under
// /admin/v1 guarded by an API key.
func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.Default())

	healthHandler := health.NewHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	userStore := users.NewStore(users.NewRepo(dep.DB))
	projectStore := projects.NewStore(projrepo.NewProjectRepository(dep.DB))
	logStore := logentries.NewStore(logrepo.NewLogEntryRepository(dep.SQL))

	a := api.New(dep.ServiceName, "/api/v1", dep.PageSize)
	if _, err := a.Register(userStore, api.ResourceOptions{AllowPost: true}); err != nil {
		return nil, fmt.Errorf("register users: %w", err)
	}
	if _, err := a.Register(projectStore, api.ResourceOptions{}); err != nil {
		return nil, fmt.Errorf("register projects: %w", err)
	}
	if _, err := a.Register(logStore, api.ResourceOptions{Name: "logentry", AllowPost: true}); err != nil {
		return nil, fmt.Errorf("register log entries: %w", err)
	}

	apiGroup := r.Group("")
	if dep.RateLimitRPS > 0 {
		apiGroup.Use(middleware.RedisRateLimit(dep.Redis, dep.RateLimitRPS, dep.RateLimitBurst, time.Second))
	}
	a.Mount(apiGroup)

	admin := r.Group("/admin/v1", middleware.APIKey(dep.AdminKey))
	tenantFrom := func(c *gin.Context) string { return c.GetHeader("X-Tenant") }
	allowAll := func(*gin.Context, model.Instance) bool { return true }

	userCRUD := crud.New(crud.Config{
		Store:    userStore,
		Resolver: a,
		PageSize: dep.PageSize,
	})
	userCRUD.Register(admin.Group("/users"))

	projectGroup := admin.Group("/projects")
	projectCRUD := crud.New(crud.Config{
		Store:      projectStore,
		Resolver:   a,
		PageSize:   dep.PageSize,
		TenantFrom: tenantFrom,
	})
	projectCRUD.Register(projectGroup)

	logCRUD := crud.New(crud.Config{
		Store:       logStore,
		Resolver:    a,
		PageSize:    dep.PageSize,
		TenantFrom:  tenantFrom,
		AllowDelete: allowAll,
	})
	logCRUD.Register(admin.Group("/logentries"))

	// Inline creation of log entries under their project.
	logCRUD.RegisterChild(projectGroup, projectStore, "project", "logentries")

	return r, nil
}
