package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pageza/recipewizard/backend/config"
	"github.com/pageza/recipewizard/backend/internal/api"
	"github.com/pageza/recipewizard/backend/internal/logger"
	"github.com/pageza/recipewizard/backend/internal/middleware"
	"github.com/pageza/recipewizard/backend/internal/telemetry"
)

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Auth         *api.AuthHandler
	Users        *api.UserHandler
	Recipes      *api.RecipeHandler
	Jobs         *api.JobHandler
	ShoppingList *api.ShoppingListHandler
	Health       *api.HealthHandler
}

// SetupRouter configures the application routes
func SetupRouter(
	cfg *config.Config,
	log *logger.Logger,
	handlers Handlers,
	tokens middleware.TokenValidator,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.RequestLogger(log))
	if cfg.OTelEnabled {
		router.Use(otelgin.Middleware(telemetry.ServiceName))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))

	handlers.Health.RegisterRoutes(router)

	requireAuth := middleware.AuthMiddleware(tokens)
	principal := middleware.PrincipalResolver(tokens, cfg.DefaultUserID, cfg.AllowAnonymousShoppingList)
	limit := limiter.RateLimitMiddleware()

	v1 := router.Group("/api")
	handlers.Auth.RegisterRoutes(v1, requireAuth)
	handlers.Users.RegisterRoutes(v1, requireAuth)
	handlers.Recipes.RegisterRoutes(v1, requireAuth, limit)
	handlers.Jobs.RegisterRoutes(v1, requireAuth, limit)
	handlers.ShoppingList.RegisterRoutes(v1, principal)

	return router
}
