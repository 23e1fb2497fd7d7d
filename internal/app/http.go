package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Coddedx/MoviePx-API/internal/auth/exchange"
	"github.com/Coddedx/MoviePx-API/internal/auth/federation"
	authhandler "github.com/Coddedx/MoviePx-API/internal/auth/handler"
	"github.com/Coddedx/MoviePx-API/internal/auth/negotiator"
	"github.com/Coddedx/MoviePx-API/internal/auth/password"
	"github.com/Coddedx/MoviePx-API/internal/auth/provider"
	"github.com/Coddedx/MoviePx-API/internal/auth/provider/google"
	"github.com/Coddedx/MoviePx-API/internal/auth/signingkey"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
	"github.com/Coddedx/MoviePx-API/internal/cache"
	"github.com/Coddedx/MoviePx-API/internal/config"
	"github.com/Coddedx/MoviePx-API/internal/middleware"
	"github.com/Coddedx/MoviePx-API/internal/movies"
	"github.com/Coddedx/MoviePx-API/internal/users"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	key, err := signingkey.New(cfg.JWTSigningKey)
	if err != nil {
		return nil, nil, err
	}

	tokenService := token.NewService(key, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenLifetime())
	userStore := users.NewPostgresStore(infra.DB)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL(),
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(googleProvider)
	stateStore := exchange.NewRedisStore(infra.Redis.Client)

	federationService := federation.New(registry, stateStore, userStore, tokenService)

	policy := password.DefaultPolicy()
	if cfg.PasswordMinLength > 0 {
		policy.MinLength = cfg.PasswordMinLength
	}

	authHandler := authhandler.NewHandler(
		userStore,
		tokenService,
		federationService,
		policy,
		cfg.CallbackPath,
	)

	loginPath := "/oauth/login/" + googleProvider.Name()
	authMiddleware := middleware.NewAuthMiddleware(negotiator.New(tokenService), loginPath)

	metadataCache := cache.New(infra.Redis.Client, cfg.CacheTTL())
	movieService := movies.NewService(movies.NewOMDbClient(cfg.OMDbAPIKey, cfg.OMDbBaseURL), metadataCache)
	movieHandler := movies.NewHandler(
		movieService,
		movies.NewCommentRepository(infra.DB),
		movies.NewRatingRepository(infra.DB),
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(authMiddleware.RequireAuth())

	api.GET("/me", func(c *gin.Context) {
		claims, _ := middleware.ClaimsFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": claims.Subject(),
			"roles":   claims.Roles,
		})
	})

	movieHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
