package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"socialbook/docs"
	"socialbook/internal/auth"
	"socialbook/internal/cache"
	"socialbook/internal/config"
	"socialbook/internal/db"
	"socialbook/internal/handler"
	"socialbook/internal/repository"
	"socialbook/internal/router"
	"socialbook/internal/service"
	"socialbook/internal/validation"
	"socialbook/internal/view"
)

// @title Socialbook API
// @version 1.0
// @description Read users and posts, and publish new posts.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
func main() {
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, db.Options{LogSQL: cfg.DBLogSQL})
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: Failed to drop tables: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var cacheClient *cache.Client
	if cfg.RedisAddr != "" {
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "socialbook:")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(ctx); err != nil {
			log.Printf("Warning: redis at %s unreachable, logged-out sessions stay valid until expiry: %v", cfg.RedisAddr, err)
		}
		cancel()
		defer cacheClient.Close()
	} else {
		log.Println("REDIS_ADDR not set, session revocation disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	followRepo := repository.NewFollowRepository(gormDB)

	// Initialize auth components
	sessions := auth.NewSessionService(cfg.SessionSecret, cfg.SessionTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	v := validation.New()

	// Initialize services
	authService := service.NewAuthService(userRepo, sessions, tokenStore, v)
	userService := service.NewUserService(userRepo, postRepo, followRepo)
	postService := service.NewPostService(postRepo, v, cfg.TimelineSize)

	renderer, err := view.New()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	e := echo.New()
	e.Renderer = renderer

	cookies := handler.CookieConfig{Secure: cfg.CookieSecure}
	router.Register(e, authService, router.Handlers{
		Auth:  handler.NewAuthHandler(authService, cookies),
		Home:  handler.NewHomeHandler(userService, postService, cookies),
		Users: handler.NewUserHandler(userService),
		Posts: handler.NewPostHandler(postService),
	}, router.Options{CookieSecure: cfg.CookieSecure})

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	log.Printf("Swagger documentation available at: http://%s/swagger/index.html", docs.SwaggerInfo.Host)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
