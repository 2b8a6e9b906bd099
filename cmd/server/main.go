// Package main initializes and starts the news API server, setting up
// configuration, logging, the Redis connection, repositories, services,
// handlers and routing.
package main

import (
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/akarpov/newsline/internal/config"
	"github.com/akarpov/newsline/internal/db"
	"github.com/akarpov/newsline/internal/logger"
	"github.com/akarpov/newsline/internal/password"
	"github.com/akarpov/newsline/internal/repository"
	"github.com/akarpov/newsline/internal/server/handler/http"
	"github.com/akarpov/newsline/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.PasswordSalt == "" {
		zapLogger.Warn("password salt is empty; set one before serving real accounts")
	}

	// The url dedup window is a duration string; empty means forever.
	var dedupWindow time.Duration
	if options.DedupWindow != "" {
		var err error
		dedupWindow, err = time.ParseDuration(options.DedupWindow)
		if err != nil {
			zapLogger.Fatal("invalid dedup window", zap.String("value", options.DedupWindow), zap.Error(err))
		}
	}

	// Connect to Redis; all records and indexes live there.
	rdb, err := db.InitRedis(options.RedisAddr)
	if err != nil {
		zapLogger.Fatal("cannot init redis", zap.Error(err))
	}

	// Initialize repositories for users and news.
	userRepo := repository.NewRedisUserRepository(rdb)
	newsRepo := repository.NewRedisNewsRepository(rdb)

	// Initialize business-logic services.
	hasher := password.NewHasher(options.PasswordSalt)
	identity := service.NewIdentity(userRepo, hasher)
	content := service.NewContent(newsRepo, options.SnippetLen, dedupWindow)
	sessions := service.NewSession(userRepo)

	// Create HTTP handlers for auth and news endpoints.
	authHandler := &http.AuthHandler{Identity: identity}
	newsHandler := &http.NewsHandler{Content: content}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, newsHandler, sessions, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}

// orDefault mirrors cmp.Or for strings; cmp.Or needs Go 1.22 and the
// build toolchain is 1.21.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
