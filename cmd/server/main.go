package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "github.com/mujeeb218353/youtube-backend/api/echo"
	"github.com/mujeeb218353/youtube-backend/cache"
	rediscache "github.com/mujeeb218353/youtube-backend/cache/redis"
	"github.com/mujeeb218353/youtube-backend/config"
	"github.com/mujeeb218353/youtube-backend/internal/auth"
	"github.com/mujeeb218353/youtube-backend/internal/media"
	"github.com/mujeeb218353/youtube-backend/internal/server"
	"github.com/mujeeb218353/youtube-backend/middleware"
	"github.com/mujeeb218353/youtube-backend/mongodb"
	"github.com/mujeeb218353/youtube-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	initLogger(cfg)
	log.Info().
		Str("http_port", cfg.HTTPPort).
		Str("mongo_db", cfg.MongoDBName).
		Str("log_level", cfg.LogLevel).
		Msg("Starting youtube-backend server")

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB")
	}
	db := mongodb.GetDB()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize user repository")
	}
	videoRepo, err := mongodb.NewVideoRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize video repository")
	}

	var userCache cache.UserCache
	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		userCache = rediscache.NewUserCache(rdb, "videotube")
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis auth cache")
	} else {
		userCache = cache.NewMemoryUserCache(cfg.AccessTokenTTL())
		log.Info().Msg("Using in-memory auth cache")
	}

	hasher := auth.NewBcryptPasswordHasher(0)
	uploader := media.NewHTTPUploader(cfg.MediaUploadURL, cfg.MediaAPIKey)
	tokens := services.NewTokenService(services.TokenConfig{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL(),
		RefreshTTL:    cfg.RefreshTokenTTL(),
		Issuer:        cfg.TokenIssuer,
	})

	sessionSvc := services.NewSessionService(userRepo, hasher, tokens, uploader)
	userSvc := services.NewUserService(userRepo, videoRepo, hasher, uploader)
	videoSvc := services.NewVideoService(videoRepo, userRepo, uploader)

	api := echoapi.NewAPI(sessionSvc, userSvc, videoSvc, cfg.CookieSecure)
	authGate := middleware.Auth(tokens, userRepo, userCache)
	optionalGate := middleware.OptionalAuth(tokens, userRepo, userCache)

	httpServer := server.NewHTTPServer(cfg, api, authGate, optionalGate)

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	mongodb.CloseMongoDB(shutdownCtx)
	log.Info().Msg("Server stopped")
}

func initLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}
