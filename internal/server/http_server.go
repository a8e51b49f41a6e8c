// Package server builds the HTTP server around the echo router.
package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	echoapi "github.com/mujeeb218353/youtube-backend/api/echo"
	"github.com/mujeeb218353/youtube-backend/config"
)

// NewHTTPServer creates and configures the echo HTTP server. authGate and
// optionalGate come from the middleware package; the api owns the routes.
func NewHTTPServer(cfg *config.ServerConfig, api *echoapi.API, authGate, optionalGate echo.MiddlewareFunc) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = echoapi.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("128M")) // multipart video uploads
	e.Use(requestLogger())

	api.RegisterRoutes(e, authGate, optionalGate)

	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  5 * time.Minute, // uploads are slow
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
