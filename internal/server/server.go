// Package server はechoの組み立てと起動/停止。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shoecatalog/internal/config"
	"shoecatalog/internal/middleware"
	"shoecatalog/internal/validator"
	"shoecatalog/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type Server struct {
	echo *echo.Echo
	cfg  config.ServerConfig
	log  *logger.Logger
}

// New は共通middlewareを積んだechoを作る。ルートはRegisterRoutesで登録する。
func New(cfg config.ServerConfig, log *logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestContext())
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, "If-Match", "If-None-Match"},
		ExposeHeaders: []string{"ETag", echo.HeaderLocation},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	if cfg.RateLimit > 0 {
		e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{echo: e, cfg: cfg, log: log}
}

// Echo はルート登録とテスト用
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start はctxがキャンセルされるまでリクエストを受け付ける。
// キャンセル後はShutdownTimeoutまで処理中のリクエストを待つ。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server started", "addr", srv.Addr)
		if err := s.echo.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
