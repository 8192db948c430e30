package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/middleware"
	"github.com/vancomm/minesweeper-engine/internal/repository"
)

type App struct {
	logger *slog.Logger
	cfg    *config.App
	router *http.ServeMux
	repo   *repository.Queries
	jwt    *config.JWT
	ws     *config.WebSocket
}

func New(logger *slog.Logger, cfg *config.App) (*App, error) {
	j, err := config.NewJWT(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to set up session tokens: %w", err)
	}
	return NewWithJWT(logger, cfg, j)
}

func NewWithJWT(logger *slog.Logger, cfg *config.App, j *config.JWT) (*App, error) {
	ws, err := config.NewWebSocket(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		logger: logger,
		cfg:    cfg,
		router: http.NewServeMux(),
		repo:   repository.New(),
		jwt:    j,
		ws:     ws,
	}
	app.loadRoutes()

	return app, nil
}

func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if a.cfg.BasePath != "" {
		h = http.StripPrefix(a.cfg.BasePath, h)
	}
	return middleware.Wrap(h,
		middleware.Logging(a.logger),
		middleware.Cors(a.cfg.AllowsOrigin),
		middleware.Auth(a.logger, a.jwt),
	)
}

// sweep evicts idle sessions until ctx is done.
func (a *App) sweep(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := a.repo.DeleteIdleGameSessions(ctx, a.cfg.SessionTTL)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if n > 0 {
				a.logger.Info("evicted idle game sessions", slog.Int("count", n))
			}
		}
	}
}

func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.cfg.Port,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		return a.sweep(gCtx)
	})

	a.logger.Info("server listening",
		slog.String("addr", a.cfg.Port),
		slog.String("base path", a.cfg.BasePath),
	)

	return g.Wait()
}
