package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/taskpilot/internal/config"
	v1 "github.com/balkashynov/taskpilot/internal/delivery/http/v1"
)

// Router builds the gin engine serving the v1 API, /metrics and /healthz
func (a *App) Router() *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handler := v1.New(a.Logger.With().Str("component", "http").Logger(), a.Store, a.Sessions)
	v1.RegisterRoutes(router, handler, a.Metrics.Handler())
	return router
}

// ListenAndServeHTTP serves until ctx is cancelled, then shuts the server
// down within the configured timeout
func (a *App) ListenAndServeHTTP(ctx context.Context) error {
	httpCfg := a.Config.HTTP

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info().
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")
	return nil
}
