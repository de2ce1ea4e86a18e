package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// serve runs the HTTP server, and the chat relay when configured, until ctx is
// cancelled, then drains in-flight requests.
func (app *application) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         app.Config.GetServerAddr(),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Sugar().Infof("starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if app.Relay != nil {
		g.Go(func() error { return app.Relay.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		app.Logger.Sugar().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
