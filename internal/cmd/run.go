package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rmcgee/healthdash/internal/healthapi"
	"github.com/rmcgee/healthdash/internal/logging"
	"github.com/rmcgee/healthdash/internal/server"
	"github.com/rmcgee/healthdash/internal/store"
	"github.com/rmcgee/healthdash/internal/workers"
	"golang.org/x/sync/errgroup"
)

// RuntimeConfig holds all runtime configuration from CLI flags and env
type RuntimeConfig struct {
	APIBaseURL   string
	ListenAddr   string
	DBPath       string
	DefaultRange string
	SyncInterval time.Duration
	OpenBrowser  bool

	// Credentials, from the environment only
	Token    string
	Username string
	Password string
}

// Run is the main entry point for the server
func Run(cfg *RuntimeConfig) error {
	log := logging.Logger

	log.Info().
		Str("api_url", cfg.APIBaseURL).
		Str("listen", cfg.ListenAddr).
		Str("db_path", cfg.DBPath).
		Str("range", cfg.DefaultRange).
		Dur("sync_interval", cfg.SyncInterval).
		Msg("starting healthdash")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	log.Info().Str("path", cfg.DBPath).Msg("opening database")
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	client := healthapi.NewClient(cfg.APIBaseURL, "")
	if err := ensureAuthenticated(ctx, st, client, cfg); err != nil {
		return fmt.Errorf("authentication: %w", err)
	}

	srv := server.New(ctx, client, st, cfg.DefaultRange)
	srv.Start()

	g, gCtx := errgroup.WithContext(ctx)

	refresher := workers.NewSnapshotRefresher(st, cfg.SyncInterval, srv.ActiveRange, srv.RefreshTargets())
	g.Go(func() error {
		refresher.Run(gCtx)
		return nil
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	g.Go(func() error {
		log.Info().Str("address", cfg.ListenAddr).Msg("dashboard API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down HTTP server")
		return httpServer.Shutdown(context.Background())
	})

	if cfg.OpenBrowser {
		url := dashboardURL(cfg.ListenAddr)
		log.Info().Str("url", url).Msg("opening dashboard")
		if err := browser.OpenURL(url); err != nil {
			log.Warn().Err(err).Msg("failed to open browser")
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// ensureAuthenticated installs a bearer token on the client: an explicit
// token from the environment wins, then the stored token, then a credential
// login. Without any of these the server still starts - the dashboard shows
// per-collection errors and the login endpoint can authenticate later.
func ensureAuthenticated(ctx context.Context, st *store.Store, client *healthapi.Client, cfg *RuntimeConfig) error {
	log := logging.Logger

	if cfg.Token != "" {
		log.Info().Msg("using token from environment")
		client.SetToken(cfg.Token)
		return nil
	}

	stored, err := st.LoadToken(ctx)
	if err == nil {
		log.Info().Msg("using stored token")
		client.SetToken(stored)
		return nil
	}
	if !errors.Is(err, store.ErrNoToken) {
		return err
	}

	if cfg.Username != "" && cfg.Password != "" {
		log.Info().Str("username", cfg.Username).Msg("logging in with environment credentials")
		token, err := client.Login(ctx, cfg.Username, cfg.Password)
		if err != nil {
			return fmt.Errorf("logging in: %w", err)
		}
		if err := st.SaveToken(ctx, token.Token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		return nil
	}

	log.Warn().Msg("no token or credentials available, starting unauthenticated")
	return nil
}

func dashboardURL(listenAddr string) string {
	if strings.HasPrefix(listenAddr, ":") {
		return "http://localhost" + listenAddr
	}
	return "http://" + listenAddr
}
