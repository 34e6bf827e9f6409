// Command gameserverd is the long-running frame server: it accepts game
// client connections, decodes wire frames, services the auth handshake,
// and keeps its own OAuth credentials fresh in the background.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hytalecompat/gameserver/internal/authmanager"
	"github.com/hytalecompat/gameserver/internal/config"
	"github.com/hytalecompat/gameserver/internal/credstore"
	"github.com/hytalecompat/gameserver/internal/frame"
	"github.com/hytalecompat/gameserver/internal/hostio"
	"github.com/hytalecompat/gameserver/internal/machineid"
	"github.com/hytalecompat/gameserver/internal/metrics"
	"github.com/hytalecompat/gameserver/internal/oauth"
	"github.com/hytalecompat/gameserver/internal/server"
	"github.com/hytalecompat/gameserver/internal/session"
	"github.com/hytalecompat/gameserver/internal/version"
)

// shutdownTimeout bounds how long graceful shutdown waits for the metrics
// server to drain active requests.
const shutdownTimeout = 10 * time.Second

// refreshInterval is how often the background loop asks the auth manager
// to check whether its access token needs renewing.
const refreshInterval = 60 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to configuration file (YAML)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	logger := newLogger(cfg.Log)
	logger.Info("gameserverd starting",
		slog.String("version", version.Version),
		slog.String("server_addr", cfg.Server.Addr),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	mgr, err := buildAuthManager(cfg, collector, logger)
	if err != nil {
		logger.Error("failed to build auth manager", slog.String("error", err.Error()))
		return 1
	}

	if err := runServers(cfg, mgr, reg, logger); err != nil {
		logger.Error("gameserverd exited with error", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("gameserverd stopped")
	return 0
}

// buildAuthManager wires the auth stack together: an OAuth device-flow client, a
// session-service client, a machine-identity-keyed credential store, and
// the authmanager.Manager that orchestrates them. It then attempts to
// restore a previously persisted session so a restart doesn't force a
// fresh device-flow login when one isn't needed.
func buildAuthManager(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) (*authmanager.Manager, error) {
	httpClient := hostio.DefaultHTTPClient{}
	clock := hostio.SystemClock{}
	random := hostio.CryptoRandom{}
	fs := hostio.OSFilesystem{}

	store, err := buildCredentialStore(cfg, fs, random, logger)
	if err != nil {
		return nil, err
	}

	oauthClient := oauth.NewClient(httpClient, clock, cfg.Auth.ClientID, cfg.Auth.Scope, cfg.Auth.DeviceURL, cfg.Auth.TokenURL)
	sessionClient := session.NewClient(httpClient, cfg.Auth.AccountDataBase, cfg.Auth.SessionsBase)

	mgr := authmanager.New(oauthClient, sessionClient, store, clock, cfg.Server.CertFingerprint, cfg.Server.Audience, logger)
	mgr.SetMetrics(collector)

	switch {
	case cfg.Server.SessionToken != "":
		logger.Info("using externally supplied session token")
		mgr.UseExternalSession(cfg.Server.SessionToken, cfg.Server.IdentityToken)
	default:
		if err := mgr.InitializeFromStore(); err != nil {
			logger.Warn("no usable stored credentials, server-join will fail until one is authenticated via hytale-login", slog.String("error", err.Error()))
		}
	}

	return mgr, nil
}

// buildCredentialStore resolves the host's machine identity and returns
// an encrypted, persistent store keyed to it. If machine-identity
// resolution fails, it falls back to an in-memory store so the daemon
// still starts — credentials simply won't survive a restart.
func buildCredentialStore(cfg *config.Config, fs hostio.Filesystem, random hostio.Random, logger *slog.Logger) (credstore.Store, error) {
	resolver := machineid.NewResolver(fs, random, "")
	machineUUID, err := resolver.Resolve()
	if err != nil {
		logger.Warn("machine identity resolution failed, falling back to an in-memory credential store", slog.String("error", err.Error()))
		return credstore.NewMemoryStore(), nil
	}
	return credstore.NewEncryptedStore(fs, random, cfg.Auth.CredentialStorePath, machineUUID), nil
}

// runServers supervises the frame listener, the metrics HTTP server, and
// the auth manager's periodic refresh loop under one cancelable errgroup,
// shutting all three down together on SIGINT/SIGTERM.
func runServers(cfg *config.Config, mgr *authmanager.Manager, reg *prometheus.Registry, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	codec := frame.NewCodec(frame.NewZstdCompressor())
	handler := server.NewAuthHandler(mgr, logger)
	frameServer := server.New(cfg.Server.Addr, codec, handler, logger)
	metricsSrv := newMetricsServer(cfg.Metrics, reg)

	g.Go(func() error {
		return frameServer.Serve(gCtx)
	})

	g.Go(func() error {
		logger.Info("metrics server listening", slog.String("addr", cfg.Metrics.Addr), slog.String("path", cfg.Metrics.Path))
		return listenAndServe(gCtx, metricsSrv, cfg.Metrics.Addr)
	})

	g.Go(func() error {
		return runRefreshLoop(gCtx, mgr, logger)
	})

	g.Go(func() error {
		<-gCtx.Done()
		return gracefulShutdown(gCtx, frameServer, metricsSrv, logger)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run servers: %w", err)
	}
	return nil
}

// runRefreshLoop periodically asks the auth manager to renew its access
// token ahead of expiry; a no-op whenever the manager isn't in an OAuth
// mode or isn't yet authenticated.
func runRefreshLoop(ctx context.Context, mgr *authmanager.Manager, logger *slog.Logger) error {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := mgr.CheckAndRefresh(); err != nil {
				logger.Warn("auth refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}

// gracefulShutdown stops accepting new frame connections and shuts the
// metrics HTTP server down within shutdownTimeout.
func gracefulShutdown(ctx context.Context, frameServer *server.Server, metricsSrv *http.Server, logger *slog.Logger) error {
	logger.Info("initiating graceful shutdown")

	var shutdownErr error
	if err := frameServer.Close(); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("close frame server: %w", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("shutdown metrics server: %w", err))
	}
	return shutdownErr
}

// listenAndServe binds addr and serves srv until ctx is canceled, treating
// the resulting http.ErrServerClosed as a clean shutdown.
func listenAndServe(ctx context.Context, srv *http.Server, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve on %s: %w", addr, err)
	}
	return nil
}

// newMetricsServer builds the Prometheus metrics HTTP server.
func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// loadConfig loads configuration from path, or returns built-in defaults
// when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}
	return cfg, nil
}

// newLogger builds a structured logger per cfg.Format/cfg.Level.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Level)}
	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
