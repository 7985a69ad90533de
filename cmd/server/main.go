package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"conduit/internal/invoke"
	"conduit/internal/invoke/auth"
	invokemetrics "conduit/internal/invoke/metrics"
	"conduit/internal/invoke/tracer"
	"conduit/internal/platform/config"
	"conduit/internal/platform/logger"
	registrystore "conduit/internal/registry/store"
	"conduit/internal/secrets"
	"conduit/internal/secrets/crypto"
	secretmetrics "conduit/internal/secrets/metrics"
	"conduit/internal/seeder"
	"conduit/internal/servicetoken"
	tenantstore "conduit/internal/tenant/store"
	httptransport "conduit/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing conduit",
		"addr", cfg.Addr,
		"dev_mode", cfg.DevMode,
		"secret_cache_ttl", cfg.SecretCacheTTL.String(),
	)

	enc, err := crypto.New(cfg.MasterKey)
	if err != nil {
		log.Error("invalid master key", "error", err)
		os.Exit(1)
	}

	registrations := registrystore.NewInMemory()
	tenants := tenantstore.NewInMemory()
	vaultSeed := secrets.NewInMemoryStore()
	tenantSecrets := secrets.NewInMemoryTenantSecrets()

	var vault secrets.Store = vaultSeed
	if cfg.VaultAddr != "" {
		// Seeded vault_secrets stay resolvable as a fallback layer behind the
		// external vault.
		vault = secrets.NewLayeredStore(
			secrets.NewVaultClient(cfg.VaultAddr, cfg.VaultToken, 10*time.Second),
			vaultSeed,
		)
	}

	if cfg.SeedFile != "" {
		s := seeder.New(registrations, tenants, vaultSeed, tenantSecrets, enc, log)
		if err := s.Load(context.Background(), cfg.SeedFile); err != nil {
			log.Error("failed to load seed file", "error", err)
			os.Exit(1)
		}
	}

	resolver := secrets.NewResolver(vault,
		secrets.WithTenantSecrets(tenantSecrets, enc),
		secrets.WithTTL(cfg.SecretCacheTTL),
		secrets.WithMetrics(secretmetrics.New()),
	)

	invMetrics := invokemetrics.New()
	factory := auth.NewFactory(resolver, auth.NewTokenCache(),
		auth.WithMetrics(invMetrics),
	)
	client := invoke.NewClient(factory,
		invoke.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		invoke.WithLogger(log),
		invoke.WithMetrics(invMetrics),
		invoke.WithTracer(tracer.NewOTel()),
		invoke.WithMaxResponseBytes(cfg.MaxResponseBytes),
	)

	tokens := servicetoken.NewService(cfg.ServiceTokenKey, "conduit", time.Hour)
	handler := httptransport.NewHandler(registrations, tenants, client, log)
	router := httptransport.NewRouter(handler, tokens, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
