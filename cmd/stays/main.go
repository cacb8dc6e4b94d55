package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "stays/internal/adapter/http"
	"stays/internal/adapter/memory"
	"stays/internal/adapter/mongo"
	"stays/internal/adapter/postgres"
	"stays/internal/adapter/redis"
	"stays/internal/app"
	"stays/internal/config"
	"stays/internal/domain"
	"stays/internal/observability"
	"stays/internal/seed"

	_ "github.com/joho/godotenv/autoload"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("stays: %v", err)
	}
}

// stores is the set of repositories selected by configuration.
type stores struct {
	users        domain.UserRepository
	listings     domain.ListingRepository
	reservations domain.ReservationRepository
	sessions     domain.SessionRepository
	pings        []func(context.Context) error
	closers      []func(context.Context) error
}

// ping checks every backing service.
func (s *stores) ping(ctx context.Context) error {
	for _, p := range s.pings {
		if err := p(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *stores) close(ctx context.Context, logger *slog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			logger.Warn("close store", "error", err)
		}
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.IsProduction(), os.Stdout)
	slog.SetDefault(logger)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "stays",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}
	reporter := observability.NewErrorReporter(cfg.SentryDSN, cfg.Env, logger)
	defer reporter.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close(context.Background(), logger)
	logger.Info("store ready", "backend", cfg.StoreBackend, "sessions", cfg.SessionBackend)

	if cfg.SeedListings > 0 {
		n, err := seed.Listings(ctx, st.listings, seed.NewFactory(0), cfg.SeedListings)
		if err != nil {
			return fmt.Errorf("seed listings: %w", err)
		}
		logger.Info("seeded listings", "inserted", n)
	}

	authSvc := app.NewAuthService(st.users, st.sessions, app.NewBcryptHasher(bcrypt.DefaultCost), cfg.SessionTTL)
	srv := adapthttp.New(adapthttp.Services{
		Auth:    authSvc,
		Search:  app.NewSearchService(st.listings),
		Booking: app.NewBookingService(st.listings, st.reservations),
		Reviews: app.NewReviewService(st.listings, st.reservations),
	}, cfg.WebDir, logger).
		WithErrorReporter(reporter).
		WithSessionTTL(cfg.SessionTTL).
		WithHealthCheck(st.ping)

	if cfg.SSOEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			return err
		}
		srv.WithOIDC(oidcCfg)
		logger.Info("sso enabled", "issuer", cfg.OIDCIssuer)
	}

	go purgeSessions(ctx, authSvc, logger, time.Hour)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", "error", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	st := &stores{}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		st.pings = append(st.pings, db.Ping)
		st.closers = append(st.closers, func(context.Context) error { return db.Close() })
		st.users = db
		st.listings = postgres.NewListingRepo(db)
		st.reservations = postgres.NewReservationRepo(db)
		st.sessions = postgres.NewSessionRepo(db)
	case config.StoreMongo:
		store, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		st.pings = append(st.pings, store.Ping)
		st.closers = append(st.closers, store.Close)
		mdb := store.Database()
		st.users = mongo.NewUserRepo(mdb)
		st.listings = mongo.NewListingRepo(mdb)
		st.reservations = mongo.NewReservationRepo(mdb)
		st.sessions = mongo.NewSessionRepo(mdb)
	default:
		db := memory.New()
		st.users = db
		st.listings = db.NewListingRepo()
		st.reservations = db.NewReservationRepo()
		st.sessions = db.NewSessionRepo()
	}

	if cfg.SessionBackend == config.SessionRedis {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			st.close(ctx, slog.Default())
			return nil, fmt.Errorf("redis: %w", err)
		}
		st.pings = append(st.pings, func(ctx context.Context) error { return client.Ping(ctx).Err() })
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.sessions = redis.NewSessionRepo(client)
	}
	return st, nil
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, auth *app.AuthService, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.WarnContext(ctx, "purge expired sessions", "error", err)
			}
		}
	}
}
