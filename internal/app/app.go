package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mgoto/recipelog/internal/adapter/sqlite"
	accountrepo "github.com/mgoto/recipelog/internal/adapter/sqlite/account"
	dishrepo "github.com/mgoto/recipelog/internal/adapter/sqlite/dish"
	sessionrepo "github.com/mgoto/recipelog/internal/adapter/sqlite/session"
	logrepo "github.com/mgoto/recipelog/internal/adapter/sqlite/submissionlog"
	"github.com/mgoto/recipelog/internal/adapter/verify"
	jwtauth "github.com/mgoto/recipelog/internal/auth"
	"github.com/mgoto/recipelog/internal/config"
	"github.com/mgoto/recipelog/internal/migrate"
	"github.com/mgoto/recipelog/internal/migrate/migrations"
	authsvc "github.com/mgoto/recipelog/internal/service/auth"
	"github.com/mgoto/recipelog/internal/service/catalog"
	"github.com/mgoto/recipelog/internal/service/submission"
	"github.com/mgoto/recipelog/internal/storage"
	"github.com/mgoto/recipelog/internal/transport/middleware"
	"github.com/mgoto/recipelog/internal/transport/rest"
)

// sessionSweepInterval is how often expired sessions are purged.
const sessionSweepInterval = time.Hour

// Run is the application entry point. It loads configuration, applies
// pending migrations, wires services and serves the API until ctx is
// cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	db, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Migrations are fatal: the process must not serve a partially
	// migrated schema.
	runner := migrate.New(db, migrations.FS, logger)
	if err := runner.Apply(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	records, err := runner.Applied(ctx)
	if err != nil {
		return fmt.Errorf("read migration ledger: %w", err)
	}
	schema := migrate.SchemaFromRecords(records)

	paths := storage.NewResolver(cfg.Media.Root)
	dishes := dishrepo.New(db, schema, paths)
	accounts := accountrepo.New(db)
	sessions := sessionrepo.New(db)
	auditLog := logrepo.New(db)

	tokens := jwtauth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	authService := authsvc.New(cfg.Auth, accounts, sessions, tokens, logger)
	catalogService := catalog.New(dishes, logger)

	var verifier *verify.Client
	if cfg.Verify.Enforced() {
		verifier = verify.NewClient(cfg.Verify)
	} else {
		logger.Warn("bot verification secret not set, admission runs unverified")
	}
	submitService := submission.New(cfg.Verify, cfg.Submit, dishes, sessions, auditLog, verifier, logger)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(rest.Handlers{
		Auth:   rest.NewAuthHandler(authService, logger),
		Dish:   rest.NewDishHandler(catalogService, submitService, logger),
		Health: rest.NewHealthHandler(db, BuildVersion()),
	},
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		limiter.Limit(cfg.Server.RateLimitPerMinute),
		middleware.Auth(authService),
	)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go sweepSessions(ctx, sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type sessionSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

func sweepSessions(ctx context.Context, sessions sessionSweeper, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx, time.Now())
			if err != nil {
				logger.Warn("session sweep failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", slog.Int64("count", n))
			}
		}
	}
}
