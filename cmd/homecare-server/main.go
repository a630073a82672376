package main

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/homecare/homecare/internal/config"
	"github.com/homecare/homecare/internal/domain/availability"
	"github.com/homecare/homecare/internal/domain/booking"
	"github.com/homecare/homecare/internal/domain/identity"
	"github.com/homecare/homecare/internal/platform/auth"
	"github.com/homecare/homecare/internal/platform/db"
	"github.com/homecare/homecare/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "homecare-server",
		Short: "Homecare appointment scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(workerCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				state := "pending"
				appliedAt := "-"
				if s.Applied {
					state = "applied"
					appliedAt = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, state, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage care worker accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a care worker account and profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			position, _ := cmd.Flags().GetString("position")
			phone, _ := cmd.Flags().GetString("phone")

			generated := password == ""
			if generated {
				var err error
				password, err = generatePassword()
				if err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := identityService(cfg, pool)
			in := &identity.CreateWorkerInput{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
				Position:  position,
			}
			if phone != "" {
				in.Phone = &phone
			}
			worker, err := svc.CreateWorker(ctx, in)
			if err != nil {
				return err
			}

			fmt.Printf("Created worker %s (%s)\n", worker.FullName(), worker.ID)
			if generated {
				fmt.Printf("Generated password: %s\n", password)
			}
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Login email (required)")
	createCmd.Flags().String("password", "", "Initial password; generated when omitted")
	createCmd.Flags().String("first-name", "", "First name (required)")
	createCmd.Flags().String("last-name", "", "Last name (required)")
	createCmd.Flags().String("position", "", "Job position (required)")
	createCmd.Flags().String("phone", "", "Contact phone")
	createCmd.MarkFlagRequired("email")
	createCmd.MarkFlagRequired("first-name")
	createCmd.MarkFlagRequired("last-name")
	createCmd.MarkFlagRequired("position")
	cmd.AddCommand(createCmd)

	return cmd
}

// generatePassword produces a random initial password for provisioned worker
// accounts.
func generatePassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := cryptorand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func tokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(
		[]byte(cfg.JWTSigningKey),
		cfg.AuthIssuer,
		cfg.AuthAudience,
		time.Duration(cfg.TokenTTLHours)*time.Hour,
	)
}

func identityService(cfg *config.Config, pool *pgxpool.Pool) *identity.Service {
	return identity.NewService(
		identity.NewAccountRepoPG(pool),
		identity.NewPatientRepoPG(pool),
		identity.NewWorkerRepoPG(pool),
		pool,
		tokenIssuer(cfg),
	)
}

// authMiddleware picks token validation for the environment: a permissive
// identity in development when no key is configured, JWT validation otherwise.
func authMiddleware(cfg *config.Config, logger zerolog.Logger) echo.MiddlewareFunc {
	if cfg.IsDev() && cfg.JWTSigningKey == "" && cfg.AuthJWKSURL == "" {
		logger.Warn().Msg("no signing key configured; using development auth")
		return auth.DevAuthMiddleware()
	}
	return auth.JWTMiddleware(auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		JWKSURL:    cfg.AuthJWKSURL,
		SigningKey: []byte(cfg.JWTSigningKey),
	})
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	idSvc := identityService(cfg, pool)
	idHandler := identity.NewHandler(idSvc)

	availSvc := availability.NewService(availability.NewRepoPG(pool))
	availHandler := availability.NewHandler(availSvc)

	bookSvc := booking.NewService(booking.NewRepoPG(pool), pool)
	bookHandler := booking.NewHandler(bookSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	public := e.Group("/api/v1")
	idHandler.RegisterPublicRoutes(public)

	api := e.Group("/api/v1",
		authMiddleware(cfg, logger),
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			BurstSize:         cfg.RateLimitBurst,
		}),
		middleware.AccessLog(logger),
	)
	idHandler.RegisterRoutes(api)
	availHandler.RegisterRoutes(api)
	bookHandler.RegisterRoutes(api)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
