package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/srgjo27/livestock_booking/internal/adapter/repository/postgres"
	"github.com/srgjo27/livestock_booking/internal/core/services"
	"github.com/srgjo27/livestock_booking/internal/platform/auth"
	"github.com/srgjo27/livestock_booking/internal/platform/config"
	"github.com/srgjo27/livestock_booking/internal/platform/database"
	"github.com/srgjo27/livestock_booking/internal/platform/logger"
)

func loadConfig() (config.App, zerolog.Logger, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return config.App{}, zerolog.Nop(), err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.App{}, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.LogLevel, cfg.LogPretty), nil
}

func openDB(ctx context.Context, cfg config.App, log zerolog.Logger) (*sqlx.DB, error) {
	return database.NewPostgresDB(ctx, cfg.Database(), log)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the bookings schema",
		Long: `Create the properties and bookings tables, their indexes and the
date-range exclusion constraint for the configured BOOKING_OVERLAP_MODE.

Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.InitializeSchema(cmd.Context(), db, cfg.Overlap()); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (overlap mode %s)\n", cfg.Overlap())
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var pendingTTL time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one pass of the booking sweeper",
		Long: `Complete confirmed bookings whose end date has passed and cancel
unpaid pending bookings idle for longer than the pending TTL, then exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("pending-ttl") {
				cfg.PendingBookingTTL = pendingTTL
			}

			db, err := openDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			sweeper := services.NewSweeper(postgres.NewBookingRepository(db), cfg.SweepInterval, cfg.PendingBookingTTL, log)
			sweeper.Sweep(cmd.Context())
			return nil
		},
	}

	cmd.Flags().DurationVar(&pendingTTL, "pending-ttl", 0, "override PENDING_BOOKING_TTL for this run (0 disables expiry)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret string
		sub    string
		role   string
		email  string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		Example: `  bookingctl token --sub 4b0c7f0e-5d7a-4a59-9d8e-3f1f2c1f8a11 --email farmer@example.com
  JWT_SECRET=dev bookingctl token --sub $(uuidgen) --ttl 15m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set JWT_SECRET")
			}
			if _, err := uuid.Parse(sub); err != nil {
				return fmt.Errorf("--sub must be a uuid: %w", err)
			}

			tok, err := auth.CreateAccessToken(secret, sub, role, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&sub, "sub", "", "requester id placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", "farmer", "role claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim, used as the payer email")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
