// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
// Notional columns are DECIMAL(60, 18) to hold the full 18-decimal fixed
// point range without truncation.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS finance_parameters (
			params_id SERIAL PRIMARY KEY,
			series_id VARCHAR(255) NOT NULL,
			epoch BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			strike DECIMAL(60, 18) NOT NULL,
			k_a DECIMAL(60, 18) NOT NULL,
			k_b DECIMAL(60, 18) NOT NULL,
			theta DECIMAL(60, 18) NOT NULL,
			sigma_zero DECIMAL(60, 18) NOT NULL,
			initial_up DECIMAL(60, 18) NOT NULL,
			initial_down DECIMAL(60, 18) NOT NULL,
			CONSTRAINT uq_finance_parameters_series_epoch UNIQUE (series_id, epoch)
		);
		CREATE INDEX IF NOT EXISTS idx_finance_parameters_series_epoch ON finance_parameters(series_id, epoch DESC);

		CREATE TABLE IF NOT EXISTS roll_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			roll_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			previous_epoch BIGINT NOT NULL,
			current_epoch BIGINT NOT NULL,

			-- Finalized accounting for the epoch that just ended
			price_per_share DECIMAL(60, 18) NOT NULL,
			outstanding_shares DECIMAL(60, 18) NOT NULL,
			portfolio_value DECIMAL(60, 18) NOT NULL,
			locked_initially DECIMAL(60, 18) NOT NULL,
			reserved_payoff DECIMAL(60, 18) NOT NULL,
			pending_withdrawals DECIMAL(60, 18) NOT NULL,

			-- Parameters rotated in for the new epoch
			strike DECIMAL(60, 18) NOT NULL,
			k_a DECIMAL(60, 18) NOT NULL,
			k_b DECIMAL(60, 18) NOT NULL,
			sigma_zero DECIMAL(60, 18) NOT NULL,
			vault_dead BOOLEAN NOT NULL DEFAULT FALSE,
			vault_paused BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_roll_snapshots_timestamp ON roll_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_roll_snapshots_roll ON roll_snapshots(roll_number DESC);

		CREATE TABLE IF NOT EXISTS trade_receipts (
			receipt_id SERIAL PRIMARY KEY,
			trade_id VARCHAR(64) NOT NULL UNIQUE,
			kind VARCHAR(10) NOT NULL,
			epoch BIGINT NOT NULL,
			owner VARCHAR(255) NOT NULL,
			strike DECIMAL(60, 18) NOT NULL,
			amount_up DECIMAL(60, 18) NOT NULL,
			amount_down DECIMAL(60, 18) NOT NULL,
			premium DECIMAL(60, 18) NOT NULL,
			fee DECIMAL(60, 18) NOT NULL,
			trade_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_trade_receipts_timestamp ON trade_receipts(trade_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_trade_receipts_epoch ON trade_receipts(epoch);
		CREATE INDEX IF NOT EXISTS idx_trade_receipts_owner ON trade_receipts(owner);

		-- Roll counter table for persistent roll tracking across restarts
		CREATE TABLE IF NOT EXISTS roll_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_roll INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO roll_counter (id, current_roll)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
