// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/odyn-fi/odyn/internal/types"
)

// SaveRollSnapshot saves the accounting finalized by one epoch roll.
func SaveRollSnapshot(snapshot types.RollSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO roll_snapshots (
			roll_number, snapshot_timestamp, previous_epoch, current_epoch,
			price_per_share, outstanding_shares, portfolio_value,
			locked_initially, reserved_payoff, pending_withdrawals,
			strike, k_a, k_b, sigma_zero, vault_dead, vault_paused
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err := DB.QueryRow(
		query,
		snapshot.RollNumber, snapshot.Timestamp, snapshot.PreviousEpoch, snapshot.CurrentEpoch,
		snapshot.PricePerShare.String(), snapshot.OutstandingShares.String(), snapshot.PortfolioValue.String(),
		snapshot.LockedInitially.String(), snapshot.ReservedPayoff.String(), snapshot.PendingWithdrawals.String(),
		snapshot.Strike.String(), snapshot.KA.String(), snapshot.KB.String(), snapshot.SigmaZero.String(),
		snapshot.VaultDead, snapshot.VaultPaused,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save roll snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("roll_number", snapshot.RollNumber).
		Str("price_per_share", snapshot.PricePerShare.String()).
		Msg("Roll snapshot saved to database")

	return snapshotID, nil
}

// LoadLatestRollSnapshot returns the most recent roll snapshot, or nil if no
// roll has been persisted yet.
func LoadLatestRollSnapshot() (*types.RollSnapshot, error) {
	snapshots, err := LoadRecentRollSnapshots(1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

// LoadRecentRollSnapshots returns up to limit snapshots, newest first.
func LoadRecentRollSnapshots(limit int) ([]types.RollSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT
			snapshot_id, roll_number, snapshot_timestamp, previous_epoch, current_epoch,
			price_per_share, outstanding_shares, portfolio_value,
			locked_initially, reserved_payoff, pending_withdrawals,
			strike, k_a, k_b, sigma_zero, vault_dead, vault_paused
		FROM roll_snapshots
		ORDER BY snapshot_timestamp DESC, snapshot_id DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query roll snapshots: %w", err)
	}
	defer rows.Close()

	var out []types.RollSnapshot
	for rows.Next() {
		s, err := scanRollSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roll snapshots: %w", err)
	}
	return out, nil
}

func scanRollSnapshot(rows *sql.Rows) (types.RollSnapshot, error) {
	var s types.RollSnapshot
	var pps, shares, portfolio, locked, reserved, withdrawals string
	var strike, kA, kB, sigma string

	err := rows.Scan(
		&s.SnapshotID, &s.RollNumber, &s.Timestamp, &s.PreviousEpoch, &s.CurrentEpoch,
		&pps, &shares, &portfolio,
		&locked, &reserved, &withdrawals,
		&strike, &kA, &kB, &sigma, &s.VaultDead, &s.VaultPaused,
	)
	if err != nil {
		return s, fmt.Errorf("failed to scan roll snapshot: %w", err)
	}

	fields := []struct {
		dst *sdkmath.LegacyDec
		src string
	}{
		{&s.PricePerShare, pps}, {&s.OutstandingShares, shares}, {&s.PortfolioValue, portfolio},
		{&s.LockedInitially, locked}, {&s.ReservedPayoff, reserved}, {&s.PendingWithdrawals, withdrawals},
		{&s.Strike, strike}, {&s.KA, kA}, {&s.KB, kB}, {&s.SigmaZero, sigma},
	}
	for _, f := range fields {
		dec, err := sdkmath.LegacyNewDecFromStr(f.src)
		if err != nil {
			return s, fmt.Errorf("failed to parse snapshot decimal %q: %w", f.src, err)
		}
		*f.dst = dec
	}
	return s, nil
}
