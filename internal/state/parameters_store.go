// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/odyn-fi/odyn/internal/finance"
	"github.com/odyn-fi/odyn/internal/types"
)

// SaveFinanceParameters persists the parameter set rotated in at a roll. One
// row per (series, epoch); re-saving the same epoch is a conflict.
func SaveFinanceParameters(seriesID string, params finance.Parameters) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO finance_parameters (
			series_id, epoch, strike, k_a, k_b, theta, sigma_zero,
			initial_up, initial_down
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING params_id;
	`

	var paramsID int64
	err := DB.QueryRow(
		query,
		seriesID, params.Maturity,
		params.CurrentStrike.String(), params.KA.String(), params.KB.String(),
		params.Theta.String(), params.SigmaZero.String(),
		params.InitialLiquidity.Up.String(), params.InitialLiquidity.Down.String(),
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert finance parameters: %w", err)
	}

	log.Info().
		Str("series", seriesID).
		Int64("epoch", params.Maturity).
		Int64("params_id", paramsID).
		Msg("Saved finance parameters")
	return paramsID, nil
}

// LoadLatestFinanceParameters loads the most recent parameter set for a
// series, or nil if the series has never rolled.
func LoadLatestFinanceParameters(seriesID string) (*finance.Parameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT epoch, strike, k_a, k_b, theta, sigma_zero, initial_up, initial_down
		FROM finance_parameters
		WHERE series_id = $1
		ORDER BY epoch DESC
		LIMIT 1;`

	var strike, kA, kB, theta, sigma, initialUp, initialDown string
	p := &finance.Parameters{}
	row := DB.QueryRow(query, seriesID)
	err := row.Scan(&p.Maturity, &strike, &kA, &kB, &theta, &sigma, &initialUp, &initialDown)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan finance parameters for series '%s': %w", seriesID, err)
	}

	fields := []struct {
		dst *sdkmath.LegacyDec
		src string
	}{
		{&p.CurrentStrike, strike}, {&p.KA, kA}, {&p.KB, kB},
		{&p.Theta, theta}, {&p.SigmaZero, sigma},
	}
	for _, f := range fields {
		dec, err := sdkmath.LegacyNewDecFromStr(f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse parameter decimal %q: %w", f.src, err)
		}
		*f.dst = dec
	}
	up, err := sdkmath.LegacyNewDecFromStr(initialUp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse initial_up %q: %w", initialUp, err)
	}
	down, err := sdkmath.LegacyNewDecFromStr(initialDown)
	if err != nil {
		return nil, fmt.Errorf("failed to parse initial_down %q: %w", initialDown, err)
	}
	p.InitialLiquidity = types.NewAmount(up, down)

	log.Info().Str("series", seriesID).Int64("epoch", p.Maturity).Msg("Loaded latest finance parameters")
	return p, nil
}
