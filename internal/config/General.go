package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// SeriesID identifies the option series this instance manages.
	SeriesID string

	// EpochFrequency is the settlement period length on the checkpoint grid.
	EpochFrequency time.Duration
	// EpochFirstSpan is the length of the bootstrap period before the first roll.
	EpochFirstSpan time.Duration

	// BaseTokenSymbol and BaseTokenDecimals describe the premium/payoff asset.
	BaseTokenSymbol   string
	BaseTokenDecimals int
	// SideTokenSymbol and SideTokenDecimals describe the hedge asset.
	SideTokenSymbol   string
	SideTokenDecimals int

	// RollerIdentity is the only identity allowed to advance the epoch.
	RollerIdentity string
	// PositionManagerIdentity is the only identity allowed unbalanced mints.
	PositionManagerIdentity string

	// SigmaMultiplier scales the liquidity range width (the m in kA/kB).
	SigmaMultiplier sdkmath.LegacyDec
	// BaselineVolatility seeds sigmaZero before the first utilization update.
	BaselineVolatility sdkmath.LegacyDec
	// HedgeSlippageMargin pads buy-side hedges when base liquidity is short.
	HedgeSlippageMargin sdkmath.LegacyDec
	// MaxVaultDeposit caps cumulative deposits per depositor; zero disables.
	MaxVaultDeposit sdkmath.LegacyDec

	// TradeBuyFeeRate is the proportional fee on mint premiums.
	TradeBuyFeeRate sdkmath.LegacyDec
	// TradeSellFeeRate is the proportional fee on pre-maturity burns.
	TradeSellFeeRate sdkmath.LegacyDec
	// MaturitySellFeeRate is the proportional fee on matured claims.
	MaturitySellFeeRate sdkmath.LegacyDec
	// VaultMinFee is the absolute base-token fee collected on every trade.
	VaultMinFee sdkmath.LegacyDec
	// FeeChangeDelay is how long a proposed fee change waits before activating.
	FeeChangeDelay time.Duration

	// ExchangeSpread is the sim venue's proportional spread around the oracle price.
	ExchangeSpread sdkmath.LegacyDec
	// InitialSpotPrice seeds the sim oracle's side/base price.
	InitialSpotPrice sdkmath.LegacyDec
	// RiskFreeRate is the annualized rate the sim oracle reports for the base token.
	RiskFreeRate sdkmath.LegacyDec
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	SeriesID, err = getEnv("ODYN_SERIES_ID")
	if err != nil {
		return err
	}

	EpochFrequency, err = getEnvAsDuration("EPOCH_FREQUENCY")
	if err != nil {
		return err
	}

	EpochFirstSpan, err = getEnvAsDuration("EPOCH_FIRST_SPAN")
	if err != nil {
		return err
	}

	BaseTokenSymbol, err = getEnv("BASE_TOKEN_SYMBOL")
	if err != nil {
		return err
	}

	BaseTokenDecimals, err = getEnvAsInt("BASE_TOKEN_DECIMALS")
	if err != nil {
		return err
	}

	SideTokenSymbol, err = getEnv("SIDE_TOKEN_SYMBOL")
	if err != nil {
		return err
	}

	SideTokenDecimals, err = getEnvAsInt("SIDE_TOKEN_DECIMALS")
	if err != nil {
		return err
	}

	RollerIdentity, err = getEnv("ROLLER_IDENTITY")
	if err != nil {
		return err
	}

	PositionManagerIdentity, err = getEnv("POSITION_MANAGER_IDENTITY")
	if err != nil {
		return err
	}

	SigmaMultiplier, err = getEnvAsDec("SIGMA_MULTIPLIER")
	if err != nil {
		return err
	}

	BaselineVolatility, err = getEnvAsDec("BASELINE_VOLATILITY")
	if err != nil {
		return err
	}

	HedgeSlippageMargin, err = getEnvAsDec("HEDGE_SLIPPAGE_MARGIN")
	if err != nil {
		return err
	}

	MaxVaultDeposit, err = getEnvAsDec("MAX_VAULT_DEPOSIT")
	if err != nil {
		return err
	}

	TradeBuyFeeRate, err = getEnvAsDec("TRADE_BUY_FEE_RATE")
	if err != nil {
		return err
	}

	TradeSellFeeRate, err = getEnvAsDec("TRADE_SELL_FEE_RATE")
	if err != nil {
		return err
	}

	MaturitySellFeeRate, err = getEnvAsDec("MATURITY_SELL_FEE_RATE")
	if err != nil {
		return err
	}

	VaultMinFee, err = getEnvAsDec("VAULT_MIN_FEE")
	if err != nil {
		return err
	}

	FeeChangeDelay, err = getEnvAsDuration("FEE_CHANGE_DELAY")
	if err != nil {
		return err
	}

	ExchangeSpread, err = getEnvAsDec("EXCHANGE_SPREAD")
	if err != nil {
		return err
	}

	InitialSpotPrice, err = getEnvAsDec("INITIAL_SPOT_PRICE")
	if err != nil {
		return err
	}

	RiskFreeRate, err = getEnvAsDec("RISK_FREE_RATE")
	if err != nil {
		return err
	}

	log.Debug().
		Str("SeriesID", SeriesID).
		Dur("EpochFrequency", EpochFrequency).
		Str("BaseToken", BaseTokenSymbol).
		Str("SideToken", SideTokenSymbol).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsDuration retrieves an environment variable as a time.Duration. Returns error if not set or invalid.
func getEnvAsDuration(key string) (time.Duration, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid duration, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsDec retrieves an environment variable as an 18-decimal fixed point value.
func getEnvAsDec(key string) (sdkmath.LegacyDec, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	value, err := sdkmath.LegacyNewDecFromStr(valueStr)
	if err != nil {
		return sdkmath.LegacyDec{}, errors.New("environment variable " + key + " must be a valid decimal, got: " + valueStr)
	}
	return value, nil
}
