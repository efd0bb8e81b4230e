package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/odyn-fi/odyn/internal/auth"
	"github.com/odyn-fi/odyn/internal/config"
	"github.com/odyn-fi/odyn/internal/epoch"
	"github.com/odyn-fi/odyn/internal/exchange"
	"github.com/odyn-fi/odyn/internal/fees"
	"github.com/odyn-fi/odyn/internal/finance"
	"github.com/odyn-fi/odyn/internal/issuer"
	"github.com/odyn-fi/odyn/internal/logger"
	"github.com/odyn-fi/odyn/internal/oracle"
	"github.com/odyn-fi/odyn/internal/state"
	"github.com/odyn-fi/odyn/internal/types"
	"github.com/odyn-fi/odyn/internal/vault"
	"github.com/odyn-fi/odyn/internal/web"
)

const (
	ROLL_POLL_INTERVAL = 15 * time.Second
)

// main is the entry point for the odyn option series service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Str("series", config.SeriesID).Msg("Odyn option series starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Market Adapters (with Safety Switch) ---
	baseToken := types.Token{
		Symbol:   config.BaseTokenSymbol,
		Denom:    config.BaseTokenSymbol,
		Decimals: config.BaseTokenDecimals,
	}
	sideToken := types.Token{
		Symbol:   config.SideTokenSymbol,
		Denom:    config.SideTokenSymbol,
		Decimals: config.SideTokenDecimals,
	}

	odynMode := os.Getenv("ODYN_MODE")
	if odynMode != "sim" {
		log.Fatal().Msg("ODYN_MODE is not set to 'sim'. Live venue adapters are not wired in this build; set ODYN_MODE=sim to run.")
	}
	log.Warn().Msg("Initializing in SIM mode. Swaps fill at the oracle price plus spread.")

	priceOracle := oracle.NewStaticOracle()
	priceOracle.SetPrice(sideToken.Symbol, baseToken.Symbol, config.InitialSpotPrice)
	priceOracle.SetRiskFreeRate(baseToken.Symbol, config.RiskFreeRate)
	priceOracle.SetImpliedVolatility(sideToken.Symbol, baseToken.Symbol, config.BaselineVolatility)

	venue := exchange.NewSimAdapter(priceOracle, config.ExchangeSpread)

	// --- 3. Core Components ---
	epochs, err := epoch.New(config.EpochFrequency, config.EpochFirstSpan, time.Now())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create epoch controller")
	}

	policy := auth.Policy{
		Roller:          config.RollerIdentity,
		PositionManager: config.PositionManagerIdentity,
		IssuerID:        "odyn-issuer:" + config.SeriesID,
	}

	seriesVault, err := vault.New(vault.Config{
		BaseToken:    baseToken,
		SideToken:    sideToken,
		Exchange:     venue,
		Policy:       policy,
		MaxDeposit:   config.MaxVaultDeposit,
		HedgeMargin:  config.HedgeSlippageMargin,
		InitialEpoch: epochs.Current().Unix(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault")
	}

	feeSchedule := fees.NewSchedule(
		config.TradeBuyFeeRate,
		config.TradeSellFeeRate,
		config.MaturitySellFeeRate,
		config.VaultMinFee,
		config.FeeChangeDelay,
	)

	tunables := finance.DefaultTunables()
	tunables.SigmaMultiplier = types.NewTimeLocked(config.SigmaMultiplier)

	seriesIssuer, err := issuer.New(issuer.Config{
		SeriesID:      config.SeriesID,
		BaseToken:     baseToken,
		SideToken:     sideToken,
		Vault:         seriesVault,
		Oracle:        priceOracle,
		Exchange:      venue,
		Epochs:        epochs,
		Fees:          feeSchedule,
		Policy:        policy,
		Recorder:      state.Recorder{},
		BaselineSigma: config.BaselineVolatility,
		Tunables:      tunables,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create option issuer")
	}

	log.Info().
		Str("baseToken", baseToken.Symbol).
		Str("sideToken", sideToken.Symbol).
		Time("firstCheckpoint", epochs.Current()).
		Msg("Series components created")

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, seriesVault, seriesIssuer)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting series API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Roller Loop ---
	log.Info().
		Dur("pollInterval", ROLL_POLL_INTERVAL).
		Dur("epochFrequency", config.EpochFrequency).
		Msg("Starting roller loop")
	runRollerLoop(seriesIssuer, epochs)
}

// runRollerLoop polls the epoch controller and rolls the series as soon as
// each checkpoint passes. It runs until the process exits; roll failures are
// logged and retried on the next tick so a transient fault cannot wedge the
// grid (a paused series still refuses trades until remediated).
func runRollerLoop(seriesIssuer *issuer.Issuer, epochs *epoch.Controller) {
	ticker := time.NewTicker(ROLL_POLL_INTERVAL)
	defer ticker.Stop()

	for range ticker.C {
		if !epochs.IsFinished(time.Now()) {
			continue
		}
		snapshot, err := seriesIssuer.RollEpoch(config.RollerIdentity)
		if err != nil {
			log.Error().Err(err).Msg("Epoch roll failed")
			continue
		}
		log.Info().
			Int("rollNumber", snapshot.RollNumber).
			Str("pricePerShare", snapshot.PricePerShare.String()).
			Str("strike", snapshot.Strike.String()).
			Msg("Epoch rolled")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
