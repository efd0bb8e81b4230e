package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/odyn-fi/odyn/internal/issuer"
	"github.com/odyn-fi/odyn/internal/logger"
	"github.com/odyn-fi/odyn/internal/state"
	"github.com/odyn-fi/odyn/internal/vault"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for series and vault data
type WebServer struct {
	router *mux.Router
	port   string
	vault  *vault.Vault
	issuer *issuer.Issuer
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, v *vault.Vault, i *issuer.Issuer) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		port:   port,
		vault:  v,
		issuer: i,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/series", ws.handleGetSeries).Methods("GET")
	api.HandleFunc("/vault/summary", ws.handleGetVaultSummary).Methods("GET")
	api.HandleFunc("/parameters/latest", ws.handleGetLatestParameters).Methods("GET")
	api.HandleFunc("/rolls", ws.handleGetRolls).Methods("GET")
	api.HandleFunc("/rolls/latest", ws.handleGetLatestRoll).Methods("GET")
	api.HandleFunc("/trades", ws.handleGetTrades).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	seriesState := ws.issuer.State()
	vaultState := ws.vault.Snapshot()

	hasErrors := !dbHealthy || vaultState.Paused
	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "odyn-option-series",
			"version": "1.0.0",
		},
		"series_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"series_id":        seriesState.SeriesID,
			"current_epoch":    seriesState.CurrentEpoch,
			"roll_count":       seriesState.RollCount,
			"trading_paused":   seriesState.Paused,
			"vault_dead":       vaultState.Dead,
			"vault_paused":     vaultState.Paused,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetSeries returns the active series parameters
func (ws *WebServer) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.issuer.State())
}

// handleGetVaultSummary returns the vault's liquidity state
func (ws *WebServer) handleGetVaultSummary(w http.ResponseWriter, r *http.Request) {
	ws.writeJSONResponse(w, http.StatusOK, ws.vault.Snapshot())
}

// handleGetLatestParameters returns the persisted parameter set of the most
// recent roll
func (ws *WebServer) handleGetLatestParameters(w http.ResponseWriter, r *http.Request) {
	params, err := state.LoadLatestFinanceParameters(ws.issuer.State().SeriesID)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get latest finance parameters")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve parameters")
		return
	}
	if params == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "No parameters persisted yet")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, params)
}

// handleGetRolls returns paginated roll snapshots
func (ws *WebServer) handleGetRolls(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	rolls, err := state.LoadRecentRollSnapshots(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent rolls")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve rolls")
		return
	}

	response := map[string]interface{}{
		"rolls": rolls,
		"count": len(rolls),
		"limit": limit,
	}
	if persisted, err := state.GetCurrentRollNumber(); err == nil {
		response["persisted_roll_count"] = persisted
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLatestRoll returns the most recent roll snapshot
func (ws *WebServer) handleGetLatestRoll(w http.ResponseWriter, r *http.Request) {
	roll, err := state.LoadLatestRollSnapshot()
	if err != nil || roll == nil {
		webLogger.Error().Err(err).Msg("Failed to get latest roll")
		ws.writeErrorResponse(w, http.StatusNotFound, "No rolls found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, roll)
}

// handleGetTrades returns paginated trade receipts
func (ws *WebServer) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 500 {
			limit = parsedLimit
		}
	}

	trades, err := state.LoadRecentTradeReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent trades")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve trades")
		return
	}

	response := map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
		"limit":  limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
