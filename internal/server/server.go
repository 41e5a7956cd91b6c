// Package server exposes the calculators over an HTTP JSON API.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneymapp/moneymapp-calc/internal/calculator"
	"github.com/moneymapp/moneymapp-calc/internal/config"
	"github.com/moneymapp/moneymapp-calc/internal/store"
	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/output"
	"github.com/moneymapp/moneymapp-calc/pkg/validation"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request identifier in and out.
const RequestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "requestID"

// Options configures the handler.
type Options struct {
	Store         store.KeyValueStore
	CacheTTL      time.Duration
	MaxUploadSize int64
	Version       string
}

type handler struct {
	logger        *zap.Logger
	calc          *calculator.Calculator
	store         store.KeyValueStore
	cacheTTL      time.Duration
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:        logger,
		calc:          calculator.New(logger),
		store:         opts.Store,
		cacheTTL:      opts.CacheTTL,
		maxUploadSize: opts.MaxUploadSize,
		version:       version,
	}

	mux := http.NewServeMux()

	// One endpoint per calculator
	for _, kind := range []string{
		constants.CalculationCompound,
		constants.CalculationInstallment,
		constants.CalculationPrice,
		constants.CalculationSAC,
		constants.CalculationInflation,
	} {
		mux.HandleFunc("/api/"+kind, h.handleCalculation(kind))
	}

	// Batch endpoint (YAML configuration upload)
	mux.HandleFunc("/api/calculate", h.handleBatch)

	mux.HandleFunc("/api/version", h.handleVersion)

	return h.withRequestID(mux)
}

type calculationResponse struct {
	calculator.Result
	Cached bool `json:"cached"`
}

type batchResponse struct {
	Results  []calculator.Result `json:"results"`
	CSV      string              `json:"csv"`
	Warnings []string            `json:"warnings,omitempty"`
	Duration string              `json:"duration"`
}

func (h *handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		h.logger.Debug("request served",
			zap.String("op", "server.withRequestID"),
			zap.String("requestId", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (h *handler) handleCalculation(kind string) http.HandlerFunc {
	op := "server.handle." + kind
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		var calc config.Calculation
		if err := decoder.Decode(&calc); err != nil {
			h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
			return
		}
		calc.Type = kind
		calc.Disabled = false

		key, err := cacheKey(calc)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to encode request: %v", err), op)
			return
		}

		if cached, ok := h.lookup(r.Context(), key, op); ok {
			h.writeJSON(w, http.StatusOK, calculationResponse{Result: cached, Cached: true})
			return
		}

		result, err := h.calc.Calculate(calc)
		if err != nil {
			h.respondError(w, r, statusFor(err), err.Error(), op)
			return
		}

		h.remember(r.Context(), key, result, op)
		h.writeJSON(w, http.StatusOK, calculationResponse{Result: result})
	}
}

func cacheKey(calc config.Calculation) (string, error) {
	encoded, err := json.Marshal(calc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return "calc:" + hex.EncodeToString(sum[:]), nil
}

// lookup returns a memoised result. Store failures are logged and treated as
// a miss.
func (h *handler) lookup(ctx context.Context, key, op string) (calculator.Result, bool) {
	var result calculator.Result
	data, err := h.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("cache lookup failed",
				zap.String("op", op),
				zap.String("requestId", requestID(ctx)),
				zap.Error(err),
			)
		}
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		h.logger.Warn("discarding undecodable cache entry",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return result, false
	}
	return result, true
}

func (h *handler) remember(ctx context.Context, key string, result calculator.Result, op string) {
	data, err := json.Marshal(result)
	if err != nil {
		h.logger.Warn("failed to encode result for cache", zap.String("op", op), zap.Error(err))
		return
	}
	if err := h.store.Set(ctx, key, data, h.cacheTTL); err != nil {
		h.logger.Warn("cache store failed",
			zap.String("op", op),
			zap.String("requestId", requestID(ctx)),
			zap.Error(err),
		)
	}
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	cfg, err := config.LoadConfigurationFromReader(file)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	if err := cfg.Validate(); err != nil {
		h.respondError(w, r, statusFor(err), err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	results, err := calculator.Run(r.Context(), h.logger, *cfg)
	if err != nil {
		h.respondError(w, r, statusFor(err), fmt.Sprintf("failed to run calculations: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("batch computed",
		zap.String("op", op),
		zap.String("requestId", requestID(r.Context())),
		zap.Int("calculations", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, batchResponse{
		Results:  results,
		CSV:      output.CsvString(results),
		Warnings: warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.String("requestId", requestID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps calculation errors caused by the request to 400 and
// everything else to 500.
func statusFor(err error) int {
	if validation.IsInvalidArgument(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeJSON encodes payload before writing the header so an encoding failure
// still yields a well-formed error response.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
