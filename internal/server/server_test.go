package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moneymapp/moneymapp-calc/internal/store"
	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/validation"
	"go.uber.org/zap"
)

const batchConfig = `output:
  format: csv
calculations:
  - name: car loan
    type: installment
    amount: 10000
    rate: 2
    periods: 24
  - name: apartment
    type: sac
    amount: 10000
    rate: 2
    periods: 6
    startDate: "2025-01"
  - name: savings
    type: compound
    amount: 1000
    rate: 1
    periods: 12
  - name: rent
    type: inflation
    amount: 36000
    rate: 5
    periods: 5
`

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func uploadConfig(t *testing.T, handler http.Handler, contents string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "config.yaml")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(contents)); err != nil {
		t.Fatalf("failed to write form data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleInstallment(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := postJSON(t, handler, "/api/installment", `{"name":"car","amount":10000,"rate":2,"periods":24}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Type != constants.CalculationInstallment {
		t.Errorf("expected type %q, got %q", constants.CalculationInstallment, resp.Type)
	}
	if math.Abs(resp.Value-528.71) > 0.01 {
		t.Errorf("expected installment ~528.71, got %.4f", resp.Value)
	}
	if resp.Cached {
		t.Error("first request should not be served from cache")
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request ID header")
	}
}

func TestHandleSACSchedule(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := postJSON(t, handler, "/api/sac", `{"amount":10000,"rate":2,"periods":6,"startDate":"2025-01"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Schedule) != 6 {
		t.Fatalf("expected 6 installments, got %d", len(resp.Schedule))
	}
	first := resp.Schedule[0]
	if first.DueDate != "2025-01" {
		t.Errorf("expected first due date 2025-01, got %q", first.DueDate)
	}
	if math.Abs(first.Payment-1866.67) > 0.01 || math.Abs(first.Interest-200) > 0.01 {
		t.Errorf("unexpected first installment: %+v", first)
	}
	if resp.Summary == nil || math.Abs(resp.Summary.TotalInterest-700) > 0.01 {
		t.Errorf("expected total interest 700, got %+v", resp.Summary)
	}
}

func TestHandleCalculationCachesResults(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{Store: store.NewMemoryStore(), CacheTTL: time.Minute})
	body := `{"amount":1000,"rate":1,"periods":12}`

	first := postJSON(t, handler, "/api/compound", body)
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", first.Code, first.Body.String())
	}

	second := postJSON(t, handler, "/api/compound", body)
	if second.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", second.Code, second.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Cached {
		t.Error("expected second identical request to be served from cache")
	}
	if math.Abs(resp.Value-1126.83) > 0.01 {
		t.Errorf("expected cached value ~1126.83, got %.4f", resp.Value)
	}

	// Same body on a different endpoint must not share the entry.
	other := postJSON(t, handler, "/api/inflation", body)
	var otherResp calculationResponse
	if err := json.Unmarshal(other.Body.Bytes(), &otherResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if otherResp.Cached {
		t.Error("different calculation types must not share cache entries")
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("store unavailable")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store unavailable")
}

func (failingStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestHandleCalculationStoreFailureIsNotFatal(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{Store: failingStore{}})

	rr := postJSON(t, handler, "/api/inflation", `{"amount":36000,"rate":5,"periods":5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp calculationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if math.Abs(resp.Value-45946.14) > 0.01 {
		t.Errorf("expected projected cost ~45946.14, got %.4f", resp.Value)
	}
}

func TestHandleCalculationRejectsInvalidInput(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	tests := map[string]struct {
		path string
		body string
	}{
		"zero term":     {"/api/installment", `{"amount":10000,"rate":2,"periods":0}`},
		"negative term": {"/api/sac", `{"amount":10000,"rate":2,"periods":-3}`},
		"unknown field": {"/api/compound", `{"amount":1000,"rate":1,"periods":12,"bogus":true}`},
		"malformed":     {"/api/price", `{"amount":`},
		"bad date":      {"/api/price", `{"amount":1000,"rate":1,"periods":12,"startDate":"2025/01"}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rr := postJSON(t, handler, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected error message in response")
			}
		})
	}
}

func TestHandleCalculationOverflowIsBadRequest(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	tests := map[string]struct {
		path string
		body string
	}{
		"compound doubling":  {"/api/compound", `{"amount":1000,"rate":100,"periods":1200}`},
		"inflation overflow": {"/api/inflation", `{"amount":1e300,"rate":100,"periods":100}`},
		"sac interest":       {"/api/sac", `{"amount":1e308,"rate":1e12,"periods":12}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rr := postJSON(t, handler, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %q", rr.Code, rr.Body.String())
			}

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error response %q: %v", rr.Body.String(), err)
			}
			if !strings.Contains(resp["error"], "finite") {
				t.Errorf("expected non-finite error, got %q", resp["error"])
			}
		})
	}
}

func TestHandleCalculationRejectsTooManyPeriods(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	for _, path := range []string{"/api/sac", "/api/price", "/api/compound", "/api/inflation", "/api/installment"} {
		rr := postJSON(t, handler, path, `{"amount":1000,"rate":1,"periods":3000000}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, rr.Code)
		}
		if rr.Body.Len() > 1024 {
			t.Errorf("%s: expected a short error body, got %d bytes", path, rr.Body.Len())
		}
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(fmt.Errorf("calc: %w", validation.ErrInvalidTerm)); got != http.StatusBadRequest {
		t.Errorf("statusFor(invalid term) = %d, expected 400", got)
	}
	if got := statusFor(context.Canceled); got != http.StatusInternalServerError {
		t.Errorf("statusFor(context.Canceled) = %d, expected 500", got)
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	h := &handler{logger: zap.NewNop()}
	rr := httptest.NewRecorder()

	h.writeJSON(rr, http.StatusOK, map[string]float64{"value": math.Inf(1)})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("expected a JSON error body, got %q: %v", rr.Body.String(), err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestHandleCalculationMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/compound", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandleBatchSuccess(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := uploadConfig(t, handler, batchConfig)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp batchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(resp.Results))
	}
	names := []string{"car loan", "apartment", "savings", "rent"}
	for i, name := range names {
		if resp.Results[i].Name != name {
			t.Errorf("result %d: expected %q, got %q", i, name, resp.Results[i].Name)
		}
	}
	if !strings.HasPrefix(resp.CSV, "calculation,type,period") {
		t.Errorf("expected CSV header, got %q", resp.CSV)
	}
	if resp.Duration == "" {
		t.Error("expected duration in response")
	}
}

func TestHandleBatchInvalidConfig(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := uploadConfig(t, handler, "calculations:\n  - type: installment\n    amount: 1000\n    rate: 1\n    periods: 0\n")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleBatchOverflow(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := uploadConfig(t, handler, "calculations:\n  - name: runaway\n    type: compound\n    amount: 1000\n    rate: 100\n    periods: 1200\n")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "runaway") {
		t.Errorf("expected error to name the calculation, got %s", rr.Body.String())
	}
}

func TestHandleBatchTooManyPeriods(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	rr := uploadConfig(t, handler, "calculations:\n  - type: sac\n    amount: 1000\n    rate: 1\n    periods: 3000000\n")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleBatchMissingFile(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("other", "value"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandleBatchTooLarge(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{MaxUploadSize: 64})

	rr := uploadConfig(t, handler, batchConfig)
	if rr.Code != http.StatusRequestEntityTooLarge && rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 413 or 400, got %d", rr.Code)
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), Options{Version: "1.2.3"})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request ID to be echoed, got %q", got)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", resp["version"])
	}
}
