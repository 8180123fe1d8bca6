package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"dcaengine/internal/adapter/in_memory"
	"dcaengine/internal/adapter/oracle"
	"dcaengine/internal/api/dto"
	"dcaengine/internal/core"
	"dcaengine/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var clientSeq int

func newTestServer(t *testing.T) (*gin.Engine, *in_memory.Ledger) {
	t.Helper()
	ledger := in_memory.NewLedger()
	priceOracle := oracle.NewHTTPOracle("http://unused", time.Minute)
	priceOracle.SetPrice(decimal.NewFromInt(1000), time.Now())
	eng := core.NewEngine("admin", in_memory.NewMemoryRepo(), in_memory.NewCache(), ledger,
		&paperExchange{}, in_memory.NewPubSub())

	s := NewHTTPServer(eng, priceOracle)
	s.DepositFunc = func(req dto.DepositRequest) error {
		return ledger.Deposit(req.Account, req.Amount)
	}
	s.PriceOverrideFunc = func(caller string, price decimal.Decimal) error {
		if caller != "admin" {
			return domain.ErrUnauthorized
		}
		priceOracle.SetPrice(price, time.Now())
		return nil
	}
	return s.Router(), ledger
}

type paperExchange struct{}

func (p *paperExchange) Swap(_ context.Context, in decimal.Decimal) (decimal.Decimal, error) {
	return in, nil
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	// Distinct client ids keep the rate limiter out of the way.
	clientSeq++
	req.Header.Set("X-Client-ID", fmt.Sprintf("client-%d", clientSeq))
	req.Header.Set("X-Agent-ID", "agent-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func initEngine(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/admin/init", dto.InitializeRequest{
		Caller:       "admin",
		Agent:        "agent-1",
		Fee:          decimal.NewFromInt(1),
		FundingAsset: "USDC",
		TargetAsset:  "BTC",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("init: status %d, body %s", w.Code, w.Body.String())
	}
}

func createOrder(t *testing.T, router *gin.Engine, ledger *in_memory.Ledger) dto.Order {
	t.Helper()
	if err := ledger.Deposit("alice", decimal.NewFromInt(101)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	w := do(t, router, http.MethodPost, "/orders", dto.CreateOrderRequest{
		Owner:        "alice",
		TotalAmount:  decimal.NewFromInt(100),
		Frequency:    "DAILY",
		DurationDays: 30,
		MinPrice:     decimal.NewFromInt(900),
		MaxPrice:     decimal.NewFromInt(1100),
		FeePaid:      decimal.NewFromInt(1),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var resp dto.CreateOrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Order
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, ledger := newTestServer(t)
	initEngine(t, router)
	order := createOrder(t, router, ledger)

	if order.TotalSwaps != 30 || order.AmountPerSwap.String() != "3" {
		t.Fatalf("derived order = %+v", order)
	}

	w := do(t, router, http.MethodGet, "/orders/"+order.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}

	w = do(t, router, http.MethodHead, "/orders/"+order.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("head: status %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/orders/count", nil)
	var count dto.CountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &count); err != nil || count.Count != 1 {
		t.Fatalf("count: %s (err %v)", w.Body.String(), err)
	}

	// Freshly created orders are not yet due.
	w = do(t, router, http.MethodGet, "/orders/due", nil)
	var due dto.DueOrdersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &due); err != nil || len(due.Due) != 0 {
		t.Fatalf("due: %s (err %v)", w.Body.String(), err)
	}

	w = do(t, router, http.MethodPost, "/orders/cancel", dto.CancelOrderRequest{OrderID: order.ID, Owner: "alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d, body %s", w.Code, w.Body.String())
	}
	if !ledger.Balance("alice").Equal(decimal.NewFromInt(100)) {
		t.Fatalf("refund = %s, want 100", ledger.Balance("alice"))
	}

	w = do(t, router, http.MethodGet, "/orders/"+order.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after cancel: status %d", w.Code)
	}
	w = do(t, router, http.MethodHead, "/orders/"+order.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("head after cancel: status %d", w.Code)
	}
}

func TestExecuteTooEarlyIsRetriable(t *testing.T) {
	router, ledger := newTestServer(t)
	initEngine(t, router)
	order := createOrder(t, router, ledger)

	w := do(t, router, http.MethodPost, "/orders/execute", dto.ExecuteOrderRequest{OrderID: order.ID})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Retriable bool `json:"retriable"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.Retriable {
		t.Fatalf("body %s (err %v)", w.Body.String(), err)
	}
}

func TestAdminInitIsOneShot(t *testing.T) {
	router, _ := newTestServer(t)
	initEngine(t, router)

	w := do(t, router, http.MethodPost, "/admin/init", dto.InitializeRequest{
		Caller:       "admin",
		Agent:        "agent-2",
		FundingAsset: "USDC",
		TargetAsset:  "BTC",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("second init: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestCancelByNonOwnerForbidden(t *testing.T) {
	router, ledger := newTestServer(t)
	initEngine(t, router)
	order := createOrder(t, router, ledger)

	w := do(t, router, http.MethodPost, "/orders/cancel", dto.CancelOrderRequest{OrderID: order.ID, Owner: "mallory"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}

func TestPriceOverride(t *testing.T) {
	router, _ := newTestServer(t)
	initEngine(t, router)

	w := do(t, router, http.MethodPost, "/admin/price", dto.SetPriceRequest{Caller: "admin", Price: decimal.NewFromInt(1234)})
	if w.Code != http.StatusOK {
		t.Fatalf("override: status %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodGet, "/price", nil)
	var resp dto.PriceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Price.Equal(decimal.NewFromInt(1234)) {
		t.Fatalf("price = %s, want 1234", resp.Price)
	}

	w = do(t, router, http.MethodPost, "/admin/price", dto.SetPriceRequest{Caller: "mallory", Price: decimal.NewFromInt(1)})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin override: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestDepositRejectsBadInput(t *testing.T) {
	router, _ := newTestServer(t)
	w := do(t, router, http.MethodPost, "/accounts/deposit", dto.DepositRequest{Account: "alice"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
}
