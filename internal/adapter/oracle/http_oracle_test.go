package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestHTTPOracleFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price":"1234.56"}`))
	}))
	defer srv.Close()

	o := NewHTTPOracle(srv.URL, time.Minute)
	if err := o.fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	quote, err := o.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("LatestPrice: %v", err)
	}
	if !quote.Value.Equal(decimal.RequireFromString("1234.56")) {
		t.Fatalf("price = %s, want 1234.56", quote.Value)
	}
	if quote.AsOf.IsZero() {
		t.Fatal("AsOf not set")
	}
}

func TestHTTPOracleRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"zero price", http.StatusOK, `{"price":"0"}`},
		{"negative price", http.StatusOK, `{"price":"-5"}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			o := NewHTTPOracle(srv.URL, time.Minute)
			if err := o.fetch(context.Background()); err == nil {
				t.Fatal("fetch succeeded, want error")
			}
			if _, err := o.LatestPrice(context.Background()); err == nil {
				t.Fatal("LatestPrice served a price after failed fetch")
			}
		})
	}
}

func TestHTTPOracleSetPrice(t *testing.T) {
	o := NewHTTPOracle("http://unused", time.Minute)
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o.SetPrice(decimal.NewFromInt(1000), asOf)

	quote, err := o.LatestPrice(context.Background())
	if err != nil {
		t.Fatalf("LatestPrice: %v", err)
	}
	if !quote.Value.Equal(decimal.NewFromInt(1000)) || !quote.AsOf.Equal(asOf) {
		t.Fatalf("quote = %+v", quote)
	}
}
