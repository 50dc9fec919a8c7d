package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHanpassScrapeBackDerivesPrincipal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hanpassCostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ToCountryCode != "PH" || req.FromCurrencyCode != "KRW" {
			t.Fatalf("unexpected request: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultCode":                "0",
			"depositAmountIncludingFee": 1105000,
			"transferFee":               5000,
		})
	}))
	defer srv.Close()

	h := NewHanpass(HanpassOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	quote, err := h.Scrape(context.Background(), nil, phpCorridor())
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	// The headline figure bundles the fee; the principal is total - fee.
	if quote.TotalSendingAmount.String() != "1105000" {
		t.Fatalf("total = %s", quote.TotalSendingAmount)
	}
	if quote.SendAmountKRW.String() != "1100000" {
		t.Fatalf("send amount = %s", quote.SendAmountKRW)
	}
	if quote.ServiceFee.String() != "5000" {
		t.Fatalf("fee = %s", quote.ServiceFee)
	}
}

func TestHanpassAPIFailureCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultCode":    "99",
			"resultMessage": "service unavailable",
		})
	}))
	defer srv.Close()

	h := NewHanpass(HanpassOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := h.Scrape(context.Background(), nil, phpCorridor())
	assertKind(t, err, KindExtraction)
}

func TestHanpassZeroDepositIsNotAQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": "0"})
	}))
	defer srv.Close()

	h := NewHanpass(HanpassOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := h.Scrape(context.Background(), nil, phpCorridor())
	assertKind(t, err, KindExtraction)
}

func TestHanpassUnknownCountry(t *testing.T) {
	h := NewHanpass(HanpassOptions{BaseURL: "http://unused", Timeout: time.Second}, noopLogger())
	corridor := phpCorridor()
	corridor.Country = "Atlantis"
	_, err := h.Scrape(context.Background(), nil, corridor)
	assertKind(t, err, KindExtraction)
}
