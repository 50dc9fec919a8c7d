package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func phpCorridor() Corridor {
	return Corridor{Country: "Philippines", Currency: "PHP", ReceiveAmount: decimal.NewFromInt(40_000)}
}

func TestGMoneyTransScrapeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("currencyType"); got != "PHP" {
			t.Fatalf("currencyType = %q", got)
		}
		if got := r.URL.Query().Get("receive_amount"); got != "40000" {
			t.Fatalf("receive_amount = %q", got)
		}
		_, _ = w.Write([]byte("exRate--td_clm--23.1--td_end--serviceCharge--td_clm--3000--td_end--sendAmount--td_clm--924000--td_end--"))
	}))
	defer srv.Close()

	g := NewGMoneyTrans(GMoneyTransOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	quote, err := g.Scrape(context.Background(), nil, phpCorridor())
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}

	if quote.SendAmountKRW.String() != "924000" {
		t.Fatalf("send amount = %s", quote.SendAmountKRW)
	}
	if quote.ServiceFee.String() != "3000" {
		t.Fatalf("service fee = %s", quote.ServiceFee)
	}
	if quote.TotalSendingAmount.String() != "927000" {
		t.Fatalf("total must be send+fee, got %s", quote.TotalSendingAmount)
	}
}

func TestGMoneyTransMissingFeeFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("sendAmount--td_clm--924000--td_end--"))
	}))
	defer srv.Close()

	g := NewGMoneyTrans(GMoneyTransOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	quote, err := g.Scrape(context.Background(), nil, phpCorridor())
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	if !quote.ServiceFee.Equal(defaultGmtServiceCharge) {
		t.Fatalf("missing serviceCharge must use the known flat fee, got %s", quote.ServiceFee)
	}
}

func TestGMoneyTransMissingSendAmountIsExtractionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("serviceCharge--td_clm--3000--td_end--"))
	}))
	defer srv.Close()

	g := NewGMoneyTrans(GMoneyTransOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := g.Scrape(context.Background(), nil, phpCorridor())
	assertKind(t, err, KindExtraction)
}

func TestGMoneyTransHTTPErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGMoneyTrans(GMoneyTransOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	_, err := g.Scrape(context.Background(), nil, phpCorridor())
	assertKind(t, err, KindTransient)
}

func TestGMoneyTransFloorRejectsLowTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("sendAmount--td_clm--12--td_end--serviceCharge--td_clm--0.5--td_end--"))
	}))
	defer srv.Close()

	g := NewGMoneyTrans(GMoneyTransOptions{
		BaseURL:  srv.URL,
		Timeout:  time.Second,
		FloorKRW: decimal.NewFromInt(100_000),
	}, noopLogger())
	_, err := g.Scrape(context.Background(), nil, phpCorridor())
	assertKind(t, err, KindExtraction)
}
