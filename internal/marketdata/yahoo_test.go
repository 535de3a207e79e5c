package marketdata_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
)

const fundamentalsBody = `{"quoteSummary":{"result":[{
	"price":{"longName":"Apple Inc.","regularMarketPrice":{"fmt":"232.14"},"regularMarketChangePercent":{"fmt":"-1.25%"},"marketCap":{"fmt":"3.44T"}},
	"summaryDetail":{"trailingPE":{"fmt":"30.14"},"forwardPE":{"fmt":"26.02"},"marketCap":{"fmt":"3.44T"},"dividendYield":{"fmt":"0.44%"}},
	"financialData":{"currentPrice":{"fmt":"232.14"},"profitMargins":{"fmt":"26.31%"},"grossMargins":{"fmt":"46.21%"},"returnOnEquity":{"fmt":"147.25%"},"debtToEquity":{"fmt":"176.35"},"totalRevenue":{"fmt":"391.04B"},"revenueGrowth":{"fmt":"6.10%"},"earningsGrowth":{"fmt":"10.20%"},"recommendationKey":"buy"},
	"defaultKeyStatistics":{"pegRatio":{"fmt":"2.26"},"trailingEps":{"fmt":"6.57"},"beta":{"fmt":"1.24"}}
}],"error":null}}`

const earningsBody = `{"quoteSummary":{"result":[{
	"earningsHistory":{"history":[
		{"quarter":{"fmt":"2Q2026"},"epsActual":{"fmt":"1.40"},"epsEstimate":{"fmt":"1.35"},"surprisePercent":{"raw":0.037}},
		{"quarter":{"fmt":"1Q2026"},"epsActual":{"fmt":"2.40"},"epsEstimate":{"fmt":"2.35"},"surprisePercent":{"raw":0.021}}
	]},
	"earnings":{"financialsChart":{"quarterly":[
		{"date":"2Q2026","revenue":{"fmt":"85.78B"},"earnings":{"fmt":"21.45B"}},
		{"date":"1Q2026","revenue":{"fmt":"90.75B"},"earnings":{"fmt":"23.64B"}}
	]}},
	"calendarEvents":{"earnings":{"earningsDate":[{"fmt":"2026-10-30"}]}}
}],"error":null}}`

const emptySummaryBody = `{"quoteSummary":{"result":[],"error":null}}`

const overviewBody = `{"Symbol":"AAPL","Name":"Apple Inc.","Sector":"TECHNOLOGY",
	"MarketCapitalization":"3440000000000","PERatio":"30.14","ForwardPE":"26.02",
	"PEGRatio":"2.26","EPS":"6.57","ProfitMargin":"0.263","ReturnOnEquityTTM":"1.4725",
	"RevenueTTM":"391040000000","QuarterlyRevenueGrowthYOY":"0.061",
	"DividendYield":"0.0044","Beta":"1.24","52WeekHigh":"260.10","52WeekLow":"164.08"}`

func TestFundamentals_RendersQuoteSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/AAPL") {
			w.Write([]byte(fundamentalsBody))
			return
		}
		t.Errorf("unexpected path: %s", r.URL.Path)
	}))
	defer srv.Close()

	out, err := newClient(srv, "").Fundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{
		"Fundamental metrics for AAPL (Apple Inc.)",
		"Trailing P/E:", "30.14",
		"Return on equity:", "147.25%",
		"Revenue growth (YoY):", "6.10%",
		"Analyst view:", "buy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFundamentals_FallsBackToAlphaVantage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(emptySummaryBody))
		case r.URL.Path == "/query":
			if r.URL.Query().Get("function") != "OVERVIEW" || r.URL.Query().Get("apikey") != "av-key" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(overviewBody))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	out, err := newClient(srv, "av-key").Fundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "[source: Alpha Vantage]") {
		t.Fatalf("expected Alpha Vantage fallback:\n%s", out)
	}
	if !strings.Contains(out, "TECHNOLOGY") {
		t.Fatalf("expected overview fields:\n%s", out)
	}
	// Raw magnitudes are abbreviated, not echoed as integer strings.
	if !strings.Contains(out, "$3.44T") || !strings.Contains(out, "$391.04B") {
		t.Fatalf("expected abbreviated market cap and revenue:\n%s", out)
	}
}

func TestFundamentals_EmptyWithoutKeyIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptySummaryBody))
	}))
	defer srv.Close()

	_, err := newClient(srv, "").Fundamentals(context.Background(), "ZZZZ")
	if err == nil || !strings.Contains(err.Error(), "ERR_NOT_FOUND") {
		t.Fatalf("expected ERR_NOT_FOUND, got %v", err)
	}
}

func TestEarnings_RendersSurprisesAndNextDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(earningsBody))
	}))
	defer srv.Close()

	out, err := newClient(srv, "").Earnings(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{
		"Earnings data for AAPL",
		"2Q2026: actual 1.40 vs est 1.35 (surprise +3.70%)",
		"revenue 85.78B, earnings 21.45B",
		"Next earnings date: 2026-10-30",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNews_FiltersByLookbackWindow(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	fresh := now.AddDate(0, 0, -2).Unix()
	stale := now.AddDate(0, 0, -30).Unix()

	body := fmt.Sprintf(`{"news":[
		{"title":"Fresh headline","publisher":"Newswire","providerPublishTime":%d,"link":"https://example.com/fresh"},
		{"title":"Stale headline","publisher":"Oldwire","providerPublishTime":%d,"link":"https://example.com/stale"}
	]}`, fresh, stale)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/finance/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := newClient(srv, "")
	marketdata.SetNow(c, func() time.Time { return now })

	out, err := c.News(context.Background(), "AAPL", 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "Fresh headline") {
		t.Fatalf("expected fresh item:\n%s", out)
	}
	if strings.Contains(out, "Stale headline") {
		t.Fatalf("stale item must be filtered:\n%s", out)
	}
}

func TestNews_NoItemsInWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news":[]}`))
	}))
	defer srv.Close()

	out, err := newClient(srv, "").News(context.Background(), "AAPL", 7)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "No news found for AAPL") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestQuote_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fundamentalsBody))
	}))
	defer srv.Close()

	snap, err := newClient(srv, "").Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if snap.Name != "Apple Inc." || snap.Price != "232.14" || snap.TrailingPE != "30.14" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ChangePct != "-1.25%" || snap.MarketCap != "3.44T" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}
