package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/tradebook"
)

func setupTestServer(t *testing.T, feed tradebook.DividendFeed) *Server {
	t.Helper()
	ctx := context.Background()
	book := tradebook.NewBook(tradebook.NewDirStore(t.TempDir()), zerolog.Nop())

	doc := tradebook.Document{
		Broker:           "xp",
		Date:             "2021-01-04",
		OperationsValue:  tradebook.D(1600),
		SettlementAmount: tradebook.D(1600),
		Operations: []tradebook.DocumentOperation{
			{Symbol: "ABC", Amount: 100, Price: tradebook.D(10), Value: tradebook.D(1000)},
			{Symbol: "DEF", Amount: 20, Price: tradebook.D(30), Value: tradebook.D(600)},
		},
	}
	tc, err := tradebook.Validator{}.Validate("tc-1", doc)
	require.NoError(t, err)
	require.NoError(t, book.Record(ctx, tc))

	return New(Config{Log: zerolog.Nop(), Book: book, Feed: feed, Port: 0, DevMode: true})
}

func get(t *testing.T, s *Server, path string, v any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if v != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
	}
	return w.Code
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t, nil)
	var body map[string]string
	assert.Equal(t, http.StatusOK, get(t, s, "/health", &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestPortfolio(t *testing.T) {
	s := setupTestServer(t, nil)
	var body struct {
		Positions []struct {
			Symbol         string  `json:"symbol"`
			Amount         int64   `json:"amount"`
			PercentOfTotal float64 `json:"percent_of_total"`
		} `json:"positions"`
		TotalInvestment float64  `json:"total_investment"`
		Problems        []string `json:"problems"`
	}
	require.Equal(t, http.StatusOK, get(t, s, "/api/portfolio", &body))
	require.Len(t, body.Positions, 2)
	assert.Equal(t, "ABC", body.Positions[0].Symbol)
	assert.Equal(t, int64(100), body.Positions[0].Amount)
	assert.Equal(t, 1600.0, body.TotalInvestment)
	assert.Empty(t, body.Problems)
}

func TestSymbolsAndHistory(t *testing.T) {
	s := setupTestServer(t, nil)

	var symbols []string
	require.Equal(t, http.StatusOK, get(t, s, "/api/symbols", &symbols))
	assert.Equal(t, []string{"ABC", "DEF"}, symbols)

	var history []map[string]any
	require.Equal(t, http.StatusOK, get(t, s, "/api/history/DEF", &history))
	require.Len(t, history, 1)
	assert.Equal(t, "2021-01-04", history[0]["date"])

	var notFound map[string]string
	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/history/XYZ", &notFound))
	assert.Contains(t, notFound["error"], "XYZ")
}

func TestAnnual(t *testing.T) {
	s := setupTestServer(t, nil)
	var annual []map[string]any
	require.Equal(t, http.StatusOK, get(t, s, "/api/annual", &annual))
	assert.NotEmpty(t, annual)
}

func TestDividends(t *testing.T) {
	feed := func(symbol string) ([]tradebook.DividendEvent, error) {
		return []tradebook.DividendEvent{{
			Symbol:        symbol,
			RecordDate:    tradebook.MustParse("2021-03-01"),
			PaymentDate:   tradebook.MustParse("2021-03-15"),
			Type:          tradebook.Dividend,
			ValuePerShare: tradebook.D(0.5),
		}}, nil
	}
	s := setupTestServer(t, feed)

	var body struct {
		Symbol    string           `json:"symbol"`
		Dividends []map[string]any `json:"dividends"`
		Total     float64          `json:"total"`
		Problems  []string         `json:"problems"`
	}
	require.Equal(t, http.StatusOK, get(t, s, "/api/dividends/ABC", &body))
	assert.Equal(t, "ABC", body.Symbol)
	require.Len(t, body.Dividends, 1)
	assert.Equal(t, 50.0, body.Total)
	assert.Empty(t, body.Problems)
}
