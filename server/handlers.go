package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/etnz/tradebook"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tradebook",
	})
}

type portfolioResponse struct {
	Positions       []tradebook.Position `json:"positions"`
	TotalInvestment decimal.Decimal      `json:"total_investment"`
	TotalDividends  decimal.Decimal      `json:"total_dividends"`
	Problems        []string             `json:"problems"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	report, err := tradebook.BuildReport(r.Context(), s.book, s.feed)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	positions := report.Positions
	if positions == nil {
		positions = []tradebook.Position{}
	}
	s.writeJSON(w, http.StatusOK, portfolioResponse{
		Positions:       positions,
		TotalInvestment: report.TotalInvestment(),
		TotalDividends:  report.TotalDividends(),
		Problems:        messages(report.Problems),
	})
}

func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	ledgers, err := s.book.SymbolLedgers(r.Context())
	if ledgers == nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("annual amounts without unreadable ledgers")
	}
	annual := tradebook.AnnualAmounts(ledgers)
	if annual == nil {
		annual = []tradebook.AnnualAmount{}
	}
	s.writeJSON(w, http.StatusOK, annual)
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.book.Symbols(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	s.writeJSON(w, http.StatusOK, symbols)
}

// history loads the position history of the symbol in the URL.
// It writes the error response itself and returns false on failure.
func (s *Server) history(w http.ResponseWriter, r *http.Request) (string, []tradebook.HistoryEntry, bool) {
	symbol := chi.URLParam(r, "symbol")
	symbols, err := s.book.Symbols(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return symbol, nil, false
	}
	if !slices.Contains(symbols, symbol) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no ledger for %s: %w", symbol, tradebook.ErrUnknownSymbol))
		return symbol, nil, false
	}

	ledger, err := s.book.SymbolLedger(r.Context(), symbol)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return symbol, nil, false
	}
	history, err := tradebook.PositionHistory(ledger)
	if errors.Is(err, tradebook.ErrZeroPositionDivision) {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return symbol, nil, false
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return symbol, nil, false
	}
	return symbol, history, true
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	_, history, ok := s.history(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

type dividendsResponse struct {
	Symbol    string                          `json:"symbol"`
	Dividends []tradebook.DividendAttribution `json:"dividends"`
	Total     decimal.Decimal                 `json:"total"`
	Problems  []string                        `json:"problems"`
}

func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	symbol, history, ok := s.history(w, r)
	if !ok {
		return
	}
	var events []tradebook.DividendEvent
	if s.feed != nil {
		var err error
		if events, err = s.feed(symbol); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	dividends, err := tradebook.Reconcile(symbol, history, events)
	if dividends == nil {
		dividends = []tradebook.DividendAttribution{}
	}
	s.writeJSON(w, http.StatusOK, dividendsResponse{
		Symbol:    symbol,
		Dividends: dividends,
		Total:     tradebook.TotalReceived(dividends),
		Problems:  messages(problems(err)),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func problems(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var res []error
		for _, e := range joined.Unwrap() {
			res = append(res, problems(e)...)
		}
		return res
	}
	return []error{err}
}

func messages(errs []error) []string {
	res := make([]string, 0, len(errs))
	for _, err := range errs {
		res = append(res, err.Error())
	}
	return res
}
