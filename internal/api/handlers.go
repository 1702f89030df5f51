package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"fjacquet/divledger/internal/ledger"
	"fjacquet/divledger/internal/ledgererror"
	"fjacquet/divledger/internal/logging"
	"fjacquet/divledger/internal/models"
	"fjacquet/divledger/internal/validation"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// transactionRequest is the body of POST and PUT /api/transactions.
// Amounts are accepted as JSON strings or numbers.
type transactionRequest struct {
	Name            string          `json:"name"`
	Class           string          `json:"class"`
	Division        string          `json:"division"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	ReceiptPath     *string         `json:"receipt_path"`
	ValidateBalance bool            `json:"validate_balance"`
	Latitude        *string         `json:"latitude"`
	Longitude       *string         `json:"longitude"`
}

type divisionRequest struct {
	Division        string          `json:"division"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

type balanceResponse struct {
	Division  string          `json:"division"`
	Balance   decimal.Decimal `json:"balance"`
	Formatted string          `json:"formatted"`
}

type createdResponse struct {
	ID          string `json:"id"`
	ReceiptPath string `json:"receipt_path,omitempty"`
}

type resultResponse struct {
	OK bool `json:"ok"`
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Health handles GET /api/health
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetFinancials handles GET /api/financials
func (s *Server) GetFinancials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Financials())
}

// GetDivisions handles GET /api/divisions
func (s *Server) GetDivisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Divisions())
}

// GetDivisionSummary handles GET /api/divisions/summary
func (s *Server) GetDivisionSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Summary())
}

// GetDivisionBalance handles GET /api/divisions/{name}/balance
func (s *Server) GetDivisionBalance(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	balance, err := s.ledger.Balance(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Division:  name,
		Balance:   balance,
		Formatted: models.FormatCurrency(balance),
	})
}

// GetDivisionStats handles GET /api/divisions/{name}/stats
func (s *Server) GetDivisionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Stats(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetDivisionTransactions handles GET /api/divisions/{name}/transactions
func (s *Server) GetDivisionTransactions(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.ledger.DivisionExists(name) {
		s.writeError(w, r, &ledgererror.DivisionNotFoundError{Division: name})
		return
	}
	writeJSON(w, http.StatusOK, ledger.DivisionTransactions(s.ledger.Transactions(), name))
}

// GetTransactions handles GET /api/transactions
// Query: type, division, name, sort, order (asc|desc), limit.
func (s *Server) GetTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ledger.Filter{
		Division: q.Get("division"),
		Name:     q.Get("name"),
		SortBy:   strings.ToLower(q.Get("sort")),
	}
	if t := q.Get("type"); t != "" && !strings.EqualFold(t, "all") {
		typ, err := models.ParseTransactionType(t)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter.Type = typ
	}
	if strings.EqualFold(filter.Division, "all") {
		filter.Division = ""
	}
	if !ledger.ValidSortKey(filter.SortBy) {
		writeBadRequest(w, fmt.Sprintf("unknown sort key %q", filter.SortBy))
		return
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "desc":
	case "asc":
		filter.Ascending = true
	default:
		writeBadRequest(w, "order must be asc or desc")
		return
	}
	limit, err := parseLimit(q.Get("limit"), -1)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	txs := ledger.FilterTransactions(s.ledger.Transactions(), filter)
	if limit >= 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	writeJSON(w, http.StatusOK, txs)
}

func parseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// GetRecentTransactions handles GET /api/transactions/recent (default 5)
func (s *Server) GetRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 5)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ledger.RecentTransactions(s.ledger.Transactions(), limit))
}

// GetTimeline handles GET /api/timeline
func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.DailyTimeline(s.ledger.Transactions()))
}

// GetTopSpenders handles GET /api/top-spenders
func (s *Server) GetTopSpenders(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"), 5)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ledger.TopSpenders(s.ledger.Transactions(), limit))
}

// GetSpendingByDivision handles GET /api/spending
func (s *Server) GetSpendingByDivision(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.SpendingByDivision(s.ledger.Transactions()))
}

// GetLocations handles GET /api/locations
func (s *Server) GetLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.LocatedTransactions(s.ledger.Transactions()))
}

// GetLocationClusters handles GET /api/locations/clusters
func (s *Server) GetLocationClusters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.LocationClusters(s.ledger.Transactions()))
}

// GetLocatedDivisionCounts handles GET /api/locations/divisions
func (s *Server) GetLocatedDivisionCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.LocatedCountsByDivision(s.ledger.Transactions()))
}

// GetLocatedDailyCounts handles GET /api/locations/daily
func (s *Server) GetLocatedDailyCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.LocatedDailyCounts(s.ledger.Transactions()))
}

// SubmitExpense handles POST /api/expenses, the end-user expense form. The
// debit is always checked against the division balance. Multipart bodies may
// carry a "receipt" file; JSON bodies use the transactionRequest shape.
func (s *Server) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+(1<<20))

	var in ledger.TransactionInput
	var receiptPath string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
			writeBadRequest(w, fmt.Sprintf("invalid form: %v", err))
			return
		}
		amount, err := models.ParseAmount(r.FormValue("amount"))
		if err != nil {
			s.writeError(w, r, ledgererror.NewValidationError("amount", err.Error()))
			return
		}
		in = ledger.TransactionInput{
			Name:        r.FormValue("name"),
			ClassLabel:  r.FormValue("class"),
			Division:    r.FormValue("division"),
			Amount:      amount,
			Description: r.FormValue("description"),
			Latitude:    r.FormValue("latitude"),
			Longitude:   r.FormValue("longitude"),
		}
		if in.Latitude == "" && in.Longitude == "" {
			// Capture failures are dropped; the expense is recorded without coordinates.
			in.Latitude, in.Longitude, _ = validation.SplitLocation(r.FormValue("location"))
		}

		file, header, err := r.FormFile("receipt")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeBadRequest(w, fmt.Sprintf("invalid receipt upload: %v", err))
			return
		default:
			defer file.Close()
			if s.receipts == nil {
				writeJSONError(w, http.StatusServiceUnavailable, "receipts_disabled", "receipt storage is not configured")
				return
			}
			receiptPath, err = s.receipts.Save(header.Filename, file)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			in.ReceiptPath = receiptPath
		}
	} else {
		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		in = ledger.TransactionInput{
			Name:        req.Name,
			ClassLabel:  req.Class,
			Division:    req.Division,
			Amount:      req.Amount,
			Description: req.Description,
			Latitude:    deref(req.Latitude),
			Longitude:   deref(req.Longitude),
		}
	}

	in.Type = models.TypeDebit
	in.ValidateBalance = true

	id, err := s.ledger.AddTransaction(in)
	if err != nil {
		if receiptPath != "" {
			if rerr := s.receipts.Remove(receiptPath); rerr != nil {
				s.logger.WithError(rerr).Warn("Could not discard receipt of refused expense",
					logging.F(logging.FieldFile, receiptPath))
			}
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id, ReceiptPath: receiptPath})
}

// AddTransaction handles POST /api/transactions
func (s *Server) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	typ, err := models.ParseTransactionType(req.Type)
	if err != nil {
		s.writeError(w, r, ledgererror.NewValidationError("type", err.Error()))
		return
	}

	id, err := s.ledger.AddTransaction(ledger.TransactionInput{
		Name:            req.Name,
		ClassLabel:      req.Class,
		Division:        req.Division,
		Type:            typ,
		Amount:          req.Amount,
		Description:     req.Description,
		ReceiptPath:     deref(req.ReceiptPath),
		ValidateBalance: req.ValidateBalance,
		Latitude:        deref(req.Latitude),
		Longitude:       deref(req.Longitude),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// GetTransaction handles GET /api/transactions/{id}
func (s *Server) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.Transaction(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (s *Server) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	typ, err := models.ParseTransactionType(req.Type)
	if err != nil {
		s.writeError(w, r, ledgererror.NewValidationError("type", err.Error()))
		return
	}

	err = s.ledger.UpdateTransaction(id, ledger.TransactionUpdate{
		Name:        req.Name,
		ClassLabel:  req.Class,
		Division:    req.Division,
		Type:        typ,
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptPath: req.ReceiptPath,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.GetTransaction(w, r)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (s *Server) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed, err := s.ledger.DeleteTransaction(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, fmt.Errorf("transaction %s: %w", id, ledgererror.ErrRecordNotFound))
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{OK: true})
}

// AddDivision handles POST /api/divisions
func (s *Server) AddDivision(w http.ResponseWriter, r *http.Request) {
	var req divisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if _, err := s.ledger.AddDivision(req.Division, req.StartingBalance); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.Division{Name: req.Division, StartingBalance: req.StartingBalance})
}

// UpdateDivision handles PUT /api/divisions/{name}
func (s *Server) UpdateDivision(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req struct {
		StartingBalance decimal.Decimal `json:"starting_balance"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if _, err := s.ledger.UpdateDivision(name, req.StartingBalance); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.Division{Name: name, StartingBalance: req.StartingBalance})
}

// DeleteDivision handles DELETE /api/divisions/{name}
func (s *Server) DeleteDivision(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	removed, err := s.ledger.DeleteDivision(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, &ledgererror.DivisionNotFoundError{Division: name})
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{OK: true})
}
