package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/services"
)

const testTransactionID = "0195a1b2-0000-7000-8000-0000000000a1"

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.TransactionInput) (*services.TransactionResult, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[services.TransactionDetail], error)
	getTransactionByIDFn  func(userID, transactionID string) (*services.TransactionDetail, error)
	deleteTransactionFn   func(userID, transactionID string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.TransactionInput) (*services.TransactionResult, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &services.TransactionResult{Transaction: &services.TransactionDetail{}}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[services.TransactionDetail], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]services.TransactionDetail{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*services.TransactionDetail, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &services.TransactionDetail{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 with budget reminders", func(t *testing.T) {
		var got services.TransactionInput
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID string, in services.TransactionInput) (*services.TransactionResult, error) {
				got = in
				detail := &services.TransactionDetail{
					Transaction: models.Transaction{
						Base:            models.Base{ID: testTransactionID},
						UserID:          userID,
						Title:           in.Title,
						Amount:          models.NewMoney(in.Amount),
						TransactionType: in.TransactionType,
					},
					CategoryName: "Food",
				}
				return &services.TransactionResult{
					Transaction: detail,
					Reminders:   []models.Reminder{{Title: "Budget Food at 92%", ReminderType: models.ReminderTypeBudgetCheck}},
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"category_id":"`+testCategoryID+`","title":"Groceries","amount":"42.50","date":"2025-03-14"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.TransactionType != models.TransactionTypeExpense {
			t.Errorf("expected default type expense, got %s", got.TransactionType)
		}
		if !got.Amount.Equal(decimal.RequireFromString("42.50")) {
			t.Errorf("expected amount 42.50, got %s", got.Amount)
		}
		if got.Date == nil || got.Date.String() != "2025-03-14" {
			t.Errorf("expected date 2025-03-14, got %v", got.Date)
		}

		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["category_name"] != "Food" {
			t.Errorf("expected category_name Food, got %v", tx["category_name"])
		}
		reminders := result["reminders"].([]interface{})
		if len(reminders) != 1 {
			t.Errorf("expected 1 reminder, got %d", len(reminders))
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testTransactionID {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "zero amount", body: `{"category_id":"` + testCategoryID + `","title":"x","amount":0}`},
		{name: "negative amount", body: `{"category_id":"` + testCategoryID + `","title":"x","amount":"-5"}`},
		{name: "missing title", body: `{"category_id":"` + testCategoryID + `","amount":"5"}`},
		{name: "bad category id", body: `{"category_id":"7","title":"x","amount":"5"}`},
		{name: "unknown type", body: `{"category_id":"` + testCategoryID + `","title":"x","amount":"5","transaction_type":"transfer"}`},
		{name: "malformed date", body: `{"category_id":"` + testCategoryID + `","title":"x","amount":"5","date":"14/03/2025"}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/transactions", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("returns 404 when category missing", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(string, services.TransactionInput) (*services.TransactionResult, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions",
			`{"category_id":"`+testCategoryID+`","title":"x","amount":"5"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.TransactionFilter
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[services.TransactionDetail], error) {
				got = filter
				resp := pagination.NewPageResponse([]services.TransactionDetail{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET",
			"/transactions?from_date=2025-03-01&to_date=2025-03-31&type=expense&was_impulsive=true&category_id="+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.FromDate == nil || got.FromDate.String() != "2025-03-01" {
			t.Errorf("unexpected from_date %v", got.FromDate)
		}
		if got.Type == nil || *got.Type != models.TransactionTypeExpense {
			t.Errorf("unexpected type %v", got.Type)
		}
		if got.WasImpulsive == nil || !*got.WasImpulsive {
			t.Error("expected was_impulsive filter")
		}
		if got.CategoryID == nil || *got.CategoryID != testCategoryID {
			t.Errorf("unexpected category filter %v", got.CategoryID)
		}
	})

	tests := []struct {
		name  string
		query string
	}{
		{name: "inverted range", query: "?from_date=2025-03-31&to_date=2025-03-01"},
		{name: "bad type", query: "?type=transfer"},
		{name: "bad date", query: "?from_date=yesterday"},
		{name: "bad category", query: "?category_id=abc"},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 404 for another user's transaction", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(string, string) (*services.TransactionDetail, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit))

		rec := doRequest(r, "DELETE", "/transactions/"+testTransactionID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_TRANSACTION" {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})
}
