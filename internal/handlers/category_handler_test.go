package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/services"
)

const testCategoryID = "0195a1b2-0000-7000-8000-0000000000c1"

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(name, description, icon, color string, isRecurring bool) (*models.Category, error)
	getCategoriesFn   func(page pagination.PageRequest, filter services.CategoryFilter) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn func(categoryID string) (*models.Category, error)
	updateCategoryFn  func(categoryID string, update services.CategoryUpdate) (*models.Category, error)
	deleteCategoryFn  func(categoryID string) error
}

func (m *mockCategoryService) CreateCategory(name, description, icon, color string, isRecurring bool) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(name, description, icon, color, isRecurring)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetCategories(page pagination.PageRequest, filter services.CategoryFilter) (*pagination.PageResponse[models.Category], error) {
	if m.getCategoriesFn != nil {
		return m.getCategoriesFn(page, filter)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(categoryID string, update services.CategoryUpdate) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(categoryID, update)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(name, _, icon, color string, isRecurring bool) (*models.Category, error) {
				return &models.Category{
					Base:        models.Base{ID: testCategoryID},
					Name:        name,
					Icon:        icon,
					Color:       color,
					IsRecurring: isRecurring,
				}, nil
			},
		}
		audit := &mockAuditService{}
		handler := NewCategoryHandler(catSvc, audit)
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories",
			`{"name":"Streaming","icon":"📺","color":"#FF0000","is_recurring":true}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["name"] != "Streaming" {
			t.Errorf("expected Streaming, got %v", cat["name"])
		}
		if cat["is_recurring"] != true {
			t.Errorf("expected is_recurring true, got %v", cat["is_recurring"])
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testCategoryID {
			t.Errorf("expected CREATE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"icon":"📺"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","color":"red"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(_, _, _, _ string, _ bool) (*models.Category, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		handler := NewCategoryHandler(catSvc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"name":"Food"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("passes recurring filter", func(t *testing.T) {
		var gotFilter services.CategoryFilter
		catSvc := &mockCategoryService{
			getCategoriesFn: func(page pagination.PageRequest, filter services.CategoryFilter) (*pagination.PageResponse[models.Category], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Category{{Name: "Streaming", IsRecurring: true}}, 1, 20, 1)
				return &resp, nil
			},
		}
		handler := NewCategoryHandler(catSvc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories?is_recurring=true", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFilter.IsRecurring == nil || !*gotFilter.IsRecurring {
			t.Error("expected is_recurring=true filter")
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) {
			t.Errorf("expected total_items 1, got %v", result["total_items"])
		}
	})

	t.Run("returns 400 on invalid boolean", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories?is_recurring=maybe", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetCategoryByID(t *testing.T) {
	t.Run("returns 200 when found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(id string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: id}, Name: "Food"}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var got services.CategoryUpdate
		catSvc := &mockCategoryService{
			updateCategoryFn: func(id string, update services.CategoryUpdate) (*models.Category, error) {
				got = update
				return &models.Category{Base: models.Base{ID: id}, Name: *update.Name}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/"+testCategoryID, `{"name":"Groceries"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Name == nil || *got.Name != "Groceries" {
			t.Errorf("expected name update, got %v", got.Name)
		}
		if got.Color != nil || got.Icon != nil || got.IsRecurring != nil {
			t.Error("expected untouched fields to stay nil")
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deleted string
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(id string) error {
				deleted = id
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, audit))

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deleted != testCategoryID {
			t.Errorf("expected %s deleted, got %s", testCategoryID, deleted)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_CATEGORY" {
			t.Errorf("expected DELETE_CATEGORY audit entry, got %+v", audit.entries)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		catSvc := &mockCategoryService{
			deleteCategoryFn: func(string) error { return apperrors.ErrCategoryNotFound },
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
