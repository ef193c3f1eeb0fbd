package services

import (
	"testing"
	"time"

	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.CreateCategory("Groceries", "Food shopping", "🛒", "#FF0000", false)
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected non-empty category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
		if cat.Icon != "🛒" {
			t.Errorf("expected icon 🛒, got %s", cat.Icon)
		}
		if cat.Description != "Food shopping" {
			t.Errorf("expected description 'Food shopping', got %s", cat.Description)
		}
	})

	t.Run("defaults_icon_and_color", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat, err := svc.CreateCategory("Streaming", "", "", "", true)
		testutil.AssertNoError(t, err)

		if cat.Icon != models.DefaultCategoryIcon {
			t.Errorf("expected default icon, got %s", cat.Icon)
		}
		if cat.Color != models.DefaultCategoryColor {
			t.Errorf("expected default color, got %s", cat.Color)
		}
		if !cat.IsRecurring {
			t.Error("expected is_recurring to be true")
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.CreateCategory("Food", "", "", "", false)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory("Food", "", "", "", false)
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.CreateCategory("   ", "", "", "", false)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetCategories(t *testing.T) {
	t.Run("ordered_by_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		testutil.CreateTestCategoryWithName(t, db, "Utilities")
		testutil.CreateTestCategoryWithName(t, db, "Entertainment")
		testutil.CreateTestCategoryWithName(t, db, "Health")

		result, err := svc.GetCategories(pagination.PageRequest{}, CategoryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 3 {
			t.Fatalf("expected 3 categories, got %d", result.TotalItems)
		}
		want := []string{"Entertainment", "Health", "Utilities"}
		for i, name := range want {
			if result.Data[i].Name != name {
				t.Errorf("position %d: expected %s, got %s", i, name, result.Data[i].Name)
			}
		}
	})

	t.Run("filter_recurring", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.CreateCategory("Streaming", "", "", "", true)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory("Groceries", "", "", "", false)
		testutil.AssertNoError(t, err)

		recurring := true
		result, err := svc.GetCategories(pagination.PageRequest{}, CategoryFilter{IsRecurring: &recurring})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 || result.Data[0].Name != "Streaming" {
			t.Errorf("expected only Streaming, got %+v", result.Data)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestCategory(t, db)
		}

		result, err := svc.GetCategories(pagination.PageRequest{Page: 2, PageSize: 2}, CategoryFilter{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", result.TotalPages)
		}
	})
}

func TestGetCategoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)

	created := testutil.CreateTestCategory(t, db)

	got, err := svc.GetCategoryByID(created.ID)
	testutil.AssertNoError(t, err)
	if got.Name != created.Name {
		t.Errorf("expected %s, got %s", created.Name, got.Name)
	}

	_, err = svc.GetCategoryByID("00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestUpdateCategory(t *testing.T) {
	t.Run("partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat := testutil.CreateTestCategoryWithName(t, db, "Old")
		name := "New"
		recurring := true

		updated, err := svc.UpdateCategory(cat.ID, CategoryUpdate{Name: &name, IsRecurring: &recurring})
		testutil.AssertNoError(t, err)

		if updated.Name != "New" {
			t.Errorf("expected name New, got %s", updated.Name)
		}
		if !updated.IsRecurring {
			t.Error("expected is_recurring to be true")
		}
		if updated.Color != models.DefaultCategoryColor {
			t.Errorf("expected color unchanged, got %s", updated.Color)
		}
	})

	t.Run("rename_to_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		testutil.CreateTestCategoryWithName(t, db, "Taken")
		cat := testutil.CreateTestCategoryWithName(t, db, "Mine")
		name := "Taken"

		_, err := svc.UpdateCategory(cat.ID, CategoryUpdate{Name: &name})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_is_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		cat := testutil.CreateTestCategoryWithName(t, db, "Same")
		name := "Same"
		desc := "updated"

		updated, err := svc.UpdateCategory(cat.ID, CategoryUpdate{Name: &name, Description: &desc})
		testutil.AssertNoError(t, err)
		if updated.Description != "updated" {
			t.Errorf("expected description updated, got %s", updated.Description)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		_, err := svc.UpdateCategory("00000000-0000-0000-0000-000000000000", CategoryUpdate{})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db)
		other := testutil.CreateTestCategory(t, db)

		sub := testutil.CreateTestRecurringExpense(t, db, user.ID, cat.ID, models.NewDate(2025, 3, 10))
		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 3, 2025, "100")
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, "20", models.NewDate(2025, 3, 2))

		// a payment filed under another category still points at the subscription
		linked := testutil.CreateTestTransaction(t, db, user.ID, other.ID, "15.99", models.NewDate(2025, 3, 1))
		db.Model(linked).Update("recurring_expense_id", sub.ID)

		billReminder := testutil.CreateTestReminder(t, db, user.ID, time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC), models.FrequencyOnce)
		db.Model(billReminder).Update("recurring_expense_id", sub.ID)
		budgetReminder := testutil.CreateTestReminder(t, db, user.ID, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), models.FrequencyOnce)
		db.Model(budgetReminder).Update("budget_id", budget.ID)
		keep := testutil.CreateTestReminder(t, db, user.ID, time.Date(2025, 3, 6, 9, 0, 0, 0, time.UTC), models.FrequencyOnce)

		err := svc.DeleteCategory(cat.ID)
		testutil.AssertNoError(t, err)

		counts := []struct {
			name  string
			model interface{}
			want  int64
		}{
			{"categories", &models.Category{}, 1},
			{"recurring_expenses", &models.RecurringExpense{}, 0},
			{"budgets", &models.Budget{}, 0},
			{"transactions", &models.Transaction{}, 1},
			{"reminders", &models.Reminder{}, 1},
		}
		for _, c := range counts {
			var n int64
			db.Model(c.model).Count(&n)
			if n != c.want {
				t.Errorf("%s: expected %d rows, got %d", c.name, c.want, n)
			}
		}

		var survivor models.Transaction
		db.First(&survivor, "id = ?", linked.ID)
		if survivor.RecurringExpenseID != nil {
			t.Error("expected surviving transaction to lose its subscription link")
		}

		var remaining models.Reminder
		db.First(&remaining)
		if remaining.ID != keep.ID {
			t.Errorf("expected unrelated reminder %s to survive, got %s", keep.ID, remaining.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		err := svc.DeleteCategory("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
