package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(name, description, icon, color string, isRecurring bool) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	if err := s.ensureNameAvailable(name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		Icon:        icon,
		Color:       color,
		IsRecurring: isRecurring,
	}
	category.ApplyDefaults()

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategories retrieves a paginated list of categories ordered by name.
func (s *categoryService) GetCategories(page pagination.PageRequest, filter CategoryFilter) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{})
	if filter.IsRecurring != nil {
		base = base.Where("is_recurring = ?", *filter.IsRecurring)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(categoryID string) (*models.Category, error) {
	return findCategory(s.db, categoryID)
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(categoryID string, update CategoryUpdate) (*models.Category, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if name != category.Name {
			if err := s.ensureNameAvailable(name, category.ID); err != nil {
				return nil, err
			}
			updates["name"] = name
		}
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Icon != nil {
		icon := *update.Icon
		if icon == "" {
			icon = models.DefaultCategoryIcon
		}
		updates["icon"] = icon
	}
	if update.Color != nil {
		color := *update.Color
		if color == "" {
			color = models.DefaultCategoryColor
		}
		updates["color"] = color
	}
	if update.IsRecurring != nil {
		updates["is_recurring"] = *update.IsRecurring
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCategoryByID(categoryID)
}

// DeleteCategory removes a category together with every transaction, budget
// and recurring expense filed under it, and the reminders linked to those.
func (s *categoryService) DeleteCategory(categoryID string) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var subscriptionIDs []string
		if err := tx.Model(&models.RecurringExpense{}).Where("category_id = ?", category.ID).Pluck("id", &subscriptionIDs).Error; err != nil {
			return err
		}
		var budgetIDs []string
		if err := tx.Model(&models.Budget{}).Where("category_id = ?", category.ID).Pluck("id", &budgetIDs).Error; err != nil {
			return err
		}

		if len(subscriptionIDs) > 0 {
			if err := tx.Model(&models.Transaction{}).
				Where("recurring_expense_id IN ?", subscriptionIDs).
				Update("recurring_expense_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("recurring_expense_id IN ?", subscriptionIDs).Delete(&models.Reminder{}).Error; err != nil {
				return err
			}
		}
		if len(budgetIDs) > 0 {
			if err := tx.Where("budget_id IN ?", budgetIDs).Delete(&models.Reminder{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Budget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.RecurringExpense{}).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) ensureNameAvailable(name, exceptID string) error {
	query := s.db.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

// findCategory loads a category, mapping a miss to CATEGORY_NOT_FOUND.
func findCategory(db *gorm.DB, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}
