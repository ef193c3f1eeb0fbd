package models

// Defaults applied when a category is created without icon or color.
const (
	DefaultCategoryIcon  = "💰"
	DefaultCategoryColor = "#007bff"
)

// Category is a spending category shared by all users.
type Category struct {
	Base
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Icon        string `gorm:"size:10" json:"icon"`
	Color       string `gorm:"size:7" json:"color"`
	IsRecurring bool   `json:"is_recurring"`
}

// ApplyDefaults fills empty icon and color.
func (c *Category) ApplyDefaults() {
	if c.Icon == "" {
		c.Icon = DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
}
