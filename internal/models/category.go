package models

import (
	"time"

	"faithledger/internal/uuid"

	"gorm.io/gorm"
)

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "Income"
	CategoryTypeExpense CategoryType = "Expense"
)

// Valid reports whether t is one of the known category types.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is the first level of the income/expense taxonomy.
// Ordered by (type, name).
type Category struct {
	Base
	Name     string       `gorm:"size:100;not null" json:"name"`
	Type     CategoryType `gorm:"size:10;not null;index" json:"type"`
	IsActive bool         `gorm:"not null" json:"is_active"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

// String renders the category the way pickers show it, e.g. "Tithes (Income)".
func (c Category) String() string {
	return c.Name + " (" + string(c.Type) + ")"
}

// SubCategory is the optional second level under a Category. Ordered by name.
type SubCategory struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	IsActive   bool      `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *SubCategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}

// TableName keeps the table name stable regardless of gorm's pluralizer.
func (SubCategory) TableName() string { return "subcategories" }
