package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// TransactionStatus is derived from the pending flag on every save.
type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "Paid"
	StatusPending TransactionStatus = "Pending"
)

// DateLayout is the wire and form format of transaction dates.
const DateLayout = "2006-01-02"

// Transaction is one ledger entry. Default ordering is date DESC, created_at DESC.
type Transaction struct {
	Base
	UserID        string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Date          time.Time         `gorm:"type:date;not null;index" json:"date"`
	Type          TransactionType   `gorm:"column:transaction_type;size:10;not null" json:"transaction_type"`
	Amount        decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	CategoryID    string            `gorm:"type:uuid;not null;index" json:"category_id"`
	SubCategoryID *string           `gorm:"column:subcategory_id;type:uuid;index" json:"subcategory_id,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes"`
	IsPending     bool              `gorm:"not null;default:false" json:"is_pending"`
	Status        TransactionStatus `gorm:"size:10;not null;default:'Paid';index" json:"status"`

	// Relationships
	User        *User        `gorm:"foreignKey:UserID" json:"-"`
	Category    *Category    `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID;constraint:OnDelete:SET NULL" json:"subcategory,omitempty"`
}

// StatusFor returns the status implied by a pending flag.
func StatusFor(pending bool) TransactionStatus {
	if pending {
		return StatusPending
	}
	return StatusPaid
}

// BeforeSave keeps Status consistent with IsPending on create and update.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.Status = StatusFor(t.IsPending)
	if t.Date.IsZero() {
		return nil
	}
	y, m, d := t.Date.Date()
	t.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}

// CategoryName returns the category name or "" when not loaded.
func (t *Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return t.Category.Name
}

// SubCategoryName returns the sub-category name or "" when unset.
func (t *Transaction) SubCategoryName() string {
	if t.SubCategory == nil {
		return ""
	}
	return t.SubCategory.Name
}

// IsIncome reports whether the entry is income.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}
