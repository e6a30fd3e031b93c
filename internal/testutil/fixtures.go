package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"faithledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "secret-pass1!"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a hashed password and unique
// username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWith(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWith creates an active user with the given username and email.
func CreateTestUserWith(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an active category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestCategoryNamed creates an active category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     name,
		Type:     categoryType,
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubCategory creates an active sub-category under categoryID.
func CreateTestSubCategory(t *testing.T, db *gorm.DB, categoryID string) *models.SubCategory {
	t.Helper()

	sub := &models.SubCategory{
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test SubCategory %d", nextID()),
		IsActive:   true,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test sub-category: %v", err)
	}
	return sub
}

// TxOption adjusts a fixture transaction before it is saved.
type TxOption func(*models.Transaction)

// OnDate sets the transaction date.
func OnDate(d time.Time) TxOption {
	return func(tx *models.Transaction) { tx.Date = d }
}

// Pending marks the transaction as pending.
func Pending() TxOption {
	return func(tx *models.Transaction) { tx.IsPending = true }
}

// WithNotes sets the transaction notes.
func WithNotes(notes string) TxOption {
	return func(tx *models.Transaction) { tx.Notes = notes }
}

// WithSubCategory sets the transaction sub-category.
func WithSubCategory(id string) TxOption {
	return func(tx *models.Transaction) { tx.SubCategoryID = &id }
}

// CreateTestTransaction creates a transaction against category for the given
// amount. The transaction type follows the category type and the date
// defaults to today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, category *models.Category, amount string, opts ...TxOption) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		Date:       Date(time.Now().Year(), time.Now().Month(), time.Now().Day()),
		Type:       models.TransactionType(category.Type),
		Amount:     decimal.RequireFromString(amount),
		CategoryID: category.ID,
	}
	for _, opt := range opts {
		opt(tx)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
