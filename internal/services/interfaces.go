package services

import (
	"context"
	"time"

	"faithledger/internal/ledger"
	"faithledger/internal/models"
	"faithledger/internal/pagination"

	"github.com/shopspring/decimal"
)

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password1 string
	Password2 string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(in RegisterInput) (*models.User, error)
	Authenticate(identifier, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	SetPassword(userID, password string) error
}

// PasswordResetServicer issues and redeems password reset links.
type PasswordResetServicer interface {
	MakeToken(user *models.User) (string, error)
	CheckToken(user *models.User, token string) bool
	RequestReset(ctx context.Context, email, baseURL string) error
	ResolveUser(uid, token string) (*models.User, error)
	ConfirmReset(uid, token, password1, password2 string) error
}

// CategoryInput carries the category form fields.
type CategoryInput struct {
	Name     string
	Type     models.CategoryType
	IsActive bool
}

// SubCategoryInput carries the sub-category form fields.
type SubCategoryInput struct {
	CategoryID string
	Name       string
	IsActive   bool
}

// CategoryServicer defines the contract for the income/expense taxonomy.
type CategoryServicer interface {
	ListCategories() ([]models.Category, error)
	ListActiveCategories(categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(id string) (*models.Category, error)
	CreateCategory(in CategoryInput) (*models.Category, error)
	UpdateCategory(id string, in CategoryInput) (*models.Category, error)
	ToggleCategory(id string) (*models.Category, error)
	DeleteCategory(id string) error

	ListActiveSubCategories(categoryID string) ([]models.SubCategory, error)
	GetSubCategoryByID(id string) (*models.SubCategory, error)
	CreateSubCategory(in SubCategoryInput) (*models.SubCategory, error)
	UpdateSubCategory(id string, in SubCategoryInput) (*models.SubCategory, error)
	DeleteSubCategory(id string) error
}

// TransactionInput carries the transaction form fields.
type TransactionInput struct {
	Date          time.Time
	Type          models.TransactionType
	Amount        decimal.Decimal
	CategoryID    string
	SubCategoryID *string
	Notes         string
	IsPending     bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Nil and empty fields do not constrain the result.
type TransactionFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Type       *models.TransactionType
	CategoryID *string
	Status     *models.TransactionStatus
	Search     string
}

// TransactionPage is one page of a filtered list plus the totals of the
// whole filtered set.
type TransactionPage struct {
	pagination.PageResponse[models.Transaction]
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

// TransactionServicer defines the contract for ledger entries.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(id string, in TransactionInput) (*models.Transaction, error)
	GetTransactionByID(id string) (*models.Transaction, error)
	DeleteTransaction(id string) error
	ListTransactions(filter TransactionFilter, page pagination.PageRequest) (*TransactionPage, error)
}

// Dashboard is the landing page data.
type Dashboard struct {
	MonthIncome   decimal.Decimal
	MonthExpense  decimal.Decimal
	MonthNet      decimal.Decimal
	PendingCount  int64
	Recent        []models.Transaction
	Trend         []ledger.MonthPoint
	Breakdown     []ledger.CategoryTotal
	OfferingTrend []ledger.SeriesPoint
}

// Analytics is the all-time analysis page data.
type Analytics struct {
	TopIncome           *ledger.CategoryTotal
	TopExpense          *ledger.CategoryTotal
	AverageMonthly      decimal.Decimal
	OfferingsYearToDate decimal.Decimal
	Breakdown           []ledger.CategoryTotal
	Trend               []ledger.MonthPoint
}

// DayDetail lists the transactions of a single day.
type DayDetail struct {
	Date         time.Time
	Transactions []models.Transaction
	Summary      ledger.Summary
}

// Report is the inclusive date-range report shown on screen and exported.
type Report struct {
	From         time.Time
	To           time.Time
	Transactions []models.Transaction
	Summary      ledger.Summary
}

// ReportServicer builds the read-only aggregate views.
type ReportServicer interface {
	Dashboard(today time.Time) (*Dashboard, error)
	Analytics(today time.Time) (*Analytics, error)
	Calendar(year int, month time.Month) (*ledger.Calendar, error)
	DayDetail(date time.Time) (*DayDetail, error)
	Report(from, to time.Time) (*Report, error)
}
