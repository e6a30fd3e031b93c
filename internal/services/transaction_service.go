package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"
	"faithledger/internal/pagination"
	"faithledger/internal/uuid"
)

// maxAmount is the first value that no longer fits numeric(12,2).
var maxAmount = decimal.New(1, 10)

// transactionService handles ledger entries. Entries are shared by the whole
// organization; the recording user is kept for reference only.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// checkInput enforces the write-time invariants: positive amount, an
// existing category whose type matches the entry, and a sub-category that
// belongs to that category. Disabled categories and sub-categories can only
// be kept, not newly chosen.
func (s *transactionService) checkInput(in TransactionInput, existing *models.Transaction) (*models.Category, *models.SubCategory, error) {
	if !in.Type.Valid() {
		return nil, nil, apperrors.ErrInvalidTransactionType
	}
	if !in.Amount.IsPositive() {
		return nil, nil, apperrors.ErrInvalidAmount
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "Ensure that there are no more than 2 decimal places.")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidAmount, "Ensure that there are no more than 12 digits in total.")
	}
	if in.Date.IsZero() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	if !uuid.IsValid(in.CategoryID) {
		return nil, nil, apperrors.ErrCategoryNotFound
	}
	var category models.Category
	if err := s.db.Where("id = ?", in.CategoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrCategoryNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	keepsCategory := existing != nil && existing.CategoryID == category.ID
	if !category.IsActive && !keepsCategory {
		return nil, nil, apperrors.ErrCategoryInactive
	}
	if string(category.Type) != string(in.Type) {
		return nil, nil, apperrors.ErrCategoryTypeMismatch
	}

	if in.SubCategoryID == nil || *in.SubCategoryID == "" {
		return &category, nil, nil
	}
	if !uuid.IsValid(*in.SubCategoryID) {
		return nil, nil, apperrors.ErrSubCategoryNotFound
	}
	var sub models.SubCategory
	if err := s.db.Where("id = ?", *in.SubCategoryID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrSubCategoryNotFound
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if sub.CategoryID != category.ID {
		return nil, nil, apperrors.ErrSubCategoryMismatch
	}
	keepsSub := existing != nil && existing.SubCategoryID != nil && *existing.SubCategoryID == sub.ID
	if !sub.IsActive && !keepsSub {
		return nil, nil, apperrors.ErrSubCategoryInactive
	}
	return &category, &sub, nil
}

// CreateTransaction records a new entry on behalf of userID.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	category, sub, err := s.checkInput(in, nil)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:     userID,
		Date:       in.Date,
		Type:       in.Type,
		Amount:     in.Amount,
		CategoryID: category.ID,
		Notes:      strings.TrimSpace(in.Notes),
		IsPending:  in.IsPending,
	}
	if sub != nil {
		transaction.SubCategoryID = &sub.ID
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction.Category = category
	transaction.SubCategory = sub
	return transaction, nil
}

// UpdateTransaction replaces the editable fields of an entry. The status is
// recomputed from the pending flag on save.
func (s *transactionService) UpdateTransaction(id string, in TransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}

	category, sub, err := s.checkInput(in, transaction)
	if err != nil {
		return nil, err
	}

	transaction.Date = in.Date
	transaction.Type = in.Type
	transaction.Amount = in.Amount
	transaction.CategoryID = category.ID
	transaction.SubCategoryID = nil
	if sub != nil {
		transaction.SubCategoryID = &sub.ID
	}
	transaction.Notes = strings.TrimSpace(in.Notes)
	transaction.IsPending = in.IsPending

	transaction.User = nil
	transaction.Category = nil
	transaction.SubCategory = nil
	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction.Category = category
	transaction.SubCategory = sub
	return transaction, nil
}

// GetTransactionByID retrieves a transaction with its category, sub-category
// and recording user.
func (s *transactionService) GetTransactionByID(id string) (*models.Transaction, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrTransactionNotFound
	}

	var transaction models.Transaction
	if err := s.db.Preload("Category").Preload("SubCategory").Preload("User").
		Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction permanently removes an entry.
func (s *transactionService) DeleteTransaction(id string) error {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Where("id = ?", transaction.ID).Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTransactions returns one page of the filtered entries, newest first,
// together with the income and expense totals of the whole filtered set. A
// page past the end shows the last page.
func (s *transactionService) ListTransactions(filter TransactionFilter, page pagination.PageRequest) (*TransactionPage, error) {
	filtered := func() *gorm.DB {
		return applyTransactionFilters(s.db.Model(&models.Transaction{}), filter)
	}

	var totalItems int64
	if err := filtered().Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	page = pagination.Clamp(page, totalItems)

	var transactions []models.Transaction
	if err := filtered().
		Preload("Category").Preload("SubCategory").Preload("User").
		Order("date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, expense, err := sumByType(filtered())
	if err != nil {
		return nil, err
	}

	return &TransactionPage{
		PageResponse: pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems),
		TotalIncome:  income,
		TotalExpense: expense,
	}, nil
}

// typeTotal is one row of a per-type SUM.
type typeTotal struct {
	TransactionType models.TransactionType
	Total           decimal.Decimal
}

// sumByType totals the amounts of q per transaction type.
func sumByType(q *gorm.DB) (income, expense decimal.Decimal, err error) {
	var totals []typeTotal
	if err := q.Select("transaction_type, SUM(amount) AS total").
		Group("transaction_type").
		Scan(&totals).Error; err != nil {
		return decimal.Zero, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, t := range totals {
		switch t.TransactionType {
		case models.TransactionTypeIncome:
			income = t.Total.Round(2)
		case models.TransactionTypeExpense:
			expense = t.Total.Round(2)
		}
	}
	return income, expense, nil
}

// escapeLike escapes LIKE wildcards so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.DateFrom != nil {
		q = q.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", *f.DateTo)
	}
	if f.Type != nil {
		q = q.Where("transaction_type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(`LOWER(notes) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(search)+"%")
	}
	return q
}
