package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/middleware"
	"faithledger/internal/models"
	"faithledger/internal/pagination"
	"faithledger/internal/services"
)

// TransactionHandler handles the ledger entry pages.
type TransactionHandler struct {
	view         *View
	transactions services.TransactionServicer
	categories   services.CategoryServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(view *View, transactions services.TransactionServicer, categories services.CategoryServicer) *TransactionHandler {
	return &TransactionHandler{view: view, transactions: transactions, categories: categories}
}

// List shows one page of the filtered entries and the totals of the whole
// filtered set. Invalid filters are ignored rather than reported.
func (h *TransactionHandler) List(c *gin.Context) {
	var form TransactionFilterForm
	filter, ok := services.TransactionFilter{}, false
	if err := c.ShouldBindQuery(&form); err == nil {
		filter, ok = form.Filter()
	}

	pageNumber, _ := strconv.Atoi(c.Query("page"))
	page := pagination.PageRequest{Page: pageNumber, PageSize: pagination.DefaultPageSize}
	page.Defaults()

	result, err := h.transactions.ListTransactions(filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categories, err := h.categories.ListActiveCategories(nil)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.view.render(c, http.StatusOK, "transactions.html", gin.H{
		"Page":         result,
		"Net":          result.TotalIncome.Sub(result.TotalExpense),
		"Filter":       form,
		"FilterErrors": !ok,
		"Query":        form.Query(),
		"Categories":   categories,
		"Types":        transactionTypes,
		"Statuses":     statuses,
	})
}

// AddPage shows an empty entry form dated today.
func (h *TransactionHandler) AddPage(c *gin.Context) {
	form := TransactionForm{Date: h.view.Today().Format(models.DateLayout)}
	h.renderForm(c, form, apperrors.FieldErrors{}, nil)
}

// Add records a new entry.
func (h *TransactionHandler) Add(c *gin.Context) {
	form, in, errs := bindTransactionForm(c)
	if len(errs) == 0 {
		_, err := h.transactions.CreateTransaction(middleware.UserID(c), in)
		if err == nil {
			redirectWithFlash(c, middleware.FlashSuccess, "Transaction added successfully!", "/transactions")
			return
		}
		if errs = transactionFieldErrors(err); errs == nil {
			respondWithError(c, err)
			return
		}
	}
	h.renderForm(c, form, errs, nil)
}

// EditPage shows the form of an existing entry.
func (h *TransactionHandler) EditPage(c *gin.Context) {
	transaction, err := h.transactions.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.renderForm(c, transactionFormFor(transaction), apperrors.FieldErrors{}, transaction)
}

// Edit saves changes to an entry.
func (h *TransactionHandler) Edit(c *gin.Context) {
	transaction, err := h.transactions.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	form, in, errs := bindTransactionForm(c)
	if len(errs) == 0 {
		_, err := h.transactions.UpdateTransaction(transaction.ID, in)
		if err == nil {
			redirectWithFlash(c, middleware.FlashSuccess, "Transaction updated successfully!", "/transactions")
			return
		}
		if errs = transactionFieldErrors(err); errs == nil {
			respondWithError(c, err)
			return
		}
	}
	h.renderForm(c, form, errs, transaction)
}

// DeletePage asks for confirmation.
func (h *TransactionHandler) DeletePage(c *gin.Context) {
	transaction, err := h.transactions.GetTransactionByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.view.render(c, http.StatusOK, "transaction_delete.html", gin.H{"Transaction": transaction})
}

// Delete removes an entry.
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.transactions.DeleteTransaction(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Transaction deleted successfully!", "/transactions")
}

// renderForm shows the entry form. The pickers offer the active categories
// of the chosen type and the active sub-categories of the chosen category;
// an entry being edited also keeps its current, possibly disabled, choices.
func (h *TransactionHandler) renderForm(c *gin.Context, form TransactionForm, errs apperrors.FieldErrors, current *models.Transaction) {
	var categoryType *models.CategoryType
	if t := models.CategoryType(form.Type); t.Valid() {
		categoryType = &t
	}

	categories, err := h.categories.ListActiveCategories(categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}
	var subs []models.SubCategory
	if form.Category != "" {
		if subs, err = h.categories.ListActiveSubCategories(form.Category); err != nil {
			respondWithError(c, err)
			return
		}
	}

	title, action := "Add Transaction", "/transactions/add"
	if current != nil {
		title, action = "Edit Transaction", "/transactions/"+current.ID+"/edit"
		if cat := current.Category; cat != nil && !cat.IsActive && (categoryType == nil || cat.Type == *categoryType) {
			categories = append(categories, *cat)
		}
		if sub := current.SubCategory; sub != nil && !sub.IsActive && sub.CategoryID == form.Category {
			subs = append(subs, *sub)
		}
	}

	h.view.render(c, http.StatusOK, "transaction_form.html", gin.H{
		"Title":         title,
		"Action":        action,
		"Form":          form,
		"Errors":        errs,
		"Types":         transactionTypes,
		"Categories":    categories,
		"SubCategories": subs,
	})
}
