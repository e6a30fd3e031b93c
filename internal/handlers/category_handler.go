package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/middleware"
	"faithledger/internal/models"
	"faithledger/internal/services"
)

// CategoryHandler handles the category pages and the picker endpoints.
type CategoryHandler struct {
	view       *View
	categories services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(view *View, categories services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{view: view, categories: categories}
}

// OptionResponse is one entry of a picker.
type OptionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActiveCategories lists the active categories for the transaction form
// @Summary     List active categories
// @Description Active categories of one type for the transaction form picker; an unknown type yields an empty list
// @Tags        ajax
// @Produce     json
// @Param       type query string true "Category type (Income/Expense)"
// @Success     200 {array} OptionResponse "Active categories"
// @Failure     302 "Not signed in"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ajax/categories [get]
func (h *CategoryHandler) ActiveCategories(c *gin.Context) {
	categoryType := models.CategoryType(c.Query("type"))
	if !categoryType.Valid() {
		c.JSON(http.StatusOK, []OptionResponse{})
		return
	}

	categories, err := h.categories.ListActiveCategories(&categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	options := make([]OptionResponse, 0, len(categories))
	for _, cat := range categories {
		options = append(options, OptionResponse{ID: cat.ID, Name: cat.Name})
	}
	c.JSON(http.StatusOK, options)
}

// ActiveSubCategories lists the active sub-categories of a category
// @Summary     List active sub-categories
// @Description Active sub-categories of one category, for the transaction form picker
// @Tags        ajax
// @Produce     json
// @Param       category_id query string true "Category ID"
// @Success     200 {array} OptionResponse "Active sub-categories"
// @Failure     302 "Not signed in"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ajax/subcategories [get]
func (h *CategoryHandler) ActiveSubCategories(c *gin.Context) {
	subs, err := h.categories.ListActiveSubCategories(c.Query("category_id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	options := make([]OptionResponse, 0, len(subs))
	for _, sub := range subs {
		options = append(options, OptionResponse{ID: sub.ID, Name: sub.Name})
	}
	c.JSON(http.StatusOK, options)
}

// List shows every category with its sub-categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.view.render(c, http.StatusOK, "categories.html", gin.H{"Categories": categories})
}

// AddPage shows an empty category form.
func (h *CategoryHandler) AddPage(c *gin.Context) {
	h.renderCategoryForm(c, "Add Category", "/categories/add", CategoryForm{IsActive: "on"}, apperrors.FieldErrors{})
}

// Add creates a category.
func (h *CategoryHandler) Add(c *gin.Context) {
	form, errs := bindCategoryForm(c)
	if len(errs) > 0 {
		h.renderCategoryForm(c, "Add Category", "/categories/add", form, errs)
		return
	}

	if _, err := h.categories.CreateCategory(form.Input()); err != nil {
		h.categoryFormError(c, "Add Category", "/categories/add", form, err)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Category added successfully!", "/categories")
}

// EditPage shows the form of an existing category.
func (h *CategoryHandler) EditPage(c *gin.Context) {
	category, err := h.categories.GetCategoryByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	form := CategoryForm{Name: category.Name, Type: string(category.Type)}
	if category.IsActive {
		form.IsActive = "on"
	}
	h.renderCategoryForm(c, "Edit Category", "/categories/"+category.ID+"/edit", form, apperrors.FieldErrors{})
}

// Edit saves changes to a category.
func (h *CategoryHandler) Edit(c *gin.Context) {
	id := c.Param("id")
	form, errs := bindCategoryForm(c)
	if len(errs) > 0 {
		h.renderCategoryForm(c, "Edit Category", "/categories/"+id+"/edit", form, errs)
		return
	}

	if _, err := h.categories.UpdateCategory(id, form.Input()); err != nil {
		h.categoryFormError(c, "Edit Category", "/categories/"+id+"/edit", form, err)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Category updated successfully!", "/categories")
}

// Toggle enables or disables a category.
func (h *CategoryHandler) Toggle(c *gin.Context) {
	category, err := h.categories.ToggleCategory(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	state := "disabled"
	if category.IsActive {
		state = "enabled"
	}
	redirectWithFlash(c, middleware.FlashSuccess, `Category "`+category.Name+`" `+state+".", "/categories")
}

// Delete removes an unused category. A category still referenced by
// transactions is kept and the user is told to disable it instead.
func (h *CategoryHandler) Delete(c *gin.Context) {
	err := h.categories.DeleteCategory(c.Param("id"))
	switch {
	case err == nil:
		redirectWithFlash(c, middleware.FlashSuccess, "Category deleted successfully!", "/categories")
	case errors.Is(err, apperrors.ErrCategoryInUse):
		redirectWithFlash(c, middleware.FlashError,
			apperrors.ErrCategoryInUse.Message+". Disable it instead.", "/categories")
	default:
		respondWithError(c, err)
	}
}

// SubCategoryAddPage shows an empty sub-category form. ?category= preselects
// the parent.
func (h *CategoryHandler) SubCategoryAddPage(c *gin.Context) {
	form := SubCategoryForm{Category: c.Query("category"), IsActive: "on"}
	h.renderSubCategoryForm(c, "Add Sub-Category", "/categories/sub/add", form, apperrors.FieldErrors{}, nil)
}

// SubCategoryAdd creates a sub-category.
func (h *CategoryHandler) SubCategoryAdd(c *gin.Context) {
	form, errs := bindSubCategoryForm(c)
	if len(errs) > 0 {
		h.renderSubCategoryForm(c, "Add Sub-Category", "/categories/sub/add", form, errs, nil)
		return
	}

	if _, err := h.categories.CreateSubCategory(form.Input()); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			respondWithError(c, err)
			return
		}
		h.renderSubCategoryForm(c, "Add Sub-Category", "/categories/sub/add", form, fields, nil)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Sub-category added successfully!", "/categories")
}

// SubCategoryEditPage shows the form of an existing sub-category.
func (h *CategoryHandler) SubCategoryEditPage(c *gin.Context) {
	sub, err := h.categories.GetSubCategoryByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	form := SubCategoryForm{Category: sub.CategoryID, Name: sub.Name}
	if sub.IsActive {
		form.IsActive = "on"
	}
	h.renderSubCategoryForm(c, "Edit Sub-Category", "/categories/sub/"+sub.ID+"/edit", form, apperrors.FieldErrors{}, sub)
}

// SubCategoryEdit saves changes to a sub-category.
func (h *CategoryHandler) SubCategoryEdit(c *gin.Context) {
	sub, err := h.categories.GetSubCategoryByID(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	form, errs := bindSubCategoryForm(c)
	if len(errs) > 0 {
		h.renderSubCategoryForm(c, "Edit Sub-Category", "/categories/sub/"+sub.ID+"/edit", form, errs, sub)
		return
	}

	if _, err := h.categories.UpdateSubCategory(sub.ID, form.Input()); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			respondWithError(c, err)
			return
		}
		h.renderSubCategoryForm(c, "Edit Sub-Category", "/categories/sub/"+sub.ID+"/edit", form, fields, sub)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Sub-category updated!", "/categories")
}

// SubCategoryDelete removes a sub-category. Entries that used it keep their
// category and lose the sub-category.
func (h *CategoryHandler) SubCategoryDelete(c *gin.Context) {
	if err := h.categories.DeleteSubCategory(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	redirectWithFlash(c, middleware.FlashSuccess, "Sub-category deleted.", "/categories")
}

func (h *CategoryHandler) categoryFormError(c *gin.Context, title, action string, form CategoryForm, err error) {
	fields, ok := fieldErrors(err)
	if !ok {
		respondWithError(c, err)
		return
	}
	h.renderCategoryForm(c, title, action, form, fields)
}

func (h *CategoryHandler) renderCategoryForm(c *gin.Context, title, action string, form CategoryForm, errs apperrors.FieldErrors) {
	h.view.render(c, http.StatusOK, "category_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
		"Types":  categoryTypes,
	})
}

// renderSubCategoryForm offers the active categories as parents, plus the
// current parent of a sub-category being edited.
func (h *CategoryHandler) renderSubCategoryForm(c *gin.Context, title, action string, form SubCategoryForm, errs apperrors.FieldErrors, current *models.SubCategory) {
	categories, err := h.categories.ListActiveCategories(nil)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if current != nil && current.Category != nil && !current.Category.IsActive {
		categories = append(categories, *current.Category)
	}

	h.view.render(c, http.StatusOK, "subcategory_form.html", gin.H{
		"Title":      title,
		"Action":     action,
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
	})
}
