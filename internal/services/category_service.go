package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"
	"faithledger/internal/uuid"
)

const maxNameLength = 100

// categoryService handles the income/expense taxonomy.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

func validateName(name string) error {
	if name == "" {
		return apperrors.FieldErrors{"name": "This field is required."}
	}
	if len([]rune(name)) > maxNameLength {
		return apperrors.FieldErrors{"name": "Ensure this value has at most 100 characters."}
	}
	return nil
}

// ListCategories returns every category ordered by type then name, with its
// sub-categories ordered by name.
func (s *categoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("type, name").
		Find(&categories).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// ListActiveCategories returns active categories, optionally of one type.
func (s *categoryService) ListActiveCategories(categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("is_active = ?", true)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	var categories []models.Category
	if err := q.Order("type, name").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(id string) (*models.Category, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrCategoryNotFound
	}

	var category models.Category
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.FieldErrors{"type": "Select a valid choice."}
	}

	category := &models.Category{
		Name:     in.Name,
		Type:     in.Type,
		IsActive: in.IsActive,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(id string, in CategoryInput) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.FieldErrors{"type": "Select a valid choice."}
	}

	category.Name = in.Name
	category.Type = in.Type
	category.IsActive = in.IsActive
	if err := s.db.Save(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ToggleCategory flips the category's active flag.
func (s *categoryService) ToggleCategory(id string) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}

	category.IsActive = !category.IsActive
	if err := s.db.Model(category).Update("is_active", category.IsActive).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory removes a category and its sub-categories. A category
// referenced by any transaction cannot be removed.
func (s *categoryService) DeleteCategory(id string) error {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return err
	}

	var inUse int64
	if err := s.db.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&inUse).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if inUse > 0 {
		return apperrors.ErrCategoryInUse
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		subIDs := tx.Model(&models.SubCategory{}).Select("id").Where("category_id = ?", category.ID)
		if err := tx.Model(&models.Transaction{}).
			Where("subcategory_id IN (?)", subIDs).
			UpdateColumn("subcategory_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.SubCategory{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ListActiveSubCategories returns the active sub-categories of a category.
func (s *categoryService) ListActiveSubCategories(categoryID string) ([]models.SubCategory, error) {
	var subs []models.SubCategory
	if !uuid.IsValid(categoryID) {
		return subs, nil
	}
	if err := s.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("name").
		Find(&subs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return subs, nil
}

// GetSubCategoryByID retrieves a sub-category with its parent category.
func (s *categoryService) GetSubCategoryByID(id string) (*models.SubCategory, error) {
	if !uuid.IsValid(id) {
		return nil, apperrors.ErrSubCategoryNotFound
	}

	var sub models.SubCategory
	if err := s.db.Preload("Category").Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// parentFor loads the parent category of a sub-category being written. Only
// active categories can receive new sub-categories.
func (s *categoryService) parentFor(categoryID, currentID string) (*models.Category, error) {
	if categoryID == "" {
		return nil, apperrors.FieldErrors{"category": "This field is required."}
	}
	if !uuid.IsValid(categoryID) {
		return nil, apperrors.FieldErrors{"category": "Select a valid choice."}
	}
	parent, err := s.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCategoryNotFound) {
			return nil, apperrors.FieldErrors{"category": "Select a valid choice."}
		}
		return nil, err
	}
	if !parent.IsActive && parent.ID != currentID {
		return nil, apperrors.FieldErrors{"category": "Select a valid choice. That choice is not one of the available choices."}
	}
	return parent, nil
}

// CreateSubCategory creates a sub-category under an active category.
func (s *categoryService) CreateSubCategory(in SubCategoryInput) (*models.SubCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	parent, err := s.parentFor(in.CategoryID, "")
	if err != nil {
		return nil, err
	}

	sub := &models.SubCategory{
		CategoryID: parent.ID,
		Name:       in.Name,
		IsActive:   in.IsActive,
	}
	if err := s.db.Create(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sub.Category = parent
	return sub, nil
}

// UpdateSubCategory updates a sub-category. Keeping its current parent is
// allowed even when that parent has since been disabled.
func (s *categoryService) UpdateSubCategory(id string, in SubCategoryInput) (*models.SubCategory, error) {
	sub, err := s.GetSubCategoryByID(id)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateName(in.Name); err != nil {
		return nil, err
	}
	parent, err := s.parentFor(in.CategoryID, sub.CategoryID)
	if err != nil {
		return nil, err
	}

	sub.CategoryID = parent.ID
	sub.Name = in.Name
	sub.IsActive = in.IsActive
	sub.Category = nil
	if err := s.db.Save(sub).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sub.Category = parent
	return sub, nil
}

// DeleteSubCategory removes a sub-category. Transactions that used it keep
// their category and lose the sub-category reference.
func (s *categoryService) DeleteSubCategory(id string) error {
	sub, err := s.GetSubCategoryByID(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("subcategory_id = ?", sub.ID).
			UpdateColumn("subcategory_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id = ?", sub.ID).Delete(&models.SubCategory{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
