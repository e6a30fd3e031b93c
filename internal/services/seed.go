package services

import (
	"gorm.io/gorm"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/logger"
	"faithledger/internal/models"
)

type seedCategory struct {
	Type          models.CategoryType
	Name          string
	SubCategories []string
}

// DefaultCategories is the starter taxonomy for a new installation.
var DefaultCategories = []seedCategory{
	{models.CategoryTypeIncome, "Sunday Offerings", []string{"Morning Service", "Evening Service"}},
	{models.CategoryTypeIncome, "Tithes", []string{"Regular Tithe", "Special Tithe"}},
	{models.CategoryTypeIncome, "Special Donations", []string{"Anonymous", "Named Donation"}},
	{models.CategoryTypeIncome, "Festival Contributions", []string{"Christmas", "Easter", "Thanksgiving"}},
	{models.CategoryTypeIncome, "Building Fund", []string{"Construction", "Renovation", "Maintenance Fund"}},
	{models.CategoryTypeExpense, "Electricity", []string{"Monthly Bill", "Generator"}},
	{models.CategoryTypeExpense, "Water", []string{"Monthly Bill", "Borewell"}},
	{models.CategoryTypeExpense, "Pastor Salary", []string{"Head Pastor", "Associate Pastor"}},
	{models.CategoryTypeExpense, "Staff Salary", []string{"Admin Staff", "Cleaning Staff", "Security"}},
	{models.CategoryTypeExpense, "Maintenance", []string{"Building", "Equipment", "Vehicles"}},
	{models.CategoryTypeExpense, "Charity", []string{"Food Distribution", "Medical Aid", "Education"}},
	{models.CategoryTypeExpense, "Repairs", []string{"Electrical", "Plumbing", "Structural"}},
}

// SeedResult counts the rows a seeding run created.
type SeedResult struct {
	Categories    int
	SubCategories int
}

// SeedDefaults creates any missing default categories and sub-categories.
// Existing rows are matched by name and left untouched, so the call is
// idempotent.
func SeedDefaults(db *gorm.DB) (SeedResult, error) {
	var result SeedResult
	log := logger.Named("seed")

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, def := range DefaultCategories {
			var category models.Category
			res := tx.Where("name = ? AND type = ?", def.Name, def.Type).
				Attrs(models.Category{IsActive: true}).
				FirstOrCreate(&category, models.Category{Name: def.Name, Type: def.Type})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				result.Categories++
				log.Infof("Created category: %s", category)
			}

			for _, name := range def.SubCategories {
				var sub models.SubCategory
				res := tx.Where("category_id = ? AND name = ?", category.ID, name).
					Attrs(models.SubCategory{IsActive: true}).
					FirstOrCreate(&sub, models.SubCategory{CategoryID: category.ID, Name: name})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected > 0 {
					result.SubCategories++
				}
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	log.Infof("Seeding complete: %d categories, %d sub-categories created", result.Categories, result.SubCategories)
	return result, nil
}
