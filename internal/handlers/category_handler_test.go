package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/middleware"
	"faithledger/internal/models"
	"faithledger/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	listCategoriesFn          func() ([]models.Category, error)
	listActiveCategoriesFn    func(categoryType *models.CategoryType) ([]models.Category, error)
	getCategoryByIDFn         func(id string) (*models.Category, error)
	createCategoryFn          func(in services.CategoryInput) (*models.Category, error)
	updateCategoryFn          func(id string, in services.CategoryInput) (*models.Category, error)
	toggleCategoryFn          func(id string) (*models.Category, error)
	deleteCategoryFn          func(id string) error
	listActiveSubCategoriesFn func(categoryID string) ([]models.SubCategory, error)
	getSubCategoryByIDFn      func(id string) (*models.SubCategory, error)
	createSubCategoryFn       func(in services.SubCategoryInput) (*models.SubCategory, error)
	updateSubCategoryFn       func(id string, in services.SubCategoryInput) (*models.SubCategory, error)
	deleteSubCategoryFn       func(id string) error
}

func (m *mockCategoryService) ListCategories() ([]models.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn()
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) ListActiveCategories(categoryType *models.CategoryType) ([]models.Category, error) {
	if m.listActiveCategoriesFn != nil {
		return m.listActiveCategoriesFn(categoryType)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(id string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(id)
	}
	return &models.Category{Base: models.Base{ID: id}}, nil
}

func (m *mockCategoryService) CreateCategory(in services.CategoryInput) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(in)
	}
	return &models.Category{Name: in.Name, Type: in.Type, IsActive: in.IsActive}, nil
}

func (m *mockCategoryService) UpdateCategory(id string, in services.CategoryInput) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(id, in)
	}
	return &models.Category{Base: models.Base{ID: id}, Name: in.Name, Type: in.Type}, nil
}

func (m *mockCategoryService) ToggleCategory(id string) (*models.Category, error) {
	if m.toggleCategoryFn != nil {
		return m.toggleCategoryFn(id)
	}
	return &models.Category{Base: models.Base{ID: id}}, nil
}

func (m *mockCategoryService) DeleteCategory(id string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(id)
	}
	return nil
}

func (m *mockCategoryService) ListActiveSubCategories(categoryID string) ([]models.SubCategory, error) {
	if m.listActiveSubCategoriesFn != nil {
		return m.listActiveSubCategoriesFn(categoryID)
	}
	return []models.SubCategory{}, nil
}

func (m *mockCategoryService) GetSubCategoryByID(id string) (*models.SubCategory, error) {
	if m.getSubCategoryByIDFn != nil {
		return m.getSubCategoryByIDFn(id)
	}
	return &models.SubCategory{ID: id}, nil
}

func (m *mockCategoryService) CreateSubCategory(in services.SubCategoryInput) (*models.SubCategory, error) {
	if m.createSubCategoryFn != nil {
		return m.createSubCategoryFn(in)
	}
	return &models.SubCategory{CategoryID: in.CategoryID, Name: in.Name}, nil
}

func (m *mockCategoryService) UpdateSubCategory(id string, in services.SubCategoryInput) (*models.SubCategory, error) {
	if m.updateSubCategoryFn != nil {
		return m.updateSubCategoryFn(id, in)
	}
	return &models.SubCategory{ID: id, CategoryID: in.CategoryID, Name: in.Name}, nil
}

func (m *mockCategoryService) DeleteSubCategory(id string) error {
	if m.deleteSubCategoryFn != nil {
		return m.deleteSubCategoryFn(id)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

const (
	tithesID     = "0190a3c2-7b1e-7c3d-9f00-0000000000a1"
	electricID   = "0190a3c2-7b1e-7c3d-9f00-0000000000b1"
	regularSubID = "0190a3c2-7b1e-7c3d-9f00-0000000000a2"
)

var (
	tithes      = models.Category{Base: models.Base{ID: tithesID}, Name: "Tithes", Type: models.CategoryTypeIncome, IsActive: true}
	electricity = models.Category{Base: models.Base{ID: electricID}, Name: "Electricity", Type: models.CategoryTypeExpense, IsActive: true}
	regular     = models.SubCategory{ID: regularSubID, CategoryID: tithesID, Name: "Regular Tithe", IsActive: true}
)

func setupCategoryRouter(handler *CategoryHandler) (*gin.Engine, *recordingRender) {
	r, group, pages := newTestRouter(handler.view, testUser)
	group.GET("/ajax/categories", handler.ActiveCategories)
	group.GET("/ajax/subcategories", handler.ActiveSubCategories)
	group.GET("/categories", handler.List)
	group.GET("/categories/add", handler.AddPage)
	group.POST("/categories/add", handler.Add)
	group.GET("/categories/:id/edit", handler.EditPage)
	group.POST("/categories/:id/edit", handler.Edit)
	group.POST("/categories/:id/toggle", handler.Toggle)
	group.POST("/categories/:id/delete", handler.Delete)
	group.GET("/categories/sub/add", handler.SubCategoryAddPage)
	group.POST("/categories/sub/add", handler.SubCategoryAdd)
	group.GET("/categories/sub/:id/edit", handler.SubCategoryEditPage)
	group.POST("/categories/sub/:id/edit", handler.SubCategoryEdit)
	group.POST("/categories/sub/:id/delete", handler.SubCategoryDelete)
	return r, pages
}

func TestCategoryHandler_ActiveCategories(t *testing.T) {
	t.Run("filters_by_type", func(t *testing.T) {
		var gotType *models.CategoryType
		svc := &mockCategoryService{
			listActiveCategoriesFn: func(categoryType *models.CategoryType) ([]models.Category, error) {
				gotType = categoryType
				return []models.Category{tithes}, nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/ajax/categories?type=Income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotType == nil || *gotType != models.CategoryTypeIncome {
			t.Errorf("expected Income filter, got %v", gotType)
		}
		var options []OptionResponse
		parseJSON(t, rec, &options)
		if len(options) != 1 || options[0].ID != tithesID || options[0].Name != "Tithes" {
			t.Errorf("unexpected options %+v", options)
		}
	})

	for _, query := range []string{"", "?type=", "?type=Gift", "?type=income"} {
		t.Run("empty_for_type"+query, func(t *testing.T) {
			called := false
			svc := &mockCategoryService{
				listActiveCategoriesFn: func(*models.CategoryType) ([]models.Category, error) {
					called = true
					return []models.Category{tithes, electricity}, nil
				},
			}
			r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

			rec := doRequest(r, "GET", "/ajax/categories"+query, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if called {
				t.Error("expected no lookup without a valid type")
			}
			if rec.Body.String() != "[]" {
				t.Errorf("expected an empty JSON array, got %s", rec.Body.String())
			}
		})
	}

	t.Run("returns_json_error", func(t *testing.T) {
		svc := &mockCategoryService{
			listActiveCategoriesFn: func(*models.CategoryType) ([]models.Category, error) {
				return nil, apperrors.ErrInternalServer
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/ajax/categories?type=Expense", "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var body ErrorResponse
		parseJSON(t, rec, &body)
		if body.Error.Code != apperrors.ErrInternalServer.Code {
			t.Errorf("expected %s, got %s", apperrors.ErrInternalServer.Code, body.Error.Code)
		}
	})
}

func TestCategoryHandler_ActiveSubCategories(t *testing.T) {
	var gotID string
	svc := &mockCategoryService{
		listActiveSubCategoriesFn: func(categoryID string) ([]models.SubCategory, error) {
			gotID = categoryID
			return []models.SubCategory{regular}, nil
		},
	}
	r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

	rec := doRequest(r, "GET", "/ajax/subcategories?category_id="+tithesID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != tithesID {
		t.Errorf("expected %s, got %s", tithesID, gotID)
	}
	var options []OptionResponse
	parseJSON(t, rec, &options)
	if len(options) != 1 || options[0].Name != "Regular Tithe" {
		t.Errorf("unexpected options %+v", options)
	}
}

func TestCategoryHandler_List(t *testing.T) {
	svc := &mockCategoryService{
		listCategoriesFn: func() ([]models.Category, error) {
			return []models.Category{electricity, tithes}, nil
		},
	}
	r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

	rec := doRequest(r, "GET", "/categories", "")

	page := assertPage(t, rec, pages, http.StatusOK, "categories.html")
	if got := page.Data["Categories"].([]models.Category); len(got) != 2 {
		t.Errorf("expected 2 categories, got %d", len(got))
	}
}

func TestCategoryHandler_Add(t *testing.T) {
	t.Run("creates_and_redirects", func(t *testing.T) {
		var got services.CategoryInput
		svc := &mockCategoryService{
			createCategoryFn: func(in services.CategoryInput) (*models.Category, error) {
				got = in
				return &models.Category{Name: in.Name}, nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/add", "name=Youth+Ministry&type=Expense&is_active=on")

		assertRedirect(t, rec, "/categories")
		assertFlash(t, rec, middleware.FlashSuccess, "Category added successfully!")
		want := services.CategoryInput{Name: "Youth Ministry", Type: models.CategoryTypeExpense, IsActive: true}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("unticked_box_means_inactive", func(t *testing.T) {
		var got services.CategoryInput
		svc := &mockCategoryService{
			createCategoryFn: func(in services.CategoryInput) (*models.Category, error) {
				got = in
				return &models.Category{}, nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		doRequest(r, "POST", "/categories/add", "name=Youth&type=Expense")

		if got.IsActive {
			t.Error("expected an inactive category")
		}
	})

	t.Run("re_renders_with_field_errors", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(services.CategoryInput) (*models.Category, error) {
				return nil, apperrors.FieldErrors{"name": "This field is required."}
			},
		}
		r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/add", "type=Expense")

		page := assertPage(t, rec, pages, http.StatusOK, "category_form.html")
		if page.Data["Action"] != "/categories/add" {
			t.Errorf("unexpected action %v", page.Data["Action"])
		}
		if errs := page.Data["Errors"].(apperrors.FieldErrors); errs["name"] == "" {
			t.Errorf("expected a name error, got %v", errs)
		}
	})
}

func TestCategoryHandler_FormBinding(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		page string
		want apperrors.FieldErrors
	}{
		{
			name: "add_reports_every_field", path: "/categories/add", body: "type=Gift",
			page: "category_form.html",
			want: apperrors.FieldErrors{"name": "This field is required.", "type": "Select a valid choice."},
		},
		{
			name: "add_requires_a_type", path: "/categories/add", body: "name=Youth",
			page: "category_form.html",
			want: apperrors.FieldErrors{"type": "This field is required."},
		},
		{
			name: "edit_rejects_an_unknown_type", path: "/categories/" + tithesID + "/edit", body: "name=Tithes&type=income",
			page: "category_form.html",
			want: apperrors.FieldErrors{"type": "Select a valid choice."},
		},
		{
			name: "add_sub_requires_parent_and_name", path: "/categories/sub/add", body: "is_active=on",
			page: "subcategory_form.html",
			want: apperrors.FieldErrors{"category": "This field is required.", "name": "This field is required."},
		},
		{
			name: "edit_sub_limits_the_name", path: "/categories/sub/" + regularSubID + "/edit",
			body: "category=" + tithesID + "&name=" + strings.Repeat("x", 101),
			page: "subcategory_form.html",
			want: apperrors.FieldErrors{"name": "Ensure this value has at most 100 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			written := false
			svc := &mockCategoryService{
				getSubCategoryByIDFn: func(string) (*models.SubCategory, error) { return &regular, nil },
				createCategoryFn: func(services.CategoryInput) (*models.Category, error) {
					written = true
					return &models.Category{}, nil
				},
				updateCategoryFn: func(string, services.CategoryInput) (*models.Category, error) {
					written = true
					return &models.Category{}, nil
				},
				createSubCategoryFn: func(services.SubCategoryInput) (*models.SubCategory, error) {
					written = true
					return &models.SubCategory{}, nil
				},
				updateSubCategoryFn: func(string, services.SubCategoryInput) (*models.SubCategory, error) {
					written = true
					return &models.SubCategory{}, nil
				},
			}
			r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

			rec := doRequest(r, "POST", tt.path, tt.body)

			page := assertPage(t, rec, pages, http.StatusOK, tt.page)
			if written {
				t.Error("expected no write for an invalid form")
			}
			errs := page.Data["Errors"].(apperrors.FieldErrors)
			if len(errs) != len(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, errs)
			}
			for field, msg := range tt.want {
				if errs[field] != msg {
					t.Errorf("field %s: expected %q, got %q", field, msg, errs[field])
				}
			}
		})
	}
}

func TestCategoryHandler_EditPage(t *testing.T) {
	t.Run("fills_the_form", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(string) (*models.Category, error) { return &tithes, nil },
		}
		r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/categories/"+tithesID+"/edit", "")

		page := assertPage(t, rec, pages, http.StatusOK, "category_form.html")
		form := page.Data["Form"].(CategoryForm)
		if form.Name != "Tithes" || form.Type != "Income" || !form.Active() {
			t.Errorf("unexpected form %+v", form)
		}
	})

	t.Run("renders_404_for_unknown_category", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(string) (*models.Category, error) { return nil, apperrors.ErrCategoryNotFound },
		}
		r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/categories/nope/edit", "")

		page := assertPage(t, rec, pages, http.StatusNotFound, middleware.ErrorTemplate)
		if page.Data["Message"] != apperrors.ErrCategoryNotFound.Message {
			t.Errorf("unexpected message %v", page.Data["Message"])
		}
		if page.Data["User"] != testUser {
			t.Error("expected the error page to carry the signed-in user")
		}
	})
}

func TestCategoryHandler_Toggle(t *testing.T) {
	svc := &mockCategoryService{
		toggleCategoryFn: func(id string) (*models.Category, error) {
			c := tithes
			c.IsActive = false
			return &c, nil
		},
	}
	r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

	rec := doRequest(r, "POST", "/categories/"+tithesID+"/toggle", "")

	assertRedirect(t, rec, "/categories")
	assertFlash(t, rec, middleware.FlashSuccess, `Category "Tithes" disabled.`)
}

func TestCategoryHandler_Delete(t *testing.T) {
	t.Run("deletes_unused_category", func(t *testing.T) {
		var gotID string
		svc := &mockCategoryService{
			deleteCategoryFn: func(id string) error {
				gotID = id
				return nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/"+electricID+"/delete", "")

		assertRedirect(t, rec, "/categories")
		if gotID != electricID {
			t.Errorf("expected %s, got %s", electricID, gotID)
		}
	})

	t.Run("flashes_when_in_use", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(string) error { return apperrors.ErrCategoryInUse },
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/"+electricID+"/delete", "")

		assertRedirect(t, rec, "/categories")
		assertFlash(t, rec, middleware.FlashError, apperrors.ErrCategoryInUse.Message+". Disable it instead.")
	})
}

func TestCategoryHandler_SubCategories(t *testing.T) {
	t.Run("add_page_preselects_the_parent", func(t *testing.T) {
		svc := &mockCategoryService{
			listActiveCategoriesFn: func(*models.CategoryType) ([]models.Category, error) {
				return []models.Category{tithes}, nil
			},
		}
		r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/categories/sub/add?category="+tithesID, "")

		page := assertPage(t, rec, pages, http.StatusOK, "subcategory_form.html")
		form := page.Data["Form"].(SubCategoryForm)
		if form.Category != tithesID || !form.Active() {
			t.Errorf("unexpected form %+v", form)
		}
	})

	t.Run("add_creates_and_redirects", func(t *testing.T) {
		var got services.SubCategoryInput
		svc := &mockCategoryService{
			createSubCategoryFn: func(in services.SubCategoryInput) (*models.SubCategory, error) {
				got = in
				return &models.SubCategory{}, nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/sub/add", "category="+tithesID+"&name=Special+Tithe&is_active=on")

		assertRedirect(t, rec, "/categories")
		assertFlash(t, rec, middleware.FlashSuccess, "Sub-category added successfully!")
		want := services.SubCategoryInput{CategoryID: tithesID, Name: "Special Tithe", IsActive: true}
		if got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("edit_page_keeps_a_disabled_parent", func(t *testing.T) {
		disabled := tithes
		disabled.IsActive = false
		sub := regular
		sub.Category = &disabled
		svc := &mockCategoryService{
			getSubCategoryByIDFn: func(string) (*models.SubCategory, error) { return &sub, nil },
			listActiveCategoriesFn: func(*models.CategoryType) ([]models.Category, error) {
				return []models.Category{electricity}, nil
			},
		}
		r, pages := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "GET", "/categories/sub/"+regularSubID+"/edit", "")

		page := assertPage(t, rec, pages, http.StatusOK, "subcategory_form.html")
		cats := page.Data["Categories"].([]models.Category)
		if len(cats) != 2 || cats[1].ID != tithesID {
			t.Errorf("expected the disabled parent to be offered, got %+v", cats)
		}
	})

	t.Run("edit_saves_and_redirects", func(t *testing.T) {
		var gotID string
		svc := &mockCategoryService{
			getSubCategoryByIDFn: func(string) (*models.SubCategory, error) { return &regular, nil },
			updateSubCategoryFn: func(id string, in services.SubCategoryInput) (*models.SubCategory, error) {
				gotID = id
				return &models.SubCategory{}, nil
			},
		}
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), svc))

		rec := doRequest(r, "POST", "/categories/sub/"+regularSubID+"/edit", "category="+tithesID+"&name=Regular")

		assertRedirect(t, rec, "/categories")
		assertFlash(t, rec, middleware.FlashSuccess, "Sub-category updated!")
		if gotID != regularSubID {
			t.Errorf("expected %s, got %s", regularSubID, gotID)
		}
	})

	t.Run("delete_redirects", func(t *testing.T) {
		r, _ := setupCategoryRouter(NewCategoryHandler(newTestView(), &mockCategoryService{}))

		rec := doRequest(r, "POST", "/categories/sub/"+regularSubID+"/delete", "")

		assertRedirect(t, rec, "/categories")
	})
}
