package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/internal/categories"
	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	"github.com/vallyhouse/vally-backend/pkg/enums"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

const testEndpoint = "https://ik.imagekit.io/vally"

type endpointResolver struct{}

func (endpointResolver) URL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return testEndpoint + "/" + strings.TrimLeft(path, "/")
}

func (endpointResolver) RelativePath(value string) string {
	trimmed := strings.TrimPrefix(value, testEndpoint)
	return "/" + strings.TrimLeft(trimmed, "/")
}

type fixture struct {
	svc     Service
	conn    *gorm.DB
	fabrics *models.Category
	wear    *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{}, &models.SubCategory{}, &models.Product{}, &models.FeaturedProduct{},
	))

	fabrics := &models.Category{Name: "fabrics"}
	wear := &models.Category{Name: "ready to wear"}
	require.NoError(t, conn.Create(fabrics).Error)
	require.NoError(t, conn.Create(wear).Error)

	svc, err := NewService(ServiceParams{
		DB:         db.NewWithConn(conn),
		Repo:       NewRepository(conn),
		Categories: categories.NewRepository(conn),
		Images:     endpointResolver{},
	})
	require.NoError(t, err)

	return &fixture{svc: svc, conn: conn, fabrics: fabrics, wear: wear}
}

func fourImages(prefix string) []string {
	return []string{
		prefix + "-1.jpg",
		prefix + "-2.jpg",
		prefix + "-3.jpg",
		prefix + "-4.jpg",
	}
}

func (f *fixture) seed(t *testing.T, vallyID, name, price string, categoryID uuid.UUID, published bool) *models.Product {
	t.Helper()
	product := &models.Product{
		VallyID:     vallyID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryID,
		Brand:       "Vally",
		Sizes:       []string{"S", "M"},
		Images:      fourImages("products/" + strings.ToLower(vallyID)),
		IsPublished: published,
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func TestListPublishedOnlyByDefault(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "VLY-0001", "Silk Shirt", "120.50", f.fabrics.ID, true)
	f.seed(t, "VLY-0002", "Draft Dress", "90.00", f.wear.ID, false)

	result, err := f.svc.List(context.Background(), ListFilter{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "VLY-0001", result.Items[0].VallyID)
	assert.EqualValues(t, 1, result.PageInfo.Total)
}

func TestListPriceRangeAndCategoryFilter(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "VLY-0001", "Raw Silk", "45.00", f.fabrics.ID, true)
	f.seed(t, "VLY-0002", "Silk Shirt", "120.50", f.wear.ID, true)
	f.seed(t, "VLY-0003", "Ankara Wrap", "80.00", f.wear.ID, true)
	f.seed(t, "VLY-0004", "Velvet Gown", "300.00", f.wear.ID, true)

	min := decimal.RequireFromString("50.00")
	max := decimal.RequireFromString("150.00")
	result, err := f.svc.List(context.Background(), ListFilter{
		MinPrice:    &min,
		MaxPrice:    &max,
		CategoryIDs: []uuid.UUID{f.wear.ID},
	}, pagination.Params{})
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	codes := []string{result.Items[0].VallyID, result.Items[1].VallyID}
	assert.ElementsMatch(t, []string{"VLY-0002", "VLY-0003"}, codes)
	assert.EqualValues(t, 2, result.PageInfo.Total)
}

func TestListFreeTextSearch(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "VLY-0001", "Raw Silk", "45.00", f.fabrics.ID, true)
	f.seed(t, "VLY-0002", "Ankara Wrap", "80.00", f.wear.ID, true)

	result, err := f.svc.List(context.Background(), ListFilter{Query: "silk"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Raw Silk", result.Items[0].Name)
}

func TestListSortByPrice(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "VLY-0001", "Raw Silk", "45.00", f.fabrics.ID, true)
	f.seed(t, "VLY-0002", "Velvet Gown", "300.00", f.wear.ID, true)
	f.seed(t, "VLY-0003", "Ankara Wrap", "80.00", f.wear.ID, true)

	asc, err := f.svc.List(context.Background(), ListFilter{Sort: enums.ProductSortPriceAsc}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, asc.Items, 3)
	assert.Equal(t, "VLY-0001", asc.Items[0].VallyID)
	assert.Equal(t, "VLY-0002", asc.Items[2].VallyID)

	desc, err := f.svc.List(context.Background(), ListFilter{Sort: enums.ProductSortPriceDesc}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, "VLY-0002", desc.Items[0].VallyID)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.seed(t, "VLY-000"+string(rune('1'+i)), "Item", "10.00", f.fabrics.ID, true)
	}

	result, err := f.svc.List(context.Background(), ListFilter{}, pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.EqualValues(t, 5, result.PageInfo.Total)
	assert.Equal(t, 3, result.PageInfo.TotalPages)
	assert.Equal(t, 2, result.PageInfo.Page)
}

func TestGetResolvesImagesAndCategoryNames(t *testing.T) {
	f := newFixture(t)
	product := f.seed(t, "VLY-0001", "Silk Shirt", "120.50", f.fabrics.ID, true)

	dto, err := f.svc.Get(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "fabrics", dto.CategoryName)
	require.Len(t, dto.Images, 4)
	assert.Equal(t, testEndpoint+"/products/vly-0001-1.jpg", dto.Images[0])
}

func TestGetNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func validCreate(categoryID uuid.UUID) CreateProductRequest {
	return CreateProductRequest{
		VallyID:     "vly-0100",
		Name:        "Silk Shirt",
		Description: "hand-finished",
		Price:       decimal.RequireFromString("120.50"),
		CategoryID:  categoryID,
		Brand:       "Vally",
		Sizes:       []string{"S", "M", "L"},
		Images:      fourImages("products/silk-shirt"),
		Variants: []VariantRequest{
			{Color: "Ivory", Images: fourImages("products/silk-shirt-ivory")},
		},
		Stock:       10,
		Material:    "silk",
		IsPublished: true,
	}
}

func TestCreateUppercasesVallyID(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), validCreate(f.fabrics.ID))
	require.NoError(t, err)
	assert.Equal(t, "VLY-0100", dto.VallyID)
}

func TestCreateNormalizesAbsoluteImageURLs(t *testing.T) {
	f := newFixture(t)

	req := validCreate(f.fabrics.ID)
	req.Images = []string{
		testEndpoint + "/products/a-1.jpg",
		testEndpoint + "/products/a-2.jpg",
		"products/a-3.jpg",
		"products/a-4.jpg",
	}
	dto, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	var stored models.Product
	require.NoError(t, f.conn.First(&stored, "id = ?", dto.ID).Error)
	assert.Equal(t, "/products/a-1.jpg", stored.Images[0])
	assert.Equal(t, "products/a-3.jpg", stored.Images[2])
	// Reads always serve absolute URLs.
	assert.Equal(t, testEndpoint+"/products/a-1.jpg", dto.Images[0])
}

func TestCreateRejectsWrongImageCount(t *testing.T) {
	f := newFixture(t)

	req := validCreate(f.fabrics.ID)
	req.Images = req.Images[:3]
	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateRejectsWrongVariantImageCount(t *testing.T) {
	f := newFixture(t)

	req := validCreate(f.fabrics.ID)
	req.Variants[0].Images = req.Variants[0].Images[:2]
	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateRequiresVariant(t *testing.T) {
	f := newFixture(t)

	req := validCreate(f.fabrics.ID)
	req.Variants = nil
	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	// Drafts are held to the same bar; a listing without a color is never valid.
	req.IsPublished = false
	_, err = f.svc.Create(context.Background(), req)
	require.Error(t, err)
}

func TestCreateRejectsNonPositivePrice(t *testing.T) {
	f := newFixture(t)

	for _, price := range []string{"0", "-5.00"} {
		req := validCreate(f.fabrics.ID)
		req.Price = decimal.RequireFromString(price)
		_, err := f.svc.Create(context.Background(), req)
		require.Error(t, err, "price %s", price)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
}

func TestCreateRequiresSizesAndMaterial(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateProductRequest)
	}{
		{"no sizes", func(r *CreateProductRequest) { r.Sizes = nil }},
		{"blank material", func(r *CreateProductRequest) { r.Material = "  " }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate(f.fabrics.ID)
			tc.mutate(&req)
			_, err := f.svc.Create(context.Background(), req)
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestCreateDuplicateCodeConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCreate(f.fabrics.ID))
	require.NoError(t, err)

	dup := validCreate(f.fabrics.ID)
	dup.VallyID = "VLY-0100"
	_, err = f.svc.Create(ctx, dup)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestCreateUnknownCategory(t *testing.T) {
	f := newFixture(t)

	req := validCreate(uuid.New())
	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCreateSubCategoryMismatch(t *testing.T) {
	f := newFixture(t)

	sub := &models.SubCategory{Name: "dresses", CategoryID: f.wear.ID}
	require.NoError(t, f.conn.Create(sub).Error)

	req := validCreate(f.fabrics.ID)
	req.SubCategoryID = &sub.ID
	_, err := f.svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestUpdateReplacesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validCreate(f.fabrics.ID))
	require.NoError(t, err)

	req := validCreate(f.wear.ID)
	req.Name = "Silk Shirt v2"
	req.Price = decimal.RequireFromString("140.00")
	updated, err := f.svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "Silk Shirt v2", updated.Name)
	assert.Equal(t, f.wear.ID, updated.CategoryID)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("140.00")))
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestUpdateCodeConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCreate(f.fabrics.ID))
	require.NoError(t, err)

	second := validCreate(f.fabrics.ID)
	second.VallyID = "VLY-0200"
	createdSecond, err := f.svc.Create(ctx, second)
	require.NoError(t, err)

	req := validCreate(f.fabrics.ID)
	req.VallyID = "VLY-0100"
	_, err = f.svc.Update(ctx, createdSecond.ID, req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestDeleteRemovesFeaturedPin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seed(t, "VLY-0001", "Silk Shirt", "120.50", f.fabrics.ID, true)
	require.NoError(t, f.conn.Create(&models.FeaturedProduct{
		ProductID: product.ID,
		Position:  1,
		IsActive:  true,
	}).Error)

	require.NoError(t, f.svc.Delete(ctx, product.ID))

	var productCount, pinCount int64
	require.NoError(t, f.conn.Model(&models.Product{}).Count(&productCount).Error)
	require.NoError(t, f.conn.Model(&models.FeaturedProduct{}).Count(&pinCount).Error)
	assert.Zero(t, productCount)
	assert.Zero(t, pinCount)
}
