package featured

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/internal/catalog"
	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Category{}, &models.SubCategory{}, &models.Product{}, &models.FeaturedProduct{},
	))

	svc, err := NewService(ServiceParams{
		DB:       db.NewWithConn(conn),
		Repo:     NewRepository(conn),
		Products: catalog.NewRepository(conn),
	})
	require.NoError(t, err)
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, vallyID, name string) *models.Product {
	t.Helper()
	category := &models.Category{Name: "fabrics-" + vallyID}
	require.NoError(t, conn.Create(category).Error)
	product := &models.Product{
		VallyID:     vallyID,
		Name:        name,
		Price:       decimal.RequireFromString("50.00"),
		CategoryID:  category.ID,
		Brand:       "Vally",
		Images:      []string{"products/" + vallyID + ".jpg"},
		IsPublished: true,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestSetAndGetPreservesOrder(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, conn, "VLY-0001", "Raw Silk")
	p2 := seedProduct(t, conn, "VLY-0002", "Ankara Wrap")
	p3 := seedProduct(t, conn, "VLY-0003", "Velvet Gown")

	set, err := svc.Set(ctx, []uuid.UUID{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	require.Len(t, set, 3)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, p1.ID, got[0].ProductID)
	assert.Equal(t, p2.ID, got[1].ProductID)
	assert.Equal(t, p3.ID, got[2].ProductID)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, 3, got[2].Position)
}

func TestSetReplacesWholesale(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, conn, "VLY-0001", "Raw Silk")
	p2 := seedProduct(t, conn, "VLY-0002", "Ankara Wrap")

	_, err := svc.Set(ctx, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)

	_, err = svc.Set(ctx, []uuid.UUID{p2.ID})
	require.NoError(t, err)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p2.ID, got[0].ProductID)
}

func TestSetRejectsMoreThanFour(t *testing.T) {
	svc, conn := newTestService(t)

	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		p := seedProduct(t, conn, "VLY-000"+string(rune('1'+i)), "Item")
		ids = append(ids, p.ID)
	}

	_, err := svc.Set(context.Background(), ids)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSetUnknownProductRollsBack(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, conn, "VLY-0001", "Raw Silk")
	_, err := svc.Set(ctx, []uuid.UUID{p1.ID})
	require.NoError(t, err)

	_, err = svc.Set(ctx, []uuid.UUID{p1.ID, uuid.New()})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	// The previous set is untouched.
	got, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, p1.ID, got[0].ProductID)
}

func TestSetRejectsDuplicates(t *testing.T) {
	svc, conn := newTestService(t)

	p1 := seedProduct(t, conn, "VLY-0001", "Raw Silk")
	_, err := svc.Set(context.Background(), []uuid.UUID{p1.ID, p1.ID})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSetEmptyClearsSet(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	p1 := seedProduct(t, conn, "VLY-0001", "Raw Silk")
	_, err := svc.Set(ctx, []uuid.UUID{p1.ID})
	require.NoError(t, err)

	_, err = svc.Set(ctx, nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetCapsManuallySeededRows(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	// Rows written around the service must not widen the homepage set.
	for i := 1; i <= MaxFeatured+1; i++ {
		product := seedProduct(t, conn, fmt.Sprintf("VLY-000%d", i), "Item")
		require.NoError(t, conn.Create(&models.FeaturedProduct{
			ProductID: product.ID,
			Position:  i,
			IsActive:  true,
		}).Error)
	}

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Len(t, got, MaxFeatured)
	assert.Equal(t, "VLY-0001", got[0].VallyID)
	assert.Equal(t, "VLY-0004", got[MaxFeatured-1].VallyID)
}
