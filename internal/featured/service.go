package featured

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
)

// MaxFeatured caps the homepage set.
const MaxFeatured = 4

// FeaturedProductDTO is the homepage display projection.
type FeaturedProductDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VallyID     string          `json:"vally_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Position    int             `json:"position"`
}

type productLoader interface {
	FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type imageResolver interface {
	URL(path string) string
}

// Service manages the homepage featured set. The set is replaced wholesale;
// readers never observe a partial replacement.
type Service interface {
	Get(ctx context.Context) ([]FeaturedProductDTO, error)
	Set(ctx context.Context, orderedIDs []uuid.UUID) ([]FeaturedProductDTO, error)
}

// ServiceParams packages the dependencies for the featured service.
type ServiceParams struct {
	DB       *db.Client
	Repo     *Repository
	Products productLoader
	Images   imageResolver
}

type service struct {
	db       *db.Client
	repo     *Repository
	products productLoader
	images   imageResolver
}

// NewService constructs a featured service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "featured repository required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product loader required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		products: params.Products,
		images:   params.Images,
	}, nil
}

func (s *service) resolveImage(path string) string {
	if s.images == nil {
		return path
	}
	return s.images.URL(path)
}

func (s *service) Get(ctx context.Context) ([]FeaturedProductDTO, error) {
	pins, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}

	items := make([]FeaturedProductDTO, 0, len(pins))
	for _, pin := range pins {
		if pin.Product == nil {
			continue
		}
		items = append(items, s.project(pin.Product, pin.Position))
	}
	return items, nil
}

// Set replaces the whole featured set with the given products in order.
// More than four ids is rejected outright rather than truncated.
func (s *service) Set(ctx context.Context, orderedIDs []uuid.UUID) ([]FeaturedProductDTO, error) {
	if len(orderedIDs) > MaxFeatured {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("at most %d featured products allowed", MaxFeatured))
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in featured set")
		}
		seen[id] = struct{}{}
	}

	products, err := s.products.FindManyByIDs(ctx, orderedIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load featured products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
	}

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteAll(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear featured set")
		}
		for position, id := range orderedIDs {
			pin := &models.FeaturedProduct{
				ProductID: id,
				Position:  position + 1,
				IsActive:  true,
			}
			if err := txRepo.Create(ctx, pin); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create featured pin")
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	items := make([]FeaturedProductDTO, 0, len(orderedIDs))
	for position, id := range orderedIDs {
		items = append(items, s.project(byID[id], position+1))
	}
	return items, nil
}

func (s *service) project(product *models.Product, position int) FeaturedProductDTO {
	image := ""
	if len(product.Images) > 0 {
		image = s.resolveImage(product.Images[0])
	}
	return FeaturedProductDTO{
		ProductID:   product.ID,
		VallyID:     product.VallyID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Image:       image,
		Position:    position,
	}
}
