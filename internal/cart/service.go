package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
)

// AddItemRequest selects a product variant to put in the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}

// ReplaceItemRequest is one line of a client-side cart sync.
type ReplaceItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type imageResolver interface {
	URL(path string) string
}

// Service owns the cart state machine. Line identity is the
// (product, size, color) triple; a quantity pushed below 1 removes the line.
type Service interface {
	Fetch(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	AdjustQuantity(ctx context.Context, userID, itemID uuid.UUID, delta int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	ReplaceItems(ctx context.Context, userID uuid.UUID, items []ReplaceItemRequest) (*CartDTO, error)
}

// ServiceParams packages the dependencies for the cart service.
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

// NewService constructs a cart service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart repository required")
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

func (s *service) loadCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) project(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewCartDTO(cart, s.resolveImage), nil
}

func (s *service) Fetch(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	return s.project(ctx, userID)
}

// AddItem merges the selection into an existing line when the triple already
// exists, otherwise snapshots the product into a new line.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	size := strings.TrimSpace(req.Size)
	color := strings.TrimSpace(req.Color)

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := validateSelection(product, size, color); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItem(ctx, cart.ID, product.ID, size, color)
	switch {
	case err == nil:
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Size:      size,
			Color:     color,
			Quantity:  quantity,
			UnitPrice: product.Price,
			Name:      product.Name,
			VallyID:   product.VallyID,
			Image:     snapshotImage(product, color),
		}
		if err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.project(ctx, userID)
}

// AdjustQuantity applies a signed delta. Dropping below 1 removes the line.
func (s *service) AdjustQuantity(ctx context.Context, userID, itemID uuid.UUID, delta int) (*CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	next := item.Quantity + delta
	if next < 1 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
	} else if err := s.repo.UpdateItemQuantity(ctx, item.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}

	return s.project(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByID(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.project(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteAllItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return s.project(ctx, userID)
}

// ReplaceItems swaps the full cart contents in one transaction. Duplicate
// triples in the payload are merged; quantities are clamped to at least 1.
func (s *service) ReplaceItems(ctx context.Context, userID uuid.UUID, items []ReplaceItemRequest) (*CartDTO, error) {
	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := mergeReplaceItems(items)

	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteAllItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		for _, line := range merged {
			product, err := s.products.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if err := validateSelection(product, line.Size, line.Color); err != nil {
				return err
			}
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Size:      line.Size,
				Color:     line.Color,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Name:      product.Name,
				VallyID:   product.VallyID,
				Image:     snapshotImage(product, line.Color),
			}
			if err := txRepo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.project(ctx, userID)
}

func mergeReplaceItems(items []ReplaceItemRequest) []ReplaceItemRequest {
	type key struct {
		product uuid.UUID
		size    string
		color   string
	}
	order := make([]key, 0, len(items))
	byKey := make(map[key]int, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		k := key{
			product: item.ProductID,
			size:    strings.TrimSpace(item.Size),
			color:   strings.TrimSpace(item.Color),
		}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] += quantity
	}

	merged := make([]ReplaceItemRequest, 0, len(order))
	for _, k := range order {
		merged = append(merged, ReplaceItemRequest{
			ProductID: k.product,
			Size:      k.size,
			Color:     k.color,
			Quantity:  byKey[k],
		})
	}
	return merged
}

// validateSelection checks the size and color against the product definition.
// Products without declared sizes or variants accept any value.
func validateSelection(product *models.Product, size, color string) error {
	if len(product.Sizes) > 0 {
		found := false
		for _, s := range product.Sizes {
			if strings.EqualFold(s, size) {
				found = true
				break
			}
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeValidation, "size not available for this product")
		}
	}
	if color != "" && len(product.Variants) > 0 {
		found := false
		for _, v := range product.Variants {
			if strings.EqualFold(v.Color, color) {
				found = true
				break
			}
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeValidation, "color not available for this product")
		}
	}
	return nil
}

// snapshotImage prefers the image set of the chosen color variant.
func snapshotImage(product *models.Product, color string) string {
	if color != "" {
		for _, v := range product.Variants {
			if strings.EqualFold(v.Color, color) && len(v.Images) > 0 {
				return v.Images[0]
			}
		}
	}
	if len(product.Images) > 0 {
		return product.Images[0]
	}
	return ""
}
