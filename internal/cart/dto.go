package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
)

// CartItemDTO is the public projection of a cart line.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	VallyID   string          `json:"vally_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Image     string          `json:"image"`
}

// CartDTO is the full cart with computed totals. Totals are derived on every
// read so stored rows never carry stale aggregates.
type CartDTO struct {
	ID            uuid.UUID       `json:"id"`
	Items         []CartItemDTO   `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// NewCartDTO projects the cart and recomputes quantity and subtotal.
// resolveImage maps a stored relative path to a serveable URL.
func NewCartDTO(cart *models.Cart, resolveImage func(string) string) *CartDTO {
	if cart == nil {
		return nil
	}
	if resolveImage == nil {
		resolveImage = func(path string) string { return path }
	}

	dto := &CartDTO{
		ID:       cart.ID,
		Items:    make([]CartItemDTO, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range cart.Items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Items = append(dto.Items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VallyID:   item.VallyID,
			Name:      item.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
			Image:     resolveImage(item.Image),
		})
		dto.TotalQuantity += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(lineTotal)
	}
	return dto
}
