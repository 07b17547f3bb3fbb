package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/vallyhouse/vally-backend/internal/cart"
	"github.com/vallyhouse/vally-backend/pkg/config"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
)

// CheckoutDTO carries the prebuilt WhatsApp handoff.
type CheckoutDTO struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

type cartFetcher interface {
	Fetch(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
}

// Service turns the authenticated user's cart into a WhatsApp order link.
// There is no payment step; the conversation continues on WhatsApp.
type Service interface {
	BuildOrderLink(ctx context.Context, userID uuid.UUID) (*CheckoutDTO, error)
}

// ServiceParams packages the dependencies for the checkout service.
type ServiceParams struct {
	Carts    cartFetcher
	WhatsApp config.WhatsAppConfig
}

type service struct {
	carts    cartFetcher
	whatsapp config.WhatsAppConfig
}

// NewService constructs a checkout service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart service required")
	}
	if strings.TrimSpace(params.WhatsApp.BusinessNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "whatsapp business number required")
	}
	return &service{
		carts:    params.Carts,
		whatsapp: params.WhatsApp,
	}, nil
}

// BuildOrderLink renders the cart as an order message and wraps it in a
// wa.me deep link. An empty cart is rejected.
func (s *service) BuildOrderLink(ctx context.Context, userID uuid.UUID) (*CheckoutDTO, error) {
	cartDTO, err := s.carts.Fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartDTO.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	message := s.renderMessage(cartDTO)
	link := fmt.Sprintf(
		"https://wa.me/%s?text=%s",
		normalizeNumber(s.whatsapp.BusinessNumber),
		url.QueryEscape(message),
	)

	return &CheckoutDTO{URL: link, Message: message}, nil
}

func (s *service) renderMessage(cartDTO *cart.CartDTO) string {
	siteName := strings.TrimSpace(s.whatsapp.SiteName)
	if siteName == "" {
		siteName = "Vally"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! I would like to place an order:\n\n", siteName)
	for i, item := range cartDTO.Items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Name, item.VallyID)
		line := fmt.Sprintf("   Size: %s", item.Size)
		if item.Color != "" {
			line += fmt.Sprintf(" | Color: %s", item.Color)
		}
		line += fmt.Sprintf(" | Qty: %d | Price: %s", item.Quantity, item.UnitPrice.StringFixed(2))
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal items: %d\n", cartDTO.TotalQuantity)
	fmt.Fprintf(&b, "Order total: %s", cartDTO.Subtotal.StringFixed(2))
	return b.String()
}

// normalizeNumber strips formatting so wa.me receives only digits.
func normalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
