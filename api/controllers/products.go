package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vallyhouse/vally-backend/api/responses"
	"github.com/vallyhouse/vally-backend/api/validators"
	catalogsvc "github.com/vallyhouse/vally-backend/internal/catalog"
	featuredsvc "github.com/vallyhouse/vally-backend/internal/featured"
	"github.com/vallyhouse/vally-backend/pkg/enums"
	"github.com/vallyhouse/vally-backend/pkg/logger"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

// listFilterFromQuery builds a catalog filter from the request. Unusable
// values are dropped rather than rejected.
func listFilterFromQuery(r *http.Request) (catalogsvc.ListFilter, pagination.Params) {
	filter := catalogsvc.ListFilter{
		Query:       validators.SanitizeString(r.URL.Query().Get("q"), 120),
		MinPrice:    validators.LenientQueryDecimal(r, "min_price"),
		MaxPrice:    validators.LenientQueryDecimal(r, "max_price"),
		CategoryIDs: validators.LenientQueryUUIDs(r, "categories"),
		Sort:        enums.ParseProductSort(r.URL.Query().Get("sort")),
	}
	if subID, err := validators.ParseUUID(r.URL.Query().Get("subcategory"), "subcategory"); err == nil {
		filter.SubCategoryID = &subID
	}
	page := pagination.Params{
		Page:    validators.LenientQueryInt(r, "page", 1, 1, 1_000_000),
		PerPage: validators.LenientQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage),
	}
	return filter, page
}

func ListProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, page := listFilterFromQuery(r)

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func GetFeaturedProducts(svc featuredsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ListCategoryProducts serves the category landing page listing.
func ListCategoryProducts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := validators.ParseUUID(chi.URLParam(r, "categoryId"), "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, page := listFilterFromQuery(r)
		filter.CategoryIDs = []uuid.UUID{categoryID}

		result, err := svc.List(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
