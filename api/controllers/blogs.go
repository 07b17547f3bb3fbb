package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vallyhouse/vally-backend/api/responses"
	"github.com/vallyhouse/vally-backend/api/validators"
	blogsvc "github.com/vallyhouse/vally-backend/internal/blogs"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/logger"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

func ListBlogs(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := pagination.Params{
			Page:    validators.LenientQueryInt(r, "page", 1, 1, 1_000_000),
			PerPage: validators.LenientQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage),
		}

		result, err := svc.List(r.Context(), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetBlogBySlug(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug is required"))
			return
		}

		post, err := svc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}
