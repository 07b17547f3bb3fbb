package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vallyhouse/vally-backend/api/responses"
	"github.com/vallyhouse/vally-backend/api/validators"
	contactsvc "github.com/vallyhouse/vally-backend/internal/contacts"
	"github.com/vallyhouse/vally-backend/pkg/logger"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

// CreateContact records a public enquiry from the storefront contact form.
func CreateContact(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload contactsvc.CreateContactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enquiry, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, enquiry)
	}
}

// AdminListContacts pages through enquiries, optionally filtered by
// ?contacted=true|false.
func AdminListContacts(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contacted := validators.ParseQueryBool(r, "contacted")
		page := pagination.Params{
			Page:    validators.LenientQueryInt(r, "page", 1, 1, 1_000_000),
			PerPage: validators.LenientQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage),
		}

		result, err := svc.List(r.Context(), contacted, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type setContactedRequest struct {
	Contacted bool `json:"contacted"`
}

func AdminSetContacted(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUID(chi.URLParam(r, "contactId"), "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setContactedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		enquiry, err := svc.SetContacted(r.Context(), id, payload.Contacted)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, enquiry)
	}
}

func AdminDeleteContact(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUID(chi.URLParam(r, "contactId"), "contactId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
