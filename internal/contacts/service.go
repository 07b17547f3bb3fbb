package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
)

const maxSubjectLength = 100

// CreateContactRequest is the public enquiry payload.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=100"`
	Content string `json:"content" validate:"required,max=5000"`
}

// ListResult is one page of enquiries plus the pagination block.
type ListResult struct {
	Items    []models.Contact    `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

// Service manages public enquiries and admin triage.
type Service interface {
	Create(ctx context.Context, req CreateContactRequest) (*models.Contact, error)
	List(ctx context.Context, contacted *bool, page pagination.Params) (*ListResult, error)
	SetContacted(ctx context.Context, id uuid.UUID, contacted bool) (*models.Contact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams packages the dependencies for the contact service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService constructs a contact service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "contact repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateContactRequest) (*models.Contact, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject is required")
	}
	if len(subject) > maxSubjectLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject must be at most 100 characters")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and content are required")
	}

	enquiry := &models.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Subject: subject,
		Content: strings.TrimSpace(req.Content),
	}
	if err := s.repo.Create(ctx, enquiry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	return enquiry, nil
}

func (s *service) List(ctx context.Context, contacted *bool, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	enquiries, total, err := s.repo.List(ctx, contacted, page.Offset(), page.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	return &ListResult{
		Items:    enquiries,
		PageInfo: pagination.NewPageInfo(page, total),
	}, nil
}

func (s *service) SetContacted(ctx context.Context, id uuid.UUID, contacted bool) (*models.Contact, error) {
	enquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}

	if err := s.repo.SetContacted(ctx, enquiry.ID, contacted); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact")
	}
	enquiry.IsContactedByTeam = contacted
	return enquiry, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
	}
	return nil
}
