package blogs

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
	"github.com/vallyhouse/vally-backend/pkg/storage/imagekit"
)

const (
	defaultAuthor   = "Vally"
	defaultCategory = "Fashion"
	uploadFolder    = "/blogs"
	minTextLength   = 8
)

// BlogImage pairs the serving URL with the storage handle needed for cleanup.
type BlogImage struct {
	URL    string `json:"url" validate:"required,url"`
	FileID string `json:"file_id" validate:"required"`
}

// CreateBlogRequest is the admin payload for a new post.
type CreateBlogRequest struct {
	Title    string    `json:"title" validate:"required,min=8,max=200"`
	Slug     string    `json:"slug" validate:"required,min=8,max=200"`
	Excerpt  string    `json:"excerpt" validate:"required,min=8,max=500"`
	Content  string    `json:"content" validate:"required"`
	Author   string    `json:"author"`
	Category string    `json:"category"`
	Image    BlogImage `json:"image" validate:"required"`
}

// UpdateBlogRequest mirrors create; the whole post is replaced.
type UpdateBlogRequest = CreateBlogRequest

// ListResult is one page of posts plus the pagination block.
type ListResult struct {
	Items    []models.Blog       `json:"items"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type imageStore interface {
	Upload(ctx context.Context, fileName string, data []byte, folder string) (*imagekit.UploadResult, error)
	Delete(ctx context.Context, fileID string) error
}

// Service manages blog posts and their remote cover images.
type Service interface {
	List(ctx context.Context, page pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	Create(ctx context.Context, req CreateBlogRequest) (*models.Blog, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*models.Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, fileName string, data []byte) (*BlogImage, error)
}

// ServiceParams packages the dependencies for the blog service.
type ServiceParams struct {
	DB     *db.Client
	Repo   *Repository
	Images imageStore
}

type service struct {
	db     *db.Client
	repo   *Repository
	images imageStore
}

// NewService constructs a blog service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "blog repository required")
	}
	if params.Images == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "image store required")
	}
	return &service{db: params.DB, repo: params.Repo, images: params.Images}, nil
}

func (s *service) List(ctx context.Context, page pagination.Params) (*ListResult, error) {
	page = page.Normalize()
	posts, total, err := s.repo.List(ctx, page.Offset(), page.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blogs")
	}
	return &ListResult{
		Items:    posts,
		PageInfo: pagination.NewPageInfo(page, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog")
	}
	return post, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	post, err := s.repo.FindBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog")
	}
	return post, nil
}

func (s *service) Create(ctx context.Context, req CreateBlogRequest) (*models.Blog, error) {
	if err := validateWrite(req); err != nil {
		return nil, err
	}

	slug := normalizeSlug(req.Slug)
	if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}

	post := buildModel(req, slug)
	if err := s.repo.Create(ctx, post); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blog")
	}
	return post, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*models.Blog, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog")
	}

	if err := validateWrite(req); err != nil {
		return nil, err
	}

	slug := normalizeSlug(req.Slug)
	if slug != existing.Slug {
		if _, err := s.repo.FindBySlug(ctx, slug); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
	}

	// A replaced cover image is deleted from storage before the row points at
	// the new one. Failure keeps the old image and aborts the update.
	if req.Image.FileID != existing.ImageFileID && existing.ImageFileID != "" {
		if err := s.images.Delete(ctx, existing.ImageFileID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete previous blog image")
		}
	}

	updated := buildModel(req, slug)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update blog")
	}
	return updated, nil
}

// Delete removes the remote image first. A storage failure leaves the post in
// place; the row delete error is surfaced on its own.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "blog not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blog")
	}

	if post.ImageFileID != "" {
		if err := s.images.Delete(ctx, post.ImageFileID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete blog image")
		}
	}

	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete blog")
	}
	return nil
}

// UploadImage pushes the cover image and returns the handle the write
// endpoints expect.
func (s *service) UploadImage(ctx context.Context, fileName string, data []byte) (*BlogImage, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file data is required")
	}

	result, err := s.images.Upload(ctx, fileName, data, uploadFolder)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload blog image")
	}
	return &BlogImage{URL: result.URL, FileID: result.FileID}, nil
}

func validateWrite(req CreateBlogRequest) error {
	if len(strings.TrimSpace(req.Title)) < minTextLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "title must be at least 8 characters")
	}
	if len(strings.TrimSpace(req.Slug)) < minTextLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be at least 8 characters")
	}
	if len(strings.TrimSpace(req.Excerpt)) < minTextLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "excerpt must be at least 8 characters")
	}
	if strings.TrimSpace(req.Content) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if req.Image.URL == "" || req.Image.FileID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image url and file id are required")
	}
	return nil
}

func buildModel(req CreateBlogRequest, slug string) *models.Blog {
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = defaultAuthor
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = defaultCategory
	}
	return &models.Blog{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Excerpt:     strings.TrimSpace(req.Excerpt),
		Content:     req.Content,
		Author:      author,
		Category:    category,
		ImageURL:    req.Image.URL,
		ImageFileID: req.Image.FileID,
	}
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
