package blogs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	pkgerrors "github.com/vallyhouse/vally-backend/pkg/errors"
	"github.com/vallyhouse/vally-backend/pkg/pagination"
	"github.com/vallyhouse/vally-backend/pkg/storage/imagekit"
)

type fakeImageStore struct {
	deleted    []string
	deleteErr  error
	uploadErr  error
	lastFolder string
}

func (f *fakeImageStore) Upload(_ context.Context, fileName string, _ []byte, folder string) (*imagekit.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.lastFolder = folder
	return &imagekit.UploadResult{
		FileID: "file-" + fileName,
		URL:    "https://ik.imagekit.io/vally/blogs/" + fileName,
	}, nil
}

func (f *fakeImageStore) Delete(_ context.Context, fileID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeImageStore, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Blog{}))

	store := &fakeImageStore{}
	svc, err := NewService(ServiceParams{
		DB:     db.NewWithConn(conn),
		Repo:   NewRepository(conn),
		Images: store,
	})
	require.NoError(t, err)
	return svc, store, conn
}

func validPost(slug string) CreateBlogRequest {
	return CreateBlogRequest{
		Title:   "Styling raw silk this season",
		Slug:    slug,
		Excerpt: "A short guide to wearing silk",
		Content: "Full article body goes here.",
		Image: BlogImage{
			URL:    "https://ik.imagekit.io/vally/blogs/silk.jpg",
			FileID: "file-silk",
		},
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestService(t)

	post, err := svc.Create(context.Background(), validPost("styling-raw-silk"))
	require.NoError(t, err)
	assert.Equal(t, "Vally", post.Author)
	assert.Equal(t, "Fashion", post.Category)
	assert.Equal(t, "styling-raw-silk", post.Slug)
}

func TestCreateRejectsShortFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for name, mutate := range map[string]func(*CreateBlogRequest){
		"title":   func(r *CreateBlogRequest) { r.Title = "short" },
		"slug":    func(r *CreateBlogRequest) { r.Slug = "tiny" },
		"excerpt": func(r *CreateBlogRequest) { r.Excerpt = "nope" },
	} {
		req := validPost("styling-raw-silk")
		mutate(&req)
		_, err := svc.Create(ctx, req)
		require.Error(t, err, name)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr, name)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code(), name)
	}
}

func TestCreateRejectsMissingImage(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := validPost("styling-raw-silk")
	req.Image = BlogImage{}
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCreateSlugConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validPost("styling-raw-silk"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validPost("Styling-Raw-Silk"))
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestGetBySlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validPost("styling-raw-silk"))
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, "STYLING-RAW-SILK")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetBySlug(ctx, "missing-post")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListNewestFirst(t *testing.T) {
	svc, _, conn := newTestService(t)

	for i := 0; i < 3; i++ {
		post := &models.Blog{
			Title:       fmt.Sprintf("Post number %d title", i),
			Slug:        fmt.Sprintf("post-number-%d", i),
			Excerpt:     "excerpt text here",
			Content:     "body",
			Author:      "Vally",
			Category:    "Fashion",
			ImageURL:    "https://example.com/img.jpg",
			ImageFileID: fmt.Sprintf("file-%d", i),
		}
		require.NoError(t, conn.Create(post).Error)
	}

	result, err := svc.List(context.Background(), pagination.Params{PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.EqualValues(t, 3, result.PageInfo.Total)
	assert.Equal(t, 2, result.PageInfo.TotalPages)
}

func TestDeleteRemovesImageFirst(t *testing.T) {
	svc, store, conn := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, validPost("styling-raw-silk"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, post.ID))
	assert.Equal(t, []string{"file-silk"}, store.deleted)

	var count int64
	require.NoError(t, conn.Model(&models.Blog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteAbortsWhenImageDeleteFails(t *testing.T) {
	svc, store, conn := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, validPost("styling-raw-silk"))
	require.NoError(t, err)

	store.deleteErr = fmt.Errorf("storage down")
	err = svc.Delete(ctx, post.ID)
	require.Error(t, err)

	// The post survives when storage cleanup fails.
	var count int64
	require.NoError(t, conn.Model(&models.Blog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateReplacingImageDeletesOld(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, validPost("styling-raw-silk"))
	require.NoError(t, err)

	req := validPost("styling-raw-silk")
	req.Image = BlogImage{
		URL:    "https://ik.imagekit.io/vally/blogs/silk-v2.jpg",
		FileID: "file-silk-v2",
	}
	updated, err := svc.Update(ctx, post.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "file-silk-v2", updated.ImageFileID)
	assert.Equal(t, []string{"file-silk"}, store.deleted)
}

func TestUploadImage(t *testing.T) {
	svc, store, _ := newTestService(t)

	image, err := svc.UploadImage(context.Background(), "cover.jpg", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "file-cover.jpg", image.FileID)
	assert.Equal(t, "/blogs", store.lastFolder)

	_, err = svc.UploadImage(context.Background(), "", []byte("bytes"))
	require.Error(t, err)
}
