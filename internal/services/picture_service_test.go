package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/storage"
	"fitshop_backend/internal/testutil"
	"fitshop_backend/pkg/apperrors"
)

type failingPictureRepo struct {
	repositories.PictureRepository
}

func (failingPictureRepo) Create(*gorm.DB, *models.Picture) error {
	return errors.New("insert failed")
}

func storedKeys(t *testing.T, st storage.Storage) []string {
	t.Helper()
	objects, err := st.List(context.Background(), "")
	require.NoError(t, err)
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys
}

func TestPictureService_AttachImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	product := testutil.CreateProduct(t, db, "whey", "10.00")

	picture, err := svc.AttachImage(context.Background(), db, product, bytes.NewReader(testutil.PNG(t, 640, 480)), "whey.png", imageprocessor.FullHD)
	require.NoError(t, err)

	assert.Equal(t, models.OwnerTypeProduct, picture.OwnerType)
	assert.Equal(t, product.ID, picture.OwnerID)
	assert.NotEqual(t, picture.Path, picture.Thumbnail)
	assert.ElementsMatch(t, []string{picture.Path, picture.Thumbnail}, storedKeys(t, st))

	pictures, err := svc.ListPictures(context.Background(), db, product)
	require.NoError(t, err)
	require.Len(t, pictures, 1)
	assert.Equal(t, picture.ID, pictures[0].ID)
}

func TestPictureService_CompensatesFailedInsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, failingPictureRepo{repositories.NewPictureRepository()})
	product := testutil.CreateProduct(t, db, "whey", "10.00")

	_, err := svc.AttachImage(context.Background(), db, product, bytes.NewReader(testutil.PNG(t, 200, 200)), "x.png", imageprocessor.FullHD)
	require.Error(t, err)

	assert.Empty(t, storedKeys(t, st), "artifacts must be removed when the row is not stored")
}

func TestPictureService_InvalidImage(t *testing.T) {
	db := testutil.NewTestDB(t)
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	product := testutil.CreateProduct(t, db, "whey", "10.00")

	_, err := svc.AttachImage(context.Background(), db, product, bytes.NewReader([]byte("not an image")), "x.png", imageprocessor.FullHD)
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)

	_, err = svc.AttachImage64(context.Background(), db, product, "data:image/png;base64,@@@", imageprocessor.Avatar)
	assert.ErrorIs(t, err, apperrors.ErrInvalidBase64)

	assert.Empty(t, storedKeys(t, st))
}

func TestPictureService_ReplaceImage64(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	user := testutil.CreateCustomer(t, db)

	encoded := "data:image/png;base64," + base64.StdEncoding.EncodeToString(testutil.PNG(t, 500, 400))

	first, err := svc.ReplaceImage64(ctx, db, user, encoded, imageprocessor.Avatar)
	require.NoError(t, err)
	assert.Empty(t, first.Stale)
	assert.Equal(t, first.Picture.Path, first.Picture.Thumbnail)

	second, err := svc.ReplaceImage64(ctx, db, user, encoded, imageprocessor.Avatar)
	require.NoError(t, err)
	assert.NotEqual(t, first.Picture.Path, second.Picture.Path)
	assert.Equal(t, []string{first.Picture.Path}, second.Stale)

	// stale artifacts stay until purged
	assert.ElementsMatch(t, []string{first.Picture.Path, second.Picture.Path}, storedKeys(t, st))
	assert.True(t, svc.PurgeArtifacts(ctx, second.Stale).Empty())
	assert.Equal(t, []string{second.Picture.Path}, storedKeys(t, st))

	// bad payloads keep the current avatar
	_, err = svc.ReplaceImage64(ctx, db, user, "%%%", imageprocessor.Avatar)
	assert.ErrorIs(t, err, apperrors.ErrInvalidBase64)
	_, err = svc.ReplaceImage64(ctx, db, user, base64.StdEncoding.EncodeToString([]byte("not an image")), imageprocessor.Avatar)
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)

	pictures, err := svc.ListPictures(ctx, db, user)
	require.NoError(t, err)
	require.Len(t, pictures, 1)
	assert.Equal(t, second.Picture.ID, pictures[0].ID)
	assert.Equal(t, []string{second.Picture.Path}, storedKeys(t, st))
}

func TestPictureService_ReplaceImageFailureKeepsCurrentFiles(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	product := testutil.CreateProduct(t, db, "whey", "10.00")

	current, err := svc.AttachImage(ctx, db, product, bytes.NewReader(testutil.PNG(t, 320, 240)), "p.png", imageprocessor.FullHD)
	require.NoError(t, err)

	_, err = svc.ReplaceImage(ctx, db, product, bytes.NewReader([]byte("not an image")), "x.png", imageprocessor.FullHD)
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)

	pictures, err := svc.ListPictures(ctx, db, product)
	require.NoError(t, err)
	require.Len(t, pictures, 1)
	assert.Equal(t, current.ID, pictures[0].ID)
	assert.ElementsMatch(t, current.Paths(), storedKeys(t, st))
}

func TestPictureService_ReplaceImageRolledBackByCaller(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	product := testutil.CreateProduct(t, db, "whey", "10.00")

	current, err := svc.AttachImage(ctx, db, product, bytes.NewReader(testutil.PNG(t, 320, 240)), "p.png", imageprocessor.FullHD)
	require.NoError(t, err)

	var replaced *Replaced
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		replaced, err = svc.ReplaceImage(ctx, tx, product, bytes.NewReader(testutil.PNG(t, 200, 200)), "n.png", imageprocessor.FullHD)
		require.NoError(t, err)
		return errors.New("caller failed later")
	})
	require.Error(t, err)
	assert.ElementsMatch(t, current.Paths(), replaced.Stale)

	// the restored row still points at files on storage
	pictures, err := svc.ListPictures(ctx, db, product)
	require.NoError(t, err)
	require.Len(t, pictures, 1)
	assert.Equal(t, current.ID, pictures[0].ID)
	for _, key := range current.Paths() {
		ok, err := st.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
}

func TestPictureService_DeletePictureReportsMissingArtifacts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store, st := testutil.NewImageStore(t)
	svc := NewPictureService(store, repositories.NewPictureRepository())
	product := testutil.CreateProduct(t, db, "whey", "10.00")
	other := testutil.CreateProduct(t, db, "bar", "1.00")

	picture, err := svc.AttachImage(ctx, db, product, bytes.NewReader(testutil.PNG(t, 320, 240)), "p.png", imageprocessor.FullHD)
	require.NoError(t, err)

	_, err = svc.DeletePicture(ctx, db, other, picture.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)

	require.NoError(t, st.Delete(ctx, picture.Thumbnail))

	log, err := svc.DeletePicture(ctx, db, product, picture.ID)
	require.NoError(t, err)
	assert.Equal(t, imageprocessor.DeleteLog{"picture not deleted: " + picture.Thumbnail}, log)
	assert.Empty(t, storedKeys(t, st))

	pictures, err := svc.ListPictures(ctx, db, product)
	require.NoError(t, err)
	assert.Empty(t, pictures)
}
