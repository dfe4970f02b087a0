package workers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/repositories"
	"fitshop_backend/internal/testutil"
)

func TestOrphanSweepWorker_Sweep(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	store, st := testutil.NewImageStore(t)
	pictureRepo := repositories.NewPictureRepository()

	kept, err := store.SaveImage(ctx, bytes.NewReader(testutil.PNG(t, 400, 300)), imageprocessor.FullHD)
	require.NoError(t, err)
	require.NoError(t, pictureRepo.Create(db, &models.Picture{
		OwnerType: models.OwnerTypeProduct,
		OwnerID:   "product-1",
		Path:      kept.Image,
		Thumbnail: kept.Thumbnail,
	}))

	orphan, err := store.SaveImage(ctx, bytes.NewReader(testutil.PNG(t, 200, 100)), imageprocessor.FullHD)
	require.NoError(t, err)

	// files outside the picture prefix are never touched
	require.NoError(t, st.Save(ctx, "videos/clip.mp4", bytes.NewReader([]byte("mp4")), "video/mp4"))

	staging := store.StagingPath()
	require.NoError(t, os.MkdirAll(staging, 0o755))
	stale := filepath.Join(staging, "stale.jpeg")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	w := NewOrphanSweepWorker(db, st, store, pictureRepo, time.Hour, time.Hour)

	// nothing is old enough yet
	res, err := w.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	w.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	res, err = w.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Artifacts)
	assert.Equal(t, 1, res.Staged)
	assert.Zero(t, res.Failed)

	for _, key := range []string{kept.Image, kept.Thumbnail, "videos/clip.mp4"} {
		ok, err := st.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
	for _, key := range []string{orphan.Image, orphan.Thumbnail} {
		ok, err := st.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}

func TestOrphanSweepWorker_StopsOnCancel(t *testing.T) {
	db := testutil.NewTestDB(t)
	store, st := testutil.NewImageStore(t)
	w := NewOrphanSweepWorker(db, st, store, repositories.NewPictureRepository(), 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
