package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fitshop_backend/internal/imageprocessor"
	"fitshop_backend/internal/models"
	"fitshop_backend/internal/storage"
)

// CreateUser stores a user whose password is hashed with bcrypt.
func CreateUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, db.Omit("Avatar").Create(user).Error, "create user %s", email)
	return user
}

// CreateCustomer stores a customer with a unique email.
func CreateCustomer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateUser(t, db, fmt.Sprintf("customer_%s@test.com", uuid.NewString()[:8]), "password123", models.UserRoleCustomer)
}

func CreateProduct(t *testing.T, db *gorm.DB, slug, price string) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:  "Product " + slug,
		Slug:  slug,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Omit("Pictures").Create(product).Error, "create product %s", slug)
	return product
}

func CreateDiscount(t *testing.T, db *gorm.DB, code string, pct int) *models.Discount {
	t.Helper()

	discount := &models.Discount{
		Name:               "Discount " + code,
		Code:               code,
		DiscountPercentage: pct,
	}
	require.NoError(t, db.Create(discount).Error, "create discount %s", code)
	return discount
}

// NewImageStore returns an image store backed by local storage in a temp dir.
func NewImageStore(t *testing.T) (*imageprocessor.Store, *storage.LocalStorage) {
	t.Helper()

	st, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	cfg := imageprocessor.DefaultConfiguration()
	cfg.StagingDir = t.TempDir()
	return imageprocessor.NewStore(st, cfg), st
}

// PNG renders a w×h test image.
func PNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 5 {
		for y := 0; y < h; y += 5 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
