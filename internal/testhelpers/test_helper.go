package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/stretchr/testify/require"
)

// TestHelper bundles what the integration suite needs to drive a running
// rental-service: its base URL, a direct DB handle and a signing key that
// the service's RSA_PUBLIC_KEY_BASE64 verifies.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *pgxpool.Pool
	PrivateKey *rsa.PrivateKey

	UserRepo     repositories.UserRepository
	PropertyRepo repositories.PropertyRepository
	BookingRepo  repositories.BookingRepository
	ReviewRepo   repositories.ReviewRepository
	CategoryRepo repositories.CategoryRepository
	AmenityRepo  repositories.AmenityRepository
}

// NewTestHelper loads the environment, connects to the database and builds
// the repositories. It is meant to be called once from TestMain.
func NewTestHelper(t *testing.T) *TestHelper {
	_ = godotenv.Load()

	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		baseURL = os.Getenv("APP_URL")
	}
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL env var is missing")
	}

	privateKeyB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privateKeyB64, "RSA_PRIVATE_KEY_BASE64 not set")
	privateKeyPEM, err := base64.StdEncoding.DecodeString(privateKeyB64)
	require.NoError(t, err)
	block, _ := pem.Decode(privateKeyPEM)
	require.NotNil(t, block, "Failed to parse PEM block for RSA_PRIVATE_KEY_BASE64")
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	require.NoError(t, err)

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:            t,
		Ctx:          ctx,
		BaseURL:      baseURL,
		DB:           dbPool,
		PrivateKey:   privateKey,
		UserRepo:     repositories.NewUserRepository(dbPool),
		PropertyRepo: repositories.NewPropertyRepository(dbPool),
		BookingRepo:  repositories.NewBookingRepository(dbPool),
		ReviewRepo:   repositories.NewReviewRepository(dbPool),
		CategoryRepo: repositories.NewCategoryRepository(dbPool),
		AmenityRepo:  repositories.NewAmenityRepository(dbPool),
	}
}
