package developer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	mktsvc "estate-backend/internal/application/marketplace"
	"estate-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubChain struct {
	byDeveloper map[string][]domain.ListingRecord
	remaining   map[string]string
}

func (s *stubChain) GetAllOngoingListings(ctx context.Context) ([]domain.ListingRecord, error) {
	return nil, nil
}

func (s *stubChain) GetOngoingListingsByDeveloper(ctx context.Context, address string) ([]domain.ListingRecord, error) {
	if address == "broken" {
		return nil, errors.New("indexer down")
	}
	return s.byDeveloper[address], nil
}

func (s *stubChain) GetItemMetadata(ctx context.Context, collectionID, itemID string) (*domain.ItemMetadata, error) {
	return &domain.ItemMetadata{Data: `{"property_name":"Dock House","files":["5Fdev/p1/property_image/a.png"]}`}, nil
}

func (s *stubChain) GetTokenRemaining(ctx context.Context, listingID string) (string, error) {
	return s.remaining[listingID], nil
}

func (s *stubChain) CheckBlock(ctx context.Context, blockNumber uint64) (bool, error) {
	return true, nil
}

type stubUploader struct{ keys []string }

func (u *stubUploader) CreateSignedUploadURL(ctx context.Context, fileKey string) (string, error) {
	u.keys = append(u.keys, fileKey)
	return "https://files.test/upload/" + fileKey + "?token=u", nil
}

type stubPresigner struct{}

func (stubPresigner) GeneratePresignedURL(ctx context.Context, fileKey string) (string, error) {
	return "https://files.test/" + fileKey, nil
}

func setupDeveloperTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.DeveloperProperty{}))
	chain := &stubChain{
		byDeveloper: map[string][]domain.ListingRecord{
			"5Fdev": {{ListingID: "3", ListingDetails: domain.ListingDetails{"collectionId": "1", "itemId": "2", "listedTokenAmount": "500", "listingExpiry": "10"}}},
		},
		remaining: map[string]string{"3": "120"},
	}
	return &Service{DB: db, Marketplace: &mktsvc.Service{Chain: chain, Presigner: stubPresigner{}}}, db
}

func TestProperties_RequiresAccount(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	_, err := svc.Properties(context.Background(), "  ", "all")
	assert.ErrorIs(t, err, ErrAccountRequired)
}

func TestProperties_UnknownStatus(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	_, err := svc.Properties(context.Background(), "5Fdev", "sold")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestProperties_AllDefaultsAndScopesByAddress(t *testing.T) {
	svc, db := setupDeveloperTest(t)
	ctx := context.Background()

	older, err := svc.CreateProperty(ctx, CreatePropertyInput{
		DeveloperAddress: "5Fdev",
		PropertyName:     "Dock House",
		PropertyPrice:    300000,
		NumberOfTokens:   1000,
		Files:            []string{"5Fdev/p1/property_image/a.png", "5Fdev/p1/deed/a.pdf"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(older).Update("createdAt", time.Now().Add(-time.Hour)).Error)

	_, err = svc.CreateProperty(ctx, CreatePropertyInput{DeveloperAddress: "5Fdev", PropertyName: "Mill Lofts"})
	require.NoError(t, err)
	_, err = svc.CreateProperty(ctx, CreatePropertyInput{DeveloperAddress: "5Fother", PropertyName: "Elsewhere"})
	require.NoError(t, err)

	res, err := svc.Properties(ctx, "5Fdev", "")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, res.Status)
	require.Len(t, res.Properties, 2)
	assert.Equal(t, "Mill Lofts", res.Properties[0].PropertyName)
	assert.Equal(t, []string{}, res.Properties[0].FileURLs)
	assert.Equal(t, "Dock House", res.Properties[1].PropertyName)
	assert.Equal(t, []string{"https://files.test/5Fdev/p1/property_image/a.png"}, res.Properties[1].FileURLs)
	assert.Empty(t, res.Listings)

	meta := mktsvc.ParseMetadata(string(res.Properties[1].Metadata))
	assert.Equal(t, "300", meta.String("price_per_token"))
}

func TestProperties_Listed(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	res, err := svc.Properties(context.Background(), "5Fdev", "LISTED")
	require.NoError(t, err)
	assert.Equal(t, StatusListed, res.Status)
	require.Len(t, res.Listings, 1)
	card := res.Listings[0]
	assert.Equal(t, "3", card.ID)
	assert.Equal(t, "120", card.TokenRemaining)
	assert.False(t, card.IsExpired, "developer view does not check expiry")
	assert.Equal(t, []string{"https://files.test/5Fdev/p1/property_image/a.png"}, card.FileURLs)

	_, err = svc.Properties(context.Background(), "broken", "listed")
	require.Error(t, err)
}

func TestProperties_Purchased(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	res, err := svc.Properties(context.Background(), "5Fdev", "purchased")
	require.NoError(t, err)
	assert.Empty(t, res.Properties)
	assert.Empty(t, res.Listings)
}

func TestCreateProperty_Validation(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	_, err := svc.CreateProperty(context.Background(), CreatePropertyInput{DeveloperAddress: "5Fdev"})
	assert.ErrorIs(t, err, ErrPropertyNameRequired)

	_, err = (&Service{}).CreateProperty(context.Background(), CreatePropertyInput{DeveloperAddress: "5Fdev", PropertyName: "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSignUpload(t *testing.T) {
	svc, _ := setupDeveloperTest(t)
	up := &stubUploader{}
	svc.Uploader = up
	ctx := context.Background()

	prop, err := svc.CreateProperty(ctx, CreatePropertyInput{DeveloperAddress: "5Fdev", PropertyName: "Dock House"})
	require.NoError(t, err)
	id := prop.PropertyID.String()

	res, err := svc.SignUpload(ctx, "5Fdev", id, "property_image", "../../front.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Path, "5Fdev/"+id+"/property_image/"))
	assert.True(t, strings.HasSuffix(res.Path, "-front.png"))
	assert.True(t, mktsvc.IsPropertyImage(res.Path))
	assert.Equal(t, []string{res.Path}, up.keys)

	_, err = svc.SignUpload(ctx, "5Fother", id, "property_image", "front.png")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	_, err = svc.SignUpload(ctx, "5Fdev", "not-a-uuid", "documents", "deed.pdf")
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	_, err = svc.SignUpload(ctx, "5Fdev", id, "selfie", "me.png")
	assert.ErrorIs(t, err, ErrUnknownFileKind)
	_, err = svc.SignUpload(ctx, "5Fdev", id, "documents", "")
	assert.ErrorIs(t, err, ErrInvalidUpload)

	svc.Uploader = nil
	_, err = svc.SignUpload(ctx, "5Fdev", id, "documents", "deed.pdf")
	assert.ErrorIs(t, err, ErrUploadsUnavailable)
}
