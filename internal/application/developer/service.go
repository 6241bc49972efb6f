package developer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	mktsvc "estate-backend/internal/application/marketplace"
	"estate-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAccountRequired      = errors.New("Account not connected")
	ErrUnknownStatus        = errors.New("Unknown status")
	ErrPropertyNameRequired = errors.New("property_name is required")
	ErrStoreUnavailable     = errors.New("Property store not configured")
	ErrUploadsUnavailable   = errors.New("File uploads not configured")
	ErrInvalidUpload        = errors.New("property_id, kind and file_name are required")
	ErrUnknownFileKind      = errors.New("Unknown file kind")
	ErrPropertyNotFound     = errors.New("Property not found")
)

// Uploader signs one-shot upload URLs in the object store.
type Uploader interface {
	CreateSignedUploadURL(ctx context.Context, fileKey string) (string, error)
}

// File kinds accepted for uploads; the kind is the third key segment.
var fileKinds = map[string]bool{
	mktsvc.PropertyImageKind: true,
	"documents":              true,
}

const (
	StatusAll       = "all"
	StatusListed    = "listed"
	StatusPurchased = "purchased"
)

// Service serves the developer partner views. The account address is always
// passed in by the caller.
type Service struct {
	DB          *gorm.DB
	Marketplace *mktsvc.Service
	Uploader    Uploader
}

// PropertyView is a stored property with its images presigned.
type PropertyView struct {
	domain.DeveloperProperty
	FileURLs []string `json:"fileUrls"`
}

// PropertiesResult is the developer properties page payload.
type PropertiesResult struct {
	Status     string         `json:"status"`
	Properties []PropertyView `json:"properties"`
	Listings   []mktsvc.Card  `json:"listings"`
}

// Properties returns the developer's properties for one tab: all stored
// properties, the developer's ongoing listings, or purchased (always empty).
func (s *Service) Properties(ctx context.Context, address, status string) (*PropertiesResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAccountRequired
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = StatusAll
	}

	res := &PropertiesResult{Status: status, Properties: []PropertyView{}, Listings: []mktsvc.Card{}}
	switch status {
	case StatusAll:
		props, err := s.ListProperties(ctx, address)
		if err != nil {
			return nil, err
		}
		res.Properties = props
	case StatusListed:
		records, err := s.Marketplace.Chain.GetOngoingListingsByDeveloper(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("fetch developer listings: %w", err)
		}
		decorated := s.Marketplace.Decorate(ctx, records, mktsvc.DecorateOptions{LiveTokenRemaining: true})
		res.Listings = mktsvc.ToCards(decorated)
	case StatusPurchased:
	default:
		return nil, ErrUnknownStatus
	}
	return res, nil
}

// ListProperties returns the stored properties of a developer, newest first.
func (s *Service) ListProperties(ctx context.Context, address string) ([]PropertyView, error) {
	if s.DB == nil {
		return nil, ErrStoreUnavailable
	}
	var props []domain.DeveloperProperty
	if err := s.DB.WithContext(ctx).Where("developer_address = ?", address).Order(`"createdAt" DESC`).Find(&props).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch properties: %v", err)
	}
	out := make([]PropertyView, len(props))
	for i, p := range props {
		var files []string
		_ = json.Unmarshal(p.Files, &files)
		out[i] = PropertyView{DeveloperProperty: p, FileURLs: s.Marketplace.PresignImages(ctx, files)}
	}
	return out, nil
}

type CreatePropertyInput struct {
	DeveloperAddress string
	PropertyName     string
	PropertyType     string
	AddressStreet    string
	AddressTownCity  string
	AddressPostcode  string
	Country          string
	PropertyPrice    float64
	NumberOfTokens   int64
	Files            []string
}

// CreateProperty stores a property record. Its metadata column mirrors the
// off-chain blob that is later attached to the on-chain item.
func (s *Service) CreateProperty(ctx context.Context, in CreatePropertyInput) (*domain.DeveloperProperty, error) {
	if s.DB == nil {
		return nil, ErrStoreUnavailable
	}
	if strings.TrimSpace(in.DeveloperAddress) == "" {
		return nil, ErrAccountRequired
	}
	if strings.TrimSpace(in.PropertyName) == "" {
		return nil, ErrPropertyNameRequired
	}
	files := in.Files
	if files == nil {
		files = []string{}
	}
	filesJSON, _ := json.Marshal(files)

	meta := map[string]interface{}{
		"property_name":     in.PropertyName,
		"property_type":     in.PropertyType,
		"address_street":    in.AddressStreet,
		"address_town_city": in.AddressTownCity,
		"address_postcode":  in.AddressPostcode,
		"country":           in.Country,
		"property_price":    in.PropertyPrice,
		"number_of_tokens":  in.NumberOfTokens,
		"files":             files,
	}
	if in.NumberOfTokens > 0 {
		meta["price_per_token"] = in.PropertyPrice / float64(in.NumberOfTokens)
	}
	metaJSON, _ := json.Marshal(meta)

	prop := &domain.DeveloperProperty{
		DeveloperAddress: strings.TrimSpace(in.DeveloperAddress),
		PropertyName:     strings.TrimSpace(in.PropertyName),
		PropertyType:     in.PropertyType,
		AddressStreet:    in.AddressStreet,
		AddressTownCity:  in.AddressTownCity,
		AddressPostcode:  in.AddressPostcode,
		Country:          in.Country,
		PropertyPrice:    in.PropertyPrice,
		NumberOfTokens:   in.NumberOfTokens,
		Status:           "draft",
		Metadata:         datatypes.JSON(metaJSON),
		Files:            datatypes.JSON(filesJSON),
	}
	if err := s.DB.WithContext(ctx).Create(prop).Error; err != nil {
		return nil, fmt.Errorf("Failed to create property: %v", err)
	}
	return prop, nil
}

// UploadResult is a signed upload slot. Path is the key to store in the
// property's files list once the upload succeeds.
type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	Path      string `json:"path"`
}

// SignUpload issues an upload URL for a file of one of the developer's own
// properties, keyed "<address>/<property_id>/<kind>/<millis>-<name>".
func (s *Service) SignUpload(ctx context.Context, address, propertyID, kind, fileName string) (*UploadResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAccountRequired
	}
	name := path.Base(strings.TrimSpace(fileName))
	if strings.TrimSpace(propertyID) == "" || kind == "" || name == "" || name == "." || name == "/" {
		return nil, ErrInvalidUpload
	}
	if !fileKinds[kind] {
		return nil, ErrUnknownFileKind
	}
	if s.Uploader == nil {
		return nil, ErrUploadsUnavailable
	}
	if s.DB == nil {
		return nil, ErrStoreUnavailable
	}

	if _, err := uuid.Parse(propertyID); err != nil {
		return nil, ErrPropertyNotFound
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.DeveloperProperty{}).
		Where("property_id = ? AND developer_address = ?", propertyID, address).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("Failed to look up property: %v", err)
	}
	if count == 0 {
		return nil, ErrPropertyNotFound
	}

	key := fmt.Sprintf("%s/%s/%s/%d-%s", address, propertyID, kind, time.Now().UnixMilli(), name)
	u, err := s.Uploader.CreateSignedUploadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	return &UploadResult{UploadURL: u, Path: key}, nil
}
