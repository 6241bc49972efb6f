package marketplace

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"estate-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ChainClient is the blockchain/indexer query layer.
type ChainClient interface {
	GetAllOngoingListings(ctx context.Context) ([]domain.ListingRecord, error)
	GetOngoingListingsByDeveloper(ctx context.Context, address string) ([]domain.ListingRecord, error)
	GetItemMetadata(ctx context.Context, collectionID, itemID string) (*domain.ItemMetadata, error)
	GetTokenRemaining(ctx context.Context, listingID string) (string, error)
	CheckBlock(ctx context.Context, blockNumber uint64) (bool, error)
}

// Presigner returns a fetchable URL for a stored file key.
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, fileKey string) (string, error)
}

// Service runs the listing pipeline: fetch, decode, extract, filter.
type Service struct {
	Chain     ChainClient
	Presigner Presigner
	// Concurrency bounds in-flight per-listing branches; 0 means unbounded.
	Concurrency int
}

// DecorateOptions selects the per-listing work done by Decorate.
type DecorateOptions struct {
	CheckExpiry        bool
	LiveTokenRemaining bool // ask the chain instead of using listedTokenAmount
}

// Card is the presenter payload for one property card.
type Card struct {
	ID             string                `json:"id"`
	FileURLs       []string              `json:"fileUrls"`
	Details        domain.ListingDetails `json:"details"`
	TokenRemaining string                `json:"tokenRemaining"`
	MetaData       Metadata              `json:"metaData"`
	PropertyType   string                `json:"propertyType"`
	PropertyPrice  *float64              `json:"propertyPrice"`
	TokenPrice     *float64              `json:"tokenPrice"`
	IsExpired      bool                  `json:"isExpired"`
}

// BrowseResult is the marketplace page payload.
type BrowseResult struct {
	Listings    []Card       `json:"listings"`
	CityOptions []CityOption `json:"cityOptions"`
	Suggestions []Suggestion `json:"suggestions"`
	Total       int          `json:"total"`
}

// PropertyImageKind is the key segment marking a file as a property image.
const PropertyImageKind = "property_image"

func (s *Service) limit() int {
	if s.Concurrency <= 0 {
		return -1
	}
	return s.Concurrency
}

// Decorate derives metadata, file URLs, remaining tokens and expiry for every
// record concurrently. Output order matches input order; records without
// listing details are dropped. Per-listing failures degrade to empty values.
func (s *Service) Decorate(ctx context.Context, records []domain.ListingRecord, opts DecorateOptions) []domain.DecoratedListing {
	results := make([]*domain.DecoratedListing, len(records))

	var g errgroup.Group
	g.SetLimit(s.limit())
	for i, rec := range records {
		if rec.ListingDetails == nil {
			continue
		}
		g.Go(func() error {
			d := s.decorateOne(ctx, rec, opts)
			results[i] = &d
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.DecoratedListing, 0, len(records))
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out
}

func (s *Service) decorateOne(ctx context.Context, rec domain.ListingRecord, opts DecorateOptions) domain.DecoratedListing {
	details := rec.ListingDetails
	listingID := rec.ListingID.String()
	d := domain.DecoratedListing{
		Listing:        rec,
		TokenRemaining: details.String("listedTokenAmount"),
		FileURLs:       []string{},
	}

	item, err := s.Chain.GetItemMetadata(ctx, details.String("collectionId"), details.String("itemId"))
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listingID).Msg("marketplace: metadata fetch failed")
	} else if item != nil {
		d.Metadata = validJSONOrEmpty(DecodeMetadata(item.Data))
	}

	d.FileURLs = s.PresignImages(ctx, ParseMetadata(d.Metadata).Files())

	if opts.LiveTokenRemaining {
		remaining, err := s.Chain.GetTokenRemaining(ctx, listingID)
		if err != nil {
			log.Warn().Err(err).Str("listing_id", listingID).Msg("marketplace: token remaining lookup failed")
			remaining = ""
		}
		d.TokenRemaining = remaining
	}

	if opts.CheckExpiry {
		d.IsExpired = s.expired(ctx, listingID, details)
	}
	return d
}

// expired asks the chain whether the listing's expiry block has passed. An
// unreadable expiry or a failed check counts as not expired.
func (s *Service) expired(ctx context.Context, listingID string, details domain.ListingDetails) bool {
	raw := strings.TrimSpace(strings.ReplaceAll(details.String("listingExpiry"), ",", ""))
	block, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Debug().Str("listing_id", listingID).Str("listing_expiry", raw).Msg("marketplace: unreadable expiry block")
		return false
	}
	passed, err := s.Chain.CheckBlock(ctx, block)
	if err != nil {
		log.Warn().Err(err).Str("listing_id", listingID).Uint64("block", block).Msg("marketplace: expiry check failed")
		return false
	}
	return passed
}

// IsPropertyImage reports whether a file key points at a property image
// ("<owner>/<property>/property_image/<name>").
func IsPropertyImage(fileKey string) bool {
	parts := strings.Split(fileKey, "/")
	return len(parts) > 2 && parts[2] == PropertyImageKind
}

// PresignImages presigns every property image key concurrently. Any failure
// yields an empty list so the card renders without images.
func (s *Service) PresignImages(ctx context.Context, files []string) []string {
	keys := make([]string, 0, len(files))
	for _, f := range files {
		if IsPropertyImage(f) {
			keys = append(keys, f)
		}
	}
	if len(keys) == 0 || s.Presigner == nil {
		return []string{}
	}

	urls := make([]string, len(keys))
	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			u, err := s.Presigner.GeneratePresignedURL(ctx, key)
			if err != nil {
				return fmt.Errorf("presign %s: %w", key, err)
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("marketplace: presign failed, dropping file urls")
		return []string{}
	}
	return urls
}

// ToCard builds the presenter payload for one decorated listing.
func ToCard(l domain.DecoratedListing) Card {
	meta := ParseMetadata(l.Metadata)
	f := ExtractFields(l, meta)
	files := l.FileURLs
	if files == nil {
		files = []string{}
	}
	return Card{
		ID:             f.ListingID,
		FileURLs:       files,
		Details:        l.Listing.ListingDetails,
		TokenRemaining: l.TokenRemaining,
		MetaData:       meta,
		PropertyType:   f.PropertyType,
		PropertyPrice:  f.PropertyPrice,
		TokenPrice:     f.TokenPrice,
		IsExpired:      l.IsExpired,
	}
}

// ToCards maps ToCard over listings.
func ToCards(listings []domain.DecoratedListing) []Card {
	out := make([]Card, len(listings))
	for i, l := range listings {
		out[i] = ToCard(l)
	}
	return out
}

// Browse returns the marketplace page: filtered cards, city options across all
// live listings and suggestions for the filtered set.
func (s *Service) Browse(ctx context.Context, params map[string]string) (*BrowseResult, error) {
	records, err := s.Chain.GetAllOngoingListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ongoing listings: %w", err)
	}
	decorated := s.Decorate(ctx, records, DecorateOptions{CheckExpiry: true})

	live := make([]domain.DecoratedListing, 0, len(decorated))
	for _, d := range decorated {
		if !d.IsExpired {
			live = append(live, d)
		}
	}

	filtered := Filter(live, ParseFilterQuery(params))
	cards := ToCards(filtered)
	return &BrowseResult{
		Listings:    cards,
		CityOptions: CityOptions(live),
		Suggestions: Suggestions(filtered),
		Total:       len(cards),
	}, nil
}

// GetListing returns one live listing by id. Expired listings are not found,
// as they are absent from Browse.
func (s *Service) GetListing(ctx context.Context, listingID string) (*Card, error) {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, ErrListingIDMissing
	}
	records, err := s.Chain.GetAllOngoingListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ongoing listings: %w", err)
	}
	for _, rec := range records {
		if rec.ListingID.String() != listingID || rec.ListingDetails == nil {
			continue
		}
		decorated := s.Decorate(ctx, []domain.ListingRecord{rec}, DecorateOptions{CheckExpiry: true})
		if len(decorated) == 0 || decorated[0].IsExpired {
			break
		}
		card := ToCard(decorated[0])
		return &card, nil
	}
	return nil, ErrListingNotFound
}
