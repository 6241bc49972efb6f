package marketplace

import "errors"

var (
	ErrListingNotFound  = errors.New("Listing not found")
	ErrListingIDMissing = errors.New("listing_id is required")
)
