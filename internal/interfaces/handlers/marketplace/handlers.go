package marketplace

import (
	"errors"

	mktsvc "estate-backend/internal/application/marketplace"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles marketplace handlers.
type Handlers struct {
	Service *mktsvc.Service
}

// GetListings GET /api/v1/marketplace/listings
// Query: q, propertyType, country, city, propertyPrice, tokenPrice.
func (h *Handlers) GetListings(c *fiber.Ctx) error {
	res, err := h.Service.Browse(c.UserContext(), c.Queries())
	if err != nil {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("marketplace: browse failed")
		return response.Error(c, "Failed to load listings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Listings fetched", fiber.Map{
		"listings":    res.Listings,
		"cityOptions": res.CityOptions,
		"suggestions": res.Suggestions,
	}, fiber.Map{"total": res.Total})
}

// GetListing GET /api/v1/marketplace/listings/:listing_id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	card, err := h.Service.GetListing(c.UserContext(), c.Params("listing_id"))
	if err != nil {
		switch {
		case errors.Is(err, mktsvc.ErrListingIDMissing):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, mktsvc.ErrListingNotFound):
			return response.NotFound(c, err.Error())
		default:
			log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("marketplace: get listing failed")
			return response.Error(c, "Failed to load listing", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Listing fetched", card, nil)
}
