package developer

import (
	"errors"
	"strings"

	devsvc "estate-backend/internal/application/developer"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/response"
	"estate-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the developer partner handlers. Routes sit behind
// middleware.RequireAccount.
type Handlers struct {
	Service *devsvc.Service
}

// GetProperties GET /api/v1/developer/properties?status=all|listed|purchased
func (h *Handlers) GetProperties(c *fiber.Ctx) error {
	res, err := h.Service.Properties(c.UserContext(), middleware.GetAccount(c), c.Query("status"))
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Properties fetched", res, fiber.Map{
		"properties": len(res.Properties),
		"listings":   len(res.Listings),
	})
}

type CreatePropertyRequest struct {
	PropertyName    string   `json:"property_name"`
	PropertyType    string   `json:"property_type"`
	AddressStreet   string   `json:"address_street"`
	AddressTownCity string   `json:"address_town_city"`
	AddressPostcode string   `json:"address_postcode"`
	Country         string   `json:"country"`
	PropertyPrice   float64  `json:"property_price"`
	NumberOfTokens  int64    `json:"number_of_tokens"`
	Files           []string `json:"files"`
}

// CreateProperty POST /api/v1/developer/properties
func (h *Handlers) CreateProperty(c *fiber.Ctx) error {
	var req CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PropertyPrice < 0 || req.NumberOfTokens < 0 {
		return response.Error(c, "property_price and number_of_tokens must not be negative", fiber.StatusBadRequest, nil)
	}
	for _, f := range req.Files {
		if !validation.IsValidFileKey(f) {
			return response.Error(c, "Invalid file key", fiber.StatusBadRequest, fiber.Map{"file": f})
		}
	}

	prop, err := h.Service.CreateProperty(c.UserContext(), devsvc.CreatePropertyInput{
		DeveloperAddress: middleware.GetAccount(c),
		PropertyName:     req.PropertyName,
		PropertyType:     strings.TrimSpace(req.PropertyType),
		AddressStreet:    strings.TrimSpace(req.AddressStreet),
		AddressTownCity:  strings.TrimSpace(req.AddressTownCity),
		AddressPostcode:  strings.TrimSpace(req.AddressPostcode),
		Country:          strings.TrimSpace(req.Country),
		PropertyPrice:    req.PropertyPrice,
		NumberOfTokens:   req.NumberOfTokens,
		Files:            req.Files,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessCreated(c, "Property created", prop, nil)
}

type SignUploadRequest struct {
	PropertyID string `json:"property_id"`
	Kind       string `json:"kind"`
	FileName   string `json:"file_name"`
}

// SignUpload POST /api/v1/developer/uploads
func (h *Handlers) SignUpload(c *fiber.Ctx) error {
	var req SignUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	res, err := h.Service.SignUpload(c.UserContext(), middleware.GetAccount(c), req.PropertyID, req.Kind, req.FileName)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Upload URL created", res, nil)
}

func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, devsvc.ErrAccountRequired):
		return response.Unauthorized(c, err.Error())
	case errors.Is(err, devsvc.ErrUnknownStatus), errors.Is(err, devsvc.ErrPropertyNameRequired),
		errors.Is(err, devsvc.ErrInvalidUpload), errors.Is(err, devsvc.ErrUnknownFileKind):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, devsvc.ErrPropertyNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, devsvc.ErrStoreUnavailable), errors.Is(err, devsvc.ErrUploadsUnavailable):
		return response.Error(c, err.Error(), fiber.StatusServiceUnavailable, nil)
	default:
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("developer: request failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
