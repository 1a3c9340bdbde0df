package handlers

import (
	"errors"

	"helacredit/internal/adapters/persistence/repositories"
	"helacredit/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MasterHandler serves reference data endpoints
type MasterHandler struct {
	countyRepo repositories.CountyRepository
}

// NewMasterHandler creates a new master data handler
func NewMasterHandler(countyRepo repositories.CountyRepository) *MasterHandler {
	return &MasterHandler{countyRepo: countyRepo}
}

// ListCounties returns all counties
// @Summary List counties
// @Description List the 47 Kenyan counties used for applicant addresses
// @Tags Master
// @Produce json
// @Success 200 {object} response.Response
// @Router /counties [get]
func (h *MasterHandler) ListCounties(c *fiber.Ctx) error {
	counties, err := h.countyRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list counties")
	}

	return response.Success(c, "Counties retrieved", counties)
}

// GetCounty returns one county by code
// @Summary Get county
// @Description Get a county by its code
// @Tags Master
// @Produce json
// @Param code path string true "County code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /counties/{code} [get]
func (h *MasterHandler) GetCounty(c *fiber.Ctx) error {
	county, err := h.countyRepo.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "County not found")
		}
		return response.InternalServerError(c, "Failed to get county")
	}

	return response.Success(c, "County retrieved", county)
}
