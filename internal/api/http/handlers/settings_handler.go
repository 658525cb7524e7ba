package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nusalink/ftth-helpdesk/internal/api/dto"
	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/service"
	apperrors "github.com/nusalink/ftth-helpdesk/pkg/util"
)

// SettingsHandler manages operational setting endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// List GET /settings.
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	settings, err := h.settings.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		items = append(items, dto.SettingResponse{Key: string(setting.Key), Value: setting.Value})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /settings/:key.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	key := domain.SettingKey(c.Params("key"))
	value, found, err := h.settings.Get(c.Context(), key)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NewNotFound("setting", nil)
	}
	return c.JSON(fiber.Map{"data": dto.SettingResponse{Key: string(key), Value: value}})
}

// Put PUT /settings/:key.
func (h *SettingsHandler) Put(c *fiber.Ctx) error {
	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	key := domain.SettingKey(c.Params("key"))
	if err := h.settings.Put(c.Context(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingResponse{Key: string(key), Value: req.Value}})
}
