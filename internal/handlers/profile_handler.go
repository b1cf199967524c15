package handlers

import (
	"log"

	"kasuwa/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler handles HTTP requests for shopper profile settings.
type ProfileHandler struct {
	authService *services.AuthService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(authService *services.AuthService) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the profile routes. All require authentication.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleGetProfile)
	profileRoutes.Put("/", h.HandleUpdateProfile)
}

// HandleGetProfile returns the authenticated user's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	profile, err := h.authService.GetProfile(userID)
	if err != nil {
		log.Printf("Error getting profile for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve profile",
			"error":   err.Error(),
		})
	}
	return c.JSON(profile)
}

// HandleUpdateProfile changes the display currency and delivery address.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		DisplayCurrency string `json:"display_currency"`
		DeliveryAddress string `json:"delivery_address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	profile, err := h.authService.UpdateProfileSettings(userID, body.DisplayCurrency, body.DeliveryAddress)
	if err != nil {
		log.Printf("Error updating profile for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update profile",
			"error":   err.Error(),
		})
	}
	return c.JSON(profile)
}
