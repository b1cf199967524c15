package handlers

import (
	"fmt"
	"log"

	"kasuwa/internal/models"
	"kasuwa/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PromoHandler handles the back-office promo code surface.
type PromoHandler struct {
	service  *services.PromoService
	validate *validator.Validate
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(service *services.PromoService) *PromoHandler {
	return &PromoHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterAdminRoutes registers the back-office promo routes.
func (h *PromoHandler) RegisterAdminRoutes(router fiber.Router) {
	promoRoutes := router.Group("/promos")
	promoRoutes.Get("/", h.HandleGetPromos)
	promoRoutes.Get("/:id", h.HandleGetPromoByID)
	promoRoutes.Post("/", h.HandleCreatePromo)
	promoRoutes.Put("/:id", h.HandleUpdatePromo)
}

// HandleGetPromos retrieves all promo codes, active or retired.
func (h *PromoHandler) HandleGetPromos(c *fiber.Ctx) error {
	promos, err := h.service.GetAllPromos()
	if err != nil {
		log.Printf("Error getting promos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve promo codes",
			"error":   err.Error(),
		})
	}
	return c.JSON(promos)
}

// HandleGetPromoByID retrieves a single promo code by its ID.
func (h *PromoHandler) HandleGetPromoByID(c *fiber.Ctx) error {
	promoID := c.Params("id")
	promo, err := h.service.GetPromoByID(promoID)
	if err != nil {
		log.Printf("Error getting promo by ID %s: %v", promoID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Promo code with ID %s not found", promoID),
		})
	}
	return c.JSON(promo)
}

// HandleCreatePromo creates a new promo code.
func (h *PromoHandler) HandleCreatePromo(c *fiber.Ctx) error {
	promo := new(models.PromoCode)
	if err := c.BodyParser(promo); err != nil {
		log.Printf("Error parsing request body for promo creation: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(promo); err != nil {
		log.Printf("Validation error creating promo: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.CreatePromo(promo); err != nil {
		log.Printf("Error creating promo: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create promo code",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(promo)
}

// HandleUpdatePromo updates an existing promo code. Deactivation is an
// update with active=false.
func (h *PromoHandler) HandleUpdatePromo(c *fiber.Ctx) error {
	promoID := c.Params("id")
	promo := new(models.PromoCode)
	if err := c.BodyParser(promo); err != nil {
		log.Printf("Error parsing request body for promo update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	promo.ID = promoID

	if err := h.validate.Struct(promo); err != nil {
		log.Printf("Validation error updating promo %s: %v", promoID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.UpdatePromo(promo); err != nil {
		log.Printf("Error updating promo %s: %v", promoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update promo code",
			"error":   err.Error(),
		})
	}
	return c.JSON(promo)
}
