package handlers

import (
	"errors"
	"log"

	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for pricing and paying a cart.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout routes. All require authentication.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/totals", h.HandleTotals)
	checkoutRoutes.Post("/wallet", h.HandlePayWithWallet)
	checkoutRoutes.Post("/gateway/initiate", h.HandleInitiateGateway)
	checkoutRoutes.Post("/gateway/verify", h.HandleVerifyGateway)
}

// HandleTotals prices the cart for review before payment.
func (h *CheckoutHandler) HandleTotals(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	totals, notice, err := h.service.Totals(userID, c.Query("delivery_location"))
	if err != nil {
		log.Printf("Error pricing cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not price the cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"totals": totals,
		"notice": notice,
	})
}

// HandlePayWithWallet finalizes checkout against the wallet. An uncovered
// balance is a recoverable rejection that points at wallet funding, not an
// error state.
func (h *CheckoutHandler) HandlePayWithWallet(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		DeliveryLocation string `json:"delivery_location"`
		DeliveryAddress  string `json:"delivery_address"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.service.PayWithWallet(userID, body.DeliveryLocation, body.DeliveryAddress)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientFunds) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"message": "Wallet balance is not enough for this order",
				"action":  "fund_wallet",
			})
		}
		log.Printf("Error during wallet checkout for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete checkout",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleInitiateGateway starts a gateway charge for the cart.
func (h *CheckoutHandler) HandleInitiateGateway(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Email            string `json:"email"`
		DeliveryLocation string `json:"delivery_location"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	resp, err := h.service.InitiateGatewayPayment(c.Context(), userID, body.Email, body.DeliveryLocation)
	if err != nil {
		log.Printf("Error initiating gateway payment for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not start the payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleVerifyGateway confirms a provider callback and records the order.
// A charge that settled but could not be recorded is surfaced distinctly so
// nothing retries it blindly.
func (h *CheckoutHandler) HandleVerifyGateway(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Reference        string `json:"reference"`
		DeliveryLocation string `json:"delivery_location"`
		DeliveryAddress  string `json:"delivery_address"`
	}
	if err := c.BodyParser(&body); err != nil || body.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A payment reference is required",
		})
	}

	result, err := h.service.VerifyGatewayPayment(c.Context(), userID, body.Reference, body.DeliveryLocation, body.DeliveryAddress)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotRecorded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Payment succeeded but the order could not be updated. Please contact support.",
				"error":   err.Error(),
			})
		}
		log.Printf("Error verifying gateway payment for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not confirm the payment",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
