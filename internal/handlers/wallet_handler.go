package handlers

import (
	"errors"
	"log"

	"kasuwa/internal/services"

	"github.com/gofiber/fiber/v2"
)

// WalletHandler handles HTTP requests for the shopper wallet.
type WalletHandler struct {
	service *services.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(service *services.WalletService) *WalletHandler {
	return &WalletHandler{
		service: service,
	}
}

// RegisterRoutes registers the wallet routes. All require authentication.
func (h *WalletHandler) RegisterRoutes(router fiber.Router) {
	walletRoutes := router.Group("/wallet")
	walletRoutes.Get("/", h.HandleGetBalance)
	walletRoutes.Get("/transactions", h.HandleGetTransactions)
	walletRoutes.Post("/fund/initiate", h.HandleInitiateFunding)
	walletRoutes.Post("/fund/verify", h.HandleVerifyFunding)
}

// HandleGetBalance returns the wallet balance in the base currency together
// with its display-currency rendering.
func (h *WalletHandler) HandleGetBalance(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	balance, err := h.service.Balance(userID)
	if err != nil {
		log.Printf("Error getting wallet balance for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve wallet balance",
			"error":   err.Error(),
		})
	}
	return c.JSON(balance)
}

// HandleGetTransactions returns the user's wallet and payment history.
func (h *WalletHandler) HandleGetTransactions(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	txns, err := h.service.Transactions(userID)
	if err != nil {
		log.Printf("Error getting transactions for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve transactions",
			"error":   err.Error(),
		})
	}
	return c.JSON(txns)
}

// HandleInitiateFunding starts a gateway charge that tops up the wallet.
// Funding is always charged in the base currency.
func (h *WalletHandler) HandleInitiateFunding(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Email  string  `json:"email"`
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if body.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Funding amount must be greater than zero",
		})
	}

	resp, err := h.service.InitiateFunding(c.Context(), userID, body.Email, body.Amount)
	if err != nil {
		log.Printf("Error initiating wallet funding for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not start the funding payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleVerifyFunding confirms a funding charge and credits the wallet.
func (h *WalletHandler) HandleVerifyFunding(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&body); err != nil || body.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A payment reference is required",
		})
	}

	balance, err := h.service.VerifyFunding(c.Context(), userID, body.Reference)
	if err != nil {
		if errors.Is(err, services.ErrFundingNotOwned) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No funding payment found for this reference",
			})
		}
		if errors.Is(err, services.ErrPaymentNotRecorded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Payment succeeded but the wallet could not be credited. Please contact support.",
				"error":   err.Error(),
			})
		}
		log.Printf("Error verifying wallet funding for user %s: %v", userID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not confirm the funding payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Wallet funded successfully",
		"balance": balance,
	})
}
