package handlers

import (
	"errors"
	"fmt"
	"log"

	"kasuwa/internal/models"
	"kasuwa/internal/repositories"
	"kasuwa/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomOrderHandler handles HTTP requests for bespoke order requests and
// their invoices.
type CustomOrderHandler struct {
	service  *services.InvoiceService
	validate *validator.Validate
}

// NewCustomOrderHandler creates a new CustomOrderHandler.
func NewCustomOrderHandler(service *services.InvoiceService) *CustomOrderHandler {
	return &CustomOrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the shopper custom order routes.
func (h *CustomOrderHandler) RegisterRoutes(router fiber.Router) {
	customRoutes := router.Group("/custom-orders")
	customRoutes.Post("/", h.HandleSubmitRequest)
	customRoutes.Get("/", h.HandleGetMyRequests)
	customRoutes.Get("/:id/invoice", h.HandleGetInvoice)

	invoiceRoutes := router.Group("/invoices")
	invoiceRoutes.Post("/:id/accept", h.HandleAcceptInvoice)
	invoiceRoutes.Post("/:id/reject", h.HandleRejectInvoice)
	invoiceRoutes.Post("/:id/pay/wallet", h.HandlePayWithWallet)
	invoiceRoutes.Post("/:id/pay/gateway/initiate", h.HandleInitiateGateway)
	invoiceRoutes.Post("/:id/pay/gateway/verify", h.HandleVerifyGateway)
}

// RegisterAdminRoutes registers the back-office custom order routes.
func (h *CustomOrderHandler) RegisterAdminRoutes(router fiber.Router) {
	customRoutes := router.Group("/custom-orders")
	customRoutes.Get("/", h.HandleGetAllRequests)
	customRoutes.Post("/:id/quote", h.HandleQuote)
	customRoutes.Post("/:id/complete", h.HandleCompleteRequest)
}

// HandleSubmitRequest creates a new custom order request for review.
func (h *CustomOrderHandler) HandleSubmitRequest(c *fiber.Ctx) error {
	req := new(models.CustomOrderRequest)
	if err := c.BodyParser(req); err != nil {
		log.Printf("Error parsing custom order request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.UserID, _ = c.Locals("user_id").(string)

	if err := h.validate.Struct(req); err != nil {
		log.Printf("Validation error submitting custom order: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	if err := h.service.SubmitRequest(req); err != nil {
		log.Printf("Error submitting custom order for user %s: %v", req.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not submit custom order request",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// HandleGetMyRequests retrieves the authenticated user's custom order
// requests.
func (h *CustomOrderHandler) HandleGetMyRequests(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	requests, err := h.service.GetRequests(userID)
	if err != nil {
		log.Printf("Error getting custom orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve custom order requests",
			"error":   err.Error(),
		})
	}
	return c.JSON(requests)
}

// HandleGetAllRequests retrieves every custom order request for the back
// office.
func (h *CustomOrderHandler) HandleGetAllRequests(c *fiber.Ctx) error {
	requests, err := h.service.GetAllRequests()
	if err != nil {
		log.Printf("Error getting all custom orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve custom order requests",
			"error":   err.Error(),
		})
	}
	return c.JSON(requests)
}

// invoiceNotFound hides invoices the caller does not own.
func invoiceNotFound(c *fiber.Ctx, invoiceID string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": fmt.Sprintf("Invoice with ID %s not found", invoiceID),
	})
}

// HandleGetInvoice retrieves the invoice attached to a custom order request.
// Customers may only read invoices on their own requests. The shopper is
// shown the quoted figure in its quoted currency.
func (h *CustomOrderHandler) HandleGetInvoice(c *fiber.Ctx) error {
	requestID := c.Params("id")

	req, err := h.service.GetRequest(requestID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Custom order request %s not found", requestID),
		})
	}
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	if req.UserID != userID && role != models.RoleAdmin {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Custom order request %s not found", requestID),
		})
	}

	invoice, err := h.service.GetInvoice(requestID)
	if err != nil {
		log.Printf("Error getting invoice for request %s: %v", requestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve invoice",
			"error":   err.Error(),
		})
	}
	if invoice == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("No invoice found for request %s", requestID),
		})
	}

	amount, cur := invoice.DisplayAmount()
	return c.JSON(fiber.Map{
		"invoice":          invoice,
		"display_amount":   amount,
		"display_currency": cur,
	})
}

// HandleQuote issues an invoice against a custom order request.
func (h *CustomOrderHandler) HandleQuote(c *fiber.Ctx) error {
	requestID := c.Params("id")

	var body struct {
		Amount      float64 `json:"amount"`
		Currency    string  `json:"currency"`
		Description string  `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if body.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quote amount must be greater than zero",
		})
	}

	invoice, err := h.service.Quote(requestID, body.Amount, body.Currency, body.Description)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Request %s cannot be quoted in its current state", requestID),
			})
		}
		log.Printf("Error quoting request %s: %v", requestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue invoice",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// HandleCompleteRequest marks a paid request as completed.
func (h *CustomOrderHandler) HandleCompleteRequest(c *fiber.Ctx) error {
	requestID := c.Params("id")

	if err := h.service.CompleteRequest(requestID); err != nil {
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Request %s cannot be completed before payment", requestID),
			})
		}
		log.Printf("Error completing request %s: %v", requestID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete request",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Request %s marked completed", requestID),
	})
}

// HandleAcceptInvoice records the shopper's acceptance of an invoice.
func (h *CustomOrderHandler) HandleAcceptInvoice(c *fiber.Ctx) error {
	return h.decide(c, h.service.Accept, "accepted")
}

// HandleRejectInvoice records the shopper's rejection of an invoice.
func (h *CustomOrderHandler) HandleRejectInvoice(c *fiber.Ctx) error {
	return h.decide(c, h.service.Reject, "rejected")
}

func (h *CustomOrderHandler) decide(c *fiber.Ctx, fn func(invoiceID, userID string) error, verb string) error {
	invoiceID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	if err := fn(invoiceID, userID); err != nil {
		if errors.Is(err, services.ErrNotInvoiceOwner) {
			return invoiceNotFound(c, invoiceID)
		}
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Invoice %s cannot be %s in its current state", invoiceID, verb),
			})
		}
		log.Printf("Error updating invoice %s for user %s: %v", invoiceID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update invoice",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Invoice %s %s", invoiceID, verb),
	})
}

// HandlePayWithWallet settles an accepted invoice from the wallet.
func (h *CustomOrderHandler) HandlePayWithWallet(c *fiber.Ctx) error {
	invoiceID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	if err := h.service.PayWithWallet(invoiceID, userID); err != nil {
		if errors.Is(err, services.ErrNotInvoiceOwner) {
			return invoiceNotFound(c, invoiceID)
		}
		if errors.Is(err, repositories.ErrInsufficientFunds) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"message": "Wallet balance is not enough for this invoice",
				"action":  "fund_wallet",
			})
		}
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Invoice %s is not payable in its current state", invoiceID),
			})
		}
		log.Printf("Error paying invoice %s from wallet for user %s: %v", invoiceID, userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not pay invoice",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Invoice %s paid", invoiceID),
	})
}

// HandleInitiateGateway starts a gateway charge for an accepted invoice.
func (h *CustomOrderHandler) HandleInitiateGateway(c *fiber.Ctx) error {
	invoiceID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	resp, err := h.service.InitiateGatewayPayment(c.Context(), invoiceID, userID, body.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotInvoiceOwner) {
			return invoiceNotFound(c, invoiceID)
		}
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Invoice %s is not payable in its current state", invoiceID),
			})
		}
		log.Printf("Error initiating gateway payment for invoice %s: %v", invoiceID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not start the payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(resp)
}

// HandleVerifyGateway confirms a provider callback and marks the invoice
// paid. A settled charge that could not be recorded is surfaced distinctly.
func (h *CustomOrderHandler) HandleVerifyGateway(c *fiber.Ctx) error {
	invoiceID := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	var body struct {
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&body); err != nil || body.Reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A payment reference is required",
		})
	}

	if err := h.service.VerifyGatewayPayment(c.Context(), invoiceID, userID, body.Reference); err != nil {
		if errors.Is(err, services.ErrNotInvoiceOwner) {
			return invoiceNotFound(c, invoiceID)
		}
		if errors.Is(err, services.ErrPaymentNotRecorded) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Payment succeeded but the invoice could not be updated. Please contact support.",
				"error":   err.Error(),
			})
		}
		if errors.Is(err, repositories.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": fmt.Sprintf("Invoice %s is not payable in its current state", invoiceID),
			})
		}
		log.Printf("Error verifying gateway payment for invoice %s: %v", invoiceID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not confirm the payment",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Invoice %s paid", invoiceID),
	})
}
