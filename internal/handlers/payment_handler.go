package handlers

import (
	"log"

	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service: service,
	}
}

// RegisterRoutes registers the payment routes with the Fiber app.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/orders/:id/pay", h.HandleProcessPayment)
	router.Get("/orders/:id/payments", h.HandleGetPayments)
}

// HandleProcessPayment executes a payment attempt against a draft order and
// transitions it to paid on success.
func (h *PaymentHandler) HandleProcessPayment(c *fiber.Ctx) error {
	var req services.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid payment request",
			"error":   err.Error(),
		})
	}

	actor := actorFromCtx(c)
	payment, err := h.service.ProcessPayment(c.Context(), actor.UserID, c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleGetPayments lists the payment attempts of an order owned by the
// caller.
func (h *PaymentHandler) HandleGetPayments(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	payments, err := h.service.GetPaymentsForOrder(c.Context(), actor.UserID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}
