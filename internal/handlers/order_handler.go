package handlers

import (
	"log"
	"time"

	"gerai/internal/models"
	"gerai/internal/repositories"
	"gerai/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/sales/total", h.HandleGetTotalSales)
	orderRoutes.Get("/seller/:sellerId", h.HandleGetSellerOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Post("/:id/details", h.HandleAddOrderDetails)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/address", h.HandleUpdateOrderAddress)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
}

type createOrderRequest struct {
	Items []repositories.RequestedItem `json:"items" validate:"required,min=1,dive"`
}

// HandleCreateOrder creates a draft order from the requested items. A stock
// shortage is not an error: the response carries the per-item shortage list
// with a 409 status, and the empty draft order remains for a retry.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order request",
			"error":   err.Error(),
		})
	}

	actor := actorFromCtx(c)
	order, result, err := h.service.CreateOrderWithDetails(c.Context(), actor.UserID, req.Items)
	if err != nil {
		return respondError(c, err)
	}
	if !result.Success {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":      "Some items could not be reserved",
			"order_id":     order.ID,
			"stock_errors": result.StockErrors,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleAddOrderDetails adds line items to an existing draft order.
func (h *OrderHandler) HandleAddOrderDetails(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid order request",
			"error":   err.Error(),
		})
	}

	actor := actorFromCtx(c)
	result, err := h.service.AddOrderDetailToOrder(c.Context(), actor.UserID, c.Params("id"), req.Items)
	if err != nil {
		return respondError(c, err)
	}
	if !result.Success {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":      "Some items could not be reserved",
			"stock_errors": result.StockErrors,
		})
	}
	return c.JSON(result)
}

// HandleGetOrderByID retrieves a single order with its line items.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderWithDetails(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	// Listing scope rules apply to single reads too: a customer may only
	// see their own order.
	actor := actorFromCtx(c)
	if actor.Role == models.RoleCustomer && order.UserID != actor.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this order",
		})
	}
	return c.JSON(order)
}

func parseOrderQuery(c *fiber.Ctx) (repositories.OrderQuery, error) {
	q := repositories.OrderQuery{
		UserID:   c.Query("user_id"),
		SellerID: c.Query("seller_id"),
		Status:   models.OrderStatus(c.Query("status")),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.StartDate = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.EndDate = t
	}
	return q, nil
}

// HandleGetOrders lists orders, scoped by the caller's role.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	q, err := parseOrderQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date filter, expected RFC3339",
			"error":   err.Error(),
		})
	}

	orders, err := h.service.GetOrders(c.Context(), actorFromCtx(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetSellerOrders lists orders containing the seller's products.
func (h *OrderHandler) HandleGetSellerOrders(c *fiber.Ctx) error {
	q, err := parseOrderQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date filter, expected RFC3339",
			"error":   err.Error(),
		})
	}

	orders, err := h.service.GetSellerOrders(c.Context(), actorFromCtx(c), c.Params("sellerId"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus updates the status of an existing order. Moving
// an order to paid is reserved for the payment flow.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if updateData.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}
	if updateData.Status == models.StatusPaid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Orders are marked paid through the payment endpoint.",
		})
	}

	actor := actorFromCtx(c)
	orderID := c.Params("id")

	// Shipping is a seller/admin action; cancelling is open to the owner
	// and admins.
	switch updateData.Status {
	case models.StatusShipped:
		if actor.Role == models.RoleCustomer {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Only sellers can mark orders shipped",
			})
		}
	case models.StatusCancelled:
		if actor.Role == models.RoleCustomer {
			order, err := h.service.GetOrderByID(c.Context(), orderID)
			if err != nil {
				return respondError(c, err)
			}
			if order.UserID != actor.UserID {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "You do not have access to this order",
				})
			}
		}
	}

	if err := h.service.UpdateOrderStatus(c.Context(), orderID, updateData.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"status":  updateData.Status,
	})
}

// HandleUpdateOrderAddress changes the shipping address of a draft order.
func (h *OrderHandler) HandleUpdateOrderAddress(c *fiber.Ctx) error {
	var updateData struct {
		AddressID string `json:"address_id" validate:"required"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for address update",
			"error":   err.Error(),
		})
	}
	if err := validate.Struct(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Address ID is required",
			"error":   err.Error(),
		})
	}

	actor := actorFromCtx(c)
	if err := h.service.UpdateOrderAddress(c.Context(), actor.UserID, c.Params("id"), updateData.AddressID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order address updated successfully",
	})
}

// HandleDeleteOrder hard-deletes a draft order owned by the caller.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if err := h.service.DeleteOrder(c.Context(), actor.UserID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
	})
}

// HandleGetTotalSales returns the aggregate sales over paid orders.
// Admin only.
func (h *OrderHandler) HandleGetTotalSales(c *fiber.Ctx) error {
	actor := actorFromCtx(c)
	if actor.Role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Only admins can view total sales",
		})
	}

	total, err := h.service.GetTotalSales(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total_sales": total,
	})
}
