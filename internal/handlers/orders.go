package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type OrderHandler struct {
	Store    storage.Storage
	Notifier *realtime.Notifier
}

type orderWithService struct {
	models.Order
	Service *models.Service `json:"service"`
}

// Create places an order on a service. Seller and price always come from
// the service record.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	serviceID, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid service id")
	}
	ctx := c.UserContext()
	buyerID := currentUser(c)

	svc, err := h.Store.GetService(ctx, serviceID)
	if err != nil {
		return storageFail(c, err)
	}
	if svc == nil {
		return fail(c, fiber.StatusNotFound, "Service not found")
	}
	if svc.UserID == buyerID {
		return fail(c, fiber.StatusBadRequest, "You cannot order your own service")
	}

	var in models.InsertOrder
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	in.ServiceID = serviceID
	in.BuyerID = buyerID
	in.TotalPrice = svc.Price

	order, err := h.Store.CreateOrder(ctx, in, svc.UserID)
	if err != nil {
		return storageFail(c, err)
	}
	h.Notifier.Notify(ctx, order.SellerID, realtime.EventOrderCreated, order)
	return success(c, fiber.StatusCreated, "Order created", order)
}

func (h *OrderHandler) ListByUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if id != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You can only view your own orders")
	}

	ctx := c.UserContext()
	orders, err := h.Store.GetUserOrders(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]orderWithService, 0, len(orders))
	for _, o := range orders {
		svc, err := h.Store.GetService(ctx, o.ServiceID)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, orderWithService{Order: o, Service: svc})
	}
	return success(c, fiber.StatusOK, "", out)
}

// UpdateStatus is open to both parties of the order; the other party is
// notified.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid order id")
	}
	var req StatusReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	status := models.OrderStatus(req.Status)
	if !status.Valid() {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}

	ctx := c.UserContext()
	uid := currentUser(c)
	order, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if order == nil {
		return fail(c, fiber.StatusNotFound, "Order not found")
	}
	if order.BuyerID != uid && order.SellerID != uid {
		return fail(c, fiber.StatusForbidden, "You are not a party to this order")
	}

	updated, err := h.Store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return storageFail(c, err)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Order not found")
	}

	other := updated.SellerID
	if uid == updated.SellerID {
		other = updated.BuyerID
	}
	h.Notifier.Notify(ctx, other, realtime.EventOrderStatus, updated)
	return success(c, fiber.StatusOK, "Order updated", updated)
}
