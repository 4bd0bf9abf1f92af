package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/realtime"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type ReviewHandler struct {
	Store    storage.Storage
	Notifier *realtime.Notifier
}

type reviewWithUser struct {
	models.Review
	User *models.User `json:"user,omitempty"`
}

func (h *ReviewHandler) ListForService(c *fiber.Ctx) error {
	serviceID, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid service id")
	}
	ctx := c.UserContext()
	reviews, err := h.Store.GetReviewsForService(ctx, serviceID)
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]reviewWithUser, 0, len(reviews))
	for _, r := range reviews {
		u, err := h.Store.GetUser(ctx, r.UserID)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, reviewWithUser{Review: r, User: u})
	}
	return success(c, fiber.StatusOK, "", out)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	serviceID, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid service id")
	}
	ctx := c.UserContext()
	uid := currentUser(c)

	svc, err := h.Store.GetService(ctx, serviceID)
	if err != nil {
		return storageFail(c, err)
	}
	if svc == nil {
		return fail(c, fiber.StatusNotFound, "Service not found")
	}
	if svc.UserID == uid {
		return fail(c, fiber.StatusBadRequest, "You cannot review your own service")
	}

	var in models.InsertReview
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	in.ServiceID = serviceID
	in.UserID = uid

	review, err := h.Store.CreateReview(ctx, in)
	if err != nil {
		return storageFail(c, err)
	}
	h.Notifier.Notify(ctx, svc.UserID, realtime.EventReviewCreated, review)
	return success(c, fiber.StatusCreated, "Review created", review)
}
