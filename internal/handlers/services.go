package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
)

type ServiceHandler struct {
	Store   storage.Storage
	Uploads Uploads
}

type serviceWithUser struct {
	models.Service
	User *models.User `json:"user,omitempty"`
}

func withOwner(ctx context.Context, store storage.Storage, svc models.Service) (serviceWithUser, error) {
	u, err := store.GetUser(ctx, svc.UserID)
	if err != nil {
		return serviceWithUser{}, err
	}
	return serviceWithUser{Service: svc, User: u}, nil
}

// queryFilter copies the named query parameters that are present.
func queryFilter(c *fiber.Ctx, keys ...string) storage.Filter {
	f := storage.Filter{}
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			f[k] = v
		}
	}
	return f
}

func (h *ServiceHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	services, err := h.Store.GetServices(ctx, queryFilter(c, "category", "status"))
	if err != nil {
		return storageFail(c, err)
	}
	out := make([]serviceWithUser, 0, len(services))
	for _, svc := range services {
		item, err := withOwner(ctx, h.Store, svc)
		if err != nil {
			return storageFail(c, err)
		}
		out = append(out, item)
	}
	return success(c, fiber.StatusOK, "", out)
}

func (h *ServiceHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid service id")
	}
	ctx := c.UserContext()
	svc, err := h.Store.GetService(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if svc == nil {
		return fail(c, fiber.StatusNotFound, "Service not found")
	}
	item, err := withOwner(ctx, h.Store, *svc)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusOK, "", item)
}

func (h *ServiceHandler) Create(c *fiber.Ctx) error {
	var in models.InsertService
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	img, err := h.Uploads.Save(c, "image", "services", imageExts)
	if err != nil {
		return storageFail(c, err)
	}
	if img != nil {
		in.Image = img
	}

	svc, err := h.Store.CreateService(c.UserContext(), currentUser(c), in)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusCreated, "Service created", svc)
}

func (h *ServiceHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid service id")
	}
	ctx := c.UserContext()
	svc, err := h.Store.GetService(ctx, id)
	if err != nil {
		return storageFail(c, err)
	}
	if svc == nil {
		return fail(c, fiber.StatusNotFound, "Service not found")
	}
	if svc.UserID != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You can only update your own services")
	}

	var patch models.ServicePatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	img, err := h.Uploads.Save(c, "image", "services", imageExts)
	if err != nil {
		return storageFail(c, err)
	}
	if img != nil {
		patch.Image = img
	}

	updated, err := h.Store.UpdateService(ctx, id, patch)
	if err != nil {
		return storageFail(c, err)
	}
	if updated == nil {
		return fail(c, fiber.StatusNotFound, "Service not found")
	}
	return success(c, fiber.StatusOK, "Service updated", updated)
}

func (h *ServiceHandler) ListByUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	services, err := h.Store.GetUserServices(c.UserContext(), id)
	if err != nil {
		return storageFail(c, err)
	}
	return success(c, fiber.StatusOK, "", services)
}
