package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
	"github.com/Windi-Fikriyansyah/workit/internal/utils"
)

type UserHandler struct {
	Store   storage.Storage
	Uploads Uploads
	// Auth reissues the session cookie when the role changes.
	Auth *AuthHandler
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	u, err := h.Store.GetUser(c.UserContext(), id)
	if err != nil {
		return storageFail(c, err)
	}
	if u == nil {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return success(c, fiber.StatusOK, "", u)
}

// Update changes the caller's own profile. A multipart profilePicture file
// replaces the picture URL.
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if id != currentUser(c) {
		return fail(c, fiber.StatusForbidden, "You can only update your own profile")
	}

	var patch models.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}

	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		patch.Username = &v
	}
	if patch.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &v
	}

	pic, err := h.Uploads.Save(c, "profilePicture", "profiles", imageExts)
	if err != nil {
		return storageFail(c, err)
	}
	if pic != nil {
		patch.ProfilePicture = pic
	}

	if patch.Password != nil {
		if err := patch.Validate(); err != nil {
			return storageFail(c, err)
		}
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to process password")
		}
		patch.Password = &hash
	}

	u, err := h.Store.UpdateUser(c.UserContext(), id, patch)
	if err != nil {
		return storageFail(c, err)
	}
	if u == nil {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	if patch.Role != nil && h.Auth != nil {
		if err := h.Auth.setToken(c, u); err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to refresh token")
		}
	}
	return success(c, fiber.StatusOK, "Profile updated", u)
}
