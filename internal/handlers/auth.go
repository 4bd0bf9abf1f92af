package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/workit/internal/middleware"
	"github.com/Windi-Fikriyansyah/workit/internal/models"
	"github.com/Windi-Fikriyansyah/workit/internal/storage"
	"github.com/Windi-Fikriyansyah/workit/internal/utils"
)

type AuthHandler struct {
	Store     storage.Storage
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	models.InsertUser
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) setToken(c *fiber.Ctx, u *models.User) error {
	token, err := utils.SignJWT(h.JWTSecret, u.ID, string(u.Role), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}

	in := req.InsertUser
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Password != req.ConfirmPassword {
		return fail(c, fiber.StatusBadRequest, "Passwords do not match")
	}
	if err := in.Validate(); err != nil {
		return storageFail(c, err)
	}

	ctx := c.UserContext()
	if existing, err := h.Store.GetUserByUsername(ctx, in.Username); err != nil {
		return storageFail(c, err)
	} else if existing != nil {
		return fail(c, fiber.StatusBadRequest, "Username already exists")
	}
	if existing, err := h.Store.GetUserByEmail(ctx, in.Email); err != nil {
		return storageFail(c, err)
	} else if existing != nil {
		return fail(c, fiber.StatusBadRequest, "Email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to process password")
	}
	in.Password = hash

	u, err := h.Store.CreateUser(ctx, in)
	if err != nil {
		return storageFail(c, err)
	}

	if err := h.setToken(c, u); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Error logging in after registration")
	}
	return success(c, fiber.StatusCreated, "Registered", u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := utils.GetValidator().Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, strings.Join(utils.ParseErrors(err), " // "))
	}

	u, err := h.Store.GetUserByUsername(c.UserContext(), req.Username)
	if err != nil {
		return storageFail(c, err)
	}
	if u == nil || !utils.CheckPassword(u.Password, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid username or password")
	}

	if err := h.setToken(c, u); err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to create token")
	}
	return success(c, fiber.StatusOK, "Logged in", u)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return success(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u, err := h.Store.GetUser(c.UserContext(), currentUser(c))
	if err != nil {
		return storageFail(c, err)
	}
	if u == nil {
		return fail(c, fiber.StatusUnauthorized, "User not found")
	}
	return success(c, fiber.StatusOK, "", u)
}
