package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-tracker/internal/api/dto"
	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/repository"
	"github.com/spec-kit/project-tracker/internal/service"
)

// UsersHandler exposes account administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}

	filter := repository.UserFilter{Search: queryString(c, "search")}
	if role := queryString(c, "role"); role != nil {
		r := domain.Role(*role)
		if !r.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid role filter")
		}
		filter.Role = &r
	}
	if filter.IsActive, err = queryBool(c, "is_active"); err != nil {
		return err
	}
	if filter.Limit, err = queryInt(c, "limit", 50); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	users, err := h.users.ListUsers(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewUserResponses(users)))
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewUserResponse(user)))
}

// Update handles PATCH /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateProfile(c.UserContext(), caller, c.Params("id"), service.UserProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("profile updated", dto.NewUserResponse(user)))
}

// ChangeRole handles PUT /api/users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.ChangeRole(c.UserContext(), caller, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("role updated", dto.NewUserResponse(user)))
}

// SetActive handles PUT /api/users/:id/active.
func (h *UsersHandler) SetActive(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.SetActive(c.UserContext(), caller, c.Params("id"), req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("account status updated", dto.NewUserResponse(user)))
}

// Delete handles DELETE /api/users/:id. A referenced account is deactivated
// instead of removed.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	deleted, err := h.users.DeleteUser(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(dto.OKMessage("user has existing references and was deactivated", nil))
	}
	return c.JSON(dto.OKMessage("user deleted", nil))
}
