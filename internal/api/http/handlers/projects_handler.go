package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-tracker/internal/api/dto"
	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/repository"
	"github.com/spec-kit/project-tracker/internal/service"
)

// ProjectsHandler exposes project and membership endpoints.
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler constructs handler.
func NewProjectsHandler(projectService *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projectService}
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	project, err := h.projects.CreateProject(c.UserContext(), caller, service.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("project created", dto.NewProjectResponse(project)))
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}

	var filter repository.ProjectFilter
	for _, raw := range queryList(c, "status") {
		status := domain.ProjectStatus(raw)
		if !status.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Statuses = append(filter.Statuses, status)
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

	projects, err := h.projects.ListProjects(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewProjectResponses(projects)))
}

// Get handles GET /api/projects/:id.
func (h *ProjectsHandler) Get(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	project, err := h.projects.GetProject(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewProjectResponse(project)))
}

// Update handles PATCH /api/projects/:id.
func (h *ProjectsHandler) Update(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	project, err := h.projects.UpdateProject(c.UserContext(), caller, c.Params("id"), service.ProjectUpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("project updated", dto.NewProjectResponse(project)))
}

// Delete handles DELETE /api/projects/:id. A project with tickets is archived
// instead of removed.
func (h *ProjectsHandler) Delete(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	deleted, err := h.projects.DeleteProject(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return c.JSON(dto.OKMessage("project has existing tickets and was archived", nil))
	}
	return c.JSON(dto.OKMessage("project deleted", nil))
}

// AddMember handles POST /api/projects/:id/members.
func (h *ProjectsHandler) AddMember(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.AddMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id required")
	}

	project, err := h.projects.AddMember(c.UserContext(), caller, c.Params("id"), req.UserID, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("member added", dto.NewProjectResponse(project)))
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId.
func (h *ProjectsHandler) RemoveMember(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	project, err := h.projects.RemoveMember(c.UserContext(), caller, c.Params("id"), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("member removed", dto.NewProjectResponse(project)))
}

// ChangeMemberRole handles PUT /api/projects/:id/members/:userId.
func (h *ProjectsHandler) ChangeMemberRole(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.ChangeMemberRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	project, err := h.projects.ChangeMemberRole(c.UserContext(), caller, c.Params("id"), c.Params("userId"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("member role updated", dto.NewProjectResponse(project)))
}

// TicketStats handles GET /api/projects/:id/stats.
func (h *ProjectsHandler) TicketStats(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	projectID := c.Params("id")
	stats, err := h.projects.TicketStats(c.UserContext(), caller, projectID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewTicketStatsResponse(projectID, stats)))
}
