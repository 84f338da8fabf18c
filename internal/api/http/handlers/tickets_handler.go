package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-tracker/internal/api/dto"
	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/repository"
	"github.com/spec-kit/project-tracker/internal/service"
)

// TicketsHandler exposes ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.ProjectID == "" {
		return fiber.NewError(http.StatusBadRequest, "project_id required")
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), caller, service.TicketCreateInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Type:           req.Type,
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("ticket created", dto.NewTicketResponse(ticket)))
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}

	filter := repository.TicketFilter{
		ProjectID:  queryString(c, "project_id"),
		AssigneeID: queryString(c, "assigned_to"),
		CreatedBy:  queryString(c, "created_by"),
		SearchTerm: queryString(c, "search"),
	}
	for _, raw := range queryList(c, "status") {
		status := domain.TicketStatus(raw)
		if !status.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, raw := range queryList(c, "priority") {
		priority := domain.Priority(raw)
		if !priority.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid priority filter")
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, raw := range queryList(c, "type") {
		ticketType := domain.TicketType(raw)
		if !ticketType.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid type filter")
		}
		filter.Types = append(filter.Types, ticketType)
	}
	if filter.CreatedFrom, err = queryTime(c, "created_from"); err != nil {
		return err
	}
	if filter.CreatedTo, err = queryTime(c, "created_to"); err != nil {
		return err
	}
	if filter.DueFrom, err = queryTime(c, "due_from"); err != nil {
		return err
	}
	if filter.DueTo, err = queryTime(c, "due_to"); err != nil {
		return err
	}
	if filter.Limit, err = queryInt(c, "limit", 50); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), caller, filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewTicketResponses(tickets)))
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewTicketResponse(ticket)))
}

// Update handles PATCH /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input := service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Type:        req.Type,
		Tags:        req.Tags,
		Comment:     req.Comment,
	}
	if req.AssignedTo.Set {
		input.AssignedTo = &req.AssignedTo.Value
	}
	if req.DueDate.Set {
		input.DueDate = &req.DueDate.Value
	}
	if req.EstimatedHours.Set {
		input.EstimatedHours = &req.EstimatedHours.Value
	}
	if req.ActualHours.Set {
		input.ActualHours = &req.ActualHours.Value
	}

	ticket, err := h.tickets.UpdateTicket(c.UserContext(), caller, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("ticket updated", dto.NewTicketResponse(ticket)))
}

// Assign handles PUT /api/tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.UserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id required")
	}

	ticket, err := h.tickets.AssignTicket(c.UserContext(), caller, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("ticket assigned", dto.NewTicketResponse(ticket)))
}

// Unassign handles DELETE /api/tickets/:id/assignee.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.UnassignTicket(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("ticket unassigned", dto.NewTicketResponse(ticket)))
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), caller, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("ticket deleted", nil))
}

// StatusHistory handles GET /api/tickets/:id/history.
func (h *TicketsHandler) StatusHistory(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return err
	}
	history, err := h.tickets.StatusHistory(c.UserContext(), caller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewStatusChangeResponses(history)))
}
