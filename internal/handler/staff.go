package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyweb/vms/internal/domain"
	"github.com/skyweb/vms/internal/service"
)

// StaffHandler handles staff directory CRUD endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List returns staff members, optionally filtered by ?role=. The check-in
// form uses ?role=staff to populate its host dropdown, so this endpoint is
// not behind auth.
func (h *StaffHandler) List(c echo.Context) error {
	users, err := h.staff.List(c.Request().Context(), domain.Role(c.QueryParam("role")))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, users)
}

type staffRequest struct {
	Name        string  `json:"name" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	PhoneNumber *string `json:"phoneNumber"`
	Role        string  `json:"role" validate:"required"`
	Department  *string `json:"department"`
	Password    string  `json:"password"`
}

// Create adds a staff member. Admin only.
func (h *StaffHandler) Create(c echo.Context) error {
	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.staff.Create(c.Request().Context(), domain.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        domain.Role(req.Role),
		Department:  req.Department,
	}, req.Password)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, user)
}

// Update modifies a staff member's directory fields. Admin only.
func (h *StaffHandler) Update(c echo.Context) error {
	id, err := parseStaffID(c.Param("id"))
	if err != nil {
		return err
	}

	var req staffRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.staff.Update(c.Request().Context(), domain.User{
		ID:          id,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        domain.Role(req.Role),
		Department:  req.Department,
	}); err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]bool{"success": true})
}

// Delete removes a staff member. Admin only.
func (h *StaffHandler) Delete(c echo.Context) error {
	id, err := parseStaffID(c.Param("id"))
	if err != nil {
		return err
	}

	if err := h.staff.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func parseStaffID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}
