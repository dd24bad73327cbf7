package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyweb/vms/internal/domain"
	"github.com/skyweb/vms/internal/service"
)

// VisitorHandler handles visitor check-in/out endpoints.
type VisitorHandler struct {
	visitors *service.VisitorService
}

// NewVisitorHandler creates a new VisitorHandler.
func NewVisitorHandler(visitors *service.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitors: visitors}
}

type checkInRequest struct {
	FullName       string  `json:"fullName" validate:"required"`
	Email          string  `json:"email" validate:"omitempty,email"`
	PhoneNumber    string  `json:"phoneNumber"`
	Company        string  `json:"company"`
	Purpose        string  `json:"purpose" validate:"required"`
	HostName       string  `json:"hostName" validate:"required"`
	HostDepartment string  `json:"hostDepartment"`
	PhotoURL       *string `json:"photoUrl"`
	Signature      *string `json:"signature"`
	InviteCode     *string `json:"inviteCode"`
	IDType         string  `json:"idType"`
	IDNumber       string  `json:"idNumber"`
}

// CheckIn registers a new visitor at the kiosk.
func (h *VisitorHandler) CheckIn(c echo.Context) error {
	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visitor, err := h.visitors.CheckIn(c.Request().Context(), domain.Visitor{
		FullName:       req.FullName,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Company:        req.Company,
		Purpose:        req.Purpose,
		HostName:       req.HostName,
		HostDepartment: req.HostDepartment,
		PhotoURL:       req.PhotoURL,
		Signature:      req.Signature,
		InviteCode:     req.InviteCode,
		IDType:         req.IDType,
		IDNumber:       req.IDNumber,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, visitor)
}

type statusUpdateRequest struct {
	Status      domain.VisitorStatus `json:"status" validate:"required"`
	BadgeNumber *string              `json:"badgeNumber"`
}

// UpdateStatus applies a lifecycle transition: approve, decline, or check out.
func (h *VisitorHandler) UpdateStatus(c echo.Context) error {
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visitor, err := h.visitors.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status, req.BadgeNumber)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, visitor)
}

// List serves the visitor collection. Query parameters select the mode:
// invite_code does an express lookup, search finds on-site visitors for the
// checkout kiosk, and no parameter lists everything.
func (h *VisitorHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if code := c.QueryParam("invite_code"); code != "" {
		visitor, err := h.visitors.LookupByInviteCode(ctx, code)
		if err != nil {
			return err
		}
		return JSON(c, http.StatusOK, visitor)
	}

	if query := c.QueryParam("search"); query != "" {
		visitors, err := h.visitors.SearchActive(ctx, query)
		if err != nil {
			return err
		}
		return JSON(c, http.StatusOK, visitors)
	}

	visitors, err := h.visitors.List(ctx)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, visitors)
}

// Get returns one visitor by id.
func (h *VisitorHandler) Get(c echo.Context) error {
	visitor, err := h.visitors.LookupByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, visitor)
}

// Stats returns today's visitor counts for the reception dashboard.
func (h *VisitorHandler) Stats(c echo.Context) error {
	stats, err := h.visitors.TodayStats(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, stats)
}
