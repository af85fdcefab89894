package handler

import (
	"errors"
	"net/http"

	"github.com/abihavaraj/animo-sub001/internal/dto"
	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/service"
	"github.com/labstack/echo/v4"
)

type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

func (h *ScheduleHandler) RegisterRoutes(e *echo.Echo) {
	classes := e.Group("/api/v1/classes")
	classes.POST("", h.CreateClass)
	classes.GET("/:id", h.GetClass)
	classes.PUT("/:id/schedule", h.RescheduleClass)
	classes.DELETE("/:id", h.CancelClass)

	e.GET("/api/v1/schedule", h.ListByDate)
	e.POST("/api/v1/schedule/conflicts", h.CheckConflict)
}

func (h *ScheduleHandler) CheckConflict(c echo.Context) error {
	var req dto.ConflictCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conflict, err := h.scheduleSvc.CheckConflict(c.Request().Context(), req.Date, req.Time, req.Duration,
		service.ResourceKind(req.Kind), req.Resource, req.ExcludeClassID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if conflict == nil {
		return c.JSON(http.StatusOK, dto.ConflictResponse{Conflict: false})
	}
	class := dto.ToClassResponse(&conflict.Session)
	return c.JSON(http.StatusOK, dto.ConflictResponse{
		Conflict: true,
		Kind:     string(conflict.Kind),
		Class:    &class,
		Message:  conflict.Error(),
	})
}

func (h *ScheduleHandler) CreateClass(c echo.Context) error {
	if actorFrom(c).Role != service.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "staff role required")
	}

	var req dto.CreateClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	class := &models.ClassSession{
		Name:          req.Name,
		Date:          req.Date,
		Time:          req.Time,
		Duration:      req.Duration,
		Capacity:      req.Capacity,
		Room:          req.Room,
		InstructorID:  req.InstructorID,
		EquipmentType: models.EquipmentType(req.EquipmentType),
		Category:      models.ClassCategory(req.Category),
	}
	if err := h.scheduleSvc.CreateClass(c.Request().Context(), class); err != nil {
		return mapScheduleError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToClassResponse(class))
}

func (h *ScheduleHandler) RescheduleClass(c echo.Context) error {
	if actorFrom(c).Role != service.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "staff role required")
	}

	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.RescheduleClassRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	class, err := h.scheduleSvc.RescheduleClass(c.Request().Context(), classID, req.Date, req.Time, req.Duration, req.Room)
	if err != nil {
		return mapScheduleError(err)
	}
	return c.JSON(http.StatusOK, dto.ToClassResponse(class))
}

func (h *ScheduleHandler) CancelClass(c echo.Context) error {
	if actorFrom(c).Role != service.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "staff role required")
	}

	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.scheduleSvc.CancelClass(c.Request().Context(), classID); err != nil {
		return mapScheduleError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ScheduleHandler) GetClass(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	class, err := h.scheduleSvc.GetClass(c.Request().Context(), classID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "class not found")
	}
	return c.JSON(http.StatusOK, dto.ToClassResponse(class))
}

func (h *ScheduleHandler) ListByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	classes, err := h.scheduleSvc.ListByDate(c.Request().Context(), date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.ClassResponse, len(classes))
	for i, class := range classes {
		resp[i] = dto.ToClassResponse(&class)
	}
	return c.JSON(http.StatusOK, resp)
}

func mapScheduleError(err error) error {
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, conflict.Error())
	case errors.Is(err, service.ErrClassNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClassNotActive):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
