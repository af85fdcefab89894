package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abihavaraj/animo-sub001/internal/dto"
	"github.com/abihavaraj/animo-sub001/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	bookingSvc  service.BookingService
	waitlistSvc service.WaitlistService
}

func NewBookingHandler(bookingSvc service.BookingService, waitlistSvc service.WaitlistService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, waitlistSvc: waitlistSvc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	classes := e.Group("/api/v1/classes")
	classes.POST("/:id/bookings", h.BookClass)
	classes.GET("/:id/bookings", h.ListBookings)
	classes.POST("/:id/waitlist", h.JoinWaitlist)
	classes.GET("/:id/waitlist", h.ListWaitlist)

	e.GET("/api/v1/bookings/:id", h.GetBooking)
	e.DELETE("/api/v1/bookings/:id", h.CancelBooking)
	e.DELETE("/api/v1/waitlist/:id", h.LeaveWaitlist)
}

// actorFrom reads the identity the auth layer attached to the request. An
// absent role defaults to client, the least privileged.
func actorFrom(c echo.Context) service.Actor {
	actor := service.Actor{Role: service.RoleClient}
	if id, err := strconv.ParseUint(c.Request().Header.Get("X-User-ID"), 10, 32); err == nil {
		actor.UserID = uint(id)
	}
	if c.Request().Header.Get("X-User-Role") == string(service.RoleStaff) {
		actor.Role = service.RoleStaff
	}
	return actor
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func (h *BookingHandler) BookClass(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.bookingSvc.BookClass(c.Request().Context(), req.UserID, classID)
	if err != nil {
		return mapBookingError(err)
	}

	resp := dto.BookClassResponse{Result: result.Outcome, Position: result.Position}
	if result.Booking != nil {
		b := dto.ToBookingResponse(result.Booking)
		resp.Booking = &b
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.bookingSvc.CancelBooking(c.Request().Context(), bookingID, actorFrom(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCancellationWindow), errors.Is(err, service.ErrNotBookingOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.CancelBookingResponse{
		CancelledAt:      result.CancelledAt,
		HoursBeforeClass: result.HoursBeforeClass,
		WaitlistPromoted: result.WaitlistPromoted,
	})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	booking, err := h.bookingSvc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	bookings, err := h.bookingSvc.ListBookings(c.Request().Context(), classID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) JoinWaitlist(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.JoinWaitlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entry, err := h.waitlistSvc.Join(c.Request().Context(), req.UserID, classID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrClassNotFull), errors.Is(err, service.ErrDuplicateBooking),
			errors.Is(err, service.ErrClassNotActive), errors.Is(err, service.ErrPastClass):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, dto.ToWaitlistEntryResponse(entry))
}

func (h *BookingHandler) LeaveWaitlist(c echo.Context) error {
	entryID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.waitlistSvc.Leave(c.Request().Context(), entryID); err != nil {
		if errors.Is(err, service.ErrWaitlistEntryNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) ListWaitlist(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.waitlistSvc.ListEntries(c.Request().Context(), classID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.WaitlistEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = dto.ToWaitlistEntryResponse(&e)
	}
	return c.JSON(http.StatusOK, resp)
}

func mapBookingError(err error) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrClassNotActive),
		errors.Is(err, service.ErrPastClass),
		errors.Is(err, service.ErrDuplicateBooking):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoSubscription),
		errors.Is(err, service.ErrInsufficientCredit),
		errors.Is(err, service.ErrCategoryMismatch),
		errors.Is(err, service.ErrEquipmentMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
