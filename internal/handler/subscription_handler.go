package handler

import (
	"errors"
	"net/http"

	"github.com/abihavaraj/animo-sub001/internal/dto"
	"github.com/abihavaraj/animo-sub001/internal/models"
	"github.com/abihavaraj/animo-sub001/internal/repository"
	"github.com/abihavaraj/animo-sub001/internal/service"
	"github.com/labstack/echo/v4"
)

type SubscriptionHandler struct {
	subSvc  service.SubscriptionService
	subRepo repository.SubscriptionRepository
}

func NewSubscriptionHandler(subSvc service.SubscriptionService, subRepo repository.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subSvc: subSvc, subRepo: subRepo}
}

func (h *SubscriptionHandler) RegisterRoutes(e *echo.Echo) {
	subs := e.Group("/api/v1/subscriptions")
	subs.POST("", h.Purchase)
	subs.GET("/:id", h.Get)
	subs.POST("/:id/renew", h.Renew)
	subs.POST("/:id/extend", h.Extend)
	subs.POST("/:id/pause", h.Pause)
	subs.POST("/:id/resume", h.Resume)
	subs.DELETE("/:id", h.Cancel)

	e.GET("/api/v1/users/:id/subscriptions", h.ListByUser)
	e.POST("/api/v1/plans", h.CreatePlan)
}

func (h *SubscriptionHandler) Purchase(c echo.Context) error {
	var req dto.PurchaseSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.subSvc.Purchase(c.Request().Context(), req.UserID, req.PlanID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, dto.ToSubscriptionResponse(account))
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.subSvc.GetAccount(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}
	return c.JSON(http.StatusOK, dto.ToSubscriptionResponse(account))
}

func (h *SubscriptionHandler) Renew(c echo.Context) error {
	return h.mutate(c, func(id uint) (*models.SubscriptionAccount, error) {
		return h.subSvc.Renew(c.Request().Context(), id)
	})
}

func (h *SubscriptionHandler) Extend(c echo.Context) error {
	var req dto.ExtendSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.mutate(c, func(id uint) (*models.SubscriptionAccount, error) {
		return h.subSvc.Extend(c.Request().Context(), id, req.Days)
	})
}

func (h *SubscriptionHandler) Pause(c echo.Context) error {
	return h.mutate(c, func(id uint) (*models.SubscriptionAccount, error) {
		return h.subSvc.Pause(c.Request().Context(), id)
	})
}

func (h *SubscriptionHandler) Resume(c echo.Context) error {
	return h.mutate(c, func(id uint) (*models.SubscriptionAccount, error) {
		return h.subSvc.Resume(c.Request().Context(), id)
	})
}

func (h *SubscriptionHandler) Cancel(c echo.Context) error {
	return h.mutate(c, func(id uint) (*models.SubscriptionAccount, error) {
		return h.subSvc.Cancel(c.Request().Context(), id)
	})
}

func (h *SubscriptionHandler) mutate(c echo.Context, fn func(id uint) (*models.SubscriptionAccount, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	account, err := fn(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSubscriptionState):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dto.ToSubscriptionResponse(account))
}

func (h *SubscriptionHandler) ListByUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	accounts, err := h.subSvc.ListAccounts(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.SubscriptionResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = dto.ToSubscriptionResponse(&a)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) CreatePlan(c echo.Context) error {
	if actorFrom(c).Role != service.RoleStaff {
		return echo.NewHTTPError(http.StatusForbidden, "staff role required")
	}

	var req dto.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	plan := &models.SubscriptionPlan{
		Name:            req.Name,
		ClassCount:      req.ClassCount,
		DurationDays:    req.DurationDays,
		Price:           req.Price,
		EquipmentAccess: models.EquipmentType(req.EquipmentAccess),
		Category:        models.ClassCategory(req.Category),
	}
	if err := h.subRepo.CreatePlan(c.Request().Context(), plan); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, plan)
}
