package availability

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homecare/homecare/internal/platform/auth"
	"github.com/homecare/homecare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/availabilities")
	g.GET("", h.List)
	g.GET("/unbooked", h.ListUnbooked)
	g.GET("/worker/:id", h.ListByWorker)
	g.GET("/:id", h.Get)
	g.POST("", h.Add, auth.RequireRole(auth.RoleWorker))
	g.PUT("/:id", h.Update, auth.RequireRole(auth.RoleWorker))
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleWorker))
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateDay),
		errors.Is(err, ErrOutsideWindow),
		errors.Is(err, ErrDayRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// batchResponse reports a partially successful batch add.
type batchResponse struct {
	Created []*Availability `json:"created"`
	Errors  []BatchError    `json:"errors,omitempty"`
}

// Add accepts a single slot or an array of slots. A batch with zero successes
// is a hard failure; a partial success returns both lists.
func (h *Handler) Add(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body = bytes.TrimSpace(body)

	var items []*Availability
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	} else {
		var single Availability
		if err := json.Unmarshal(body, &single); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		items = []*Availability{&single}
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty availability list")
	}

	if len(items) == 1 {
		if err := h.svc.Add(c.Request().Context(), items[0]); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, items[0])
	}

	created, itemErrs := h.svc.AddBatch(c.Request().Context(), items)
	if len(created) == 0 {
		return c.JSON(http.StatusBadRequest, batchResponse{Errors: itemErrs})
	}
	return c.JSON(http.StatusOK, batchResponse{Created: created, Errors: itemErrs})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListUnbooked(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUnbooked(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByWorker(c echo.Context) error {
	workerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid worker id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByWorker(c.Request().Context(), workerID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, &in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
