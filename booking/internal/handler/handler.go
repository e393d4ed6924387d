package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/internal/errs"
	"github.com/Astemirdum/booking-service/booking/internal/model"
	"github.com/Astemirdum/booking-service/pkg/validate"
)

type Handler struct {
	bookingSvc BookingService
	log        *zap.Logger
}

func New(bookingSvc BookingService, log *zap.Logger) *Handler {
	return &Handler{
		bookingSvc: bookingSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.GET("/availability", h.CheckAvailability)
	api.POST("/price", h.ComputePrice)
	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.ListReservations)
	api.GET("/reservations/:reservationUid", h.GetReservation)
	api.POST("/reservations/:reservationUid/confirm", h.ConfirmReservation)
	api.POST("/reservations/:reservationUid/cancel", h.CancelReservation)
	api.POST("/reservations/:reservationUid/complete", h.CompleteReservation)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) CheckAvailability(c echo.Context) error {
	roomUid := c.QueryParam("roomUid")
	if roomUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "roomUid is empty")
	}
	var checkIn, checkOut model.Date
	if err := checkIn.UnmarshalJSON([]byte(c.QueryParam("checkIn"))); err != nil || checkIn.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checkIn")
	}
	if err := checkOut.UnmarshalJSON([]byte(c.QueryParam("checkOut"))); err != nil || checkOut.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checkOut")
	}

	available, err := h.bookingSvc.CheckAvailability(c.Request().Context(), roomUid, checkIn, checkOut,
		c.QueryParam("excludeReservationUid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"available": available})
}

func (h *Handler) ComputePrice(c echo.Context) error {
	var req model.PriceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	breakdown, err := h.bookingSvc.ComputePrice(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, breakdown)
}

func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	res, err := h.bookingSvc.CreateReservation(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetReservation(c echo.Context) error {
	reservationUid := c.Param("reservationUid")
	if reservationUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationUid is empty")
	}
	res, err := h.bookingSvc.GetReservation(c.Request().Context(), reservationUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ListReservations(c echo.Context) error {
	guestUid := c.QueryParam("guestUid")
	if guestUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "guestUid is empty")
	}
	items, err := h.bookingSvc.ListReservations(c.Request().Context(), guestUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ConfirmReservation(c echo.Context) error {
	return h.transition(c, h.bookingSvc.ConfirmReservation)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	return h.transition(c, h.bookingSvc.CancelReservation)
}

func (h *Handler) CompleteReservation(c echo.Context) error {
	return h.transition(c, h.bookingSvc.CompleteReservation)
}

func (h *Handler) transition(c echo.Context, fn func(ctx context.Context, reservationUid string) (model.Reservation, error)) error {
	reservationUid := c.Param("reservationUid")
	if reservationUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationUid is empty")
	}
	res, err := fn(c.Request().Context(), reservationUid)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// httpError maps the typed engine errors onto HTTP statuses. Conflicts
// (occupied room, illegal transition) are kept distinct from validation
// failures so callers can offer "pick different dates" instead of "fix
// your input".
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrRoomNotFound),
		errors.Is(err, errs.ErrGuestNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrRoomNotAvailable),
		errors.Is(err, errs.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrInvalidDuration),
		errors.Is(err, errs.ErrCheckInPast),
		errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrServiceUnavailable),
		errors.Is(err, errs.ErrInvalidPromoCode):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
