package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/internal/billing"
	"github.com/Astemirdum/booking-service/booking/internal/errs"
	"github.com/Astemirdum/booking-service/booking/internal/events"
	"github.com/Astemirdum/booking-service/booking/internal/model"
	"github.com/Astemirdum/booking-service/booking/internal/pricing"
	"github.com/Astemirdum/booking-service/booking/internal/repository"
)

type Service struct {
	log     *zap.Logger
	repo    repository.Repository
	calc    pricing.Calculator
	events  events.Publisher
	billing billing.Client

	// now is a clock hook for tests
	now func() time.Time
}

func NewService(repo repository.Repository, calc pricing.Calculator, pub events.Publisher, bill billing.Client, log *zap.Logger) *Service {
	return &Service{
		log:     log,
		repo:    repo,
		calc:    calc,
		events:  pub,
		billing: bill,
		now:     time.Now,
	}
}

// CheckAvailability answers the standalone availability query. A
// non-empty excludeUid lets a reservation ignore its own allocation
// while probing a date change.
func (s *Service) CheckAvailability(ctx context.Context, roomUid string, checkIn, checkOut model.Date, excludeUid string) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, errs.ErrInvalidDuration
	}
	return s.repo.IsAvailable(ctx, roomUid, checkIn, checkOut, excludeUid)
}

// ComputePrice quotes a booking without committing anything. The UI
// calls it for previews before the guest submits.
func (s *Service) ComputePrice(ctx context.Context, req model.PriceRequest) (model.PriceBreakdown, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return model.PriceBreakdown{}, errs.ErrInvalidDuration
	}
	room, err := s.repo.GetRoom(ctx, req.RoomUid)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	lines, err := s.resolveLines(ctx, req.Services)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	return s.calc.Quote(room.Rate, req.CheckIn.Nights(req.CheckOut), lines, req.PromoCode)
}

// CreateReservation validates the request, prices it and hands the
// result to the repository, which owns the check-and-insert
// transaction. Validation failures never reach the storage layer.
func (s *Service) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	if !req.CheckIn.Before(req.CheckOut) {
		return model.Reservation{}, errs.ErrInvalidDuration
	}
	if req.CheckIn.Before(s.today()) {
		return model.Reservation{}, errs.ErrCheckInPast
	}

	room, err := s.repo.GetRoom(ctx, req.RoomUid)
	if err != nil {
		return model.Reservation{}, err
	}
	if req.GuestCount > room.Capacity {
		return model.Reservation{}, errs.ErrCapacityExceeded
	}
	guest, err := s.repo.GetGuest(ctx, req.GuestUid)
	if err != nil {
		return model.Reservation{}, err
	}
	lines, err := s.resolveLines(ctx, req.Services)
	if err != nil {
		return model.Reservation{}, err
	}

	breakdown, err := s.calc.Quote(room.Rate, req.CheckIn.Nights(req.CheckOut), lines, req.PromoCode)
	if err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{
		ReservationUid: uuid.NewString(),
		RoomID:         room.ID,
		RoomUid:        room.RoomUid,
		GuestID:        guest.ID,
		GuestUid:       guest.GuestUid,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		GuestCount:     req.GuestCount,
		Status:         model.StatusPending,
		Taxes:          breakdown.Taxes,
		ServiceFee:     breakdown.ServiceFee,
		TotalPrice:     breakdown.Total,
		Lines:          lines,
	}
	if err := s.repo.CreateReservation(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	s.publish(res)
	return res, nil
}

func (s *Service) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	return s.repo.GetReservation(ctx, reservationUid)
}

func (s *Service) ListReservations(ctx context.Context, guestUid string) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, guestUid)
}

func (s *Service) ConfirmReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	res, err := s.repo.UpdateStatus(ctx, reservationUid, []model.Status{model.StatusPending}, model.StatusConfirmed)
	if err != nil {
		return model.Reservation{}, err
	}
	// Invoice failures do not roll back the confirm; billing catches
	// up from the event stream.
	if err := s.billing.IssueInvoice(ctx, billing.Invoice{
		ReservationUid: res.ReservationUid,
		GuestUid:       res.GuestUid,
		Total:          res.TotalPrice,
		Taxes:          res.Taxes,
		ServiceFee:     res.ServiceFee,
		IssuedAt:       s.now().UTC(),
	}); err != nil {
		s.log.Error("issue invoice", zap.String("reservation_uid", res.ReservationUid), zap.Error(err))
	}
	s.publish(res)
	return res, nil
}

// CancelReservation is a status change, not a delete. The availability
// predicate filters by status, so the room frees immediately.
func (s *Service) CancelReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	res, err := s.repo.UpdateStatus(ctx, reservationUid,
		[]model.Status{model.StatusPending, model.StatusConfirmed}, model.StatusCancelled)
	if err != nil {
		return model.Reservation{}, err
	}
	s.publish(res)
	return res, nil
}

func (s *Service) CompleteReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	res, err := s.repo.UpdateStatus(ctx, reservationUid, []model.Status{model.StatusConfirmed}, model.StatusCompleted)
	if err != nil {
		return model.Reservation{}, err
	}
	if s.today().Before(res.CheckOut) {
		s.log.Warn("early departure",
			zap.String("reservation_uid", res.ReservationUid),
			zap.Time("check_out", res.CheckOut.Time))
	}
	s.publish(res)
	return res, nil
}

func (s *Service) resolveLines(ctx context.Context, selections []model.ServiceSelection) ([]model.ServiceLine, error) {
	if len(selections) == 0 {
		return nil, nil
	}
	lines := make([]model.ServiceLine, 0, len(selections))
	for _, sel := range selections {
		svc, err := s.repo.GetService(ctx, sel.ServiceUid)
		if err != nil {
			return nil, err
		}
		if !svc.Offered {
			return nil, errs.ErrServiceUnavailable
		}
		lines = append(lines, model.ServiceLine{
			ServiceID:  svc.ID,
			ServiceUid: svc.ServiceUid,
			Quantity:   sel.Quantity,
			UnitPrice:  svc.Price,
		})
	}
	return lines, nil
}

func (s *Service) publish(res model.Reservation) {
	if err := s.events.Publish(model.ReservationEvent{
		ReservationUid: res.ReservationUid,
		RoomUid:        res.RoomUid,
		GuestUid:       res.GuestUid,
		Status:         res.Status,
		TotalPrice:     res.TotalPrice,
		OccurredAt:     s.now().UTC(),
	}); err != nil {
		s.log.Error("publish event", zap.String("reservation_uid", res.ReservationUid), zap.Error(err))
	}
}

func (s *Service) today() model.Date {
	now := s.now().UTC()
	return model.NewDate(now.Year(), now.Month(), now.Day())
}
