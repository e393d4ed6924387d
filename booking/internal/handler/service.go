package handler

import (
	"context"

	"github.com/Astemirdum/booking-service/booking/internal/model"
	"github.com/Astemirdum/booking-service/booking/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go -package=mocks

type BookingService interface {
	CheckAvailability(ctx context.Context, roomUid string, checkIn, checkOut model.Date, excludeUid string) (bool, error)
	ComputePrice(ctx context.Context, req model.PriceRequest) (model.PriceBreakdown, error)
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ListReservations(ctx context.Context, guestUid string) ([]model.Reservation, error)
	ConfirmReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	CancelReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	CompleteReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
}

var _ BookingService = (*service.Service)(nil)
