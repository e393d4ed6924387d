package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/internal/billing"
	billing_mocks "github.com/Astemirdum/booking-service/booking/internal/billing/mocks"
	"github.com/Astemirdum/booking-service/booking/internal/errs"
	events_mocks "github.com/Astemirdum/booking-service/booking/internal/events/mocks"
	"github.com/Astemirdum/booking-service/booking/internal/model"
	"github.com/Astemirdum/booking-service/booking/internal/pricing"
	repo_mocks "github.com/Astemirdum/booking-service/booking/internal/repository/mocks"
	"github.com/Astemirdum/booking-service/booking/internal/service"
)

const (
	roomUid    = "5b2a3f5e-0a77-4f2b-9c1e-0d3e6f1a2b3c"
	guestUid   = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"
	serviceUid = "11111111-2222-3333-4444-555555555555"
)

func newCalculator() pricing.Calculator {
	return pricing.NewCalculator(pricing.Config{
		TaxRate:        decimal.RequireFromString("0.12"),
		ServiceFeeRate: decimal.RequireFromString("0.05"),
		PromoDiscount:  decimal.RequireFromString("0.15"),
		PromoCodes:     []string{"WELCOME15"},
	})
}

func testRoom() model.Room {
	return model.Room{
		ID:       1,
		RoomUid:  roomUid,
		Number:   "101",
		Type:     "STANDARD",
		Rate:     decimal.RequireFromString("100"),
		Capacity: 2,
		Status:   model.RoomAvailable,
	}
}

func testGuest() model.Guest {
	return model.Guest{ID: 1, GuestUid: guestUid, Name: "Ada Lovelace", Kind: model.GuestIndividual}
}

func TestService_CreateReservation(t *testing.T) {
	t.Parallel()

	baseReq := model.CreateReservationRequest{
		RoomUid:    roomUid,
		GuestUid:   guestUid,
		CheckIn:    model.NewDate(2030, time.May, 10),
		CheckOut:   model.NewDate(2030, time.May, 12),
		GuestCount: 2,
	}

	type mocks struct {
		repo *repo_mocks.MockRepository
		pub  *events_mocks.MockPublisher
		bill *billing_mocks.MockClient
	}

	tests := []struct {
		name         string
		req          func() model.CreateReservationRequest
		mockBehavior func(m mocks)
		check        func(t *testing.T, res model.Reservation)
		wantErr      error
	}{
		{
			name: "ok with service line",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.Services = []model.ServiceSelection{{ServiceUid: serviceUid, Quantity: 2}}
				return req
			},
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
				m.repo.EXPECT().GetService(gomock.Any(), serviceUid).Return(model.Service{
					ID: 7, ServiceUid: serviceUid, Name: "Breakfast",
					Price: decimal.RequireFromString("15"), Offered: true,
				}, nil)
				m.repo.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, res *model.Reservation) error {
						res.ID = 42
						res.CreatedAt = time.Date(2030, time.May, 1, 10, 0, 0, 0, time.UTC)
						return nil
					})
				m.pub.EXPECT().Publish(gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, res model.Reservation) {
				require.Equal(t, model.StatusPending, res.Status)
				require.NotEmpty(t, res.ReservationUid)
				require.Len(t, res.Lines, 1)
				// room 200 + services 30 = 230; 12% tax, 5% fee
				require.True(t, res.Lines[0].Subtotal.Equal(decimal.RequireFromString("30")))
				require.True(t, res.Taxes.Equal(decimal.RequireFromString("27.6")))
				require.True(t, res.ServiceFee.Equal(decimal.RequireFromString("11.5")))
				require.True(t, res.TotalPrice.Equal(decimal.RequireFromString("269.10")))
			},
		},
		{
			name: "check-out before check-in",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.CheckIn, req.CheckOut = req.CheckOut, req.CheckIn
				return req
			},
			mockBehavior: func(m mocks) {},
			wantErr:      errs.ErrInvalidDuration,
		},
		{
			name: "same-day check-in and check-out",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.CheckOut = req.CheckIn
				return req
			},
			mockBehavior: func(m mocks) {},
			wantErr:      errs.ErrInvalidDuration,
		},
		{
			name: "check-in in the past",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.CheckIn = model.NewDate(2020, time.May, 10)
				req.CheckOut = model.NewDate(2020, time.May, 12)
				return req
			},
			mockBehavior: func(m mocks) {},
			wantErr:      errs.ErrCheckInPast,
		},
		{
			name: "capacity exceeded",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.GuestCount = 5
				return req
			},
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
			},
			wantErr: errs.ErrCapacityExceeded,
		},
		{
			name: "unknown service",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.Services = []model.ServiceSelection{{ServiceUid: serviceUid, Quantity: 1}}
				return req
			},
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
				m.repo.EXPECT().GetService(gomock.Any(), serviceUid).
					Return(model.Service{}, errs.ErrServiceUnavailable)
			},
			wantErr: errs.ErrServiceUnavailable,
		},
		{
			name: "service no longer offered",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.Services = []model.ServiceSelection{{ServiceUid: serviceUid, Quantity: 1}}
				return req
			},
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
				m.repo.EXPECT().GetService(gomock.Any(), serviceUid).Return(model.Service{
					ID: 8, ServiceUid: serviceUid, Offered: false,
				}, nil)
			},
			wantErr: errs.ErrServiceUnavailable,
		},
		{
			name: "unrecognized promo code",
			req: func() model.CreateReservationRequest {
				req := baseReq
				req.PromoCode = "NOPE"
				return req
			},
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
			},
			wantErr: errs.ErrInvalidPromoCode,
		},
		{
			name: "room conflict surfaces, nothing published",
			req:  func() model.CreateReservationRequest { return baseReq },
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
				m.repo.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).
					Return(errs.ErrRoomNotAvailable)
			},
			wantErr: errs.ErrRoomNotAvailable,
		},
		{
			name: "publish failure does not fail the booking",
			req:  func() model.CreateReservationRequest { return baseReq },
			mockBehavior: func(m mocks) {
				m.repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
				m.repo.EXPECT().GetGuest(gomock.Any(), guestUid).Return(testGuest(), nil)
				m.repo.EXPECT().CreateReservation(gomock.Any(), gomock.Any()).Return(nil)
				m.pub.EXPECT().Publish(gomock.Any()).Return(errs.ErrNotFound)
			},
			check: func(t *testing.T, res model.Reservation) {
				require.Equal(t, model.StatusPending, res.Status)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			m := mocks{
				repo: repo_mocks.NewMockRepository(c),
				pub:  events_mocks.NewMockPublisher(c),
				bill: billing_mocks.NewMockClient(c),
			}
			tt.mockBehavior(m)

			svc := service.NewService(m.repo, newCalculator(), m.pub, m.bill, zap.NewExample().Named("test"))
			res, err := svc.CreateReservation(context.Background(), tt.req())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func TestService_Lifecycle(t *testing.T) {
	t.Parallel()

	const uid = "e3d1a4f0-1111-2222-3333-444455556666"

	confirmed := model.Reservation{
		ReservationUid: uid,
		RoomUid:        roomUid,
		GuestUid:       guestUid,
		CheckIn:        model.NewDate(2030, time.May, 10),
		CheckOut:       model.NewDate(2030, time.May, 12),
		Status:         model.StatusConfirmed,
		Taxes:          decimal.RequireFromString("24"),
		ServiceFee:     decimal.RequireFromString("10"),
		TotalPrice:     decimal.RequireFromString("234"),
	}

	t.Run("confirm issues invoice and publishes", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		pub := events_mocks.NewMockPublisher(c)
		bill := billing_mocks.NewMockClient(c)

		repo.EXPECT().
			UpdateStatus(gomock.Any(), uid, []model.Status{model.StatusPending}, model.StatusConfirmed).
			Return(confirmed, nil)
		bill.EXPECT().IssueInvoice(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, inv billing.Invoice) error {
				require.Equal(t, uid, inv.ReservationUid)
				require.True(t, inv.Total.Equal(confirmed.TotalPrice))
				require.True(t, inv.Taxes.Equal(confirmed.Taxes))
				return nil
			})
		pub.EXPECT().Publish(gomock.Any()).Return(nil)

		svc := service.NewService(repo, newCalculator(), pub, bill, zap.NewExample())
		res, err := svc.ConfirmReservation(context.Background(), uid)
		require.NoError(t, err)
		require.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("confirm survives billing outage", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		pub := events_mocks.NewMockPublisher(c)
		bill := billing_mocks.NewMockClient(c)

		repo.EXPECT().
			UpdateStatus(gomock.Any(), uid, []model.Status{model.StatusPending}, model.StatusConfirmed).
			Return(confirmed, nil)
		bill.EXPECT().IssueInvoice(gomock.Any(), gomock.Any()).Return(errs.ErrNotFound)
		pub.EXPECT().Publish(gomock.Any()).Return(nil)

		svc := service.NewService(repo, newCalculator(), pub, bill, zap.NewExample())
		_, err := svc.ConfirmReservation(context.Background(), uid)
		require.NoError(t, err)
	})

	t.Run("cancel allowed from pending or confirmed", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		pub := events_mocks.NewMockPublisher(c)
		bill := billing_mocks.NewMockClient(c)

		cancelled := confirmed
		cancelled.Status = model.StatusCancelled
		repo.EXPECT().
			UpdateStatus(gomock.Any(), uid,
				[]model.Status{model.StatusPending, model.StatusConfirmed}, model.StatusCancelled).
			Return(cancelled, nil)
		pub.EXPECT().Publish(gomock.Any()).Return(nil)

		svc := service.NewService(repo, newCalculator(), pub, bill, zap.NewExample())
		res, err := svc.CancelReservation(context.Background(), uid)
		require.NoError(t, err)
		require.Equal(t, model.StatusCancelled, res.Status)
	})

	t.Run("complete only from confirmed", func(t *testing.T) {
		t.Parallel()
		c := gomock.NewController(t)
		defer c.Finish()
		repo := repo_mocks.NewMockRepository(c)
		pub := events_mocks.NewMockPublisher(c)
		bill := billing_mocks.NewMockClient(c)

		repo.EXPECT().
			UpdateStatus(gomock.Any(), uid, []model.Status{model.StatusConfirmed}, model.StatusCompleted).
			Return(model.Reservation{}, errs.ErrInvalidState)

		svc := service.NewService(repo, newCalculator(), pub, bill, zap.NewExample())
		_, err := svc.CompleteReservation(context.Background(), uid)
		require.ErrorIs(t, err, errs.ErrInvalidState)
	})
}

func TestService_CheckAvailability(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockRepository(c)
	pub := events_mocks.NewMockPublisher(c)
	bill := billing_mocks.NewMockClient(c)
	svc := service.NewService(repo, newCalculator(), pub, bill, zap.NewExample())

	_, err := svc.CheckAvailability(context.Background(), roomUid,
		model.NewDate(2030, time.May, 12), model.NewDate(2030, time.May, 10), "")
	require.ErrorIs(t, err, errs.ErrInvalidDuration)

	repo.EXPECT().
		IsAvailable(gomock.Any(), roomUid, model.NewDate(2030, time.May, 10), model.NewDate(2030, time.May, 12), "").
		Return(true, nil)
	ok, err := svc.CheckAvailability(context.Background(), roomUid,
		model.NewDate(2030, time.May, 10), model.NewDate(2030, time.May, 12), "")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestService_ComputePrice(t *testing.T) {
	t.Parallel()

	c := gomock.NewController(t)
	defer c.Finish()
	repo := repo_mocks.NewMockRepository(c)
	svc := service.NewService(repo, newCalculator(),
		events_mocks.NewMockPublisher(c), billing_mocks.NewMockClient(c), zap.NewExample())

	repo.EXPECT().GetRoom(gomock.Any(), roomUid).Return(testRoom(), nil)
	got, err := svc.ComputePrice(context.Background(), model.PriceRequest{
		RoomUid:  roomUid,
		CheckIn:  model.NewDate(2030, time.May, 10),
		CheckOut: model.NewDate(2030, time.May, 13),
	})
	require.NoError(t, err)
	require.Equal(t, 3, got.Nights)
	require.True(t, got.Total.Equal(decimal.RequireFromString("351")))
}
