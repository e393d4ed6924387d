package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "AVAILABLE"
	RoomOccupied    RoomStatus = "OCCUPIED"
	RoomMaintenance RoomStatus = "MAINTENANCE"
)

type GuestKind string

const (
	GuestIndividual GuestKind = "INDIVIDUAL"
	GuestCorporate  GuestKind = "CORPORATE"
)

// Room status is advisory. Occupancy is derived from reservations.
type Room struct {
	ID       int             `json:"-" db:"id"`
	RoomUid  string          `json:"roomUid" db:"room_uid"`
	Number   string          `json:"number" db:"number"`
	Type     string          `json:"type" db:"type"`
	Rate     decimal.Decimal `json:"rate" db:"rate"`
	Capacity int             `json:"capacity" db:"capacity"`
	Status   RoomStatus      `json:"status" db:"status"`
}

type Guest struct {
	ID       int       `json:"-" db:"id"`
	GuestUid string    `json:"guestUid" db:"guest_uid"`
	Name     string    `json:"name" db:"name"`
	Kind     GuestKind `json:"kind" db:"kind"`
}

type Service struct {
	ID         int             `json:"-" db:"id"`
	ServiceUid string          `json:"serviceUid" db:"service_uid"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Offered    bool            `json:"offered" db:"offered"`
}

// ServiceLine keeps the catalog price snapshot taken at booking time.
// Catalog changes after booking never alter the stored amounts.
type ServiceLine struct {
	ReservationID int             `json:"-" db:"reservation_id"`
	ServiceID     int             `json:"-" db:"service_id"`
	ServiceUid    string          `json:"serviceUid" db:"service_uid"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// Reservation occupies [CheckIn, CheckOut) for its room while status is
// PENDING or CONFIRMED.
type Reservation struct {
	ID             int             `json:"-" db:"id"`
	ReservationUid string          `json:"reservationUid" db:"reservation_uid"`
	RoomID         int             `json:"-" db:"room_id"`
	RoomUid        string          `json:"roomUid" db:"room_uid"`
	GuestID        int             `json:"-" db:"guest_id"`
	GuestUid       string          `json:"guestUid" db:"guest_uid"`
	CheckIn        Date            `json:"checkIn" db:"check_in"`
	CheckOut       Date            `json:"checkOut" db:"check_out"`
	GuestCount     int             `json:"guestCount" db:"guest_count"`
	Status         Status          `json:"status" db:"status"`
	Taxes          decimal.Decimal `json:"taxes" db:"taxes"`
	ServiceFee     decimal.Decimal `json:"serviceFee" db:"service_fee"`
	TotalPrice     decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	Lines          []ServiceLine   `json:"serviceLines,omitempty" db:"-"`
}

type PriceBreakdown struct {
	Nights           int             `json:"nights"`
	RoomSubtotal     decimal.Decimal `json:"roomSubtotal"`
	Discount         decimal.Decimal `json:"discount"`
	ServicesSubtotal decimal.Decimal `json:"servicesSubtotal"`
	Taxes            decimal.Decimal `json:"taxes"`
	ServiceFee       decimal.Decimal `json:"serviceFee"`
	Total            decimal.Decimal `json:"total"`
}

type ServiceSelection struct {
	ServiceUid string `json:"serviceUid" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type CreateReservationRequest struct {
	RoomUid    string             `json:"roomUid" validate:"required,uuid"`
	GuestUid   string             `json:"guestUid" validate:"required,uuid"`
	CheckIn    Date               `json:"checkIn" validate:"required"`
	CheckOut   Date               `json:"checkOut" validate:"required"`
	GuestCount int                `json:"guestCount" validate:"required,min=1"`
	PromoCode  string             `json:"promoCode,omitempty"`
	Services   []ServiceSelection `json:"services,omitempty" validate:"dive"`
}

type PriceRequest struct {
	RoomUid   string             `json:"roomUid" validate:"required,uuid"`
	CheckIn   Date               `json:"checkIn" validate:"required"`
	CheckOut  Date               `json:"checkOut" validate:"required"`
	PromoCode string             `json:"promoCode,omitempty"`
	Services  []ServiceSelection `json:"services,omitempty" validate:"dive"`
}

type ReservationEvent struct {
	ReservationUid string          `json:"reservationUid"`
	RoomUid        string          `json:"roomUid"`
	GuestUid       string          `json:"guestUid"`
	Status         Status          `json:"status"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	OccurredAt     time.Time       `json:"occurredAt"`
}
