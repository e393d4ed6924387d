package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/booking/internal/errs"
	"github.com/Astemirdum/booking-service/booking/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go -package=mocks

type Repository interface {
	GetRoom(ctx context.Context, roomUid string) (model.Room, error)
	GetGuest(ctx context.Context, guestUid string) (model.Guest, error)
	GetService(ctx context.Context, serviceUid string) (model.Service, error)
	IsAvailable(ctx context.Context, roomUid string, checkIn, checkOut model.Date, excludeUid string) (bool, error)
	CreateReservation(ctx context.Context, res *model.Reservation) error
	GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ListReservations(ctx context.Context, guestUid string) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, reservationUid string, from []model.Status, to model.Status) (model.Reservation, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	roomTableName        = `room`
	guestTableName       = `guest`
	serviceTableName     = `service`
	reservationTableName = `reservation`
	serviceLineTableName = `reservation_service_line`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// occupying are the statuses that block a room for their date range.
var occupying = []model.Status{model.StatusPending, model.StatusConfirmed}

func (r *repository) GetRoom(ctx context.Context, roomUid string) (model.Room, error) {
	query, args, err := qb.Select("id", "room_uid", "number", "type", "rate", "capacity", "status").
		From(roomTableName).
		Where(sq.Eq{"room_uid": roomUid}).
		ToSql()
	if err != nil {
		return model.Room{}, err
	}
	var room model.Room
	if err := r.db.GetContext(ctx, &room, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, errs.ErrRoomNotFound
		}
		return model.Room{}, err
	}
	return room, nil
}

func (r *repository) GetGuest(ctx context.Context, guestUid string) (model.Guest, error) {
	query, args, err := qb.Select("id", "guest_uid", "name", "kind").
		From(guestTableName).
		Where(sq.Eq{"guest_uid": guestUid}).
		ToSql()
	if err != nil {
		return model.Guest{}, err
	}
	var guest model.Guest
	if err := r.db.GetContext(ctx, &guest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Guest{}, errs.ErrGuestNotFound
		}
		return model.Guest{}, err
	}
	return guest, nil
}

func (r *repository) GetService(ctx context.Context, serviceUid string) (model.Service, error) {
	query, args, err := qb.Select("id", "service_uid", "name", "price", "offered").
		From(serviceTableName).
		Where(sq.Eq{"service_uid": serviceUid}).
		ToSql()
	if err != nil {
		return model.Service{}, err
	}
	var svc model.Service
	if err := r.db.GetContext(ctx, &svc, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Service{}, errs.ErrServiceUnavailable
		}
		return model.Service{}, err
	}
	return svc, nil
}

// overlapQuery counts occupying reservations of roomID intersecting
// [checkIn, checkOut). Half-open: a1 < b2 AND b1 < a2, so same-day
// turnover (checkout day D, new check-in day D) does not conflict.
func overlapQuery(roomID int, checkIn, checkOut model.Date, excludeUid string) sq.SelectBuilder {
	q := qb.Select("count(1)").
		From(reservationTableName).
		Where(sq.Eq{"room_id": roomID}).
		Where(sq.Eq{"status": occupying}).
		Where(sq.Lt{"check_in": checkOut.Format(time.DateOnly)}).
		Where(sq.Gt{"check_out": checkIn.Format(time.DateOnly)})
	if excludeUid != "" {
		q = q.Where(sq.NotEq{"reservation_uid": excludeUid})
	}
	return q
}

func (r *repository) IsAvailable(ctx context.Context, roomUid string, checkIn, checkOut model.Date, excludeUid string) (bool, error) {
	room, err := r.GetRoom(ctx, roomUid)
	if err != nil {
		return false, err
	}
	query, args, err := overlapQuery(room.ID, checkIn, checkOut, excludeUid).ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// CreateReservation commits the reservation and its service lines in a
// single transaction, or nothing at all.
//
// The room row is locked with SELECT ... FOR UPDATE before the overlap
// re-check, serializing racing requests per room; requests for other
// rooms proceed independently. The partial exclusion constraint on
// (room_id, daterange) backstops the check at the storage layer, so an
// overlapping insert fails with SQLSTATE 23P01 even if the lock
// discipline is ever broken. Either way the loser sees
// errs.ErrRoomNotAvailable.
func (r *repository) CreateReservation(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var roomID int
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`select id from %s where id = $1 for update`, roomTableName),
		res.RoomID,
	).Scan(&roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrRoomNotFound
		}
		return err
	}

	query, args, err := overlapQuery(res.RoomID, res.CheckIn, res.CheckOut, "").ToSql()
	if err != nil {
		return err
	}
	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return errs.ErrRoomNotAvailable
	}

	query, args, err = qb.Insert(reservationTableName).
		Columns("reservation_uid", "room_id", "guest_id", "check_in", "check_out", "guest_count", "status", "taxes", "service_fee", "total_price").
		Values(res.ReservationUid, res.RoomID, res.GuestID, res.CheckIn, res.CheckOut, res.GuestCount, res.Status, res.Taxes, res.ServiceFee, res.TotalPrice).
		Suffix("returning id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		if isExclusionViolation(err) {
			return errs.ErrRoomNotAvailable
		}
		r.log.Error("CreateReservation", zap.String("q", query), zap.Any("args", args))
		return err
	}

	if len(res.Lines) > 0 {
		ib := qb.Insert(serviceLineTableName).
			Columns("reservation_id", "service_id", "quantity", "unit_price", "subtotal")
		for i := range res.Lines {
			res.Lines[i].ReservationID = res.ID
			ib = ib.Values(res.ID, res.Lines[i].ServiceID, res.Lines[i].Quantity, res.Lines[i].UnitPrice, res.Lines[i].Subtotal)
		}
		query, args, err = ib.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.log.Error("CreateReservation lines", zap.String("q", query), zap.Any("args", args))
			return err
		}
	}

	return tx.Commit()
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}

const reservationColumns = `r.id, r.reservation_uid, rm.room_uid, g.guest_uid,
	r.room_id, r.guest_id, r.check_in, r.check_out, r.guest_count, r.status, r.taxes, r.service_fee, r.total_price, r.created_at`

func (r *repository) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	q := fmt.Sprintf(`
	select %s from %s r
	join %s rm on rm.id = r.room_id
	join %s g on g.id = r.guest_id
	where r.reservation_uid = $1`, reservationColumns, reservationTableName, roomTableName, guestTableName)

	var res model.Reservation
	if err := r.db.GetContext(ctx, &res, q, reservationUid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	lines, err := r.getLines(ctx, res.ID)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Lines = lines
	return res, nil
}

func (r *repository) getLines(ctx context.Context, reservationID int) ([]model.ServiceLine, error) {
	q := fmt.Sprintf(`
	select l.reservation_id, l.service_id, s.service_uid, l.quantity, l.unit_price, l.subtotal
	from %s l
	join %s s on s.id = l.service_id
	where l.reservation_id = $1`, serviceLineTableName, serviceTableName)

	var lines []model.ServiceLine
	if err := r.db.SelectContext(ctx, &lines, q, reservationID); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) ListReservations(ctx context.Context, guestUid string) ([]model.Reservation, error) {
	q := fmt.Sprintf(`
	select %s from %s r
	join %s rm on rm.id = r.room_id
	join %s g on g.id = r.guest_id
	where g.guest_uid = $1
	order by r.created_at`, reservationColumns, reservationTableName, roomTableName, guestTableName)

	var items []model.Reservation
	if err := r.db.SelectContext(ctx, &items, q, guestUid); err != nil {
		return nil, err
	}
	for i := range items {
		lines, err := r.getLines(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Lines = lines
	}
	return items, nil
}

// UpdateStatus performs a lifecycle transition guarded by the allowed
// source statuses. Zero rows updated means either the reservation does
// not exist or it is in a state the transition is not legal from.
func (r *repository) UpdateStatus(ctx context.Context, reservationUid string, from []model.Status, to model.Status) (model.Reservation, error) {
	query, args, err := qb.Update(reservationTableName).
		Set("status", to).
		Where(sq.Eq{"reservation_uid": reservationUid}).
		Where(sq.Eq{"status": from}).
		Suffix("returning reservation_uid").
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var uid string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&uid); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, err
		}
		// distinguish missing from wrong-state
		if _, getErr := r.GetReservation(ctx, reservationUid); getErr != nil {
			return model.Reservation{}, getErr
		}
		return model.Reservation{}, errs.ErrInvalidState
	}
	return r.GetReservation(ctx, uid)
}
