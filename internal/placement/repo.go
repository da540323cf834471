package placement

import (
	"context"
	"fmt"
	"time"

	"github.com/example/englishschool/internal/db"
	"github.com/jackc/pgx/v5/pgtype"
)

const slotConstraint = "placement_reservations_slot_key"

const selectColumns = `id,user_id,full_name,phone,level,slot_date,slot_time,assigned_handler_id,is_seen,created_at`

// Repo is the Postgres Store.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) SlotTaken(ctx context.Context, date time.Time, at TimeOfDay) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM placement_reservations WHERE slot_date=$1 AND slot_time=$2)`,
		date, pgTime(at)).Scan(&taken)
	return taken, err
}

func (r *Repo) Create(ctx context.Context, res *Reservation) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO placement_reservations(user_id,full_name,phone,level,slot_date,slot_time,assigned_handler_id)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id,is_seen,created_at`,
		res.UserID, res.FullName, res.Phone, string(res.Level), res.Date, pgTime(res.Time), res.HandlerID,
	).Scan(&res.ID, &res.Seen, &res.CreatedAt)
	if db.IsUniqueViolation(err, slotConstraint) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *Repo) ReservedTimes(ctx context.Context, date time.Time) ([]TimeOfDay, error) {
	rows, err := r.db.Query(ctx, `
SELECT slot_time FROM placement_reservations WHERE slot_date=$1 ORDER BY id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeOfDay
	for rows.Next() {
		var t pgtype.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, fromPGTime(t))
	}
	return out, rows.Err()
}

func (r *Repo) ListByHandler(ctx context.Context, handlerID int64) ([]Reservation, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+selectColumns+`
FROM placement_reservations
WHERE assigned_handler_id=$1
ORDER BY slot_date DESC, slot_time DESC`, handlerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var res Reservation
		var level string
		var t pgtype.Time
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.FullName, &res.Phone, &level, &res.Date, &t, &res.HandlerID, &res.Seen, &res.CreatedAt,
		); err != nil {
			return nil, err
		}
		res.Level = Level(level)
		res.Time = fromPGTime(t)
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repo) MarkSeen(ctx context.Context, handlerID int64, ids []int64) (int64, error) {
	return r.db.ExecAffected(ctx, `
UPDATE placement_reservations SET is_seen=true
WHERE assigned_handler_id=$1 AND id = ANY($2) AND NOT is_seen`, handlerID, ids)
}

func (r *Repo) CountUnseen(ctx context.Context, handlerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
SELECT count(*) FROM placement_reservations WHERE assigned_handler_id=$1 AND NOT is_seen`, handlerID).Scan(&n)
	return n, err
}

const microsPerMinute = int64(time.Minute / time.Microsecond)

func pgTime(t TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerMinute, Valid: true}
}

func fromPGTime(t pgtype.Time) TimeOfDay {
	return TimeOfDay(t.Microseconds / microsPerMinute)
}
