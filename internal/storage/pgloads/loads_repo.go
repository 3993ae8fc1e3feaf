package pgloads

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/models"
)

const loadColumns = `
  id, origin, destination, lane,
  driver, driver_phone, status, eta,
  agent_phone, merchant_phone, shipper_phone, receiver_phone, dispatcher_phone,
  origin_location_id, destination_location_id, commodity,
  created_at, updated_at`

func scanLoad(row pgx.Row) (*models.Load, error) {
	var l models.Load
	err := row.Scan(
		&l.ID, &l.Origin, &l.Destination, &l.Lane,
		&l.Driver, &l.DriverPhone, &l.Status, &l.ETA,
		&l.AgentPhone, &l.MerchantPhone, &l.ShipperPhone, &l.ReceiverPhone, &l.DispatcherPhone,
		&l.OriginLocationID, &l.DestinationLocationID, &l.Commodity,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Storage) ListLoads(ctx context.Context) ([]*models.Load, error) {
	rows, err := s.db.Query(ctx, `SELECT`+loadColumns+` FROM loads ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(err, "select loads")
	}
	defer rows.Close()

	out := []*models.Load{}
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan load")
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetLoad(ctx context.Context, id string) (*models.Load, error) {
	l, err := scanLoad(s.db.QueryRow(ctx, `SELECT`+loadColumns+` FROM loads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "select load")
	}
	return l, nil
}

// UpsertLoad полностью заменяет изменяемые поля. Пустой id означает новую запись
// со сгенерированным id; created_at существующей записи сохраняется.
func (s *Storage) UpsertLoad(ctx context.Context, l *models.Load) (*models.Load, error) {
	id := strings.TrimSpace(l.ID)
	if id == "" {
		id = s.ids.Mint()
	}
	status := l.Status
	if status == "" {
		status = models.LoadStatusPlanned
	}
	now := time.Now().UTC()

	out, err := scanLoad(s.db.QueryRow(ctx, `
INSERT INTO loads (
  id, origin, destination, lane,
  driver, driver_phone, status, eta,
  agent_phone, merchant_phone, shipper_phone, receiver_phone, dispatcher_phone,
  origin_location_id, destination_location_id, commodity,
  created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$17)
ON CONFLICT (id) DO UPDATE SET
  origin = EXCLUDED.origin,
  destination = EXCLUDED.destination,
  lane = EXCLUDED.lane,
  driver = EXCLUDED.driver,
  driver_phone = EXCLUDED.driver_phone,
  status = EXCLUDED.status,
  eta = EXCLUDED.eta,
  agent_phone = EXCLUDED.agent_phone,
  merchant_phone = EXCLUDED.merchant_phone,
  shipper_phone = EXCLUDED.shipper_phone,
  receiver_phone = EXCLUDED.receiver_phone,
  dispatcher_phone = EXCLUDED.dispatcher_phone,
  origin_location_id = EXCLUDED.origin_location_id,
  destination_location_id = EXCLUDED.destination_location_id,
  commodity = EXCLUDED.commodity,
  updated_at = GREATEST(EXCLUDED.updated_at, loads.created_at)
RETURNING`+loadColumns,
		id, l.Origin, l.Destination, models.Lane(l.Origin, l.Destination),
		l.Driver, l.DriverPhone, status, l.ETA,
		l.AgentPhone, l.MerchantPhone, l.ShipperPhone, l.ReceiverPhone, l.DispatcherPhone,
		l.OriginLocationID, l.DestinationLocationID, l.Commodity,
		now,
	))
	if err != nil {
		return nil, errors.Wrap(err, "upsert load")
	}
	return out, nil
}

// PatchLoad сливает только переданные поля. Чтение и запись в одной транзакции,
// строка блокируется на время слияния.
func (s *Storage) PatchLoad(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := scanLoad(tx.QueryRow(ctx, `SELECT`+loadColumns+` FROM loads WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, errors.Wrap(err, "select load for patch")
	}

	cur.Apply(p)
	cur.UpdatedAt = time.Now().UTC()
	if cur.UpdatedAt.Before(cur.CreatedAt) {
		cur.UpdatedAt = cur.CreatedAt
	}

	out, err := scanLoad(tx.QueryRow(ctx, `
UPDATE loads SET
  origin = $2, destination = $3, lane = $4,
  driver = $5, driver_phone = $6, status = $7, eta = $8,
  agent_phone = $9, merchant_phone = $10, shipper_phone = $11, receiver_phone = $12, dispatcher_phone = $13,
  origin_location_id = $14, destination_location_id = $15, commodity = $16,
  updated_at = $17
WHERE id = $1
RETURNING`+loadColumns,
		cur.ID, cur.Origin, cur.Destination, cur.Lane,
		cur.Driver, cur.DriverPhone, cur.Status, cur.ETA,
		cur.AgentPhone, cur.MerchantPhone, cur.ShipperPhone, cur.ReceiverPhone, cur.DispatcherPhone,
		cur.OriginLocationID, cur.DestinationLocationID, cur.Commodity,
		cur.UpdatedAt,
	))
	if err != nil {
		return nil, errors.Wrap(err, "update load")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return out, nil
}

func (s *Storage) DeleteLoad(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM loads WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete load")
	}
	return tag.RowsAffected() > 0, nil
}
