package pgloads

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/models"
)

// ---- partners ----

const partnerColumns = ` id, kind, name, phone, email, notes, created_at, updated_at`

func scanPartner(row pgx.Row) (*models.Partner, error) {
	var p models.Partner
	if err := row.Scan(&p.ID, &p.Kind, &p.Name, &p.Phone, &p.Email, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPartners: пустой kind = все партнёры.
func (s *Storage) ListPartners(ctx context.Context, kind string) ([]*models.Partner, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+partnerColumns+`
FROM partners
WHERE ($1 = '' OR kind = $1)
ORDER BY name ASC, id ASC
`, kind)
	if err != nil {
		return nil, errors.Wrap(err, "select partners")
	}
	defer rows.Close()

	out := []*models.Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan partner")
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetPartner(ctx context.Context, id int64) (*models.Partner, error) {
	p, err := scanPartner(s.db.QueryRow(ctx, `SELECT`+partnerColumns+` FROM partners WHERE id = $1`, id))
	return p, notFoundOr(err, "select partner")
}

func (s *Storage) CreatePartner(ctx context.Context, p *models.Partner) (*models.Partner, error) {
	now := time.Now().UTC()
	out, err := scanPartner(s.db.QueryRow(ctx, `
INSERT INTO partners (kind, name, phone, email, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING`+partnerColumns, p.Kind, p.Name, p.Phone, p.Email, p.Notes, now))
	if err != nil {
		return nil, wrapWrite(err, "insert partner")
	}
	return out, nil
}

func (s *Storage) UpdatePartner(ctx context.Context, id int64, f models.PartnerFields) (*models.Partner, error) {
	var out *models.Partner
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanPartner(tx.QueryRow(ctx, `SELECT`+partnerColumns+` FROM partners WHERE id = $1 FOR UPDATE`, id))
		if err := notFoundOr(err, "select partner"); err != nil {
			return err
		}
		cur.Apply(f)
		out, err = scanPartner(tx.QueryRow(ctx, `
UPDATE partners SET kind = $2, name = $3, phone = $4, email = $5, notes = $6, updated_at = $7
WHERE id = $1
RETURNING`+partnerColumns, id, cur.Kind, cur.Name, cur.Phone, cur.Email, cur.Notes, time.Now().UTC()))
		return wrapWrite(err, "update partner")
	})
	return out, err
}

// DeletePartner удаляет партнёра вместе с локациями и их получателями (ON DELETE CASCADE).
func (s *Storage) DeletePartner(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, `DELETE FROM partners WHERE id = $1`, id, "delete partner")
}

// ---- locations ----

const locationColumns = ` id, partner_id, name, address, city, state, zip, lat, lng, created_at, updated_at`

func scanLocation(row pgx.Row) (*models.Location, error) {
	var l models.Location
	if err := row.Scan(&l.ID, &l.PartnerID, &l.Name, &l.Address, &l.City, &l.State, &l.Zip, &l.Lat, &l.Lng, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Storage) ListLocations(ctx context.Context, partnerID int64) ([]*models.Location, error) {
	rows, err := s.db.Query(ctx, `
SELECT`+locationColumns+`
FROM locations
WHERE partner_id = $1
ORDER BY name ASC, id ASC
`, partnerID)
	if err != nil {
		return nil, errors.Wrap(err, "select locations")
	}
	defer rows.Close()

	out := []*models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan location")
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	l, err := scanLocation(s.db.QueryRow(ctx, `SELECT`+locationColumns+` FROM locations WHERE id = $1`, id))
	return l, notFoundOr(err, "select location")
}

func (s *Storage) CreateLocation(ctx context.Context, l *models.Location) (*models.Location, error) {
	now := time.Now().UTC()
	out, err := scanLocation(s.db.QueryRow(ctx, `
INSERT INTO locations (partner_id, name, address, city, state, zip, lat, lng, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
RETURNING`+locationColumns, l.PartnerID, l.Name, l.Address, l.City, l.State, l.Zip, l.Lat, l.Lng, now))
	if err != nil {
		return nil, wrapWrite(err, "insert location")
	}
	return out, nil
}

func (s *Storage) UpdateLocation(ctx context.Context, id int64, f models.LocationFields) (*models.Location, error) {
	var out *models.Location
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanLocation(tx.QueryRow(ctx, `SELECT`+locationColumns+` FROM locations WHERE id = $1 FOR UPDATE`, id))
		if err := notFoundOr(err, "select location"); err != nil {
			return err
		}
		cur.Apply(f)
		out, err = scanLocation(tx.QueryRow(ctx, `
UPDATE locations SET name = $2, address = $3, city = $4, state = $5, zip = $6, lat = $7, lng = $8, updated_at = $9
WHERE id = $1
RETURNING`+locationColumns, id, cur.Name, cur.Address, cur.City, cur.State, cur.Zip, cur.Lat, cur.Lng, time.Now().UTC()))
		return wrapWrite(err, "update location")
	})
	return out, err
}

// DeleteLocation удаляет локацию и её получателей.
func (s *Storage) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, `DELETE FROM locations WHERE id = $1`, id, "delete location")
}

// ---- recipients ----

const recipientColumns = ` id, location_id, role, name, phone, email, notify_sms, notify_email, created_at, updated_at`

func scanRecipient(row pgx.Row) (*models.Recipient, error) {
	var r models.Recipient
	if err := row.Scan(&r.ID, &r.LocationID, &r.Role, &r.Name, &r.Phone, &r.Email, &r.NotifySMS, &r.NotifyEmail, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) ListRecipients(ctx context.Context, locationID int64) ([]*models.Recipient, error) {
	return s.queryRecipients(ctx, `
SELECT`+recipientColumns+`
FROM recipients
WHERE location_id = $1
ORDER BY id ASC
`, locationID)
}

// ListRecipientsByLocations: получатели нескольких локаций, в порядке (локация из списка, id).
func (s *Storage) ListRecipientsByLocations(ctx context.Context, locationIDs []int64) ([]*models.Recipient, error) {
	if len(locationIDs) == 0 {
		return []*models.Recipient{}, nil
	}
	return s.queryRecipients(ctx, `
SELECT`+recipientColumns+`
FROM recipients
WHERE location_id = ANY($1)
ORDER BY array_position($1::bigint[], location_id), id ASC
`, locationIDs)
}

func (s *Storage) queryRecipients(ctx context.Context, q string, args ...any) ([]*models.Recipient, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select recipients")
	}
	defer rows.Close()

	out := []*models.Recipient{}
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan recipient")
		}
		out = append(out, r)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetRecipient(ctx context.Context, id int64) (*models.Recipient, error) {
	r, err := scanRecipient(s.db.QueryRow(ctx, `SELECT`+recipientColumns+` FROM recipients WHERE id = $1`, id))
	return r, notFoundOr(err, "select recipient")
}

func (s *Storage) CreateRecipient(ctx context.Context, r *models.Recipient) (*models.Recipient, error) {
	now := time.Now().UTC()
	out, err := scanRecipient(s.db.QueryRow(ctx, `
INSERT INTO recipients (location_id, role, name, phone, email, notify_sms, notify_email, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
RETURNING`+recipientColumns, r.LocationID, r.Role, r.Name, r.Phone, r.Email, r.NotifySMS, r.NotifyEmail, now))
	if err != nil {
		return nil, wrapWrite(err, "insert recipient")
	}
	return out, nil
}

func (s *Storage) UpdateRecipient(ctx context.Context, id int64, f models.RecipientFields) (*models.Recipient, error) {
	var out *models.Recipient
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanRecipient(tx.QueryRow(ctx, `SELECT`+recipientColumns+` FROM recipients WHERE id = $1 FOR UPDATE`, id))
		if err := notFoundOr(err, "select recipient"); err != nil {
			return err
		}
		cur.Apply(f)
		out, err = scanRecipient(tx.QueryRow(ctx, `
UPDATE recipients SET location_id = $2, role = $3, name = $4, phone = $5, email = $6, notify_sms = $7, notify_email = $8, updated_at = $9
WHERE id = $1
RETURNING`+recipientColumns, id, cur.LocationID, cur.Role, cur.Name, cur.Phone, cur.Email, cur.NotifySMS, cur.NotifyEmail, time.Now().UTC()))
		return wrapWrite(err, "update recipient")
	})
	return out, err
}

func (s *Storage) DeleteRecipient(ctx context.Context, id int64) (bool, error) {
	return s.deleteByID(ctx, `DELETE FROM recipients WHERE id = $1`, id, "delete recipient")
}

// ---- merchants / dispatchers ----

const contactColumns = ` id, name, phone, email, notes, created_at, updated_at`

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) ListContacts(ctx context.Context, table models.ContactTable) ([]*models.Contact, error) {
	if !table.Valid() {
		return nil, errors.Errorf("unknown contact table %q", table)
	}
	rows, err := s.db.Query(ctx, `SELECT`+contactColumns+` FROM `+string(table)+` ORDER BY name ASC`)
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", table)
	}
	defer rows.Close()

	out := []*models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan contact")
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) GetContact(ctx context.Context, table models.ContactTable, id int64) (*models.Contact, error) {
	if !table.Valid() {
		return nil, errors.Errorf("unknown contact table %q", table)
	}
	c, err := scanContact(s.db.QueryRow(ctx, `SELECT`+contactColumns+` FROM `+string(table)+` WHERE id = $1`, id))
	return c, notFoundOr(err, "select contact")
}

func (s *Storage) CreateContact(ctx context.Context, table models.ContactTable, c *models.Contact) (*models.Contact, error) {
	if !table.Valid() {
		return nil, errors.Errorf("unknown contact table %q", table)
	}
	now := time.Now().UTC()
	out, err := scanContact(s.db.QueryRow(ctx, `
INSERT INTO `+string(table)+` (name, phone, email, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$5)
RETURNING`+contactColumns, c.Name, c.Phone, c.Email, c.Notes, now))
	if err != nil {
		return nil, wrapWrite(err, "insert contact")
	}
	return out, nil
}

func (s *Storage) UpdateContact(ctx context.Context, table models.ContactTable, id int64, f models.ContactFields) (*models.Contact, error) {
	if !table.Valid() {
		return nil, errors.Errorf("unknown contact table %q", table)
	}
	var out *models.Contact
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		cur, err := scanContact(tx.QueryRow(ctx, `SELECT`+contactColumns+` FROM `+string(table)+` WHERE id = $1 FOR UPDATE`, id))
		if err := notFoundOr(err, "select contact"); err != nil {
			return err
		}
		cur.Apply(f)
		out, err = scanContact(tx.QueryRow(ctx, `
UPDATE `+string(table)+` SET name = $2, phone = $3, email = $4, notes = $5, updated_at = $6
WHERE id = $1
RETURNING`+contactColumns, id, cur.Name, cur.Phone, cur.Email, cur.Notes, time.Now().UTC()))
		return wrapWrite(err, "update contact")
	})
	return out, err
}

func (s *Storage) DeleteContact(ctx context.Context, table models.ContactTable, id int64) (bool, error) {
	if !table.Valid() {
		return false, errors.Errorf("unknown contact table %q", table)
	}
	return s.deleteByID(ctx, `DELETE FROM `+string(table)+` WHERE id = $1`, id, "delete contact")
}

// ---- helpers ----

func (s *Storage) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

func (s *Storage) deleteByID(ctx context.Context, q string, id int64, msg string) (bool, error) {
	tag, err := s.db.Exec(ctx, q, id)
	if err != nil {
		return false, errors.Wrap(err, msg)
	}
	return tag.RowsAffected() > 0, nil
}

func notFoundOr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
