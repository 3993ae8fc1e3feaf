package pgloads

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/models"
)

func (s *Storage) AppendMessage(ctx context.Context, in models.MessageInput) (*models.Message, error) {
	m := models.Message{
		LoadID:    in.LoadID,
		ToRole:    in.ToRole,
		ToPhone:   in.ToPhone,
		Body:      in.Body,
		FromRole:  in.FromRole,
		FromName:  in.FromName,
		CreatedAt: time.Now().UTC(),
	}
	err := s.db.QueryRow(ctx, `
INSERT INTO messages (load_id, to_role, to_phone, body, from_role, from_name, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, m.LoadID, m.ToRole, m.ToPhone, m.Body, m.FromRole, m.FromName, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert message")
	}
	return &m, nil
}

// ListMessages возвращает журнал по грузу в порядке записи.
func (s *Storage) ListMessages(ctx context.Context, loadID string) ([]*models.Message, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, load_id, to_role, to_phone, body, from_role, from_name, created_at
FROM messages
WHERE load_id = $1
ORDER BY created_at ASC, id ASC
`, loadID)
	if err != nil {
		return nil, errors.Wrap(err, "select messages")
	}
	defer rows.Close()

	out := []*models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.LoadID, &m.ToRole, &m.ToPhone, &m.Body, &m.FromRole, &m.FromName, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		out = append(out, &m)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
