package pgloads

import (
	"context"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/models"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type Storage struct {
	db  *pgxpool.Pool
	ids *IDMinter
}

func New(connString string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "parse pg config")
	}

	db, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect pg")
	}

	s := &Storage{db: db, ids: NewIDMinter(DefaultLoadIDPrefix, rand.New(rand.NewSource(time.Now().UnixNano())))}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// WithIDMinter подменяет генератор id (тесты).
func (s *Storage) WithIDMinter(m *IDMinter) *Storage {
	if m != nil {
		s.ids = m
	}
	return s
}

func (s *Storage) Ping(ctx context.Context) error {
	return errors.Wrap(s.db.Ping(ctx), "ping pg")
}

func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// wrapWrite переводит ошибки ограничений в ошибки модели:
// уникальность -> ErrConflict, ссылка на несуществующего владельца -> ValidationError.
func wrapWrite(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Wrap(models.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return models.NewValidationError("referenced record not found")
		}
	}
	return errors.Wrap(err, msg)
}
