package cache

import (
	"context"
	"time"
)

// BytesCache: кэш сырых байтов. ok=false означает промах, а не ошибку.
//
// У каждого ключа есть версия. Заполнение после чтения из БД идёт через
// SetIfVersion с версией, прочитанной до запроса в БД: если между ними
// прошёл Invalidate, запись отбрасывается.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Version: текущая версия ключа, 0 если ключ ни разу не инвалидировался.
	Version(ctx context.Context, key string) (int64, error)
	// SetIfVersion пишет value, только если версия ключа всё ещё равна version.
	SetIfVersion(ctx context.Context, key string, version int64, value []byte, ttl time.Duration) (bool, error)
	// Invalidate удаляет значение и поднимает версию.
	Invalidate(ctx context.Context, key string) error
}
