package pgloads

import (
	"fmt"
	"sync"
)

const DefaultLoadIDPrefix = "LD"

type Rand interface {
	Intn(n int) int
}

// IDMinter выдаёт id вида PREFIX-NNNNN (10000..99999). Коллизии не проверяются:
// вставка с уже занятым id превращается в обновление существующей записи.
type IDMinter struct {
	prefix string

	mu sync.Mutex
	r  Rand
}

func NewIDMinter(prefix string, r Rand) *IDMinter {
	if prefix == "" {
		prefix = DefaultLoadIDPrefix
	}
	return &IDMinter{prefix: prefix, r: r}
}

func (m *IDMinter) Mint() string {
	m.mu.Lock()
	n := 10000 + m.r.Intn(90000)
	m.mu.Unlock()
	return fmt.Sprintf("%s-%05d", m.prefix, n)
}
