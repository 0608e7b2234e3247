package session

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// Locks serializes work per session id using a fixed set of striped mutexes.
// Two sessions may share a stripe; that only costs concurrency.
type Locks struct {
	stripes [lockStripes]sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{}
}

func (l *Locks) Lock(sessionID string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
