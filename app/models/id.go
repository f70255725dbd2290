package models

import (
	"sync"
	"time"
)

// IDGenerator hands out record ids derived from the current time in
// milliseconds. Ids are strictly increasing within one generator even when
// several are requested in the same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator reading the given clock. A nil clock uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

var defaultIDs = NewIDGenerator(nil)

// NewRecordID returns an id from the process-wide generator.
func NewRecordID() int64 {
	return defaultIDs.Next()
}
