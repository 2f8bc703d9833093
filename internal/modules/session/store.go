// README: In-memory session store keyed by driver; every mutation runs inside a per-driver critical section.
package session

import (
	"sync"
	"time"

	"payguard/internal/types"
)

// Store is the single point of truth for in-progress tracking periods.
// Callers never touch the map or a session directly: mutations go through
// apply (a per-driver atomic read-modify-write) and reads get copies, so
// concurrent ride and online-time events for one driver cannot interleave.
type Store struct {
	mu      sync.RWMutex
	entries map[types.ID]*entry
	now     func() time.Time
}

type entry struct {
	mu sync.Mutex
	// detached marks an entry pulled out of the map by a reset. A writer
	// that grabbed the pointer before the reset retries on a fresh entry
	// instead of updating the discarded period.
	detached bool
	session  DriverSession
}

func NewStore() *Store {
	return &Store{entries: make(map[types.ID]*entry), now: time.Now}
}

func (s *Store) getOrCreate(driverID types.ID) *entry {
	s.mu.RLock()
	e, ok := s.entries[driverID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[driverID]; ok {
		return e
	}
	e = &entry{session: DriverSession{DriverID: driverID, StartedAt: s.now()}}
	s.entries[driverID] = e
	return e
}

// apply runs fn against the driver's session under its entry lock. If fn
// returns an error the session keeps its prior value.
func (s *Store) apply(driverID types.ID, fn func(*DriverSession) error) error {
	for {
		e := s.getOrCreate(driverID)
		e.mu.Lock()
		if e.detached {
			e.mu.Unlock()
			continue
		}
		working := e.session
		working.Adjustments = append([]RideAdjustment(nil), e.session.Adjustments...)
		err := fn(&working)
		if err == nil {
			e.session = working
		}
		e.mu.Unlock()
		return err
	}
}

// get returns a copy of the driver's session, reporting whether one exists.
func (s *Store) get(driverID types.ID) (DriverSession, bool) {
	s.mu.RLock()
	e, ok := s.entries[driverID]
	s.mu.RUnlock()
	if !ok {
		return DriverSession{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.session
	out.Adjustments = append([]RideAdjustment(nil), e.session.Adjustments...)
	return out, true
}

// detach atomically closes the driver's tracking period: the entry leaves
// the map and is marked dead, so events arriving from here on accumulate in
// a fresh session. Returns the closed period's final state.
func (s *Store) detach(driverID types.ID) (DriverSession, bool) {
	s.mu.Lock()
	e, ok := s.entries[driverID]
	if ok {
		delete(s.entries, driverID)
	}
	s.mu.Unlock()
	if !ok {
		return DriverSession{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.detached = true
	out := e.session
	out.Adjustments = append([]RideAdjustment(nil), e.session.Adjustments...)
	return out, true
}

// restore folds a detached period back in after a failed archive. Events may
// have opened a fresh session in the meantime; the two periods merge.
func (s *Store) restore(sess DriverSession) {
	_ = s.apply(sess.DriverID, func(cur *DriverSession) error {
		if sess.StartedAt.Before(cur.StartedAt) {
			cur.StartedAt = sess.StartedAt
		}
		cur.TotalEarnings = types.RoundCents(cur.TotalEarnings + sess.TotalEarnings)
		cur.TotalOnlineMinutes += sess.TotalOnlineMinutes
		cur.TotalWaitingMinutes += sess.TotalWaitingMinutes
		cur.TotalRideAdjustments = types.RoundCents(cur.TotalRideAdjustments + sess.TotalRideAdjustments)
		cur.TotalHourlyAdjustments = types.RoundCents(cur.TotalHourlyAdjustments + sess.TotalHourlyAdjustments)
		cur.RidesCompleted += sess.RidesCompleted
		cur.Adjustments = append(append([]RideAdjustment(nil), sess.Adjustments...), cur.Adjustments...)
		return nil
	})
}
