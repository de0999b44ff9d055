package recordstore

import (
	"sync"

	"verimix/protocol"
)

// RecordStore describes the primitives of a simple in-memory store of
// shuffle records, keyed by run ID. Records have no persistence
// requirement; the store only keeps the runs of one session (demo, bench)
// reachable for later spot-checks.
type RecordStore interface {
	// Get returns nil if not found
	Get(id string) *protocol.Record

	Set(rec *protocol.Record)

	Delete(id string)

	Exists(id string) bool

	Len() int

	GetAll() []*protocol.Record

	// Calls the function on each record. Aborts if the function returns
	// false.
	ForEach(func(rec *protocol.Record) bool)
}

// New returns an empty in-memory store.
func New() RecordStore {
	return &store{
		data: make(map[string]*protocol.Record),
	}
}

// store implements an in-memory store.
type store struct {
	sync.Mutex
	data map[string]*protocol.Record
}

// Get implements recordstore.RecordStore
func (s *store) Get(id string) *protocol.Record {
	s.Lock()
	defer s.Unlock()

	return s.data[id]
}

// Set implements recordstore.RecordStore
func (s *store) Set(rec *protocol.Record) {
	s.Lock()
	defer s.Unlock()

	s.data[rec.ID] = rec
}

// Delete implements recordstore.RecordStore
func (s *store) Delete(id string) {
	s.Lock()
	defer s.Unlock()

	delete(s.data, id)
}

// Exists implements recordstore.RecordStore
func (s *store) Exists(id string) bool {
	s.Lock()
	defer s.Unlock()

	_, ok := s.data[id]
	return ok
}

// Len implements recordstore.RecordStore
func (s *store) Len() int {
	s.Lock()
	defer s.Unlock()

	return len(s.data)
}

// GetAll implements recordstore.RecordStore
func (s *store) GetAll() []*protocol.Record {
	s.Lock()
	defer s.Unlock()

	records := make([]*protocol.Record, 0, len(s.data))
	for _, rec := range s.data {
		records = append(records, rec)
	}
	return records
}

// ForEach implements recordstore.RecordStore
func (s *store) ForEach(f func(rec *protocol.Record) bool) {
	s.Lock()
	defer s.Unlock()

	for _, rec := range s.data {
		cont := f(rec)
		if !cont {
			return
		}
	}
}
