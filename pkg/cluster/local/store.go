package local

import (
	"bytes"
	"sort"
	"sync"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/record"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// StoredRecord is the persisted form of a record.
type StoredRecord struct {
	Digest [record.DigestSize]byte
	Set    string
	// UserKey is set only when the record was written with the send-key policy.
	UserKey    value.Value
	Bins       value.BinMap
	Generation uint32
	// ExpiresAt is zero for records that never expire.
	ExpiresAt time.Time
	// TTL is the lifetime granted by the last write, in seconds.
	TTL        int32
	LastUpdate time.Time
	// Orders holds the ordering attribute of list and map bins.
	Orders map[string]int
}

func (r *StoredRecord) clone() *StoredRecord {
	c := *r
	c.Bins = r.Bins.Clone()
	if r.Orders != nil {
		c.Orders = make(map[string]int, len(r.Orders))
		for k, v := range r.Orders {
			c.Orders[k] = v
		}
	}
	return &c
}

func (r *StoredRecord) expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Store persists records by namespace and digest. Implementations must be safe
// for concurrent use; the cluster serializes writes to one record itself.
type Store interface {
	// Get returns nil, nil when the record does not exist.
	Get(namespace string, digest [record.DigestSize]byte) (*StoredRecord, error)
	Put(namespace string, rec *StoredRecord) error
	// Delete reports whether the record existed.
	Delete(namespace string, digest [record.DigestSize]byte) (bool, error)
	// Scan calls fn for every record of the namespace in digest order until fn
	// returns false.
	Scan(namespace string, fn func(*StoredRecord) bool) error
	Namespaces() ([]string, error)
	Close() error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[[record.DigestSize]byte]*StoredRecord
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{namespaces: make(map[string]map[[record.DigestSize]byte]*StoredRecord)}
}

func (s *MemoryStore) Get(namespace string, digest [record.DigestSize]byte) (*StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.namespaces[namespace][digest]
	if !ok {
		return nil, nil
	}
	return rec.clone(), nil
}

func (s *MemoryStore) Put(namespace string, rec *StoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[[record.DigestSize]byte]*StoredRecord)
		s.namespaces[namespace] = ns
	}
	ns[rec.Digest] = rec.clone()
	return nil
}

func (s *MemoryStore) Delete(namespace string, digest [record.DigestSize]byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := s.namespaces[namespace]
	if _, ok := ns[digest]; !ok {
		return false, nil
	}
	delete(ns, digest)
	return true, nil
}

func (s *MemoryStore) Scan(namespace string, fn func(*StoredRecord) bool) error {
	s.mu.RLock()
	recs := make([]*StoredRecord, 0, len(s.namespaces[namespace]))
	for _, rec := range s.namespaces[namespace] {
		recs = append(recs, rec.clone())
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		return bytes.Compare(recs[i].Digest[:], recs[j].Digest[:]) < 0
	})
	for _, rec := range recs {
		if !fn(rec) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Namespaces() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.namespaces))
	for ns := range s.namespaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
