package local

import (
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/ajitpratap0/kvbridge/pkg/compression"
	"github.com/ajitpratap0/kvbridge/pkg/record"
)

// BoltStore persists records in a bbolt file, one bucket per namespace.
// Record payloads are tagged JSON, compressed and framed with the algorithm
// that wrote them.
type BoltStore struct {
	db         *bolt.DB
	compressor compression.Compressor
}

// OpenBoltStore opens or creates the database at path. A nil config uses
// compression.DefaultConfig.
func OpenBoltStore(path string, config *compression.Config) (*BoltStore, error) {
	comp, err := compression.NewCompressor(config)
	if err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}
	return &BoltStore{db: db, compressor: comp}, nil
}

func (s *BoltStore) Get(namespace string, digest [record.DigestSize]byte) (*StoredRecord, error) {
	var rec *StoredRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil {
			return nil
		}
		data := bkt.Get(digest[:])
		if data == nil {
			return nil
		}
		var err error
		rec, err = s.decode(digest[:], data)
		return err
	})
	return rec, err
}

func (s *BoltStore) Put(namespace string, rec *StoredRecord) error {
	payload, err := marshalRecord(rec)
	if err != nil {
		return err
	}
	framed, err := compression.Frame(s.compressor, payload)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bkt.Put(rec.Digest[:], framed)
	})
}

func (s *BoltStore) Delete(namespace string, digest [record.DigestSize]byte) (bool, error) {
	existed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil || bkt.Get(digest[:]) == nil {
			return nil
		}
		existed = true
		return bkt.Delete(digest[:])
	})
	return existed, err
}

// Scan decodes the namespace inside one read transaction. bbolt keeps keys in
// byte order, so records arrive in digest order.
func (s *BoltStore) Scan(namespace string, fn func(*StoredRecord) bool) error {
	var recs []*StoredRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(namespace))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			rec, err := s.decode(k, v)
			if err != nil {
				return err
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if !fn(rec) {
			break
		}
	}
	return nil
}

func (s *BoltStore) Namespaces() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	sort.Strings(out)
	return out, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) decode(digest, data []byte) (*StoredRecord, error) {
	payload, err := compression.Unframe(data)
	if err != nil {
		return nil, err
	}
	return unmarshalRecord(digest, payload)
}
