// Package record holds the data model shared by the client, the columnar codec
// and the storage backends: keys, record metadata, records and batch entries.
package record

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the cluster's digest is defined as RIPEMD-160

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/value"
)

// DigestSize is the length of a key digest in bytes.
const DigestSize = 20

// Particle types used when hashing a user key.
const (
	particleInteger byte = 1
	particleString  byte = 3
	particleBlob    byte = 4
)

// Key identifies a record. The digest is always present; UserKey is nil when
// the key was built from a digest alone.
type Key struct {
	Namespace string
	Set       string
	UserKey   value.Value
	Digest    [DigestSize]byte
}

// NewKey builds a key from a host user key. Only integers, strings and byte
// slices are valid user keys.
func NewKey(namespace, set string, userKey any) (Key, error) {
	if namespace == "" {
		return Key{}, kverrors.New(kverrors.InvalidArgError, "key namespace must not be empty")
	}
	if userKey == nil {
		return Key{}, kverrors.New(kverrors.InvalidArgError, "user key must not be nil; use NewDigestKey for digest-only keys")
	}
	uk, err := value.Encode(userKey)
	if err != nil {
		return Key{}, err
	}
	digest, err := ComputeDigest(set, uk)
	if err != nil {
		return Key{}, err
	}
	return Key{Namespace: namespace, Set: set, UserKey: uk, Digest: digest}, nil
}

// NewDigestKey builds a key that carries only a digest.
func NewDigestKey(namespace, set string, digest []byte) (Key, error) {
	if namespace == "" {
		return Key{}, kverrors.New(kverrors.InvalidArgError, "key namespace must not be empty")
	}
	if len(digest) != DigestSize {
		return Key{}, kverrors.Newf(kverrors.InvalidArgError, "digest must be %d bytes, got %d", DigestSize, len(digest))
	}
	k := Key{Namespace: namespace, Set: set}
	copy(k.Digest[:], digest)
	return k, nil
}

// MustKey is NewKey for statically known keys; it panics on error.
func MustKey(namespace, set string, userKey any) Key {
	k, err := NewKey(namespace, set, userKey)
	if err != nil {
		panic(err)
	}
	return k
}

// ComputeDigest hashes set name, particle type and key bytes with RIPEMD-160.
func ComputeDigest(set string, userKey value.Value) ([DigestSize]byte, error) {
	var out [DigestSize]byte
	h := ripemd160.New()
	h.Write([]byte(set))

	switch uk := userKey.(type) {
	case value.Int:
		var buf [9]byte
		buf[0] = particleInteger
		binary.BigEndian.PutUint64(buf[1:], uint64(uk))
		h.Write(buf[:])
	case value.String:
		h.Write([]byte{particleString})
		h.Write([]byte(uk))
	case value.Blob:
		h.Write([]byte{particleBlob})
		h.Write(uk)
	default:
		return out, kverrors.Newf(kverrors.InvalidArgError, "user key must be int, string or bytes, got %s", userKey.Type())
	}

	copy(out[:], h.Sum(nil))
	return out, nil
}

// HasUserKey reports whether the original user key is retained.
func (k Key) HasUserKey() bool {
	return k.UserKey != nil
}

// DigestHex renders the digest as lowercase hex.
func (k Key) DigestHex() string {
	return hex.EncodeToString(k.Digest[:])
}

// String renders the key for logs.
func (k Key) String() string {
	if k.UserKey != nil {
		return k.Namespace + ":" + k.Set + ":" + keyText(k.UserKey)
	}
	return k.Namespace + ":" + k.Set + ":" + k.DigestHex()
}

func keyText(v value.Value) string {
	switch x := v.(type) {
	case value.String:
		return string(x)
	case value.Blob:
		return hex.EncodeToString(x)
	default:
		if d, ok := value.Decode(v).(int64); ok {
			return formatInt(d)
		}
		return "<" + v.Type().String() + ">"
	}
}
