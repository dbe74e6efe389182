package policy

import (
	"sort"
	"sync"
	"time"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// Resolved is the effective policy of one call. When no field was overridden
// it points at the shared default, which must be treated as read-only.
type Resolved[T any] struct {
	p      *T
	custom bool
}

// Policy returns the effective policy.
func (r Resolved[T]) Policy() *T { return r.p }

// Overridden reports whether the policy is a private copy.
func (r Resolved[T]) Overridden() bool { return r.custom }

type setter[T any] func(p *T, v any) error

// category owns the lazily built default of one policy family and the table of
// fields a caller may override.
type category[T any] struct {
	name   Category
	once   sync.Once
	def    *T
	build  func() T
	fields map[string]setter[T]
}

func (c *category[T]) defaultPolicy() *T {
	c.once.Do(func() {
		d := c.build()
		c.def = &d
	})
	return c.def
}

func (c *category[T]) resolve(base *T, overrides map[string]any) (Resolved[T], error) {
	if base == nil {
		base = c.defaultPolicy()
	}
	if len(overrides) == 0 {
		return Resolved[T]{p: base}, nil
	}

	cp := *base
	for _, name := range sortedKeys(overrides) {
		set, ok := c.fields[name]
		if !ok {
			return Resolved[T]{}, kverrors.Newf(kverrors.InvalidArgError, "unknown %s policy field %q", c.name, name).
				WithDetail("category", string(c.name)).
				WithDetail("field", name)
		}
		if err := set(&cp, overrides[name]); err != nil {
			return Resolved[T]{}, kverrors.Wrap(err, kverrors.InvalidArgError, "invalid "+string(c.name)+" policy field "+name).
				WithDetail("field", name)
		}
	}
	return Resolved[T]{p: &cp, custom: true}, nil
}

// fieldNames lists the overridable fields, sorted.
func (c *category[T]) fieldNames() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 1 {
		for k := range m {
			return []string{k}
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	readCategory = &category[Read]{
		name:   CategoryRead,
		build:  defaultRead,
		fields: baseFields(func(p *Read) *Base { return &p.Base }),
	}
	writeCategory = &category[Write]{
		name:   CategoryWrite,
		build:  defaultWrite,
		fields: writeFields(),
	}
	batchCategory = &category[Batch]{
		name:   CategoryBatch,
		build:  defaultBatch,
		fields: batchFields(),
	}
	queryCategory = &category[Query]{
		name:   CategoryQuery,
		build:  defaultQuery,
		fields: queryFields(),
	}
	adminCategory = &category[Admin]{
		name:  CategoryAdmin,
		build: defaultAdmin,
		fields: map[string]setter[Admin]{
			"timeout": durationField(func(p *Admin) *time.Duration { return &p.Timeout }),
		},
	}
	infoCategory = &category[Info]{
		name:  CategoryInfo,
		build: defaultInfo,
		fields: map[string]setter[Info]{
			"timeout": durationField(func(p *Info) *time.Duration { return &p.Timeout }),
		},
	}
)

// DefaultRead returns the shared read default.
func DefaultRead() *Read { return readCategory.defaultPolicy() }

// DefaultWrite returns the shared write default.
func DefaultWrite() *Write { return writeCategory.defaultPolicy() }

// DefaultBatch returns the shared batch default.
func DefaultBatch() *Batch { return batchCategory.defaultPolicy() }

// DefaultQuery returns the shared query default.
func DefaultQuery() *Query { return queryCategory.defaultPolicy() }

// DefaultAdmin returns the shared admin default.
func DefaultAdmin() *Admin { return adminCategory.defaultPolicy() }

// DefaultInfo returns the shared info default.
func DefaultInfo() *Info { return infoCategory.defaultPolicy() }

// ResolveRead overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveRead(base *Read, overrides map[string]any) (Resolved[Read], error) {
	return readCategory.resolve(base, overrides)
}

// ResolveWrite overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveWrite(base *Write, overrides map[string]any) (Resolved[Write], error) {
	return writeCategory.resolve(base, overrides)
}

// ResolveBatch overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveBatch(base *Batch, overrides map[string]any) (Resolved[Batch], error) {
	return batchCategory.resolve(base, overrides)
}

// ResolveQuery overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveQuery(base *Query, overrides map[string]any) (Resolved[Query], error) {
	return queryCategory.resolve(base, overrides)
}

// ResolveAdmin overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveAdmin(base *Admin, overrides map[string]any) (Resolved[Admin], error) {
	return adminCategory.resolve(base, overrides)
}

// ResolveInfo overlays overrides onto base, or onto the shared default when
// base is nil.
func ResolveInfo(base *Info, overrides map[string]any) (Resolved[Info], error) {
	return infoCategory.resolve(base, overrides)
}

// Fields lists the overridable field names of a category.
func Fields(c Category) []string {
	switch c {
	case CategoryRead:
		return readCategory.fieldNames()
	case CategoryWrite:
		return writeCategory.fieldNames()
	case CategoryBatch:
		return batchCategory.fieldNames()
	case CategoryQuery:
		return queryCategory.fieldNames()
	case CategoryAdmin:
		return adminCategory.fieldNames()
	case CategoryInfo:
		return infoCategory.fieldNames()
	default:
		return nil
	}
}

// ApplyMeta applies record metadata to a write policy: "gen" sets the expected
// generation (switching the generation policy to EQ when it was GenIgnore) and
// "ttl" sets the TTL. The shared default is never modified.
func ApplyMeta(r Resolved[Write], meta map[string]any) (Resolved[Write], error) {
	if len(meta) == 0 {
		return r, nil
	}
	cp := *r.p
	for _, name := range sortedKeys(meta) {
		v := meta[name]
		switch name {
		case "gen":
			g, err := toInt64(v)
			if err != nil || g < 0 || g > int64(^uint32(0)) {
				return Resolved[Write]{}, kverrors.Newf(kverrors.InvalidArgError, "meta gen must be a uint32, got %v", v)
			}
			cp.Generation = uint32(g)
			if cp.Gen == GenIgnore {
				cp.Gen = GenEQ
			}
		case "ttl":
			ttl, err := toTTL(v)
			if err != nil {
				return Resolved[Write]{}, kverrors.Wrap(err, kverrors.InvalidArgError, "invalid meta ttl")
			}
			cp.TTL = ttl
		default:
			return Resolved[Write]{}, kverrors.Newf(kverrors.InvalidArgError, "unknown meta field %q", name).
				WithDetail("field", name)
		}
	}
	return Resolved[Write]{p: &cp, custom: true}, nil
}
