package policy

import "github.com/ajitpratap0/kvbridge/pkg/kverrors"

// Set holds one base policy per category. A client resolves the overrides from
// its configuration into a Set once, at construction, and every call then
// overlays its own overrides on top.
type Set struct {
	Read  *Read
	Write *Write
	Batch *Batch
	Query *Query
	Admin *Admin
	Info  *Info
}

// NewSet resolves configuration overrides keyed by category name. Categories
// without overrides share the process-wide defaults.
func NewSet(overrides map[string]map[string]any) (*Set, error) {
	for name := range overrides {
		switch Category(name) {
		case CategoryRead, CategoryWrite, CategoryBatch, CategoryQuery, CategoryAdmin, CategoryInfo:
		default:
			return nil, kverrors.Newf(kverrors.InvalidArgError, "unknown policy category %q", name).
				WithDetail("category", name)
		}
	}

	s := &Set{}
	read, err := ResolveRead(nil, overrides[string(CategoryRead)])
	if err != nil {
		return nil, err
	}
	s.Read = read.Policy()

	write, err := ResolveWrite(nil, overrides[string(CategoryWrite)])
	if err != nil {
		return nil, err
	}
	s.Write = write.Policy()

	batch, err := ResolveBatch(nil, overrides[string(CategoryBatch)])
	if err != nil {
		return nil, err
	}
	s.Batch = batch.Policy()

	query, err := ResolveQuery(nil, overrides[string(CategoryQuery)])
	if err != nil {
		return nil, err
	}
	s.Query = query.Policy()

	admin, err := ResolveAdmin(nil, overrides[string(CategoryAdmin)])
	if err != nil {
		return nil, err
	}
	s.Admin = admin.Policy()

	info, err := ResolveInfo(nil, overrides[string(CategoryInfo)])
	if err != nil {
		return nil, err
	}
	s.Info = info.Policy()

	return s, nil
}
