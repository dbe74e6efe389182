// Package columnar moves batch results between records and packed row
// buffers without going through the general value codec.
//
// A Descriptor lays out one row: every field has a primitive kind, a byte
// width and an offset inside a row of Stride bytes. Decode writes the bins of
// a batch read straight into such a buffer; Encode turns a buffer back into
// batch writes. Only fixed-width numbers and fixed-length byte blocks can be
// described; text and host objects are rejected before any row is touched.
//
// Field names starting with an underscore are reserved. They never become
// bins. On write, "_namespace" and "_set" fields override the namespace and
// set of their row.
package columnar

import (
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
)

// Reserved field names.
const (
	ReservedPrefix = "_"
	FieldNamespace = "_namespace"
	FieldSet       = "_set"
)

// Kind is the primitive type of a field.
type Kind int

const (
	SignedInt Kind = iota
	UnsignedInt
	Float
	FixedBytes
	RawBytes
	// Text and Object can be declared by hosts but are always rejected.
	Text
	Object
)

func (k Kind) String() string {
	switch k {
	case SignedInt:
		return "int"
	case UnsignedInt:
		return "uint"
	case Float:
		return "float"
	case FixedBytes:
		return "fixed_bytes"
	case RawBytes:
		return "raw_bytes"
	case Text:
		return "text"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one column of a row.
type Field struct {
	Name   string
	Kind   Kind
	Width  int
	Offset int
}

// Reserved reports whether the field is excluded from bins.
func (f Field) Reserved() bool {
	return len(f.Name) > 0 && f.Name[:1] == ReservedPrefix
}

// Descriptor is the layout of one row.
type Descriptor struct {
	Fields []Field
	Stride int
}

// Layout packs fields back to back in declaration order and sets the stride
// to the total width. Offsets given in fields are ignored.
func Layout(fields ...Field) *Descriptor {
	d := &Descriptor{Fields: make([]Field, len(fields))}
	for i, f := range fields {
		f.Offset = d.Stride
		d.Fields[i] = f
		d.Stride += f.Width
	}
	return d
}

// Validate checks the descriptor. Text and Object fields fail with
// kverrors.UnsupportedColumnType; every other problem is an InvalidArgError.
func (d *Descriptor) Validate() error {
	if d == nil || len(d.Fields) == 0 {
		return kverrors.New(kverrors.InvalidArgError, "descriptor has no fields")
	}
	if d.Stride <= 0 {
		return kverrors.Newf(kverrors.InvalidArgError, "row stride must be positive, got %d", d.Stride)
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return kverrors.New(kverrors.InvalidArgError, "field name must not be empty")
		}
		if _, dup := seen[f.Name]; dup {
			return kverrors.Newf(kverrors.InvalidArgError, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if err := checkWidth(f); err != nil {
			return err
		}
		if f.Offset < 0 || f.Offset+f.Width > d.Stride {
			return kverrors.Newf(kverrors.InvalidArgError,
				"field %q at offset %d with width %d does not fit a %d byte row", f.Name, f.Offset, f.Width, d.Stride)
		}
	}
	return nil
}

func checkWidth(f Field) error {
	switch f.Kind {
	case SignedInt, UnsignedInt:
		switch f.Width {
		case 1, 2, 4, 8:
			return nil
		}
	case Float:
		switch f.Width {
		case 2, 4, 8:
			return nil
		}
	case FixedBytes, RawBytes:
		if f.Width >= 1 {
			return nil
		}
	case Text, Object:
		return kverrors.Newf(kverrors.UnsupportedColumnType,
			"field %q has kind %s; only numbers and fixed-length bytes are supported", f.Name, f.Kind)
	default:
		return kverrors.Newf(kverrors.UnsupportedColumnType, "field %q has unknown kind %d", f.Name, int(f.Kind))
	}
	return kverrors.Newf(kverrors.InvalidArgError, "field %q: width %d is not valid for %s", f.Name, f.Width, f.Kind)
}

// Field returns the field called name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Without returns a copy of the descriptor without the named fields. Offsets
// and stride are kept so the copy reads the same buffer.
func (d *Descriptor) Without(names ...string) *Descriptor {
	out := &Descriptor{Stride: d.Stride}
	for _, f := range d.Fields {
		drop := false
		for _, n := range names {
			if f.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

func (d *Descriptor) byName() map[string]Field {
	m := make(map[string]Field, len(d.Fields))
	for _, f := range d.Fields {
		m[f.Name] = f
	}
	return m
}
