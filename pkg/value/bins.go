package value

import "github.com/ajitpratap0/kvbridge/pkg/kverrors"

// MaxBinNameLength is the longest bin name the server accepts.
const MaxBinNameLength = 15

// BinMap holds the bins of one record.
type BinMap map[string]Value

// EncodeBins encodes a host bin mapping. Bin names longer than
// MaxBinNameLength fail with kverrors.BinNameError.
func EncodeBins(bins map[string]any) (BinMap, error) {
	out := make(BinMap, len(bins))
	for name, v := range bins {
		if err := CheckBinName(name); err != nil {
			return nil, err
		}
		ev, err := encode(v, "bins."+name)
		if err != nil {
			return nil, err
		}
		out[name] = ev
	}
	return out, nil
}

// DecodeBins decodes every bin into its host representation.
func DecodeBins(bins BinMap) map[string]any {
	if bins == nil {
		return nil
	}
	out := make(map[string]any, len(bins))
	for name, v := range bins {
		out[name] = Decode(v)
	}
	return out
}

// CheckBinName validates a bin name.
func CheckBinName(name string) error {
	if len(name) > MaxBinNameLength {
		return kverrors.Newf(kverrors.BinNameError, "bin name %q is longer than %d bytes", name, MaxBinNameLength).
			WithDetail("bin", name)
	}
	return nil
}

// Clone returns a shallow copy of the bin map.
func (b BinMap) Clone() BinMap {
	if b == nil {
		return nil
	}
	out := make(BinMap, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
