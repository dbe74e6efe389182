package compression

import (
	"fmt"
	"sync"
)

var tags = []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}

func tagOf(a Algorithm) (byte, bool) {
	for i, t := range tags {
		if t == a {
			return byte(i), true
		}
	}
	return 0, false
}

// Frame compresses data with c and prefixes the algorithm tag.
func Frame(c Compressor, data []byte) ([]byte, error) {
	tag, ok := tagOf(c.Algorithm())
	if !ok {
		return nil, fmt.Errorf("unsupported compression algorithm: %s", c.Algorithm())
	}
	body, err := c.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", c.Algorithm(), err)
	}
	out := make([]byte, len(body)+1)
	out[0] = tag
	copy(out[1:], body)
	return out, nil
}

var (
	decodersMu sync.Mutex
	decoders   = map[Algorithm]Compressor{}
)

// Unframe reverses Frame, whatever algorithm wrote the payload.
func Unframe(framed []byte) ([]byte, error) {
	if len(framed) == 0 {
		return nil, fmt.Errorf("empty compressed frame")
	}
	if int(framed[0]) >= len(tags) {
		return nil, fmt.Errorf("unknown compression tag %d", framed[0])
	}
	alg := tags[framed[0]]

	decodersMu.Lock()
	c, ok := decoders[alg]
	if !ok {
		var err error
		if c, err = NewCompressor(&Config{Algorithm: alg}); err != nil {
			decodersMu.Unlock()
			return nil, err
		}
		decoders[alg] = c
	}
	decodersMu.Unlock()

	out, err := c.Decompress(framed[1:])
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", alg, err)
	}
	return out, nil
}
