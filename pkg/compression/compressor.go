// Package compression compresses stored record payloads.
//
// Every algorithm implements Compressor. Frame and Unframe prefix a payload
// with a one-byte algorithm tag so that data written under one setting stays
// readable after the setting changes:
//
//	comp, err := compression.NewCompressor(&compression.Config{Algorithm: compression.Zstd})
//	framed, err := compression.Frame(comp, payload)
//	payload, err = compression.Unframe(framed)
//
// Speed (fastest to slowest): LZ4 > Snappy/S2 > Zstd > Gzip/Deflate.
// Ratio (best to worst): Zstd > Gzip/Deflate > Snappy/S2 > LZ4.
package compression

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/kvbridge/pkg/pool"
)

// Algorithm names a compression algorithm.
type Algorithm string

const (
	None    Algorithm = "none"
	Gzip    Algorithm = "gzip"
	Snappy  Algorithm = "snappy"
	LZ4     Algorithm = "lz4"
	Zstd    Algorithm = "zstd"
	S2      Algorithm = "s2"
	Deflate Algorithm = "deflate"
)

// Level trades speed for ratio.
type Level int

const (
	Fastest Level = 1
	Default Level = 5
	Better  Level = 7
	Best    Level = 9
)

func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Default:
		return "default"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "unknown"
	}
}

// Compressor compresses and decompresses whole payloads. Implementations are
// safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Algorithm() Algorithm
	Level() Level
}

// Config selects the algorithm and level.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm"`
	Level     Level     `yaml:"level"`
}

// DefaultConfig favours speed: Snappy at the default level.
func DefaultConfig() *Config {
	return &Config{Algorithm: Snappy, Level: Default}
}

// NewCompressor builds the compressor for config, or for DefaultConfig when
// config is nil.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	level := config.Level
	if level == 0 {
		level = Default
	}
	base := baseCompressor{algorithm: config.Algorithm, level: level}

	switch config.Algorithm {
	case None, "":
		base.algorithm = None
		return &noneCompressor{base}, nil
	case Gzip:
		return newGzipCompressor(base), nil
	case Snappy:
		return &snappyCompressor{base}, nil
	case LZ4:
		return &lz4Compressor{baseCompressor: base, compressionLevel: mapLZ4Level(level)}, nil
	case Zstd:
		return newZstdCompressor(base), nil
	case S2:
		return &s2Compressor{base}, nil
	case Deflate:
		return &deflateCompressor{baseCompressor: base, flateLevel: mapDeflateLevel(level)}, nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
}

var buffers = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// drain copies the pooled buffer into a right-sized slice.
func drain(b *bytes.Buffer) []byte {
	out := make([]byte, b.Len())
	copy(out, b.Bytes())
	return out
}

type baseCompressor struct {
	algorithm Algorithm
	level     Level
}

func (bc *baseCompressor) Algorithm() Algorithm { return bc.algorithm }

func (bc *baseCompressor) Level() Level { return bc.level }

type noneCompressor struct {
	baseCompressor
}

func (nc *noneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (nc *noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

type gzipCompressor struct {
	baseCompressor
	writerPool sync.Pool
	readerPool sync.Pool
}

func newGzipCompressor(base baseCompressor) *gzipCompressor {
	level := mapGzipLevel(base.level)
	gc := &gzipCompressor{baseCompressor: base}
	gc.writerPool.New = func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, level)
		return w
	}
	gc.readerPool.New = func() interface{} {
		return new(gzip.Reader)
	}
	return gc
}

func (gc *gzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return drain(buf), nil
}

func (gc *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r := gc.readerPool.Get().(*gzip.Reader)
	defer gc.readerPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	buf := buffers.Get()
	defer buffers.Put(buf)

	if _, err := io.Copy(buf, r); err != nil { //nolint:gosec // payloads are written by this process
		return nil, err
	}
	return drain(buf), nil
}

type snappyCompressor struct {
	baseCompressor
}

func (sc *snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (sc *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

type lz4Compressor struct {
	baseCompressor
	compressionLevel lz4.CompressionLevel
}

func (lc *lz4Compressor) Compress(data []byte) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	w := lz4.NewWriter(buf)
	if err := w.Apply(lz4.CompressionLevelOption(lc.compressionLevel)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return drain(buf), nil
}

func (lc *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(data))); err != nil { //nolint:gosec // payloads are written by this process
		return nil, err
	}
	return drain(buf), nil
}

type zstdCompressor struct {
	baseCompressor
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCompressor(base baseCompressor) *zstdCompressor {
	level := mapZstdLevel(base.level)
	zc := &zstdCompressor{baseCompressor: base}
	zc.encoderPool.New = func() interface{} {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
		return enc
	}
	zc.decoderPool.New = func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	}
	return zc
}

func (zc *zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)
	return enc.EncodeAll(data, nil), nil
}

func (zc *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec := zc.decoderPool.Get().(*zstd.Decoder)
	defer zc.decoderPool.Put(dec)
	return dec.DecodeAll(data, nil)
}

// s2 is snappy compatible with a better ratio.
type s2Compressor struct {
	baseCompressor
}

func (sc *s2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (sc *s2Compressor) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

type deflateCompressor struct {
	baseCompressor
	flateLevel int
}

func (dc *deflateCompressor) Compress(data []byte) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	w, err := flate.NewWriter(buf, dc.flateLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return drain(buf), nil
}

func (dc *deflateCompressor) Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	buf := buffers.Get()
	defer buffers.Put(buf)

	if _, err := io.Copy(buf, r); err != nil { //nolint:gosec // payloads are written by this process
		return nil, err
	}
	return drain(buf), nil
}

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
