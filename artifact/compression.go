package artifact

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the encoding of a stored class file.
type Compression uint8

const (
	// CompressionNone is a plain ".class" file.
	CompressionNone Compression = iota
	// CompressionZSTD is a zstd frame stored as ".class.zst".
	CompressionZSTD
	// CompressionLZ4 is an lz4 frame stored as ".class.lz4".
	CompressionLZ4
)

// Suffix returns the file name suffix of c.
func (c Compression) Suffix() string {
	switch c {
	case CompressionZSTD:
		return ".class.zst"
	case CompressionLZ4:
		return ".class.lz4"
	default:
		return ".class"
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// compressions in lookup order.
var compressions = []Compression{CompressionNone, CompressionZSTD, CompressionLZ4}

// CompressionOf returns the compression implied by a file name.
func CompressionOf(name string) (Compression, bool) {
	for _, c := range compressions {
		if strings.HasSuffix(name, c.Suffix()) {
			return c, true
		}
	}
	return CompressionNone, false
}

var zstdDecoderPool sync.Pool

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// Decompress decodes data stored with c.
func Decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("artifact: zstd: %w", err)
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("artifact: lz4: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("artifact: unknown compression %d", c)
}
