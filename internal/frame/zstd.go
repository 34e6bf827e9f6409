package frame

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor is the default Compressor, backed by
// github.com/klauspost/compress/zstd. Encoder and decoder are built lazily
// and reused; both are safe for concurrent use, but a Codec wrapping this
// is only as concurrency-safe as the registry lookups around it.
type ZstdCompressor struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	initErr error
}

// NewZstdCompressor returns a Compressor backed by the default Zstd
// encoder/decoder pair.
func NewZstdCompressor() *ZstdCompressor { return &ZstdCompressor{} }

func (z *ZstdCompressor) init() {
	z.once.Do(func() {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			z.initErr = fmt.Errorf("frame: build zstd encoder: %w", err)
			return
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			z.initErr = fmt.Errorf("frame: build zstd decoder: %w", err)
			return
		}
		z.encoder = enc
		z.decoder = dec
	})
}

func (z *ZstdCompressor) Compress(src []byte) ([]byte, error) {
	z.init()
	if z.initErr != nil {
		return nil, z.initErr
	}
	return z.encoder.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func (z *ZstdCompressor) Decompress(src []byte) ([]byte, error) {
	z.init()
	if z.initErr != nil {
		return nil, z.initErr
	}
	return z.decoder.DecodeAll(src, nil)
}
