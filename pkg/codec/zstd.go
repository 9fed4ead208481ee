package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// The encoder and decoder are stateless for EncodeAll/DecodeAll and safe
// for concurrent use, so one pair serves every codec instance.
var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func initZstd() {
	zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if zstdErr != nil {
		return
	}
	zstdDecoder, zstdErr = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	zstdOnce.Do(initZstd)
	if zstdErr != nil {
		return nil, fmt.Errorf("codec: init zstd: %w", zstdErr)
	}
	return &zstdCodec{enc: zstdEncoder, dec: zstdDecoder}, nil
}

func (c *zstdCodec) Name() string { return string(Zstd) }

func (c *zstdCodec) Encode(text string) (string, error) {
	return armor(c.enc.EncodeAll([]byte(text), nil)), nil
}

func (c *zstdCodec) Decode(stored string) (string, error) {
	data, err := unarmor(stored)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}
	plain, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: zstd: %v", ErrMalformed, err)
	}
	return utf8Text(plain)
}
