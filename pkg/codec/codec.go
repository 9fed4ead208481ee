package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Algorithm names a codec.
type Algorithm string

const (
	Base64 Algorithm = "base64"
	Snappy Algorithm = "snappy"
	Zstd   Algorithm = "zstd"
)

// ErrMalformed is returned when encoded text cannot be decoded.
var ErrMalformed = errors.New("codec: malformed input")

// Codec encodes text for storage and decodes it back.
type Codec interface {
	// Encode transforms text into its stored form.
	Encode(text string) (string, error)
	// Decode reverses Encode.
	Decode(stored string) (string, error)
	// Name returns the codec identifier used for diagnostics.
	Name() string
}

// New returns the codec for alg. An empty alg selects Base64.
func New(alg Algorithm) (Codec, error) {
	switch Algorithm(strings.ToLower(string(alg))) {
	case "", Base64:
		return base64Codec{}, nil
	case Snappy:
		return snappyCodec{}, nil
	case Zstd:
		return newZstdCodec()
	default:
		return nil, fmt.Errorf("codec: unknown algorithm %q", alg)
	}
}

// Algorithms lists the supported codec names.
func Algorithms() []Algorithm {
	return []Algorithm{Base64, Snappy, Zstd}
}

func armor(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func unarmor(stored string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return data, nil
}

// utf8Text rejects decoded bytes that are not valid UTF-8.
func utf8Text(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: decoded text is not valid UTF-8", ErrMalformed)
	}
	return string(data), nil
}

type base64Codec struct{}

func (base64Codec) Name() string { return string(Base64) }

func (base64Codec) Encode(text string) (string, error) {
	return armor([]byte(text)), nil
}

func (base64Codec) Decode(stored string) (string, error) {
	data, err := unarmor(stored)
	if err != nil {
		return "", err
	}
	return utf8Text(data)
}
