package codec

import (
	"fmt"

	"github.com/golang/snappy"
)

type snappyCodec struct{}

func (snappyCodec) Name() string { return string(Snappy) }

func (snappyCodec) Encode(text string) (string, error) {
	return armor(snappy.Encode(nil, []byte(text))), nil
}

func (snappyCodec) Decode(stored string) (string, error) {
	data, err := unarmor(stored)
	if err != nil {
		return "", err
	}
	plain, err := snappy.Decode(nil, data)
	if err != nil {
		return "", fmt.Errorf("%w: snappy: %v", ErrMalformed, err)
	}
	return utf8Text(plain)
}
