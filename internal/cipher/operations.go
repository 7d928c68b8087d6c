package cipher

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/cryptolab/internal/errdefs"
)

// Base64Encode encodes the UTF-8 bytes of text with the padded standard alphabet.
func Base64Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Base64Decode decodes a padded standard Base64 string. Surrounding
// whitespace is ignored. Malformed input or a payload that is not valid UTF-8
// returns a *errdefs.DecodeError.
func Base64Decode(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", &errdefs.DecodeError{Reason: "invalid base64 input", Err: err}
	}
	if !utf8.Valid(decoded) {
		return "", &errdefs.DecodeError{Reason: "decoded bytes are not valid UTF-8"}
	}
	return string(decoded), nil
}

// Base64EncodeOp encodes text as standard Base64
type Base64EncodeOp struct {
	BaseOperation
}

func (op *Base64EncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(Base64Encode(string(input))), nil
}

// Base64DecodeOp decodes standard Base64 into UTF-8 text
type Base64DecodeOp struct {
	BaseOperation
}

func (op *Base64DecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	decoded, err := Base64Decode(string(input))
	if err != nil {
		return nil, err
	}
	return []byte(decoded), nil
}
