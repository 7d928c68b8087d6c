package cipher

import (
	"context"
	"strings"

	"github.com/RowanDark/cryptolab/internal/errdefs"
)

// Defaults used when an operation is executed without parameters.
const (
	DefaultShift = 3
	DefaultKey   = "KEY"
)

// Caesar shifts every ASCII letter of text by shift positions within its own
// case; all other runes are copied unchanged. Decryption applies -shift.
// Any integer shift is accepted and reduced modulo 26 before it is inverted,
// so decryption stays exact at the ends of the int range.
func Caesar(text string, shift int, encrypt bool) string {
	shift = mod26(shift)
	if !encrypt {
		shift = (26 - shift) % 26
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteRune(shiftLetter(r, shift))
	}
	return b.String()
}

// Vigenere applies a Vigenère substitution to text. The key is upper-cased and
// each key rune contributes a shift of r-'A'. Only ASCII letters consume a key
// rune; everything else is copied and does not advance the key.
func Vigenere(text, key string, encrypt bool) (string, error) {
	if key == "" {
		return "", errdefs.Invalid("key", "must not be empty")
	}

	keyRunes := []rune(strings.ToUpper(key))
	shifts := make([]int, len(keyRunes))
	for i, k := range keyRunes {
		s := int(k - 'A')
		if !encrypt {
			s = -s
		}
		shifts[i] = mod26(s)
	}

	var b strings.Builder
	b.Grow(len(text))
	cursor := 0
	for _, r := range text {
		if !isLetter(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(shiftLetter(r, shifts[cursor%len(shifts)]))
		cursor++
	}
	return b.String(), nil
}

// shiftLetter rotates an ASCII letter by shift (0..25) in its own case ring.
func shiftLetter(r rune, shift int) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return 'a' + (r-'a'+rune(shift))%26
	case r >= 'A' && r <= 'Z':
		return 'A' + (r-'A'+rune(shift))%26
	default:
		return r
	}
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func mod26(n int) int {
	return ((n % 26) + 26) % 26
}

// CaesarOp exposes Caesar as a pipeline operation
type CaesarOp struct {
	BaseOperation
	encrypt bool
}

func (op *CaesarOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	shift, err := intParam(params, "shift", DefaultShift)
	if err != nil {
		return nil, err
	}
	return []byte(Caesar(string(input), shift, op.encrypt)), nil
}

// VigenereOp exposes Vigenere as a pipeline operation
type VigenereOp struct {
	BaseOperation
	encrypt bool
}

func (op *VigenereOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := stringParam(params, "key", DefaultKey)
	if err != nil {
		return nil, err
	}
	out, err := Vigenere(string(input), key, op.encrypt)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
