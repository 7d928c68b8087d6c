// Package cipher provides the classical substitution ciphers and the Base64
// codec used by CryptoLab, plus a registry that lets them be chained.
//
// # Primitives
//
//	out := cipher.Caesar("Hello, World!", 3, true) // "Khoor, Zruog!"
//	back := cipher.Caesar(out, 3, false)
//
//	enc, _ := cipher.Vigenere("attack at dawn", "LEMON", true) // "lxfopv ef rnhr"
//
//	b64 := cipher.Base64Encode("Hello")       // "SGVsbG8="
//	text, err := cipher.Base64Decode(b64)     // err is *errdefs.DecodeError on bad input
//
// Only ASCII letters are shifted by Caesar and Vigenère; every other rune is
// copied unchanged, so decrypt(encrypt(x)) == x for all UTF-8 text.
//
// # Pipelines
//
// Operations are looked up by name in a Registry:
//
//	reg := cipher.NewDefaultRegistry()
//	pipeline := &cipher.Pipeline{
//	    Operations: []cipher.OperationConfig{
//	        {Name: "caesar_encrypt", Parameters: map[string]interface{}{"shift": 5}},
//	        {Name: "base64_encode"},
//	    },
//	}
//	encoded, _ := pipeline.Execute(ctx, reg, []byte("test"))
//
//	reversed, _ := pipeline.Reverse(reg)
//	decoded, _ := reversed.Execute(ctx, reg, encoded)
//
// # Available Operations
//
//   - caesar_encrypt/decrypt - param shift (default 3)
//   - vigenere_encrypt/decrypt - param key (default "KEY", must not be empty)
//   - base64_encode/decode - standard padded alphabet
//
// # Thread Safety
//
// Registries are safe for concurrent use. Operations are stateless.
package cipher
