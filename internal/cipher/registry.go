package cipher

import (
	"fmt"
	"sort"
	"sync"
)

// Registry indexes operations by name. The zero value is not usable; call
// NewRegistry or NewDefaultRegistry.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Operation
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// NewDefaultRegistry returns a registry holding the Caesar, Vigenère and
// Base64 operations.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, op := range builtinOperations() {
		if err := r.Register(op); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds an operation to the registry
func (r *Registry) Register(op Operation) error {
	if op == nil {
		return fmt.Errorf("cannot register nil operation")
	}

	name := op.Name()
	if name == "" {
		return fmt.Errorf("operation name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("operation %s is already registered", name)
	}

	r.ops[name] = op
	return nil
}

// Get retrieves an operation by name
func (r *Registry) Get(name string) (Operation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, exists := r.ops[name]
	return op, exists
}

// List returns all registered operations sorted by name
func (r *Registry) List() []Operation {
	return r.filter(func(Operation) bool { return true })
}

// ListByType returns operations of the given type sorted by name
func (r *Registry) ListByType(opType OperationType) []Operation {
	return r.filter(func(op Operation) bool { return op.Type() == opType })
}

func (r *Registry) filter(keep func(Operation) bool) []Operation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ops := make([]Operation, 0, len(r.ops))
	for _, op := range r.ops {
		if keep(op) {
			ops = append(ops, op)
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		return ops[i].Name() < ops[j].Name()
	})

	return ops
}

func builtinOperations() []Operation {
	caesarEnc := &CaesarOp{
		BaseOperation: BaseOperation{
			NameValue:        "caesar_encrypt",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "Shift letters forward by a fixed amount (param: shift, default 3)",
		},
		encrypt: true,
	}
	caesarDec := &CaesarOp{
		BaseOperation: BaseOperation{
			NameValue:        "caesar_decrypt",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "Shift letters back by a fixed amount (param: shift, default 3)",
		},
	}
	link(&caesarEnc.BaseOperation, &caesarDec.BaseOperation, caesarEnc, caesarDec)

	vigenereEnc := &VigenereOp{
		BaseOperation: BaseOperation{
			NameValue:        "vigenere_encrypt",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "Polyalphabetic shift driven by a repeating key (param: key, default KEY)",
		},
		encrypt: true,
	}
	vigenereDec := &VigenereOp{
		BaseOperation: BaseOperation{
			NameValue:        "vigenere_decrypt",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "Invert a Vigenère shift driven by a repeating key (param: key, default KEY)",
		},
	}
	link(&vigenereEnc.BaseOperation, &vigenereDec.BaseOperation, vigenereEnc, vigenereDec)

	base64Enc := &Base64EncodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "base64_encode",
			TypeValue:        OperationTypeEncode,
			DescriptionValue: "Encode UTF-8 text as standard Base64",
		},
	}
	base64Dec := &Base64DecodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "base64_decode",
			TypeValue:        OperationTypeDecode,
			DescriptionValue: "Decode standard Base64 into UTF-8 text",
		},
	}
	link(&base64Enc.BaseOperation, &base64Dec.BaseOperation, base64Enc, base64Dec)

	return []Operation{caesarEnc, caesarDec, vigenereEnc, vigenereDec, base64Enc, base64Dec}
}
