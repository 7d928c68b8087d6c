package service

import (
	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/cipher"
)

// TextRequest carries the text for the analysis operations.
type TextRequest struct {
	Text string `json:"text"`
}

// CaesarRequest asks for a Caesar shift. Shift defaults to 3 and Action to "encrypt".
type CaesarRequest struct {
	Text   string `json:"text"`
	Shift  *int   `json:"shift,omitempty"`
	Action string `json:"action,omitempty"`
}

// VigenereRequest asks for a Vigenère transform. Key defaults to "KEY".
type VigenereRequest struct {
	Text   string  `json:"text"`
	Key    *string `json:"key,omitempty"`
	Action string  `json:"action,omitempty"`
}

// Base64Request asks for Base64 transcoding. Action defaults to "encode".
type Base64Request struct {
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
}

// PatternsRequest asks for repeated substrings. Bounds default to 3 and 10.
type PatternsRequest struct {
	Text      string `json:"text"`
	MinLength *int   `json:"min_length,omitempty"`
	MaxLength *int   `json:"max_length,omitempty"`
}

// PipelineRequest chains registered operations over Text. With Reverse set
// the inverse pipeline is run instead.
type PipelineRequest struct {
	Text       string                   `json:"text"`
	Operations []cipher.OperationConfig `json:"operations"`
	Reverse    bool                     `json:"reverse,omitempty"`
}

// ResultResponse wraps the output of a transform.
type ResultResponse struct {
	Result string `json:"result"`
}

// EntropyResponse wraps an entropy value.
type EntropyResponse struct {
	Entropy float64 `json:"entropy"`
}

// PatternsResponse wraps a pattern report.
type PatternsResponse struct {
	Patterns analysis.PatternReport `json:"patterns"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// OperationInfo describes a registered pipeline operation.
type OperationInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Reversible  bool   `json:"reversible"`
}

// ErrorResponse is the body returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
