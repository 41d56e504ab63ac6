package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// SchemaVersion tags every envelope so scripted consumers can detect changes.
const SchemaVersion = "v1"

// recoverableError mirrors models.RecoverableError without importing models.
type recoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// aggregateError is satisfied by errors that carry several independent
// failures (models.MultipleVersionErrors).
type aggregateError interface {
	error
	Messages() []string
}

// Envelope is what every --json command prints.
type Envelope struct {
	SchemaVersion   string            `json:"schema_version"`
	Success         bool              `json:"success"`
	Data            any               `json:"data,omitempty"`
	Error           string            `json:"error,omitempty"`
	Errors          []string          `json:"errors,omitempty"`
	ErrorCode       string            `json:"error_code,omitempty"`
	ErrorContext    map[string]string `json:"error_context,omitempty"`
	SuggestedAction string            `json:"suggested_action,omitempty"`
}

// Success wraps data.
func Success(data any) Envelope {
	return Envelope{SchemaVersion: SchemaVersion, Success: true, Data: data}
}

// Error wraps err. Recoverable errors add their code, context and suggested
// action; aggregates list every item.
func Error(err error) Envelope {
	env := Envelope{SchemaVersion: SchemaVersion, Error: err.Error()}
	var re recoverableError
	if errors.As(err, &re) {
		env.ErrorCode = re.ErrorCode()
		env.ErrorContext = re.Context()
		env.SuggestedAction = re.SuggestedAction()
	}
	var agg aggregateError
	if errors.As(err, &agg) {
		env.Errors = agg.Messages()
	}
	return env
}

// Config controls how JSON is written.
type Config struct {
	Writer io.Writer
	Pretty bool
}

// DefaultConfig writes compact JSON to w. ARKHAM_PRETTY_JSON=1 (or true)
// indents it.
func DefaultConfig(w io.Writer) Config {
	v := os.Getenv("ARKHAM_PRETTY_JSON")
	return Config{Writer: w, Pretty: v == "1" || v == "true"}
}

// Write encodes v followed by a newline.
func (c Config) Write(v any) error {
	enc := json.NewEncoder(c.Writer)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// WriteSuccess writes a success envelope for data to w.
func WriteSuccess(w io.Writer, data any) error {
	return DefaultConfig(w).Write(Success(data))
}

// WriteError writes an error envelope for err to w.
func WriteError(w io.Writer, err error) error {
	return DefaultConfig(w).Write(Error(err))
}
