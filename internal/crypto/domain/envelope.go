package domain

import (
	"encoding/json"
	"strings"
)

// Envelope is the persisted form of one encrypted field value.
//
// Every envelope comes from exactly one Encrypt call with its own random IV.
// Envelopes are never mutated: updating a field produces a new envelope.
type Envelope struct {
	Ciphertext string    `json:"ciphertext"`
	IV         string    `json:"iv"`
	AuthTag    string    `json:"authTag"`
	ValueType  ValueType `json:"valueType"`
	Algorithm  Algorithm `json:"algorithm"`
}

// HasShape reports whether the envelope carries the fields required to attempt decryption.
// Ciphertext may be empty: an empty string encrypts to a tag and nothing else.
func (e *Envelope) HasShape() bool {
	return e != nil && e.IV != "" && e.AuthTag != ""
}

// MarshalText serializes the envelope for storage in a text column.
func (e *Envelope) MarshalText() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// EnvelopeFromValue extracts an envelope from the shapes callers hand to the encryptor:
// Envelope, *Envelope, a decoded JSON object, or JSON text. The second return value is
// false when the value is not envelope-shaped, which callers treat as legacy plaintext.
func EnvelopeFromValue(value any) (*Envelope, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *Envelope:
		return v, v != nil && v.HasShape()
	case Envelope:
		return &v, v.HasShape()
	case map[string]any:
		return envelopeFromMap(v)
	case string:
		return ParseEnvelope(v)
	case []byte:
		return ParseEnvelope(string(v))
	case json.RawMessage:
		return ParseEnvelope(string(v))
	default:
		return nil, false
	}
}

// ParseEnvelope parses envelope JSON text. Anything that is not a JSON object with
// ciphertext, iv and authTag strings is reported as not an envelope.
func ParseEnvelope(text string) (*Envelope, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, false
	}
	return envelopeFromMap(raw)
}

func envelopeFromMap(m map[string]any) (*Envelope, bool) {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	if _, ok := m["ciphertext"].(string); !ok {
		return nil, false
	}

	env := &Envelope{
		Ciphertext: str("ciphertext"),
		IV:         str("iv"),
		AuthTag:    str("authTag"),
		ValueType:  ValueType(str("valueType")),
		Algorithm:  Algorithm(str("algorithm")),
	}
	if !env.HasShape() {
		return nil, false
	}
	return env, true
}
