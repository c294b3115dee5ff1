package poller

import (
	"bytes"
	"encoding/json"
	"math"
)

// Response field names on the garden wire protocol.
const (
	FieldTick        = "tick"
	FieldGarden      = "garden"
	FieldNumPlants   = "numPlants"
	FieldNumWatchers = "numWatchers"
)

// payload is a decoded update body whose fields are validated one at a time,
// so earlier fields can be applied before a later one is found to be bad.
type payload map[string]json.RawMessage

func decodePayload(body []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &ProtocolError{Reason: "response body is not a JSON object", Err: err}
	}
	if p == nil {
		return nil, &ProtocolError{Reason: "response body is null"}
	}
	return p, nil
}

func (p payload) has(field string) bool {
	_, ok := p[field]
	return ok
}

// number returns field as a finite number.
func (p payload) number(field string) (float64, error) {
	raw, ok := p[field]
	if !ok {
		return 0, &ProtocolError{Field: field, Raw: "undefined", Reason: "number"}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &ProtocolError{Field: field, Raw: rawText(raw), Reason: "number", Err: err}
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ProtocolError{Field: field, Raw: rawText(raw), Reason: "number"}
	}
	return f, nil
}

// text returns field as a string.
func (p payload) text(field string) (string, error) {
	raw, ok := p[field]
	if !ok {
		return "", &ProtocolError{Field: field, Raw: "undefined", Reason: "string"}
	}
	var s string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", &ProtocolError{Field: field, Raw: "null", Reason: "string"}
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ProtocolError{Field: field, Raw: rawText(raw), Reason: "string", Err: err}
	}
	return s, nil
}

// rawText unquotes JSON strings so log lines show 'x' rather than '"x"'.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "null"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
