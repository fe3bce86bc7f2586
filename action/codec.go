package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/xraph/asyncjobs"
)

// Codec serializes actions for action logs.
type Codec interface {
	// Encode serializes one action.
	Encode(a Action) ([]byte, error)

	// Decode deserializes one action.
	Decode(data []byte) (Action, error)

	// NewDecoder returns a decoder reading a stream of encoded actions.
	NewDecoder(r io.Reader) Decoder

	// Name returns the codec identifier ("json" or "msgpack").
	Name() string
}

// Decoder reads successive actions from a stream. Decode returns io.EOF
// once the stream is exhausted.
type Decoder interface {
	Decode() (Action, error)
}

// CodecName constants for log format selection.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. An empty name selects JSON.
func GetCodec(name string) (Codec, error) {
	switch name {
	case CodecNameJSON, "":
		return &JSONCodec{}, nil
	case CodecNameMsgpack:
		return &MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", asyncjobs.ErrUnknownCodec, name)
	}
}

// Record is the wire form of an action. Payloads travel as raw JSON in
// both encodings so they survive a round trip unchanged.
type Record struct {
	Type    string          `json:"type" msgpack:"type"`
	ID      string          `json:"id,omitempty" msgpack:"id,omitempty"`
	Name    string          `json:"name,omitempty" msgpack:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty" msgpack:"payload,omitempty"`
	At      int64           `json:"at,omitempty" msgpack:"at,omitempty"`
}

// ToRecord converts a to its wire form. Error payloads are stored as their
// message.
func ToRecord(a Action) (Record, error) {
	rec := Record{Type: a.Type, ID: a.ID, Name: a.Name, At: a.At}
	if a.Payload == nil {
		return rec, nil
	}

	var v any = a.Payload
	switch p := a.Payload.(type) {
	case json.RawMessage:
		rec.Payload = p
		return rec, nil
	case error:
		v = fmt.Sprint(p)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode payload of %s: %w", a.Type, err)
	}
	rec.Payload = raw
	return rec, nil
}

// FromRecord converts a wire record back to an action. The payload, when
// present, is a json.RawMessage. A record without a name takes the name
// encoded in its type.
func FromRecord(rec Record) Action {
	a := Action{Type: rec.Type, ID: rec.ID, Name: rec.Name, At: rec.At}
	if a.Name == "" {
		if _, name, ok := ParseType(rec.Type); ok {
			a.Name = name
		}
	}
	if len(rec.Payload) > 0 {
		a.Payload = rec.Payload
	}
	return a
}

// ReadAll decodes every action from r.
func ReadAll(r io.Reader, c Codec) ([]Action, error) {
	dec := c.NewDecoder(r)
	var out []Action
	for {
		a, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("decode %s action %d: %w", c.Name(), len(out), err)
		}
		out = append(out, a)
	}
}

// WriteAll encodes actions to w one after another.
func WriteAll(w io.Writer, c Codec, actions []Action) error {
	for i, a := range actions {
		data, err := c.Encode(a)
		if err != nil {
			return fmt.Errorf("encode %s action %d: %w", c.Name(), i, err)
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}
