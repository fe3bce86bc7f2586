package action

import (
	"encoding/json"
	"io"
)

// JSONCodec encodes actions as newline-terminated JSON objects.
type JSONCodec struct{}

func (c *JSONCodec) Encode(a Action) ([]byte, error) {
	rec, err := ToRecord(a)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c *JSONCodec) Decode(data []byte) (Action, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Action{}, err
	}
	return FromRecord(rec), nil
}

func (c *JSONCodec) NewDecoder(r io.Reader) Decoder {
	return &jsonDecoder{dec: json.NewDecoder(r)}
}

func (c *JSONCodec) Name() string { return CodecNameJSON }

type jsonDecoder struct {
	dec *json.Decoder
}

func (d *jsonDecoder) Decode() (Action, error) {
	var rec Record
	if err := d.dec.Decode(&rec); err != nil {
		return Action{}, err
	}
	return FromRecord(rec), nil
}
