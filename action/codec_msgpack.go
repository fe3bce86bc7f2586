package action

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackCodec encodes actions as a stream of MessagePack maps.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(a Action) ([]byte, error) {
	rec, err := ToRecord(a)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&rec)
}

func (c *MsgpackCodec) Decode(data []byte) (Action, error) {
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Action{}, err
	}
	return FromRecord(rec), nil
}

func (c *MsgpackCodec) NewDecoder(r io.Reader) Decoder {
	return &msgpackDecoder{dec: msgpack.NewDecoder(r)}
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }

type msgpackDecoder struct {
	dec *msgpack.Decoder
}

func (d *msgpackDecoder) Decode() (Action, error) {
	var rec Record
	if err := d.dec.Decode(&rec); err != nil {
		return Action{}, err
	}
	return FromRecord(rec), nil
}
