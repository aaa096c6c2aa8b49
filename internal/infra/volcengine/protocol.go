package volcengine

import (
	"encoding/binary"
	"fmt"
)

// Binary framing for the BigModel speech websocket. A frame is a 4-byte
// header (optionally extended to 8 bytes by a big-endian sequence number),
// a big-endian uint32 payload length, and the payload.
//
//	byte 0: version (high nibble) | header size in 4-byte words (low nibble)
//	byte 1: message type (high nibble) | flags (low nibble)
//	byte 2: serialization (high nibble, 1 = JSON) | compression (low nibble)
//	byte 3: reserved

const (
	protocolVersion   = 1
	serializationJSON = 0x10

	MsgFullRequest   = 1
	MsgAudioRequest  = 2
	MsgFullResponse  = 9
	MsgErrorResponse = 15

	// FlagSeq marks a frame carrying a sequence number; FlagLastSeq marks
	// the final audio frame, whose sequence is negated.
	FlagNone    = 0
	FlagSeq     = 1
	FlagLastSeq = 3
)

type Frame struct {
	Type    byte
	Flags   byte
	Seq     int32
	HasSeq  bool
	Payload []byte
}

func MarshalFrame(f Frame) []byte {
	headerWords := byte(1)
	if f.HasSeq {
		headerWords = 2
	}

	out := make([]byte, 0, int(headerWords)*4+4+len(f.Payload))
	out = append(out,
		protocolVersion<<4|headerWords,
		f.Type<<4|f.Flags,
		serializationJSON,
		0,
	)

	if f.HasSeq {
		out = binary.BigEndian.AppendUint32(out, uint32(f.Seq))
	}

	out = binary.BigEndian.AppendUint32(out, uint32(len(f.Payload)))
	return append(out, f.Payload...)
}

func UnmarshalFrame(data []byte) (Frame, error) {
	if len(data) < 8 {
		return Frame{}, fmt.Errorf("frame too short: %d bytes", len(data))
	}

	headerWords := int(data[0] & 0x0f)
	if headerWords < 1 {
		return Frame{}, fmt.Errorf("invalid header size: %d words", headerWords)
	}

	f := Frame{
		Type:  data[1] >> 4,
		Flags: data[1] & 0x0f,
	}

	offset := headerWords * 4
	if f.Flags&FlagSeq != 0 && headerWords >= 2 {
		f.Seq = int32(binary.BigEndian.Uint32(data[4:8]))
		f.HasSeq = true
	}

	if len(data) < offset+4 {
		return Frame{}, fmt.Errorf("frame truncated before payload length")
	}

	size := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	if len(data) < offset+int(size) {
		return Frame{}, fmt.Errorf("frame truncated: want %d payload bytes, have %d", size, len(data)-offset)
	}

	f.Payload = data[offset : offset+int(size)]
	return f, nil
}
