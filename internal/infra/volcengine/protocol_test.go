package volcengine

import (
	"bytes"
	"testing"
)

func TestFrame_RoundTripWithSeq(t *testing.T) {
	in := Frame{
		Type:    MsgAudioRequest,
		Flags:   FlagSeq,
		Seq:     42,
		HasSeq:  true,
		Payload: []byte("pcm chunk"),
	}

	out, err := UnmarshalFrame(MarshalFrame(in))
	if err != nil {
		t.Fatalf("UnmarshalFrame error: %v", err)
	}

	if out.Type != in.Type || out.Flags != in.Flags {
		t.Errorf("type/flags: got %d/%d, want %d/%d", out.Type, out.Flags, in.Type, in.Flags)
	}
	if !out.HasSeq || out.Seq != 42 {
		t.Errorf("seq: got %d (has=%v), want 42", out.Seq, out.HasSeq)
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("payload: got %q", out.Payload)
	}
}

func TestFrame_NegativeSeqMarksLastChunk(t *testing.T) {
	in := Frame{Type: MsgAudioRequest, Flags: FlagLastSeq, Seq: -7, HasSeq: true}

	out, err := UnmarshalFrame(MarshalFrame(in))
	if err != nil {
		t.Fatalf("UnmarshalFrame error: %v", err)
	}

	if out.Seq != -7 {
		t.Errorf("seq: got %d, want -7", out.Seq)
	}
	if out.Flags != FlagLastSeq {
		t.Errorf("flags: got %d, want %d", out.Flags, FlagLastSeq)
	}
	if len(out.Payload) != 0 {
		t.Errorf("payload: got %d bytes, want empty", len(out.Payload))
	}
}

func TestFrame_ServerResponseWithoutSeq(t *testing.T) {
	in := Frame{Type: MsgFullResponse, Flags: FlagNone, Payload: []byte(`{"result":{"text":"hello"}}`)}

	data := MarshalFrame(in)
	// One-word header: payload length sits right after the 4 header bytes.
	if data[0]&0x0f != 1 {
		t.Fatalf("header words: got %d, want 1", data[0]&0x0f)
	}

	out, err := UnmarshalFrame(data)
	if err != nil {
		t.Fatalf("UnmarshalFrame error: %v", err)
	}
	if out.HasSeq {
		t.Error("unexpected sequence number")
	}
	if !bytes.Equal(out.Payload, in.Payload) {
		t.Errorf("payload: got %q", out.Payload)
	}
}

func TestUnmarshalFrame_Truncated(t *testing.T) {
	full := MarshalFrame(Frame{Type: MsgFullRequest, Payload: []byte("0123456789")})

	for _, n := range []int{0, 4, 7, len(full) - 1} {
		if _, err := UnmarshalFrame(full[:n]); err == nil {
			t.Errorf("expected error for %d-byte prefix", n)
		}
	}
}
