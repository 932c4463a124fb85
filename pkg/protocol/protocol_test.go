package protocol

import (
	"bytes"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"
)

func TestEventRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
	}{
		{"click", &Event{Seq: 1, Type: EventClick, Target: "dz"}},
		{"drag over", &Event{Seq: 2, Type: EventDragOver, Target: "dz"}},
		{"drag leave", &Event{Seq: 3, Type: EventDragLeave, Target: "dz"}},
		{"submit", &Event{Seq: 300, Type: EventSubmit, Target: "dz-form"}},
		{"drop", &Event{Seq: 4, Type: EventDrop, Target: "dz", Files: []FileInfo{
			{Name: "cat.png", Size: 2 * 1024 * 1024, Type: "image/png", TempID: "a1"},
			{Name: "dog.gif", Size: 10, Type: "image/gif"},
		}}},
		{"change empty", &Event{Seq: 5, Type: EventChange, Target: "dz-input", Files: []FileInfo{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent(EncodeEvent(tt.event))
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.event) {
				t.Errorf("round trip = %+v, want %+v", got, tt.event)
			}
		})
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	valid := EncodeEvent(&Event{Seq: 1, Type: EventDrop, Target: "dz", Files: []FileInfo{{Name: "a.png", Size: 1, Type: "image/png"}}})

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, io.ErrUnexpectedEOF},
		{"unknown type", []byte{0x01, 0x99, 0x01, 'x'}, ErrInvalidEventType},
		{"empty target", []byte{0x01, byte(EventClick), 0x00}, ErrInvalidPayload},
		{"truncated files", valid[:len(valid)-2], io.ErrUnexpectedEOF},
		{"trailing bytes", append(append([]byte{}, valid...), 0x00), ErrTrailingBytes},
		{"too many files", []byte{0x01, byte(EventDrop), 0x02, 'd', 'z', 0xFF, 0xFF, 0x03}, ErrCollectionTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("DecodeEvent() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPatchesRoundTrip(t *testing.T) {
	pf := &PatchesFrame{
		Seq: 7,
		Patches: []Patch{
			NewSetTextPatch("dz-name", "cat.png"),
			NewSetAttrPatch("dz-img", "src", "data:image/png;base64,AA=="),
			NewRemoveAttrPatch("dz-preview", "hidden"),
			NewSetValuePatch("dz-temp", ""),
			NewAddClassPatch("dz", "dragover"),
			NewRemoveClassPatch("dz", "dragover"),
			NewDispatchPatch("dz-input", "click"),
		},
	}

	got, err := DecodePatches(EncodePatches(pf))
	if err != nil {
		t.Fatalf("DecodePatches() error = %v", err)
	}
	if !reflect.DeepEqual(got, pf) {
		t.Errorf("round trip = %+v, want %+v", got, pf)
	}
}

func TestDecodePatchesRejectsUnknownOp(t *testing.T) {
	if _, err := DecodePatches([]byte{0x01, 0x01, 0x7F, 0x01, 'x'}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestFrame(t *testing.T) {
	payload := []byte{1, 2, 3}
	data, err := NewFrame(FrameEvent, payload).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x03, 1, 2, 3}; !reflect.DeepEqual(data, want) {
		t.Errorf("Encode() = %v, want %v", data, want)
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if f.Type != FrameEvent || !reflect.DeepEqual(f.Payload, payload) {
		t.Errorf("DecodeFrame() = %+v", f)
	}

	if _, err := DecodeFrame(data[:5]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short frame error = %v", err)
	}
	if _, err := DecodeFrame(append(data, 9)); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("long frame error = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x09, 0, 0, 0, 0, 0}); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("bad type error = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x02, 0, 0xFF, 0xFF, 0xFF, 0xFF}); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversize header error = %v", err)
	}
}

func TestFrameLargePayload(t *testing.T) {
	payload := bytes.Repeat([]byte{'a'}, 3<<20)
	data, err := NewFrame(FramePatches, payload).Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if len(data) != FrameHeaderSize+len(payload) {
		t.Fatalf("encoded length = %d, want %d", len(data), FrameHeaderSize+len(payload))
	}

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame() error: %v", err)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatal("payload changed in round trip")
	}
}

func TestControlRoundTrip(t *testing.T) {
	for _, c := range []*Control{
		NewPing(1700000000000),
		NewPong(42),
		NewClose(CloseServerShutdown, "bye"),
	} {
		got, err := DecodeControl(EncodeControl(c))
		if err != nil {
			t.Fatalf("DecodeControl(%v) error = %v", c.Type, err)
		}
		if !reflect.DeepEqual(got, c) {
			t.Errorf("round trip = %+v, want %+v", got, c)
		}
	}
	if _, err := DecodeControl([]byte{0x55}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("unknown control error = %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	em := NewFatalError(ErrRateLimited, "slow down")
	got, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, em) {
		t.Errorf("round trip = %+v, want %+v", got, em)
	}
	if em.Error() != "protocol: RateLimited: slow down" {
		t.Errorf("Error() = %q", em.Error())
	}
	if _, err := DecodeErrorMessage([]byte{0, 1, 0, 2}); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("bad bool error = %v", err)
	}
}

func TestUvarint(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 16383, 16384, 1 << 40, ^uint64(0)} {
		e := NewEncoder()
		e.WriteUvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadUvarint()
		if err != nil || got != v {
			t.Errorf("uvarint %d: got %d, %v", v, got, err)
		}
	}
	overflow := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if _, err := NewDecoder(overflow).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("overflow error = %v", err)
	}
}

func TestFileInfoSizeInt64(t *testing.T) {
	tests := []struct {
		size uint64
		want int64
	}{
		{0, 0},
		{10485760, 10485760},
		{math.MaxInt64, math.MaxInt64},
		{1 << 63, math.MaxInt64},
		{math.MaxUint64, math.MaxInt64},
	}
	for _, tt := range tests {
		if got := (FileInfo{Size: tt.size}).SizeInt64(); got != tt.want {
			t.Errorf("SizeInt64(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}
