package protocol

import (
	"errors"
	"math"
)

// EventType identifies the type of client event.
type EventType uint8

const (
	EventClick     EventType = 0x01
	EventChange    EventType = 0x11
	EventSubmit    EventType = 0x12
	EventDragOver  EventType = 0x50
	EventDragLeave EventType = 0x51
	EventDrop      EventType = 0x52
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	switch et {
	case EventClick:
		return "Click"
	case EventChange:
		return "Change"
	case EventSubmit:
		return "Submit"
	case EventDragOver:
		return "DragOver"
	case EventDragLeave:
		return "DragLeave"
	case EventDrop:
		return "Drop"
	default:
		return "Unknown"
	}
}

// HasFiles reports whether events of this type carry a file list.
func (et EventType) HasFiles() bool {
	return et == EventChange || et == EventDrop
}

// FileInfo describes one file reported by the client.
type FileInfo struct {
	Name   string
	Size   uint64
	Type   string
	TempID string
}

// SizeInt64 returns Size as an int64. Sizes beyond math.MaxInt64 clamp to
// it, so they still exceed every size limit.
func (f FileInfo) SizeInt64() int64 {
	if f.Size > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f.Size)
}

// Event is a decoded client event.
type Event struct {
	Seq    uint64
	Type   EventType
	Target string
	Files  []FileInfo // Change and Drop only
}

// Event encoding errors.
var (
	ErrInvalidEventType = errors.New("protocol: invalid event type")
	ErrInvalidPayload   = errors.New("protocol: invalid event payload")
)

// EncodeEvent encodes an event to bytes.
func EncodeEvent(e *Event) []byte {
	enc := NewEncoder()
	EncodeEventTo(enc, e)
	return enc.Bytes()
}

// EncodeEventTo encodes an event using the provided encoder.
func EncodeEventTo(enc *Encoder, e *Event) {
	enc.WriteUvarint(e.Seq)
	enc.WriteByte(byte(e.Type))
	enc.WriteString(e.Target)

	if !e.Type.HasFiles() {
		return
	}
	enc.WriteUvarint(uint64(len(e.Files)))
	for _, f := range e.Files {
		enc.WriteString(f.Name)
		enc.WriteUvarint(f.Size)
		enc.WriteString(f.Type)
		enc.WriteString(f.TempID)
	}
}

// DecodeEvent decodes an event payload. The payload must be consumed
// exactly.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	e, err := DecodeEventFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return e, nil
}

// DecodeEventFrom decodes an event from a decoder.
func DecodeEventFrom(d *Decoder) (*Event, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	tb, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	et := EventType(tb)
	if et.String() == "Unknown" {
		return nil, ErrInvalidEventType
	}
	target, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if target == "" {
		return nil, ErrInvalidPayload
	}

	e := &Event{Seq: seq, Type: et, Target: target}
	if !et.HasFiles() {
		return e, nil
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	e.Files = make([]FileInfo, count)
	for i := range e.Files {
		f := &e.Files[i]
		if f.Name, err = d.ReadString(); err != nil {
			return nil, err
		}
		if f.Size, err = d.ReadUvarint(); err != nil {
			return nil, err
		}
		if f.Type, err = d.ReadString(); err != nil {
			return nil, err
		}
		if f.TempID, err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	return e, nil
}
