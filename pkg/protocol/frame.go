package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes: type,
	// flags and a big-endian uint32 payload length.
	FrameHeaderSize = 6

	// MaxPayloadSize is the maximum payload size (256 MiB). A patches
	// frame carries the preview data URL, which is a third larger than
	// the image itself.
	MaxPayloadSize = 256 << 20
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameEvent   FrameType = 0x01 // Client → Server events
	FramePatches FrameType = 0x02 // Server → Client patches
	FrameControl FrameType = 0x03 // Ping, pong, close
	FrameError   FrameType = 0x05 // Error message
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameEvent:
		return "Event"
	case FramePatches:
		return "Patches"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagFinal    FrameFlags = 0x04 // Last frame in batch
	FlagPriority FrameFlags = 0x08 // High priority (skip queue)
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a protocol frame with header and payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame of the given type.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Validate checks the frame type and payload size.
func (f *Frame) Validate() error {
	switch f.Type {
	case FrameEvent, FramePatches, FrameControl, FrameError:
	default:
		return ErrInvalidFrameType
	}
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	return nil
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	length := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	binary.BigEndian.PutUint32(buf[2:FrameHeaderSize], uint32(length))
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame decodes one complete frame. The header's length must match
// the remaining bytes exactly.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}

	ft := FrameType(data[0])
	flags := FrameFlags(data[1])
	length := uint64(binary.BigEndian.Uint32(data[2:FrameHeaderSize]))

	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	body := uint64(len(data) - FrameHeaderSize)
	if body < length {
		return nil, io.ErrUnexpectedEOF
	}
	if body > length {
		return nil, ErrTrailingBytes
	}

	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:])

	f := &Frame{Type: ft, Flags: flags, Payload: payload}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
