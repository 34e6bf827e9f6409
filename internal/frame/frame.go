// Package frame implements the wire frame codec: each frame is
// {id: varint, length: varint, payload: bytes[length]}, with the payload
// either a raw encoded packet or a Zstd-compressed byte stream depending on
// the registry descriptor's compressed flag.
package frame

import (
	"errors"
	"fmt"

	"github.com/hytalecompat/gameserver/internal/registry"
	"github.com/hytalecompat/gameserver/internal/wire"
)

// ErrUnknownPacketID is returned when a frame's id has no registry entry.
var ErrUnknownPacketID = errors.New("frame: unknown packet id")

// ErrSizeOutOfBounds is returned when a decoded payload's length falls
// outside the descriptor's [min_size, max_size] bounds.
var ErrSizeOutOfBounds = errors.New("frame: decoded length outside descriptor bounds")

// ErrTruncated is returned when buf ends before a declared length is
// satisfied.
var ErrTruncated = errors.New("frame: truncated frame")

// Compressor is the seam between the frame codec and whatever Zstd
// implementation backs it; swapping implementations never touches this
// package's framing logic.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

// Frame is one decoded wire frame: an id, and its decompressed payload.
type Frame struct {
	ID      uint32
	Payload []byte
}

// Codec encodes and decodes frames, consulting registry for codec
// selection (compressed vs raw) and size-bound validation.
type Codec struct {
	compressor Compressor
}

// NewCodec builds a Codec backed by compressor, used whenever a
// descriptor's Compressed flag is set.
func NewCodec(compressor Compressor) *Codec {
	return &Codec{compressor: compressor}
}

// Encode looks up id's descriptor, validates payload's length against it,
// compresses payload if the descriptor calls for it, and returns the
// complete wire frame (id, length, wire-payload).
func (c *Codec) Encode(id uint32, payload []byte) ([]byte, error) {
	d, ok := registry.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPacketID, id)
	}
	if !d.Validate(len(payload)) {
		return nil, fmt.Errorf("%w: packet %s (id %d): length %d not in [%d, %d]", ErrSizeOutOfBounds, d.Name, id, len(payload), d.MinSize, d.MaxSize)
	}

	wirePayload := payload
	if d.Compressed {
		compressed, err := c.compressor.Compress(payload)
		if err != nil {
			return nil, fmt.Errorf("frame: compress packet %s: %w", d.Name, err)
		}
		wirePayload = compressed
	}

	out := wire.AppendVarint(nil, id)
	out = wire.AppendVarint(out, uint32(len(wirePayload)))
	out = append(out, wirePayload...)
	return out, nil
}

// Decode reads one frame from buf starting at offset off: the id, the
// wire-encoded length, and that many payload bytes, decompressing when the
// descriptor calls for it and validating the decoded length against
// [min_size, max_size]. Returns the decoded Frame and the offset of the
// first byte after it.
func (c *Codec) Decode(buf []byte, off int) (Frame, int, error) {
	id, next, err := wire.ReadVarint(buf, off)
	if err != nil {
		return Frame{}, 0, fmt.Errorf("frame: read id: %w", err)
	}
	length, next, err := wire.ReadVarint(buf, next)
	if err != nil {
		return Frame{}, 0, fmt.Errorf("frame: read length: %w", err)
	}
	if next+int(length) > len(buf) {
		return Frame{}, 0, ErrTruncated
	}
	wirePayload := buf[next : next+int(length)]
	next += int(length)

	d, ok := registry.Lookup(id)
	if !ok {
		return Frame{}, 0, fmt.Errorf("%w: %d", ErrUnknownPacketID, id)
	}

	payload := wirePayload
	if d.Compressed {
		decompressed, err := c.compressor.Decompress(wirePayload)
		if err != nil {
			return Frame{}, 0, fmt.Errorf("frame: decompress packet %s: %w", d.Name, err)
		}
		payload = decompressed
	}
	if !d.Validate(len(payload)) {
		return Frame{}, 0, fmt.Errorf("%w: packet %s (id %d): length %d not in [%d, %d]", ErrSizeOutOfBounds, d.Name, id, len(payload), d.MinSize, d.MaxSize)
	}

	return Frame{ID: id, Payload: payload}, next, nil
}
