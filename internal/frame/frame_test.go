package frame

import (
	"bytes"
	"errors"
	"testing"
)

// fakeCompressor lets the codec tests exercise the compressed path without
// a real zstd round trip, by prefixing/stripping a marker.
type fakeCompressor struct{}

func (fakeCompressor) Compress(src []byte) ([]byte, error) {
	return append([]byte("Z:"), src...), nil
}

func (fakeCompressor) Decompress(src []byte) ([]byte, error) {
	if !bytes.HasPrefix(src, []byte("Z:")) {
		return nil, errors.New("frame: missing compression marker")
	}
	return src[2:], nil
}

func TestEncodeDecodeRoundTripUncompressed(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8} // KeepAlive: fixed 8 bytes

	encoded, err := c.Encode(2, payload)
	if err != nil {
		t.Fatal(err)
	}

	decoded, next, err := c.Decode(encoded, 0)
	if err != nil {
		t.Fatal(err)
	}
	if next != len(encoded) {
		t.Fatalf("consumed %d of %d bytes", next, len(encoded))
	}
	if decoded.ID != 2 || !bytes.Equal(decoded.Payload, payload) {
		t.Fatalf("got %+v", decoded)
	}
}

func TestEncodeDecodeRoundTripCompressed(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	payload := []byte("arbitrary world-range payload data")

	encoded, err := c.Encode(160, payload)
	if err != nil {
		t.Fatal(err)
	}
	decoded, _, err := c.Decode(encoded, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.Payload, payload) {
		t.Fatalf("got %q, want %q", decoded.Payload, payload)
	}
}

func TestEncodeRejectsUnknownID(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	if _, err := c.Encode(999999, []byte{1}); err == nil {
		t.Fatal("expected error for unknown packet id")
	}
}

func TestEncodeRejectsOutOfBoundsLength(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	// KeepAlive is fixed at exactly 8 bytes.
	if _, err := c.Encode(2, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected size-bound rejection")
	}
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	encoded, err := c.Encode(2, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatal(err)
	}
	truncated := encoded[:len(encoded)-2]
	if _, _, err := c.Decode(truncated, 0); err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestDecodeMultipleFramesSequentially(t *testing.T) {
	c := NewCodec(fakeCompressor{})
	a, _ := c.Encode(2, []byte{1, 1, 1, 1, 1, 1, 1, 1})
	b, _ := c.Encode(3, []byte{2, 2, 2, 2})
	buf := append(append([]byte{}, a...), b...)

	first, off, err := c.Decode(buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != 2 {
		t.Fatalf("first id = %d", first.ID)
	}
	second, off2, err := c.Decode(buf, off)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != 3 || off2 != len(buf) {
		t.Fatalf("second = %+v, off2 = %d", second, off2)
	}
}
