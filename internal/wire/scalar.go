package wire

import (
	"encoding/binary"
	"math"
)

// AppendUint8 appends a single byte.
func AppendUint8(buf []byte, v uint8) []byte { return append(buf, v) }

// AppendBool appends a single byte: 1 for true, 0 for false.
func AppendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

// AppendUint16 appends v little-endian.
func AppendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

// AppendUint32 appends v little-endian.
func AppendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// AppendInt32 appends v little-endian, two's complement.
func AppendInt32(buf []byte, v int32) []byte {
	return AppendUint32(buf, uint32(v))
}

// AppendUint64 appends v little-endian.
func AppendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// AppendInt64 appends v little-endian, two's complement.
func AppendInt64(buf []byte, v int64) []byte {
	return AppendUint64(buf, uint64(v))
}

// AppendFloat32 appends the IEEE-754 bit pattern of v, little-endian.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendUint32(buf, math.Float32bits(v))
}

// AppendFloat64 appends the IEEE-754 bit pattern of v, little-endian.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendUint64(buf, math.Float64bits(v))
}

// AppendOffset appends a signed 32-bit little-endian offset-table slot.
// -1 encodes "absent"; any other value must be a non-negative byte offset.
func AppendOffset(buf []byte, v int32) []byte {
	return AppendInt32(buf, v)
}

// PutInt32 overwrites the 4 bytes at buf[off:off+4] with v, little-endian.
// Used to patch an offset-table slot reserved earlier by AppendInt32(-1).
func PutInt32(buf []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
}

// ReadUint8 reads a single byte at off.
func ReadUint8(buf []byte, off int) (uint8, int, error) {
	if off >= len(buf) {
		return 0, 0, ErrVarintTruncated
	}
	return buf[off], off + 1, nil
}

// ReadBool reads a single byte at off as a boolean (non-zero is true).
func ReadBool(buf []byte, off int) (bool, int, error) {
	v, next, err := ReadUint8(buf, off)
	if err != nil {
		return false, 0, err
	}
	return v != 0, next, nil
}

// ReadUint16 reads a little-endian uint16 at off.
func ReadUint16(buf []byte, off int) (uint16, int, error) {
	if off+2 > len(buf) {
		return 0, 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint16(buf[off : off+2]), off + 2, nil
}

// ReadUint32 reads a little-endian uint32 at off.
func ReadUint32(buf []byte, off int) (uint32, int, error) {
	if off+4 > len(buf) {
		return 0, 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint32(buf[off : off+4]), off + 4, nil
}

// ReadInt32 reads a little-endian, two's-complement int32 at off. Used for
// offset-table slots, where -1 means "absent".
func ReadInt32(buf []byte, off int) (int32, int, error) {
	v, next, err := ReadUint32(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return int32(v), next, nil
}

// ReadUint64 reads a little-endian uint64 at off.
func ReadUint64(buf []byte, off int) (uint64, int, error) {
	if off+8 > len(buf) {
		return 0, 0, ErrVarintTruncated
	}
	return binary.LittleEndian.Uint64(buf[off : off+8]), off + 8, nil
}

// ReadInt64 reads a little-endian, two's-complement int64 at off.
func ReadInt64(buf []byte, off int) (int64, int, error) {
	v, next, err := ReadUint64(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return int64(v), next, nil
}

// ReadFloat32 reads a little-endian IEEE-754 float32 at off.
func ReadFloat32(buf []byte, off int) (float32, int, error) {
	v, next, err := ReadUint32(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return math.Float32frombits(v), next, nil
}

// ReadFloat64 reads a little-endian IEEE-754 float64 at off.
func ReadFloat64(buf []byte, off int) (float64, int, error) {
	v, next, err := ReadUint64(buf, off)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(v), next, nil
}
