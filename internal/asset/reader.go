package asset

import "github.com/hytalecompat/gameserver/internal/wire"

// Reader is a forward-only cursor over a decoded (already decompressed)
// packet body, mirroring Writer's encode-side primitives.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

func (r *Reader) Remaining() int { return len(r.buf) - r.off }
func (r *Reader) Off() int       { return r.off }

func (r *Reader) Uint8() (uint8, error) {
	v, next, err := wire.ReadUint8(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Bool() (bool, error) {
	v, next, err := wire.ReadBool(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Uint16() (uint16, error) {
	v, next, err := wire.ReadUint16(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Uint32() (uint32, error) {
	v, next, err := wire.ReadUint32(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Int32() (int32, error) {
	v, next, err := wire.ReadInt32(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Float32() (float32, error) {
	v, next, err := wire.ReadFloat32(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Float64() (float64, error) {
	v, next, err := wire.ReadFloat64(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Int64() (int64, error) {
	v, next, err := wire.ReadInt64(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Varint() (uint32, error) {
	v, next, err := wire.ReadVarint(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Varstring() (string, error) {
	v, next, err := wire.ReadVarstring(r.buf, r.off)
	r.off = next
	return v, err
}

func (r *Reader) Bytes(n int) ([]byte, error) {
	if r.off+n > len(r.buf) {
		return nil, wire.ErrVarintTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Seek jumps to an absolute offset, used when following an offset-table
// slot into the variable region.
func (r *Reader) Seek(off int) { r.off = off }

// ReadIntKeyedDict reads `varint count` then count entries, each a 4-byte
// LE key followed by readEntry's own consumption.
func ReadIntKeyedDict[T any](r *Reader, readEntry func(*Reader) (T, error)) ([]IntEntry[T], error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	out := make([]IntEntry[T], 0, n)
	for i := uint32(0); i < n; i++ {
		key, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		v, err := readEntry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, IntEntry[T]{Key: key, Value: v})
	}
	return out, nil
}

// ReadStringKeyedDict is ReadIntKeyedDict's string-keyed sibling.
func ReadStringKeyedDict[T any](r *Reader, readEntry func(*Reader) (T, error)) ([]StringEntry[T], error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	out := make([]StringEntry[T], 0, n)
	for i := uint32(0); i < n; i++ {
		key, err := r.Varstring()
		if err != nil {
			return nil, err
		}
		v, err := readEntry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, StringEntry[T]{Key: key, Value: v})
	}
	return out, nil
}

// ReadEnumKeyedDict is ReadIntKeyedDict's single-byte-enum-keyed sibling.
func ReadEnumKeyedDict[T any](r *Reader, readEntry func(*Reader) (T, error)) ([]EnumEntry[T], error) {
	n, err := r.Varint()
	if err != nil {
		return nil, err
	}
	out := make([]EnumEntry[T], 0, n)
	for i := uint32(0); i < n; i++ {
		key, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		v, err := readEntry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, EnumEntry[T]{Key: key, Value: v})
	}
	return out, nil
}

// NullabilityBit reports whether bit i is set in b.
func NullabilityBit(b uint8, i int) bool {
	return b&(1<<uint(i)) != 0
}
