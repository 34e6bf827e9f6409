// Package asset implements the generic serializer core shared by every
// asset-update packet: the nullability bit field, the int-keyed/
// string-keyed dictionary emitters, and the offset-table builder used by
// packets with more than one variable-length tail field.
//
// Every asset-update packet body begins with the same envelope: a one-byte
// nullability bit field, a one-byte update Type, an optional 4-byte max_id
// (int-keyed variants only), a packet-specific fixed
// block, an optional offset table, and a variable region. This package
// builds that envelope generically; internal/asset/updates supplies the
// per-packet fixed-block bytes and per-entry serialize callbacks.
package asset

import (
	"errors"

	"github.com/hytalecompat/gameserver/internal/wire"
)

// UpdateType is the first-byte discriminator of every asset-update packet
// (after the nullability bit field).
type UpdateType uint8

const (
	UpdateInit   UpdateType = 0
	UpdatePatch  UpdateType = 1
	UpdateRemove UpdateType = 2
)

// Errors mirror the wire-level encoding taxonomy.
var (
	ErrOverflow = errors.New("asset: offset exceeds 31 bits")
	ErrTooLarge = errors.New("asset: value exceeds packet's declared maximum size")
)

// Writer accumulates a packet body. It is a thin wrapper over a byte slice;
// zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity hinted by capHint.
func NewWriter(capHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Uint8(v uint8)     { w.buf = wire.AppendUint8(w.buf, v) }
func (w *Writer) Bool(v bool)       { w.buf = wire.AppendBool(w.buf, v) }
func (w *Writer) Uint16(v uint16)   { w.buf = wire.AppendUint16(w.buf, v) }
func (w *Writer) Uint32(v uint32)   { w.buf = wire.AppendUint32(w.buf, v) }
func (w *Writer) Int32(v int32)     { w.buf = wire.AppendInt32(w.buf, v) }
func (w *Writer) Uint64(v uint64)   { w.buf = wire.AppendUint64(w.buf, v) }
func (w *Writer) Int64(v int64)     { w.buf = wire.AppendInt64(w.buf, v) }
func (w *Writer) Float32(v float32) { w.buf = wire.AppendFloat32(w.buf, v) }
func (w *Writer) Float64(v float64) { w.buf = wire.AppendFloat64(w.buf, v) }
func (w *Writer) Varint(v uint32)   { w.buf = wire.AppendVarint(w.buf, v) }
func (w *Writer) Varstring(s string) { w.buf = wire.AppendVarstring(w.buf, s) }
func (w *Writer) UUID(u wire.UUID)  { w.buf = append(w.buf, u[:]...) }
func (w *Writer) Raw(b []byte)      { w.buf = append(w.buf, b...) }

// OffsetTable reserves n*4 bytes for a table of signed little-endian
// offsets, recording where each slot lives so WriteOffset can patch it
// later. varBlockStart is the Writer length at the moment the variable
// region begins (i.e. right after the table is reserved) — patched offsets
// are measured from there.
type OffsetTable struct {
	slots         []int // byte offset into w.buf of each reserved slot
	varBlockStart int
	fieldStart    int // writer length where the next field's bytes begin
}

// BeginOffsetTable reserves n offset slots (each -1, "absent") at the
// writer's current position and returns a handle for patching them once
// the variable region has been written.
func (w *Writer) BeginOffsetTable(n int) *OffsetTable {
	ot := &OffsetTable{slots: make([]int, n)}
	for i := 0; i < n; i++ {
		ot.slots[i] = len(w.buf)
		w.Int32(-1)
	}
	ot.varBlockStart = len(w.buf)
	ot.fieldStart = ot.varBlockStart
	return ot
}

// SetPresent patches slot with the offset, measured from the table's
// var-block start, at which the field just written begins: the var-block
// start for the first field, otherwise the end of the previously patched
// field. Call immediately after writing that field's bytes, with present
// fields written one after another into the variable region; fails with
// ErrOverflow if the resulting offset would exceed 31 bits (i.e. doesn't
// fit in a positive int32).
func (w *Writer) SetPresent(ot *OffsetTable, slot int) error {
	offset := ot.fieldStart - ot.varBlockStart
	if offset < 0 || offset > 0x7fffffff {
		return ErrOverflow
	}
	wire.PutInt32(w.buf, ot.slots[slot], int32(offset))
	ot.fieldStart = len(w.buf)
	return nil
}

// NullabilityBits packs up to 8 boolean flags into the one-byte nullability
// bit field that precedes every asset-update packet body (bit i indicates
// presence of the i-th optional top-level field).
func NullabilityBits(present ...bool) uint8 {
	var b uint8
	for i, p := range present {
		if p {
			b |= 1 << uint(i)
		}
	}
	return b
}

// IntEntry and StringEntry pair a key with the caller's opaque entry value,
// used by the int-keyed and string-keyed dictionary emitters below.
type IntEntry[T any] struct {
	Key   uint32
	Value T
}

type StringEntry[T any] struct {
	Key   string
	Value T
}

// EnumEntry is the third dictionary key flavor: a single-byte enum
// discriminator (e.g. UpdateUnarmedInteractions' InteractionType key).
type EnumEntry[T any] struct {
	Key   uint8
	Value T
}

// SerializeIntKeyedDict appends `varint count` followed by each entry as
// `uint32 key` + the caller's serialized body, honoring the
// present-but-empty vs. absent emptiness discipline at the call site:
// this function always writes the count (the caller decides whether to
// call it at all based on presence).
func SerializeIntKeyedDict[T any](w *Writer, entries []IntEntry[T], serializeEntry func(*Writer, T)) {
	w.Varint(uint32(len(entries)))
	for _, e := range entries {
		w.Uint32(e.Key)
		serializeEntry(w, e.Value)
	}
}

// SerializeStringKeyedDict is SerializeIntKeyedDict's string-keyed sibling:
// each entry is prefixed with a varstring key rather than a 4-byte int key.
func SerializeStringKeyedDict[T any](w *Writer, entries []StringEntry[T], serializeEntry func(*Writer, T)) {
	w.Varint(uint32(len(entries)))
	for _, e := range entries {
		w.Varstring(e.Key)
		serializeEntry(w, e.Value)
	}
}

// SerializeEnumKeyedDict is the single-byte-enum-keyed sibling, used by
// packets like UpdateUnarmedInteractions whose dictionary key is a 1-byte
// InteractionType rather than a uint32 or varstring.
func SerializeEnumKeyedDict[T any](w *Writer, entries []EnumEntry[T], serializeEntry func(*Writer, T)) {
	w.Varint(uint32(len(entries)))
	for _, e := range entries {
		w.Uint8(e.Key)
		serializeEntry(w, e.Value)
	}
}

// WriteInlineOptionalDict writes nothing when present is false (absent: no
// nullability contribution from the caller's perspective — the caller
// still must fold `present` into its NullabilityBits call). When present is
// true, it always writes the varint count, even if entries is empty (a
// present-but-empty dict still needs its count written:
// present-but-empty still yields a zero count, not an omitted field).
func WriteInlineOptionalDict[T any](w *Writer, present bool, entries []T, writeDict func(*Writer, []T)) {
	if !present {
		return
	}
	writeDict(w, entries)
}

// WriteOffsetTableField writes one field of an offset-table-layout packet:
// if present, it writes the field's dict bytes into the variable region and
// patches the corresponding slot; if absent, the slot is left at its
// reserved -1 sentinel and nothing is written to the variable region. The
// slot is always reserved by BeginOffsetTable regardless of presence —
// both slots absent still costs 2*4 bytes.
func WriteOffsetTableField[T any](w *Writer, ot *OffsetTable, slot int, present bool, entries []T, writeDict func(*Writer, []T)) error {
	if !present {
		return nil
	}
	writeDict(w, entries)
	return w.SetPresent(ot, slot)
}
