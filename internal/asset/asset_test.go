package asset

import (
	"bytes"
	"testing"
)

func TestOffsetTableAbsentSlotsStayNegativeOne(t *testing.T) {
	w := NewWriter(16)
	w.Uint8(NullabilityBits(false, false))
	w.Uint8(uint8(UpdateInit))
	ot := w.BeginOffsetTable(2)
	got := w.Bytes()
	want := []byte{0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	_ = ot
}

func TestOffsetTablePatchesPresentSlot(t *testing.T) {
	w := NewWriter(16)
	w.Uint8(NullabilityBits(true, false))
	w.Uint8(uint8(UpdateInit))
	ot := w.BeginOffsetTable(2)
	SerializeStringKeyedDict(w, []StringEntry[string]{{Key: "a", Value: "b"}}, func(w *Writer, v string) {
		w.Varstring(v)
	})
	if err := w.SetPresent(ot, 0); err != nil {
		t.Fatal(err)
	}

	r := NewReader(w.Bytes())
	nb, _ := r.Uint8()
	typ, _ := r.Uint8()
	slot0, _ := r.Int32()
	slot1, _ := r.Int32()
	if !NullabilityBit(nb, 0) || NullabilityBit(nb, 1) {
		t.Fatalf("nullability bits wrong: %08b", nb)
	}
	if typ != uint8(UpdateInit) {
		t.Fatalf("type = %d", typ)
	}
	if slot0 != 0 {
		t.Fatalf("slot0 = %d, want 0 (variable region starts right there)", slot0)
	}
	if slot1 != -1 {
		t.Fatalf("slot1 = %d, want -1", slot1)
	}
}

func TestIntKeyedDictRoundTrip(t *testing.T) {
	w := NewWriter(16)
	entries := []IntEntry[uint16]{{Key: 1, Value: 100}, {Key: 2, Value: 200}}
	SerializeIntKeyedDict(w, entries, func(w *Writer, v uint16) { w.Uint16(v) })

	r := NewReader(w.Bytes())
	got, err := ReadIntKeyedDict(r, func(r *Reader) (uint16, error) { return r.Uint16() })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Key != 1 || got[0].Value != 100 || got[1].Key != 2 || got[1].Value != 200 {
		t.Fatalf("got %+v", got)
	}
}

func TestEmptyButPresentDictWritesZeroCount(t *testing.T) {
	w := NewWriter(4)
	SerializeIntKeyedDict(w, []IntEntry[uint8]{}, func(w *Writer, v uint8) {})
	if !bytes.Equal(w.Bytes(), []byte{0x00}) {
		t.Fatalf("got %x, want [0x00]", w.Bytes())
	}
}
