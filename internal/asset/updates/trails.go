package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateTrails (id 48): string-keyed, inline single top-level variable
// field (the main dict) — its empty encoding is exactly 3 bytes, which
// only a single inline dict (no top-level offset table) can produce. Each
// entry carries a 61-byte fixed scalar block followed by its own
// entry-local 2-slot offset table (id, texture), with offsets measured
// from that entry's own variable-block start per the recursive-entries
// rule.
const (
	UpdateTrailsID                 = 48
	UpdateTrailsIsCompressed       = true
	UpdateTrailsFixedBlockSize     = 0
	UpdateTrailsVariableFieldCount = 1
	UpdateTrailsMaxSize            = 1 << 16

	trailEntryFixedSize = 61
)

// TrailEntry is one trail definition: fixed visual parameters plus two
// optional variable tail fields (Id, Texture) addressed via the entry's own
// offset table.
type TrailEntry struct {
	Width          float32
	Length         float32
	R, G, B, A     float32
	FadeIn, FadeOut float32
	Loop           bool
	Billboard      bool
	// Reserved pads the fixed block out to 61 bytes: 8 float32s (32) + 2
	// bools (2) + 27 reserved bytes = 61.
	Reserved [27]byte

	Id      *string
	Texture *string
}

func writeTrailFixed(w *asset.Writer, e TrailEntry) {
	w.Float32(e.Width)
	w.Float32(e.Length)
	w.Float32(e.R)
	w.Float32(e.G)
	w.Float32(e.B)
	w.Float32(e.A)
	w.Float32(e.FadeIn)
	w.Float32(e.FadeOut)
	w.Bool(e.Loop)
	w.Bool(e.Billboard)
	w.Raw(e.Reserved[:])
}

func readTrailFixed(r *asset.Reader) (TrailEntry, error) {
	var e TrailEntry
	var err error
	if e.Width, err = r.Float32(); err != nil {
		return e, err
	}
	if e.Length, err = r.Float32(); err != nil {
		return e, err
	}
	if e.R, err = r.Float32(); err != nil {
		return e, err
	}
	if e.G, err = r.Float32(); err != nil {
		return e, err
	}
	if e.B, err = r.Float32(); err != nil {
		return e, err
	}
	if e.A, err = r.Float32(); err != nil {
		return e, err
	}
	if e.FadeIn, err = r.Float32(); err != nil {
		return e, err
	}
	if e.FadeOut, err = r.Float32(); err != nil {
		return e, err
	}
	if e.Loop, err = r.Bool(); err != nil {
		return e, err
	}
	if e.Billboard, err = r.Bool(); err != nil {
		return e, err
	}
	reserved, err := r.Bytes(27)
	if err != nil {
		return e, err
	}
	copy(e.Reserved[:], reserved)
	return e, nil
}

func writeTrailEntry(w *asset.Writer, e TrailEntry) {
	writeTrailFixed(w, e)
	ot := w.BeginOffsetTable(2)
	if e.Id != nil {
		w.Varstring(*e.Id)
		w.SetPresent(ot, 0)
	}
	if e.Texture != nil {
		w.Varstring(*e.Texture)
		w.SetPresent(ot, 1)
	}
}

func readTrailEntry(r *asset.Reader) (TrailEntry, error) {
	e, err := readTrailFixed(r)
	if err != nil {
		return e, err
	}
	slot0, err := r.Int32()
	if err != nil {
		return e, err
	}
	slot1, err := r.Int32()
	if err != nil {
		return e, err
	}
	varStart := r.Off()
	if slot0 >= 0 {
		r.Seek(varStart + int(slot0))
		s, err := r.Varstring()
		if err != nil {
			return e, err
		}
		e.Id = &s
	}
	if slot1 >= 0 {
		r.Seek(varStart + int(slot1))
		s, err := r.Varstring()
		if err != nil {
			return e, err
		}
		e.Texture = &s
	}
	return e, nil
}

func SerializeUpdateTrails(updateType asset.UpdateType, present bool, dict []asset.StringEntry[TrailEntry]) ([]byte, error) {
	w := asset.NewWriter(32)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.StringEntry[TrailEntry]) {
		asset.SerializeStringKeyedDict(w, entries, writeTrailEntry)
	})
	if err := checkMax(w.Len(), UpdateTrailsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateTrails reproduces that 3-byte empty vector exactly:
// [0x01, 0x00, 0x00].
func NewEmptyUpdateTrails() []byte {
	b, _ := SerializeUpdateTrails(asset.UpdateInit, true, nil)
	return b
}

func DecodeUpdateTrails(buf []byte) (asset.UpdateType, bool, []asset.StringEntry[TrailEntry], error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, false, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, false, nil, err
	}
	present := asset.NullabilityBit(nb, 0)
	if !present {
		return asset.UpdateType(typ), false, nil, nil
	}
	dict, err := asset.ReadStringKeyedDict(r, readTrailEntry)
	return asset.UpdateType(typ), present, dict, err
}
