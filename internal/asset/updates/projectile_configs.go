package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateProjectileConfigs (id 85): string-keyed, top-level 2-slot offset
// table (main dict, removed-names array) and no fixed block at all — the
// both-slots-absent layout is [nullability=0x00, type, -1 int32, -1 int32]
// = 10 bytes exactly.
const (
	UpdateProjectileConfigsID                 = 85
	UpdateProjectileConfigsIsCompressed       = true
	UpdateProjectileConfigsFixedBlockSize     = 0
	UpdateProjectileConfigsVariableFieldCount = 2
	UpdateProjectileConfigsMaxSize            = 1 << 18
)

// ProjectileConfigEntry is one projectile's flight parameters.
type ProjectileConfigEntry struct {
	Speed   float32
	Gravity float32
	Model   string
}

func writeProjectileConfigEntry(w *asset.Writer, e ProjectileConfigEntry) {
	w.Float32(e.Speed)
	w.Float32(e.Gravity)
	w.Varstring(e.Model)
}

func readProjectileConfigEntry(r *asset.Reader) (ProjectileConfigEntry, error) {
	var e ProjectileConfigEntry
	var err error
	if e.Speed, err = r.Float32(); err != nil {
		return e, err
	}
	if e.Gravity, err = r.Float32(); err != nil {
		return e, err
	}
	e.Model, err = r.Varstring()
	return e, err
}

func SerializeUpdateProjectileConfigs(
	updateType asset.UpdateType,
	dict []asset.StringEntry[ProjectileConfigEntry],
	removed []string,
) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(dict != nil, removed != nil))
	w.Uint8(uint8(updateType))
	ot := w.BeginOffsetTable(2)

	if err := asset.WriteOffsetTableField(w, ot, 0, dict != nil, dict, func(w *asset.Writer, entries []asset.StringEntry[ProjectileConfigEntry]) {
		asset.SerializeStringKeyedDict(w, entries, writeProjectileConfigEntry)
	}); err != nil {
		return nil, err
	}
	if err := asset.WriteOffsetTableField(w, ot, 1, removed != nil, removed, func(w *asset.Writer, names []string) {
		w.Varint(uint32(len(names)))
		for _, name := range names {
			w.Varstring(name)
		}
	}); err != nil {
		return nil, err
	}

	if err := checkMax(w.Len(), UpdateProjectileConfigsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateProjectileConfigs reproduces that 10-byte vector exactly:
// [0x00, 0x00, -1, -1] with both int32 slots little-endian.
func NewEmptyUpdateProjectileConfigs() []byte {
	b, _ := SerializeUpdateProjectileConfigs(asset.UpdateInit, nil, nil)
	return b
}

func DecodeUpdateProjectileConfigs(buf []byte) (asset.UpdateType, []asset.StringEntry[ProjectileConfigEntry], []string, error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, nil, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, nil, nil, err
	}
	slot0, err := r.Int32()
	if err != nil {
		return 0, nil, nil, err
	}
	slot1, err := r.Int32()
	if err != nil {
		return 0, nil, nil, err
	}
	varStart := r.Off()

	var dict []asset.StringEntry[ProjectileConfigEntry]
	if asset.NullabilityBit(nb, 0) && slot0 >= 0 {
		r.Seek(varStart + int(slot0))
		dict, err = asset.ReadStringKeyedDict(r, readProjectileConfigEntry)
		if err != nil {
			return 0, nil, nil, err
		}
	}

	var removed []string
	if asset.NullabilityBit(nb, 1) && slot1 >= 0 {
		r.Seek(varStart + int(slot1))
		n, err := r.Varint()
		if err != nil {
			return 0, nil, nil, err
		}
		removed = make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			s, err := r.Varstring()
			if err != nil {
				return 0, nil, nil, err
			}
			removed = append(removed, s)
		}
	}

	return asset.UpdateType(typ), dict, removed, nil
}
