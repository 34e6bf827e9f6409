package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateParticleSystems (id 49): string-keyed, with a top-level 2-slot
// offset table (not inline) — the canonical top-level offset-table shape:
// slot 0 is the main dict, slot 1 is the removed-names array used by
// UpdateRemove. Both slots are always reserved (two -1 int32 placeholders)
// even when both are absent, matching UpdateProjectileConfigs.
const (
	UpdateParticleSystemsID                 = 49
	UpdateParticleSystemsIsCompressed       = true
	UpdateParticleSystemsFixedBlockSize     = 0
	UpdateParticleSystemsVariableFieldCount = 2
	UpdateParticleSystemsMaxSize            = 1 << 20
)

// ParticleSystemEntry is a single named particle-system definition.
type ParticleSystemEntry struct {
	MaxParticles uint32
	Looping      bool
	Duration     float32
}

func writeParticleSystemEntry(w *asset.Writer, e ParticleSystemEntry) {
	w.Uint32(e.MaxParticles)
	w.Bool(e.Looping)
	w.Float32(e.Duration)
}

func readParticleSystemEntry(r *asset.Reader) (ParticleSystemEntry, error) {
	var e ParticleSystemEntry
	var err error
	if e.MaxParticles, err = r.Uint32(); err != nil {
		return e, err
	}
	if e.Looping, err = r.Bool(); err != nil {
		return e, err
	}
	e.Duration, err = r.Float32()
	return e, err
}

func SerializeUpdateParticleSystems(
	updateType asset.UpdateType,
	dict []asset.StringEntry[ParticleSystemEntry],
	removed []string,
) ([]byte, error) {
	w := asset.NewWriter(24)
	w.Uint8(asset.NullabilityBits(dict != nil, removed != nil))
	w.Uint8(uint8(updateType))
	ot := w.BeginOffsetTable(2)

	if err := asset.WriteOffsetTableField(w, ot, 0, dict != nil, dict, func(w *asset.Writer, entries []asset.StringEntry[ParticleSystemEntry]) {
		asset.SerializeStringKeyedDict(w, entries, writeParticleSystemEntry)
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

	if err := checkMax(w.Len(), UpdateParticleSystemsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateParticleSystems reproduces the both-slots-absent shape:
// nullability 0x00, type, then two -1 int32 slots — 10 bytes total, the
// same layout UpdateProjectileConfigs uses.
func NewEmptyUpdateParticleSystems() []byte {
	b, _ := SerializeUpdateParticleSystems(asset.UpdateInit, nil, nil)
	return b
}

func DecodeUpdateParticleSystems(buf []byte) (asset.UpdateType, []asset.StringEntry[ParticleSystemEntry], []string, error) {
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

	var dict []asset.StringEntry[ParticleSystemEntry]
	if asset.NullabilityBit(nb, 0) && slot0 >= 0 {
		r.Seek(varStart + int(slot0))
		dict, err = asset.ReadStringKeyedDict(r, readParticleSystemEntry)
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
