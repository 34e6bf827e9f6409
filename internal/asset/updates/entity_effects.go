package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateEntityEffects (id 51): int-keyed, inline single top-level variable
// field. Each entry carries a 6-slot entry-local offset table — the
// largest per-entry offset table in the family — addressing six optional
// variable tails: particle system name, sound name, icon texture, start
// script, tick script, and end script.
const (
	UpdateEntityEffectsID                 = 51
	UpdateEntityEffectsIsCompressed       = true
	UpdateEntityEffectsFixedBlockSize     = 0
	UpdateEntityEffectsVariableFieldCount = 1
	UpdateEntityEffectsMaxSize            = 1 << 20

	entityEffectSlotParticleSystem = 0
	entityEffectSlotSound          = 1
	entityEffectSlotIcon           = 2
	entityEffectSlotStartScript    = 3
	entityEffectSlotTickScript     = 4
	entityEffectSlotEndScript      = 5
	entityEffectSlotCount          = 6
)

// EntityEffectEntry is one status-effect definition: fixed numeric
// parameters plus six optional variable tail fields.
type EntityEffectEntry struct {
	DurationTicks int32
	TickInterval  int32
	Stacking      bool

	ParticleSystem *string
	Sound          *string
	Icon           *string
	StartScript    *string
	TickScript     *string
	EndScript      *string
}

func writeEntityEffectEntry(w *asset.Writer, e EntityEffectEntry) {
	w.Int32(e.DurationTicks)
	w.Int32(e.TickInterval)
	w.Bool(e.Stacking)

	ot := w.BeginOffsetTable(entityEffectSlotCount)
	writeOptionalTail(w, ot, entityEffectSlotParticleSystem, e.ParticleSystem)
	writeOptionalTail(w, ot, entityEffectSlotSound, e.Sound)
	writeOptionalTail(w, ot, entityEffectSlotIcon, e.Icon)
	writeOptionalTail(w, ot, entityEffectSlotStartScript, e.StartScript)
	writeOptionalTail(w, ot, entityEffectSlotTickScript, e.TickScript)
	writeOptionalTail(w, ot, entityEffectSlotEndScript, e.EndScript)
}

// writeOptionalTail writes s's varstring bytes and patches slot if s is
// non-nil; otherwise the slot stays at BeginOffsetTable's -1 sentinel.
func writeOptionalTail(w *asset.Writer, ot *asset.OffsetTable, slot int, s *string) {
	if s == nil {
		return
	}
	w.Varstring(*s)
	w.SetPresent(ot, slot)
}

// readOptionalTail reads the varstring at slots[slot]'s offset (relative to
// varStart) if that slot is non-negative, seeking back afterward is the
// caller's responsibility since tail reads are order-independent by offset.
func readOptionalTail(r *asset.Reader, varStart int, slotOffset int32) (*string, error) {
	if slotOffset < 0 {
		return nil, nil
	}
	r.Seek(varStart + int(slotOffset))
	s, err := r.Varstring()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func readEntityEffectEntry(r *asset.Reader) (EntityEffectEntry, error) {
	var e EntityEffectEntry
	var err error
	if e.DurationTicks, err = r.Int32(); err != nil {
		return e, err
	}
	if e.TickInterval, err = r.Int32(); err != nil {
		return e, err
	}
	if e.Stacking, err = r.Bool(); err != nil {
		return e, err
	}

	slots := make([]int32, entityEffectSlotCount)
	for i := range slots {
		if slots[i], err = r.Int32(); err != nil {
			return e, err
		}
	}
	varStart := r.Off()

	if e.ParticleSystem, err = readOptionalTail(r, varStart, slots[entityEffectSlotParticleSystem]); err != nil {
		return e, err
	}
	if e.Sound, err = readOptionalTail(r, varStart, slots[entityEffectSlotSound]); err != nil {
		return e, err
	}
	if e.Icon, err = readOptionalTail(r, varStart, slots[entityEffectSlotIcon]); err != nil {
		return e, err
	}
	if e.StartScript, err = readOptionalTail(r, varStart, slots[entityEffectSlotStartScript]); err != nil {
		return e, err
	}
	if e.TickScript, err = readOptionalTail(r, varStart, slots[entityEffectSlotTickScript]); err != nil {
		return e, err
	}
	if e.EndScript, err = readOptionalTail(r, varStart, slots[entityEffectSlotEndScript]); err != nil {
		return e, err
	}
	return e, nil
}

func SerializeUpdateEntityEffects(updateType asset.UpdateType, maxID uint32, present bool, dict []asset.IntEntry[EntityEffectEntry]) ([]byte, error) {
	w := asset.NewWriter(32)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[EntityEffectEntry]) {
		asset.SerializeIntKeyedDict(w, entries, writeEntityEffectEntry)
	})
	if err := checkMax(w.Len(), UpdateEntityEffectsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func NewEmptyUpdateEntityEffects() []byte {
	b, _ := SerializeUpdateEntityEffects(asset.UpdateInit, 0, true, nil)
	return b
}

func DecodeUpdateEntityEffects(buf []byte) (asset.UpdateType, uint32, bool, []asset.IntEntry[EntityEffectEntry], error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, 0, false, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, 0, false, nil, err
	}
	maxID, err := r.Uint32()
	if err != nil {
		return 0, 0, false, nil, err
	}
	present := asset.NullabilityBit(nb, 0)
	if !present {
		return asset.UpdateType(typ), maxID, false, nil, nil
	}
	dict, err := asset.ReadIntKeyedDict(r, readEntityEffectEntry)
	return asset.UpdateType(typ), maxID, present, dict, err
}
