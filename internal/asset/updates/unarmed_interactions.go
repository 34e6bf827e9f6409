package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateUnarmedInteractions (id 68): enum-keyed — the only dictionary key
// flavor not yet exercised by the other packets in this package, a
// single-byte InteractionType. Inline single top-level variable field, no
// extra fixed block.
const (
	UpdateUnarmedInteractionsID                 = 68
	UpdateUnarmedInteractionsIsCompressed       = false
	UpdateUnarmedInteractionsFixedBlockSize     = 0
	UpdateUnarmedInteractionsVariableFieldCount = 1
	UpdateUnarmedInteractionsMaxSize            = 1 << 14
)

// InteractionType is the 1-byte dictionary key: punch, mine, interact, etc.
type InteractionType uint8

const (
	InteractionPunch InteractionType = iota
	InteractionMine
	InteractionInteract
)

// UnarmedInteractionEntry is the handling behavior for one interaction
// type.
type UnarmedInteractionEntry struct {
	DamageMultiplier float32
	CooldownTicks    uint32
}

func writeUnarmedInteractionEntry(w *asset.Writer, e UnarmedInteractionEntry) {
	w.Float32(e.DamageMultiplier)
	w.Uint32(e.CooldownTicks)
}

func readUnarmedInteractionEntry(r *asset.Reader) (UnarmedInteractionEntry, error) {
	var e UnarmedInteractionEntry
	var err error
	if e.DamageMultiplier, err = r.Float32(); err != nil {
		return e, err
	}
	e.CooldownTicks, err = r.Uint32()
	return e, err
}

func SerializeUpdateUnarmedInteractions(updateType asset.UpdateType, present bool, dict []asset.EnumEntry[UnarmedInteractionEntry]) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.EnumEntry[UnarmedInteractionEntry]) {
		asset.SerializeEnumKeyedDict(w, entries, writeUnarmedInteractionEntry)
	})
	if err := checkMax(w.Len(), UpdateUnarmedInteractionsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func NewEmptyUpdateUnarmedInteractions() []byte {
	b, _ := SerializeUpdateUnarmedInteractions(asset.UpdateInit, true, nil)
	return b
}

func DecodeUpdateUnarmedInteractions(buf []byte) (asset.UpdateType, bool, []asset.EnumEntry[UnarmedInteractionEntry], error) {
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
	dict, err := asset.ReadEnumKeyedDict(r, readUnarmedInteractionEntry)
	return asset.UpdateType(typ), present, dict, err
}
