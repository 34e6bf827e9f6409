package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateItems (id 54): string-keyed, with two fixed bool flags ahead of a
// top-level 2-slot offset table (updateModels, updateIcons). Both offset
// slots are always reserved regardless of presence, matching
// UpdateProjectileConfigs.
const (
	UpdateItemsID                 = 54
	UpdateItemsIsCompressed       = true
	UpdateItemsFixedBlockSize     = 2
	UpdateItemsVariableFieldCount = 2
	UpdateItemsMaxSize            = 1 << 20
)

// ItemEntry is one item definition.
type ItemEntry struct {
	MaxStackSize uint32
	Model        string
	Icon         string
}

func writeItemEntry(w *asset.Writer, e ItemEntry) {
	w.Uint32(e.MaxStackSize)
	w.Varstring(e.Model)
	w.Varstring(e.Icon)
}

func readItemEntry(r *asset.Reader) (ItemEntry, error) {
	var e ItemEntry
	var err error
	if e.MaxStackSize, err = r.Uint32(); err != nil {
		return e, err
	}
	if e.Model, err = r.Varstring(); err != nil {
		return e, err
	}
	e.Icon, err = r.Varstring()
	return e, err
}

func SerializeUpdateItems(
	updateType asset.UpdateType,
	updateModels, updateIcons bool,
	dict []asset.StringEntry[ItemEntry],
	removedModels, removedIcons []string,
) ([]byte, error) {
	w := asset.NewWriter(24)
	w.Uint8(asset.NullabilityBits(dict != nil, removedModels != nil || removedIcons != nil))
	w.Uint8(uint8(updateType))
	w.Bool(updateModels)
	w.Bool(updateIcons)
	ot := w.BeginOffsetTable(2)

	if err := asset.WriteOffsetTableField(w, ot, 0, dict != nil, dict, func(w *asset.Writer, entries []asset.StringEntry[ItemEntry]) {
		asset.SerializeStringKeyedDict(w, entries, writeItemEntry)
	}); err != nil {
		return nil, err
	}

	removedPresent := removedModels != nil || removedIcons != nil
	if err := asset.WriteOffsetTableField(w, ot, 1, removedPresent, removedModels, func(w *asset.Writer, names []string) {
		w.Varint(uint32(len(names)))
		for _, n := range names {
			w.Varstring(n)
		}
		w.Varint(uint32(len(removedIcons)))
		for _, n := range removedIcons {
			w.Varstring(n)
		}
	}); err != nil {
		return nil, err
	}

	if err := checkMax(w.Len(), UpdateItemsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateItems reproduces the both-slots-absent shape with its
// two leading fixed bools: nullability, type, 2 bools, then two -1 int32
// slots.
func NewEmptyUpdateItems() []byte {
	b, _ := SerializeUpdateItems(asset.UpdateInit, false, false, nil, nil, nil)
	return b
}

func DecodeUpdateItems(buf []byte) (asset.UpdateType, bool, bool, []asset.StringEntry[ItemEntry], []string, []string, error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	updateModels, err := r.Bool()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	updateIcons, err := r.Bool()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	slot0, err := r.Int32()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	slot1, err := r.Int32()
	if err != nil {
		return 0, false, false, nil, nil, nil, err
	}
	varStart := r.Off()

	var dict []asset.StringEntry[ItemEntry]
	if asset.NullabilityBit(nb, 0) && slot0 >= 0 {
		r.Seek(varStart + int(slot0))
		dict, err = asset.ReadStringKeyedDict(r, readItemEntry)
		if err != nil {
			return 0, false, false, nil, nil, nil, err
		}
	}

	var removedModels, removedIcons []string
	if asset.NullabilityBit(nb, 1) && slot1 >= 0 {
		r.Seek(varStart + int(slot1))
		n, err := r.Varint()
		if err != nil {
			return 0, false, false, nil, nil, nil, err
		}
		removedModels = make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			s, err := r.Varstring()
			if err != nil {
				return 0, false, false, nil, nil, nil, err
			}
			removedModels = append(removedModels, s)
		}
		n, err = r.Varint()
		if err != nil {
			return 0, false, false, nil, nil, nil, err
		}
		removedIcons = make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			s, err := r.Varstring()
			if err != nil {
				return 0, false, false, nil, nil, nil, err
			}
			removedIcons = append(removedIcons, s)
		}
	}

	return asset.UpdateType(typ), updateModels, updateIcons, dict, removedModels, removedIcons, nil
}
