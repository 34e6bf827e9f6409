package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateBlockTypes (id 40): int-keyed, inline single variable field (no
// offset table), with a 4-bool fixed block ahead of it. Pattern: simplest
// possible asset-update shape, the baseline every other packet varies from.
const (
	UpdateBlockTypesID                 = 40
	UpdateBlockTypesIsCompressed       = true
	UpdateBlockTypesNullableFieldBytes = 1
	UpdateBlockTypesFixedBlockSize     = 4 // four bools
	UpdateBlockTypesVariableFieldCount = 1
	UpdateBlockTypesMaxSize            = 1 << 20
)

// BlockTypeEntry is one int-keyed entry: a flat scalar block, four bytes
// of collision-relevant config plus a name.
type BlockTypeEntry struct {
	Solid       bool
	Transparent bool
	Flammable   bool
	Opaque      bool
	Name        string
}

// UpdateBlockTypesFixed carries the packet's four top-level bool flags.
type UpdateBlockTypesFixed struct {
	RebuildRenderChunks bool
	RebuildLightmaps    bool
	RebuildPathfinding  bool
	RebuildCollision    bool
}

// SerializeUpdateBlockTypes encodes an UpdateBlockTypes packet. present
// indicates whether the block-type dictionary itself is Some (set dict to
// nil with present=true to encode a present-but-empty dict).
func SerializeUpdateBlockTypes(updateType asset.UpdateType, maxID uint32, fixed UpdateBlockTypesFixed, present bool, dict []asset.IntEntry[BlockTypeEntry]) ([]byte, error) {
	w := asset.NewWriter(UpdateBlockTypesFixedBlockSize + 16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	w.Bool(fixed.RebuildRenderChunks)
	w.Bool(fixed.RebuildLightmaps)
	w.Bool(fixed.RebuildPathfinding)
	w.Bool(fixed.RebuildCollision)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[BlockTypeEntry]) {
		asset.SerializeIntKeyedDict(w, entries, func(w *asset.Writer, e BlockTypeEntry) {
			w.Bool(e.Solid)
			w.Bool(e.Transparent)
			w.Bool(e.Flammable)
			w.Bool(e.Opaque)
			w.Varstring(e.Name)
		})
	})
	if err := checkMax(w.Len(), UpdateBlockTypesMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateBlockTypes builds the canonical empty (present, zero-entry)
// packet: nullability byte 0x01, type, max_id=0, all-false fixed bools,
// trailing varint(0). 11 bytes total.
func NewEmptyUpdateBlockTypes() []byte {
	b, _ := SerializeUpdateBlockTypes(asset.UpdateInit, 0, UpdateBlockTypesFixed{}, true, nil)
	return b
}

// DecodeUpdateBlockTypes decodes a packet produced by
// SerializeUpdateBlockTypes.
func DecodeUpdateBlockTypes(buf []byte) (asset.UpdateType, uint32, UpdateBlockTypesFixed, bool, []asset.IntEntry[BlockTypeEntry], error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, 0, UpdateBlockTypesFixed{}, false, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, 0, UpdateBlockTypesFixed{}, false, nil, err
	}
	maxID, err := r.Uint32()
	if err != nil {
		return 0, 0, UpdateBlockTypesFixed{}, false, nil, err
	}
	var fixed UpdateBlockTypesFixed
	if fixed.RebuildRenderChunks, err = r.Bool(); err != nil {
		return 0, 0, fixed, false, nil, err
	}
	if fixed.RebuildLightmaps, err = r.Bool(); err != nil {
		return 0, 0, fixed, false, nil, err
	}
	if fixed.RebuildPathfinding, err = r.Bool(); err != nil {
		return 0, 0, fixed, false, nil, err
	}
	if fixed.RebuildCollision, err = r.Bool(); err != nil {
		return 0, 0, fixed, false, nil, err
	}

	present := asset.NullabilityBit(nb, 0)
	if !present {
		return asset.UpdateType(typ), maxID, fixed, false, nil, nil
	}
	dict, err := asset.ReadIntKeyedDict(r, func(r *asset.Reader) (BlockTypeEntry, error) {
		var e BlockTypeEntry
		var err error
		if e.Solid, err = r.Bool(); err != nil {
			return e, err
		}
		if e.Transparent, err = r.Bool(); err != nil {
			return e, err
		}
		if e.Flammable, err = r.Bool(); err != nil {
			return e, err
		}
		if e.Opaque, err = r.Bool(); err != nil {
			return e, err
		}
		e.Name, err = r.Varstring()
		return e, err
	})
	if err != nil {
		return asset.UpdateType(typ), maxID, fixed, present, nil, err
	}
	return asset.UpdateType(typ), maxID, fixed, present, dict, nil
}
