package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateBlockHitboxes (id 41): int-keyed, inline single variable field, no
// extra fixed block. Each entry is itself a length-prefixed array of fixed
// 24-byte Hitbox records (min/max corners as three float32 pairs) — a flat
// scalar block repeated, no offsets anywhere in the entry.
const (
	UpdateBlockHitboxesID                 = 41
	UpdateBlockHitboxesIsCompressed       = true
	UpdateBlockHitboxesFixedBlockSize     = 0
	UpdateBlockHitboxesVariableFieldCount = 1
	UpdateBlockHitboxesMaxSize            = 1 << 20

	hitboxSize = 24 // 6 float32s: minX,minY,minZ,maxX,maxY,maxZ
)

// Hitbox is one fixed 24-byte collision box.
type Hitbox struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

func (h Hitbox) write(w *asset.Writer) {
	w.Float32(h.MinX)
	w.Float32(h.MinY)
	w.Float32(h.MinZ)
	w.Float32(h.MaxX)
	w.Float32(h.MaxY)
	w.Float32(h.MaxZ)
}

func readHitbox(r *asset.Reader) (Hitbox, error) {
	var h Hitbox
	var err error
	if h.MinX, err = r.Float32(); err != nil {
		return h, err
	}
	if h.MinY, err = r.Float32(); err != nil {
		return h, err
	}
	if h.MinZ, err = r.Float32(); err != nil {
		return h, err
	}
	if h.MaxX, err = r.Float32(); err != nil {
		return h, err
	}
	if h.MaxY, err = r.Float32(); err != nil {
		return h, err
	}
	h.MaxZ, err = r.Float32()
	return h, err
}

// BlockHitboxEntry is the per-block-type list of collision hitboxes.
type BlockHitboxEntry struct {
	Hitboxes []Hitbox
}

func SerializeUpdateBlockHitboxes(updateType asset.UpdateType, maxID uint32, present bool, dict []asset.IntEntry[BlockHitboxEntry]) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[BlockHitboxEntry]) {
		asset.SerializeIntKeyedDict(w, entries, func(w *asset.Writer, e BlockHitboxEntry) {
			w.Varint(uint32(len(e.Hitboxes)))
			for _, h := range e.Hitboxes {
				h.write(w)
			}
		})
	})
	if err := checkMax(w.Len(), UpdateBlockHitboxesMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func NewEmptyUpdateBlockHitboxes() []byte {
	b, _ := SerializeUpdateBlockHitboxes(asset.UpdateInit, 0, true, nil)
	return b
}

func DecodeUpdateBlockHitboxes(buf []byte) (asset.UpdateType, uint32, bool, []asset.IntEntry[BlockHitboxEntry], error) {
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
	dict, err := asset.ReadIntKeyedDict(r, func(r *asset.Reader) (BlockHitboxEntry, error) {
		n, err := r.Varint()
		if err != nil {
			return BlockHitboxEntry{}, err
		}
		boxes := make([]Hitbox, 0, n)
		for i := uint32(0); i < n; i++ {
			h, err := readHitbox(r)
			if err != nil {
				return BlockHitboxEntry{}, err
			}
			boxes = append(boxes, h)
		}
		return BlockHitboxEntry{Hitboxes: boxes}, nil
	})
	return asset.UpdateType(typ), maxID, present, dict, err
}
