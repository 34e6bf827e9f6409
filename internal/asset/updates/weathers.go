package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateWeathers (id 47): int-keyed, inline single variable field, no extra
// fixed block; entries are a bare varstring (the weather's string id).
const (
	UpdateWeathersID                 = 47
	UpdateWeathersIsCompressed       = true
	UpdateWeathersFixedBlockSize     = 0
	UpdateWeathersVariableFieldCount = 1
	UpdateWeathersMaxSize            = 1 << 16
)

func SerializeUpdateWeathers(updateType asset.UpdateType, maxID uint32, present bool, dict []asset.IntEntry[string]) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[string]) {
		asset.SerializeIntKeyedDict(w, entries, func(w *asset.Writer, id string) {
			w.Varstring(id)
		})
	})
	if err := checkMax(w.Len(), UpdateWeathersMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateWeathers builds the absent-dict packet: nullability bit 0,
// no varint, no entries at all — the "absent" branch, distinct from
// the "present but empty" branch NewEmptyUpdateBlockTypes exercises.
func NewEmptyUpdateWeathers() []byte {
	b, _ := SerializeUpdateWeathers(asset.UpdateInit, 0, false, nil)
	return b
}

func DecodeUpdateWeathers(buf []byte) (asset.UpdateType, uint32, bool, []asset.IntEntry[string], error) {
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
	dict, err := asset.ReadIntKeyedDict(r, func(r *asset.Reader) (string, error) {
		return r.Varstring()
	})
	return asset.UpdateType(typ), maxID, present, dict, err
}
