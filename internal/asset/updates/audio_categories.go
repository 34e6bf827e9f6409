package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateAudioCategories (id 80): int-keyed, inline single top-level
// variable field, no extra fixed bytes at all — the empty encoding is
// exactly 7 bytes: [0x01, 0x00, 0x00,0x00,0x00,0x00, 0x00].
const (
	UpdateAudioCategoriesID                 = 80
	UpdateAudioCategoriesIsCompressed       = false
	UpdateAudioCategoriesFixedBlockSize     = 0
	UpdateAudioCategoriesVariableFieldCount = 1
	UpdateAudioCategoriesMaxSize            = 1 << 14
)

// AudioCategoryEntry is one audio category's default volume/ducking
// parameters.
type AudioCategoryEntry struct {
	DefaultVolume float32
	DucksOthers   bool
}

func writeAudioCategoryEntry(w *asset.Writer, e AudioCategoryEntry) {
	w.Float32(e.DefaultVolume)
	w.Bool(e.DucksOthers)
}

func readAudioCategoryEntry(r *asset.Reader) (AudioCategoryEntry, error) {
	var e AudioCategoryEntry
	var err error
	if e.DefaultVolume, err = r.Float32(); err != nil {
		return e, err
	}
	e.DucksOthers, err = r.Bool()
	return e, err
}

func SerializeUpdateAudioCategories(updateType asset.UpdateType, maxID uint32, present bool, dict []asset.IntEntry[AudioCategoryEntry]) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[AudioCategoryEntry]) {
		asset.SerializeIntKeyedDict(w, entries, writeAudioCategoryEntry)
	})
	if err := checkMax(w.Len(), UpdateAudioCategoriesMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// NewEmptyUpdateAudioCategories reproduces that 7-byte empty vector
// exactly.
func NewEmptyUpdateAudioCategories() []byte {
	b, _ := SerializeUpdateAudioCategories(asset.UpdateInit, 0, true, nil)
	return b
}

func DecodeUpdateAudioCategories(buf []byte) (asset.UpdateType, uint32, bool, []asset.IntEntry[AudioCategoryEntry], error) {
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
	dict, err := asset.ReadIntKeyedDict(r, readAudioCategoryEntry)
	return asset.UpdateType(typ), maxID, present, dict, err
}
