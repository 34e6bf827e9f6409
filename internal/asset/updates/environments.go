package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateEnvironments (id 61): int-keyed, inline single top-level variable
// field, with one leading fixed bool (rebuildMapGeometry). Each entry
// carries a 3-slot entry-local offset table: skybox, ambient sound, fog
// shader.
const (
	UpdateEnvironmentsID                 = 61
	UpdateEnvironmentsIsCompressed       = true
	UpdateEnvironmentsFixedBlockSize     = 1
	UpdateEnvironmentsVariableFieldCount = 1
	UpdateEnvironmentsMaxSize            = 1 << 20

	environmentSlotSkybox       = 0
	environmentSlotAmbientSound = 1
	environmentSlotFogShader    = 2
	environmentSlotCount        = 3
)

// EnvironmentEntry is one biome/dimension environment definition.
type EnvironmentEntry struct {
	FogDensity float32

	Skybox       *string
	AmbientSound *string
	FogShader    *string
}

func writeEnvironmentEntry(w *asset.Writer, e EnvironmentEntry) {
	w.Float32(e.FogDensity)
	ot := w.BeginOffsetTable(environmentSlotCount)
	writeOptionalTail(w, ot, environmentSlotSkybox, e.Skybox)
	writeOptionalTail(w, ot, environmentSlotAmbientSound, e.AmbientSound)
	writeOptionalTail(w, ot, environmentSlotFogShader, e.FogShader)
}

func readEnvironmentEntry(r *asset.Reader) (EnvironmentEntry, error) {
	var e EnvironmentEntry
	var err error
	if e.FogDensity, err = r.Float32(); err != nil {
		return e, err
	}
	slots := make([]int32, environmentSlotCount)
	for i := range slots {
		if slots[i], err = r.Int32(); err != nil {
			return e, err
		}
	}
	varStart := r.Off()
	if e.Skybox, err = readOptionalTail(r, varStart, slots[environmentSlotSkybox]); err != nil {
		return e, err
	}
	if e.AmbientSound, err = readOptionalTail(r, varStart, slots[environmentSlotAmbientSound]); err != nil {
		return e, err
	}
	if e.FogShader, err = readOptionalTail(r, varStart, slots[environmentSlotFogShader]); err != nil {
		return e, err
	}
	return e, nil
}

func SerializeUpdateEnvironments(updateType asset.UpdateType, maxID uint32, rebuildMapGeometry bool, present bool, dict []asset.IntEntry[EnvironmentEntry]) ([]byte, error) {
	w := asset.NewWriter(24)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	w.Bool(rebuildMapGeometry)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[EnvironmentEntry]) {
		asset.SerializeIntKeyedDict(w, entries, writeEnvironmentEntry)
	})
	if err := checkMax(w.Len(), UpdateEnvironmentsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func NewEmptyUpdateEnvironments() []byte {
	b, _ := SerializeUpdateEnvironments(asset.UpdateInit, 0, false, true, nil)
	return b
}

func DecodeUpdateEnvironments(buf []byte) (asset.UpdateType, uint32, bool, bool, []asset.IntEntry[EnvironmentEntry], error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, 0, false, false, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, 0, false, false, nil, err
	}
	maxID, err := r.Uint32()
	if err != nil {
		return 0, 0, false, false, nil, err
	}
	rebuild, err := r.Bool()
	if err != nil {
		return 0, 0, false, false, nil, err
	}
	present := asset.NullabilityBit(nb, 0)
	if !present {
		return asset.UpdateType(typ), maxID, rebuild, false, nil, nil
	}
	dict, err := asset.ReadIntKeyedDict(r, readEnvironmentEntry)
	return asset.UpdateType(typ), maxID, rebuild, present, dict, err
}
