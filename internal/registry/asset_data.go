package registry

import "strconv"

// assetDescriptors covers the asset-update band (ids 40-85).
// The dozen ids internal/asset/updates implements carry the max size and
// compressed flag each packet declares, and a min size equal to the length
// of that packet's canonical empty encoding; the remaining ids in the band
// follow the same generic nullability+dict envelope and are registered
// with representative bounds so frame dispatch still covers the full band.
var assetDescriptors = buildAssetDescriptors()

func buildAssetDescriptors() []Descriptor {
	named := map[uint32]struct {
		name       string
		minSize    uint32
		maxSize    uint32
		compressed bool
	}{
		40: {"UpdateBlockTypes", 11, 1 << 20, true},
		41: {"UpdateBlockHitboxes", 7, 1 << 20, true},
		47: {"UpdateWeathers", 6, 1 << 16, true},
		48: {"UpdateTrails", 3, 1 << 16, true},
		49: {"UpdateParticleSystems", 10, 1 << 20, true},
		51: {"UpdateEntityEffects", 7, 1 << 20, true},
		54: {"UpdateItems", 12, 1 << 20, true},
		61: {"UpdateEnvironments", 8, 1 << 20, true},
		68: {"UpdateUnarmedInteractions", 3, 1 << 14, false},
		80: {"UpdateAudioCategories", 7, 1 << 14, false},
		84: {"UpdateTagPatterns", 7, 1 << 16, false},
		85: {"UpdateProjectileConfigs", 10, 1 << 18, true},
	}

	descriptors := make([]Descriptor, 0, 46)
	for id := uint32(40); id <= 85; id++ {
		if n, ok := named[id]; ok {
			descriptors = append(descriptors, Descriptor{
				ID: id, Name: n.name, MinSize: n.minSize, MaxSize: n.maxSize, Compressed: n.compressed,
			})
			continue
		}
		descriptors = append(descriptors, Descriptor{
			ID: id, Name: genericAssetName(id), MinSize: 6, MaxSize: 1 << 20, Compressed: true,
		})
	}
	return descriptors
}

func genericAssetName(id uint32) string {
	return "AssetUpdate" + strconv.FormatUint(uint64(id), 10)
}
