package updates

import (
	"bytes"
	"testing"

	"github.com/hytalecompat/gameserver/internal/asset"
)

// Scenario 1: serialize_empty_update(init, max_id=0, extra=[]) for a packet
// with no extra fixed bytes encodes to exactly 7 bytes.
func TestUpdateAudioCategoriesEmptyScenario(t *testing.T) {
	got := NewEmptyUpdateAudioCategories()
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

// Scenario 2: an inline single-field packet with no fixed int, no max_id,
// and an empty-but-present dict encodes to exactly 3 bytes.
func TestUpdateTrailsEmptyScenario(t *testing.T) {
	got := NewEmptyUpdateTrails()
	want := []byte{0x01, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

// Scenario 3: UpdateWeathers with one int-keyed varstring entry.
func TestUpdateWeathersOneEntryScenario(t *testing.T) {
	id := "clear"
	got, err := SerializeUpdateWeathers(asset.UpdateInit, 1, true, []asset.IntEntry[string]{{Key: 1, Value: id}})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x01, 0x00, // nullability, type
		0x01, 0x00, 0x00, 0x00, // max_id = 1
		0x01,                   // count = 1
		0x01, 0x00, 0x00, 0x00, // key = 1
		0x05, 'c', 'l', 'e', 'a', 'r', // varstring "clear"
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

// Scenario 4: a top-level offset-table packet with both slots absent
// always costs exactly 2 reserved -1 int32 slots: 10 bytes.
func TestUpdateProjectileConfigsBothSlotsAbsentScenario(t *testing.T) {
	got := NewEmptyUpdateProjectileConfigs()
	want := []byte{
		0x00, 0x00, // nullability, type
		0xff, 0xff, 0xff, 0xff, // slot 0 = -1
		0xff, 0xff, 0xff, 0xff, // slot 1 = -1
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestUpdateBlockHitboxesRoundTrip(t *testing.T) {
	dict := []asset.IntEntry[BlockHitboxEntry]{
		{Key: 7, Value: BlockHitboxEntry{Hitboxes: []Hitbox{{0, 0, 0, 1, 1, 1}}}},
	}
	buf, err := SerializeUpdateBlockHitboxes(asset.UpdatePatch, 7, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	typ, maxID, present, got, err := DecodeUpdateBlockHitboxes(buf)
	if err != nil {
		t.Fatal(err)
	}
	if typ != asset.UpdatePatch || maxID != 7 || !present {
		t.Fatalf("envelope mismatch: %v %v %v", typ, maxID, present)
	}
	if len(got) != 1 || got[0].Key != 7 || len(got[0].Value.Hitboxes) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestUpdateTrailsEntryRoundTrip(t *testing.T) {
	id := "flame-trail"
	tex := "textures/flame.png"
	dict := []asset.StringEntry[TrailEntry]{
		{Key: "flame", Value: TrailEntry{Width: 0.5, Loop: true, Id: &id, Texture: &tex}},
		{Key: "smoke", Value: TrailEntry{Width: 1.5}},
	}
	buf, err := SerializeUpdateTrails(asset.UpdateInit, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, present, got, err := DecodeUpdateTrails(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !present || len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Key != "flame" || got[0].Value.Id == nil || *got[0].Value.Id != id {
		t.Fatalf("flame entry mismatch: %+v", got[0])
	}
	if got[0].Value.Texture == nil || *got[0].Value.Texture != tex {
		t.Fatalf("flame texture mismatch: %+v", got[0].Value)
	}
	if got[1].Value.Id != nil || got[1].Value.Texture != nil {
		t.Fatalf("smoke entry should have no tail fields: %+v", got[1].Value)
	}
}

func TestUpdateParticleSystemsOffsetTableRoundTrip(t *testing.T) {
	dict := []asset.StringEntry[ParticleSystemEntry]{
		{Key: "explosion", Value: ParticleSystemEntry{MaxParticles: 256, Looping: false, Duration: 1.5}},
	}
	removed := []string{"old-smoke"}
	buf, err := SerializeUpdateParticleSystems(asset.UpdatePatch, dict, removed)
	if err != nil {
		t.Fatal(err)
	}
	typ, gotDict, gotRemoved, err := DecodeUpdateParticleSystems(buf)
	if err != nil {
		t.Fatal(err)
	}
	if typ != asset.UpdatePatch {
		t.Fatalf("type = %v", typ)
	}
	if len(gotDict) != 1 || gotDict[0].Key != "explosion" || gotDict[0].Value.MaxParticles != 256 {
		t.Fatalf("dict mismatch: %+v", gotDict)
	}
	if len(gotRemoved) != 1 || gotRemoved[0] != "old-smoke" {
		t.Fatalf("removed mismatch: %+v", gotRemoved)
	}
}

func TestUpdateParticleSystemsOnlyDictPresent(t *testing.T) {
	dict := []asset.StringEntry[ParticleSystemEntry]{
		{Key: "spark", Value: ParticleSystemEntry{MaxParticles: 8}},
	}
	buf, err := SerializeUpdateParticleSystems(asset.UpdateInit, dict, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, gotDict, gotRemoved, err := DecodeUpdateParticleSystems(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotDict) != 1 || gotRemoved != nil {
		t.Fatalf("expected only dict present: dict=%+v removed=%+v", gotDict, gotRemoved)
	}
}

func TestUpdateEntityEffectsSixSlotRoundTrip(t *testing.T) {
	particleSystem := "burn-fx"
	sound := "burn-sound"
	dict := []asset.IntEntry[EntityEffectEntry]{
		{Key: 3, Value: EntityEffectEntry{
			DurationTicks:  100,
			TickInterval:   20,
			Stacking:       true,
			ParticleSystem: &particleSystem,
			Sound:          &sound,
		}},
	}
	buf, err := SerializeUpdateEntityEffects(asset.UpdateInit, 3, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, got, err := DecodeUpdateEntityEffects(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	e := got[0].Value
	if e.ParticleSystem == nil || *e.ParticleSystem != particleSystem {
		t.Fatalf("particle system mismatch: %+v", e)
	}
	if e.Sound == nil || *e.Sound != sound {
		t.Fatalf("sound mismatch: %+v", e)
	}
	if e.Icon != nil || e.StartScript != nil || e.TickScript != nil || e.EndScript != nil {
		t.Fatalf("unset tails should decode nil: %+v", e)
	}
}

func TestUpdateItemsTwoRemovedListsRoundTrip(t *testing.T) {
	dict := []asset.StringEntry[ItemEntry]{
		{Key: "sword", Value: ItemEntry{MaxStackSize: 1, Model: "m/sword.obj", Icon: "i/sword.png"}},
	}
	buf, err := SerializeUpdateItems(asset.UpdatePatch, true, true, dict, []string{"old-model"}, []string{"old-icon"})
	if err != nil {
		t.Fatal(err)
	}
	_, updateModels, updateIcons, gotDict, removedModels, removedIcons, err := DecodeUpdateItems(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !updateModels || !updateIcons {
		t.Fatalf("flags not round-tripped: %v %v", updateModels, updateIcons)
	}
	if len(gotDict) != 1 || gotDict[0].Key != "sword" {
		t.Fatalf("dict mismatch: %+v", gotDict)
	}
	if len(removedModels) != 1 || removedModels[0] != "old-model" {
		t.Fatalf("removedModels mismatch: %+v", removedModels)
	}
	if len(removedIcons) != 1 || removedIcons[0] != "old-icon" {
		t.Fatalf("removedIcons mismatch: %+v", removedIcons)
	}
}

func TestUpdateEnvironmentsThreeSlotRoundTrip(t *testing.T) {
	skybox := "sky/overworld"
	dict := []asset.IntEntry[EnvironmentEntry]{
		{Key: 0, Value: EnvironmentEntry{FogDensity: 0.2, Skybox: &skybox}},
	}
	buf, err := SerializeUpdateEnvironments(asset.UpdateInit, 0, true, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, _, rebuild, _, got, err := DecodeUpdateEnvironments(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !rebuild {
		t.Fatalf("rebuildMapGeometry not round-tripped")
	}
	if len(got) != 1 || got[0].Value.Skybox == nil || *got[0].Value.Skybox != skybox {
		t.Fatalf("got %+v", got)
	}
	if got[0].Value.AmbientSound != nil || got[0].Value.FogShader != nil {
		t.Fatalf("unset tails should decode nil: %+v", got[0].Value)
	}
}

func TestUpdateUnarmedInteractionsEnumKeyRoundTrip(t *testing.T) {
	dict := []asset.EnumEntry[UnarmedInteractionEntry]{
		{Key: uint8(InteractionPunch), Value: UnarmedInteractionEntry{DamageMultiplier: 1.0, CooldownTicks: 10}},
		{Key: uint8(InteractionMine), Value: UnarmedInteractionEntry{DamageMultiplier: 0.1, CooldownTicks: 40}},
	}
	buf, err := SerializeUpdateUnarmedInteractions(asset.UpdateInit, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, present, got, err := DecodeUpdateUnarmedInteractions(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !present || len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[0].Key != uint8(InteractionPunch) || got[1].Key != uint8(InteractionMine) {
		t.Fatalf("keys mismatch: %+v", got)
	}
}

func TestUpdateTagPatternsRecursiveRoundTrip(t *testing.T) {
	pattern := TagPattern{
		Op: TagPatternAnd,
		Children: []TagPattern{
			{Op: TagPatternLiteral, Name: "flammable"},
			{
				Op: TagPatternNot,
				Children: []TagPattern{
					{Op: TagPatternLiteral, Name: "wet"},
				},
			},
		},
	}
	dict := []asset.IntEntry[TagPattern]{{Key: 1, Value: pattern}}
	buf, err := SerializeUpdateTagPatterns(asset.UpdateInit, 1, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, _, _, got, err := DecodeUpdateTagPatterns(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %+v", got)
	}
	root := got[0].Value
	if root.Op != TagPatternAnd || len(root.Children) != 2 {
		t.Fatalf("root mismatch: %+v", root)
	}
	if root.Children[0].Op != TagPatternLiteral || root.Children[0].Name != "flammable" {
		t.Fatalf("first child mismatch: %+v", root.Children[0])
	}
	not := root.Children[1]
	if not.Op != TagPatternNot || len(not.Children) != 1 || not.Children[0].Name != "wet" {
		t.Fatalf("second child mismatch: %+v", not)
	}
}

func TestUpdateProjectileConfigsOnlyRemovedPresent(t *testing.T) {
	buf, err := SerializeUpdateProjectileConfigs(asset.UpdateRemove, nil, []string{"old-arrow"})
	if err != nil {
		t.Fatal(err)
	}
	typ, dict, removed, err := DecodeUpdateProjectileConfigs(buf)
	if err != nil {
		t.Fatal(err)
	}
	if typ != asset.UpdateRemove || dict != nil {
		t.Fatalf("expected only removed list present: dict=%+v", dict)
	}
	if len(removed) != 1 || removed[0] != "old-arrow" {
		t.Fatalf("removed mismatch: %+v", removed)
	}
}

func TestUpdateAudioCategoriesRoundTrip(t *testing.T) {
	dict := []asset.IntEntry[AudioCategoryEntry]{
		{Key: 0, Value: AudioCategoryEntry{DefaultVolume: 1.0, DucksOthers: false}},
		{Key: 1, Value: AudioCategoryEntry{DefaultVolume: 0.6, DucksOthers: true}},
	}
	buf, err := SerializeUpdateAudioCategories(asset.UpdateInit, 1, true, dict)
	if err != nil {
		t.Fatal(err)
	}
	_, maxID, present, got, err := DecodeUpdateAudioCategories(buf)
	if err != nil {
		t.Fatal(err)
	}
	if maxID != 1 || !present || len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got[1].Value.DucksOthers != true {
		t.Fatalf("ducking mismatch: %+v", got[1].Value)
	}
}
