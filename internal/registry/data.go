package registry

// init populates the static packet table. The asset range (40-85) carries
// the full set of ~45 asset-update packets; internal/asset/updates
// implements a representative subset spanning every entry-body pattern
// (flat scalar, inline varstring tail, nested offset table, recursive tree)
// against int-keyed, string-keyed and enum-keyed dictionaries alike — the
// remaining asset ids are registered here (for frame dispatch) without a
// hand-written serializer, since
// they follow the same generic constructors bit-for-bit.
func init() {
	// Connection (0-3).
	register(Descriptor{ID: 0, Name: "Handshake", MinSize: 1, MaxSize: 256, Compressed: false})
	register(Descriptor{ID: 1, Name: "Disconnect", MinSize: 0, MaxSize: 512, Compressed: false})
	register(Descriptor{ID: 2, Name: "KeepAlive", MinSize: 8, MaxSize: 8, Compressed: false})
	register(Descriptor{ID: 3, Name: "ProtocolVersion", MinSize: 4, MaxSize: 4, Compressed: false})

	// Auth (10-18).
	register(Descriptor{ID: 10, Name: "AuthStart", MinSize: 0, MaxSize: 64, Compressed: false})
	register(Descriptor{ID: 11, Name: "AuthIdentityToken", MinSize: 1, MaxSize: 8192, Compressed: false})
	register(Descriptor{ID: 12, Name: "AuthGrantRequest", MinSize: 1, MaxSize: 4096, Compressed: false})
	register(Descriptor{ID: 13, Name: "AuthGrantResponse", MinSize: 1, MaxSize: 4096, Compressed: false})
	register(Descriptor{ID: 14, Name: "AuthTokenRequest", MinSize: 1, MaxSize: 4096, Compressed: false})
	register(Descriptor{ID: 15, Name: "AuthTokenResponse", MinSize: 1, MaxSize: 4096, Compressed: false})
	register(Descriptor{ID: 16, Name: "AuthFailure", MinSize: 1, MaxSize: 1024, Compressed: false})
	register(Descriptor{ID: 17, Name: "AuthSuccess", MinSize: 1, MaxSize: 256, Compressed: false})
	register(Descriptor{ID: 18, Name: "AuthRefreshed", MinSize: 1, MaxSize: 256, Compressed: false})

	// Setup (20-34).
	for id := uint32(20); id <= 34; id++ {
		register(Descriptor{ID: id, Name: setupName(id), MinSize: 0, MaxSize: 65536, Compressed: id >= 28})
	}

	// Assets (40-85): the asset-update packet family.
	for _, a := range assetDescriptors {
		register(a)
	}

	// Player (100-119).
	for id := uint32(100); id <= 119; id++ {
		register(Descriptor{ID: id, Name: playerName(id), MinSize: 1, MaxSize: 4096, Compressed: false})
	}

	// World (131-166), overlapping the Entity band (160-166).
	for id := uint32(131); id <= 166; id++ {
		name := worldName(id)
		register(Descriptor{ID: id, Name: name, MinSize: 1, MaxSize: 1 << 20, Compressed: id >= 160})
	}

	// Inventory (170-179).
	for id := uint32(170); id <= 179; id++ {
		register(Descriptor{ID: id, Name: inventoryName(id), MinSize: 1, MaxSize: 16384, Compressed: false})
	}

	// Window (200-204).
	for id := uint32(200); id <= 204; id++ {
		register(Descriptor{ID: id, Name: windowName(id), MinSize: 1, MaxSize: 2048, Compressed: false})
	}

	// Interface (210-234).
	for id := uint32(210); id <= 234; id++ {
		register(Descriptor{ID: id, Name: interfaceName(id), MinSize: 0, MaxSize: 8192, Compressed: false})
	}
}

func setupName(id uint32) string {
	names := map[uint32]string{
		20: "JoinWorld", 21: "SpawnPosition", 22: "WorldConfig", 23: "PlayerAbilities",
		24: "ResourcePack", 25: "PluginMessage", 26: "ServerBrand", 27: "TimeSync",
		28: "ChunkBatchStart", 29: "ChunkBatchEnd", 30: "InitialChunkData", 31: "DifficultySync",
		32: "RecipeBook", 33: "TagSync", 34: "SetupComplete",
	}
	return nameOr(names, id, "Setup")
}

func playerName(id uint32) string {
	names := map[uint32]string{
		100: "PlayerPosition", 101: "PlayerLook", 102: "PlayerPositionLook", 103: "PlayerVelocity",
		104: "PlayerHealth", 105: "PlayerHunger", 106: "PlayerExperience", 107: "PlayerGameMode",
		108: "PlayerRespawn", 109: "PlayerAnimation", 110: "PlayerAction", 111: "PlayerDigging",
		112: "PlayerUseItem", 113: "PlayerSwapHands", 114: "PlayerSneak", 115: "PlayerSprint",
		116: "PlayerChat", 117: "PlayerCommand", 118: "PlayerDisplayName", 119: "PlayerLatency",
	}
	return nameOr(names, id, "Player")
}

func worldName(id uint32) string {
	names := map[uint32]string{
		131: "ChunkData", 132: "ChunkUnload", 133: "BlockChange", 134: "MultiBlockChange",
		135: "BlockBreakAnimation", 136: "BlockAction", 137: "Explosion", 138: "WorldBorder",
		139: "WorldEvent", 140: "WeatherState", 141: "TimeUpdate", 142: "MapData",
		143: "SoundEffect", 144: "ParticleEffect", 145: "Sculk", 146: "ChunkLight",
		147: "ChunkBiomes", 148: "RegionUnload", 149: "BossBar", 150: "Advancement",
		151: "Statistics", 152: "Title", 153: "TabList", 154: "Scoreboard",
		155: "Team", 156: "UpdateSign", 157: "UpdateBanner", 158: "UpdateBed",
		159: "UpdateSpawner", 160: "EntitySpawn", 161: "EntityDespawn", 162: "EntityMetadata",
		163: "EntityMove", 164: "EntityVelocity", 165: "EntityEquipment", 166: "EntityStatus",
	}
	return nameOr(names, id, "World")
}

func inventoryName(id uint32) string {
	names := map[uint32]string{
		170: "WindowItems", 171: "WindowSetSlot", 172: "WindowClick", 173: "WindowClose",
		174: "WindowConfirm", 175: "CreativeSlot", 176: "HeldItemChange", 177: "ItemPickup",
		178: "ItemDrop", 179: "CraftRecipe",
	}
	return nameOr(names, id, "Inventory")
}

func windowName(id uint32) string {
	names := map[uint32]string{
		200: "OpenWindow", 201: "CloseWindow", 202: "WindowProperty", 203: "SetCursorItem", 204: "WindowTitle",
	}
	return nameOr(names, id, "Window")
}

func interfaceName(id uint32) string {
	names := map[uint32]string{
		210: "OpenSign", 211: "OpenBook", 212: "OpenMap", 213: "OpenMerchant",
		214: "OpenHorse", 215: "OpenLectern", 216: "OpenCommandBlock", 217: "OpenStructureBlock",
		218: "OpenJigsaw", 219: "ServerData", 220: "ResourcePackStatus", 221: "NBTQueryResponse",
		222: "SelectAdvancementTab", 223: "PlayerInfo", 224: "PlayerListHeaderFooter",
		225: "VehicleMove", 226: "OpenHorseInventory", 227: "Camera", 228: "CooldownSet",
		229: "InputLock", 230: "Passengers", 231: "Facing", 232: "Look", 233: "SetTitleTimes", 234: "ClearTitles",
	}
	return nameOr(names, id, "Interface")
}

func nameOr(names map[uint32]string, id uint32, prefix string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return prefix
}
