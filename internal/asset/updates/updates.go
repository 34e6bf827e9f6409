// Package updates implements the asset-update packet family: concrete
// packet types built on internal/asset's generic serializer core. Every
// packet here declares its ID, IsCompressed, FixedBlockSize,
// VariableFieldCount and MaxSize as Go constants; no per-packet
// nullable-bit-field size or variable-block-start constant is declared
// (UpdateBlockTypes alone also declares NullableFieldBytes). Each exposes
// Serialize/Decode functions built from internal/asset's Writer/Reader and
// dictionary helpers rather than hand-rolled per-field binary.Read calls.
//
// This package implements a representative subset of the ~45-member family
// spanning every entry-body pattern (flat scalar, inline varstring tail,
// nested offset table, recursive tree) against all three dictionary key
// flavors (int, string, 1-byte enum); the remaining asset ids are
// registered in internal/registry without a hand-written
// serializer because they follow the same generic constructors.
package updates

import (
	"errors"

	"github.com/hytalecompat/gameserver/internal/wire"
)

// ErrShortPacket names a packet shorter than its fixed block. The Decode
// functions in this package do not return it: a buffer that runs out of
// bytes surfaces as the underlying internal/wire read error.
var ErrShortPacket = errors.New("updates: packet shorter than its fixed block")

// ErrTooLarge is returned when an input would encode past the packet's
// declared maximum size.
var ErrTooLarge = errors.New("updates: encoded size exceeds packet maximum")

func checkMax(n, max int) error {
	if n > max {
		return ErrTooLarge
	}
	return nil
}

// UUID re-exports internal/wire's UUID type so packet field types read
// naturally as updates.UUID without importing internal/wire everywhere a
// caller touches this package.
type UUID = wire.UUID
