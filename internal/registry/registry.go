// Package registry holds the static packet-id table: the single source of
// truth a frame decoder consults to pick a codec and validate declared
// length. Each entry is a {id, name, min_size, max_size, compressed}
// descriptor.
package registry

import "fmt"

// Descriptor is an immutable packet registry entry. Identifiers are
// globally unique; min_size <= max_size always, with equality for
// fixed-size packets.
type Descriptor struct {
	ID         uint32
	Name       string
	MinSize    uint32
	MaxSize    uint32
	Compressed bool
}

// Range names one of the registry's dense id bands.
type Range struct {
	Name string
	Low  uint32
	High uint32
}

// Ranges enumerates the named dense bands, in ascending order.
var Ranges = []Range{
	{"connection", 0, 3},
	{"auth", 10, 18},
	{"setup", 20, 34},
	{"assets", 40, 85},
	{"player", 100, 119},
	{"world", 131, 166},
	{"entity", 160, 166},
	{"inventory", 170, 179},
	{"window", 200, 204},
	{"interface", 210, 234},
}

// RangeOf returns the name of the dense band containing id, or "" if id
// falls outside every known band.
func RangeOf(id uint32) string {
	for _, r := range Ranges {
		if id >= r.Low && id <= r.High {
			return r.Name
		}
	}
	return ""
}

var (
	byID    = make(map[uint32]Descriptor)
	ordered []Descriptor
)

// register is called only from init() in this package's data files; panics
// on a duplicate id since that would violate the uniqueness invariant at
// program start, long before any packet ever crosses the wire.
func register(d Descriptor) {
	if d.MinSize > d.MaxSize {
		panic(fmt.Sprintf("registry: %s (id %d): min_size %d > max_size %d", d.Name, d.ID, d.MinSize, d.MaxSize))
	}
	if _, exists := byID[d.ID]; exists {
		panic(fmt.Sprintf("registry: duplicate packet id %d (%s)", d.ID, d.Name))
	}
	byID[d.ID] = d
	ordered = append(ordered, d)
}

// Lookup returns the descriptor for id, and whether it was found.
func Lookup(id uint32) (Descriptor, bool) {
	d, ok := byID[id]
	return d, ok
}

// Name returns the descriptor name for id, or "Unknown" if id is not
// registered.
func Name(id uint32) string {
	if d, ok := byID[id]; ok {
		return d.Name
	}
	return "Unknown"
}

// All returns every registered descriptor in insertion order. The returned
// slice is a fresh copy; callers may not mutate the registry through it.
func All() []Descriptor {
	out := make([]Descriptor, len(ordered))
	copy(out, ordered)
	return out
}

// Validate reports whether a decoded payload length is within the
// descriptor's declared [min_size, max_size] bounds.
func (d Descriptor) Validate(decodedLength int) bool {
	return decodedLength >= int(d.MinSize) && decodedLength <= int(d.MaxSize)
}
