package grid

import "golang.org/x/crypto/blake2b"

// PaletteSize is the number of display color classes available to renderers.
const PaletteSize = 8

// PaletteIndex maps an event name to a stable palette slot. Two events with
// the same name always receive the same slot, so styling never introduces
// nondeterminism into rendering or tests.
func PaletteIndex(name string) int {
	sum := blake2b.Sum256([]byte(name))
	return int(sum[0]) % PaletteSize
}
