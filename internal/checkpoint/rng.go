package checkpoint

import (
	"encoding/binary"
	"math/rand"
)

// SaveRNGState encodes seed as an opaque blob. This is the concrete,
// working half of the opaque-RNG-blob interface the original only
// stubbed: it round-trips an int64 seed a caller explicitly supplies at
// mark time, rather than attempting to introspect an arbitrary
// already-running generator's internal state, which math/rand does not
// expose. Ops that consult an RNG outside of that supplied seed (a global
// source, or a generator never captured here) cannot be made deterministic
// through this interface alone.
func SaveRNGState(seed int64) []byte {
	blob := make([]byte, 8)
	binary.LittleEndian.PutUint64(blob, uint64(seed))
	return blob
}

// RestoreRNGState decodes blob and returns a *rand.Rand seeded identically
// to the one SaveRNGState captured.
func RestoreRNGState(blob []byte) *rand.Rand {
	if len(blob) < 8 {
		return rand.New(rand.NewSource(0)) //nolint:gosec // deterministic replay, not security-sensitive
	}
	seed := int64(binary.LittleEndian.Uint64(blob))
	return rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic replay, not security-sensitive
}
