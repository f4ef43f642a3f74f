package value

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)

// Hash returns a structural fingerprint of v consistent with Equal: equal
// values hash equal (2 and 2.0 included).
func Hash(v Value) uint64 {
	h := blake3.New(8, nil)
	OrNull(v).writeHash(h)
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
