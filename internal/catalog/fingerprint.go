package catalog

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of the catalog contents.
// Order matters: two catalogs with the same entries in a different order
// have different fingerprints.
func (c *Catalog) Fingerprint() string {
	h, _ := blake2b.New256(nil) // nil key never fails

	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}

	for _, d := range c.Definitions() {
		writeString(string(d.Type))
		writeString(d.Template)
		writeFloat(float64(d.Base.HP))
		writeFloat(float64(d.Base.Damage))
		writeFloat(d.Base.Speed)
		writeFloat(d.SpawnInterval)
		writeFloat(d.Multipliers.HP)
		writeFloat(d.Multipliers.Damage)
		writeFloat(d.Multipliers.Speed)
		writeFloat(d.Multipliers.SpawnInterval)
	}

	return hex.EncodeToString(h.Sum(nil))
}
