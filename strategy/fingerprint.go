package strategy

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// duplicateDistance is the Hamming-distance ceiling under which two pages
// are treated as the same content served from aliased paths.
const duplicateDistance = 3

// contentFingerprint computes a 64-bit simhash of the page text: each word
// votes its FNV hash bits into a weight vector, and the sign of each slot
// becomes one fingerprint bit. Near-identical pages land within a few bits
// of each other.
func contentFingerprint(text string) uint64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var weights [64]int
	for _, w := range words {
		h := fnv.New64a()
		h.Write([]byte(w))
		sum := h.Sum64()
		for bit := 0; bit < 64; bit++ {
			if sum&(1<<uint(bit)) != 0 {
				weights[bit]++
			} else {
				weights[bit]--
			}
		}
	}

	var fp uint64
	for bit := 0; bit < 64; bit++ {
		if weights[bit] > 0 {
			fp |= 1 << uint(bit)
		}
	}
	return fp
}

// isDuplicatePage reports whether fp is within duplicateDistance of any
// previously seen fingerprint.
func isDuplicatePage(fp uint64, seen []uint64) bool {
	for _, prev := range seen {
		if bits.OnesCount64(fp^prev) <= duplicateDistance {
			return true
		}
	}
	return false
}
