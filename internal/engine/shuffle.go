package engine

import (
	"fmt"
	"strconv"
)

// maxShuffleSize caps the permutation held in memory for one pass.
const maxShuffleSize = 1 << 20

// ShuffleValue returns the identifier at cursor when the range is visited as
// a sequence of seeded permutations. Cursor n*k .. n*k+n-1 (n = max-min)
// covers pass k, and no identifier repeats within a pass.
func ShuffleValue(seed, cursor, min, max int64) (int64, error) {
	b := Bounds{Min: min, Max: max}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	n := b.Size()
	if n > maxShuffleSize {
		return 0, fmt.Errorf("engine: shuffle range of %d exceeds %d", n, maxShuffleSize)
	}
	pass, offset := cursor/n, cursor%n
	if offset < 0 {
		pass--
		offset += n
	}
	perm := Permutation(seed, pass, int(n))
	return b.Min + int64(perm[offset]), nil
}

// Permutation returns a Fisher-Yates shuffle of [0, n) for the given seed
// and pass. The result is deterministic.
func Permutation(seed, pass int64, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	bs := newByteStream(seed, "pass:"+strconv.FormatInt(pass, 10))
	for i := n - 1; i > 0; i-- {
		j := int(scaleIndex(bs.nextFloat(), int64(i+1)))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
