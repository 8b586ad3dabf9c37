package render

import (
	"github.com/AOMediaCodec/iamf-tools/obu"
)

// Android channel-order permutations per sound system, written as
// "output channel i takes input channel table[i]". Systems without an
// entry keep the IAMF order. These tables are a fixed external
// contract.
var androidPermutations = map[obu.SoundSystem][]int{
	// Swap the side and back pairs.
	obu.SoundSystemI:  {0, 1, 2, 3, 6, 7, 4, 5},
	obu.SoundSystemJ:  {0, 1, 2, 3, 6, 7, 4, 5, 8, 9, 10, 11},
	obu.SoundSystem10: {0, 1, 2, 3, 6, 7, 4, 5, 8, 9},

	obu.SoundSystemF: {1, 2, 0, 10, 7, 8, 5, 6, 9, 3, 4, 11},
	obu.SoundSystemG: {0, 1, 2, 3, 6, 7, 12, 13, 4, 5, 8, 9, 10, 11},
	obu.SoundSystemH: {0, 1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 15, 12, 14, 13, 16, 20, 17, 18, 19, 22, 21, 23, 9},
}

// Reorder permutes the outer channel slice in place from IAMF order to
// the requested convention. Inner sample slices are moved, never
// copied.
func Reorder(channels [][]float64, ss obu.SoundSystem, ord Ordering) {
	if ord != OrderingAndroid {
		return
	}
	table, ok := androidPermutations[ss]
	if !ok || len(table) != len(channels) {
		return
	}
	orig := make([][]float64, len(channels))
	copy(orig, channels)
	for i, src := range table {
		channels[i] = orig[src]
	}
}
