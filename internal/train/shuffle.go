package train

import (
	"math/rand/v2"

	"github.com/adampy/neuralnet/internal/mnist"
)

// Shuffle permutes images in place with a Fisher–Yates shuffle: for i from
// n-1 down to 1, images[i] is swapped with images[j], j uniform in [0, i].
func Shuffle(images []mnist.Image, r *rand.Rand) {
	for i := len(images) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		images[i], images[j] = images[j], images[i]
	}
}
