package multilabel

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// maxLabelsetSize bounds k so a label combination fits in a uint64 bitmask.
const maxLabelsetSize = 64

// powersetCodec maps the label combinations of one labelset to class ids
// and back. Bit b of a mask is label labels[b]. Ids follow ascending mask
// order over the combinations observed in training.
type powersetCodec struct {
	labels []int
	ids    map[uint64]int
	masks  []uint64
}

// newPowersetCodec builds the codec for labels from the training labels Y
// and returns the encoded N×1 class target.
func newPowersetCodec(labels []int, Y mat.Matrix) (*powersetCodec, *mat.Dense) {
	n, _ := Y.Dims()
	rowMasks := make([]uint64, n)
	seen := make(map[uint64]bool)
	for i := 0; i < n; i++ {
		var mask uint64
		for b, j := range labels {
			if Y.At(i, j) != 0 {
				mask |= 1 << uint(b)
			}
		}
		rowMasks[i] = mask
		seen[mask] = true
	}

	c := &powersetCodec{
		labels: slices.Clone(labels),
		ids:    make(map[uint64]int, len(seen)),
		masks:  make([]uint64, 0, len(seen)),
	}
	for mask := range seen {
		c.masks = append(c.masks, mask)
	}
	slices.Sort(c.masks)
	for id, mask := range c.masks {
		c.ids[mask] = id
	}

	target := mat.NewDense(n, 1, nil)
	for i, mask := range rowMasks {
		target.Set(i, 0, float64(c.ids[mask]))
	}
	return c, target
}

// nClasses returns the number of distinct combinations seen in training
func (c *powersetCodec) nClasses() int {
	return len(c.masks)
}

// decode writes the combination of class id into dst, which is indexed by
// global label. Only the codec's labels are touched.
func (c *powersetCodec) decode(id int, dst []float64) error {
	if id < 0 || id >= len(c.masks) {
		return errors.NewValueError("powerset decode", "class id was not seen during training")
	}
	mask := c.masks[id]
	for b, j := range c.labels {
		if mask&(1<<uint(b)) != 0 {
			dst[j] = 1
		} else {
			dst[j] = 0
		}
	}
	return nil
}
