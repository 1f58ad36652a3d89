package metric

import (
	"fmt"

	"github.com/swdee/go-nucleiseg"
	"gonum.org/v1/gonum/stat"
	"gorgonia.org/tensor"
)

// MeanScore averages Score over the leading batch dimension of a pair of
// [batch, height, width] tensors, as produced by a model's validation pass.
// Tensor values are detached into plain float64 maps before scoring, no
// device or gradient state survives into the metric.  Batch order is
// preserved solely so the averaging is reproducible
func MeanScore(pred, truth tensor.Tensor, opts Options) (float64, error) {

	predShape := pred.Shape()
	truthShape := truth.Shape()

	if len(predShape) != 3 {
		return 0, fmt.Errorf("expected [batch, height, width] tensor, got shape %v",
			predShape)
	}

	if !predShape.Eq(truthShape) {
		return 0, fmt.Errorf("shape mismatch: %v vs %v", predShape, truthShape)
	}

	batch := predShape[0]
	height := predShape[1]
	width := predShape[2]

	predData, err := tensorData(pred)

	if err != nil {
		return 0, err
	}

	truthData, err := tensorData(truth)

	if err != nil {
		return 0, err
	}

	scores := make([]float64, batch)
	size := height * width

	for b := 0; b < batch; b++ {

		predMap, err := nucleiseg.FloatMapFromSlice(
			predData[b*size:(b+1)*size], width, height)

		if err != nil {
			return 0, err
		}

		truthMap, err := nucleiseg.FloatMapFromSlice(
			truthData[b*size:(b+1)*size], width, height)

		if err != nil {
			return 0, err
		}

		score, err := Score(predMap, truthMap, opts)

		if err != nil {
			return 0, fmt.Errorf("batch item %d: %w", b, err)
		}

		scores[b] = score
	}

	return stat.Mean(scores, nil), nil
}

// tensorData detaches the tensor's backing storage into a fresh float64
// slice
func tensorData(t tensor.Tensor) ([]float64, error) {

	switch data := t.Data().(type) {

	case []float64:
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil

	case []float32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported tensor dtype %v", t.Dtype())
	}
}
