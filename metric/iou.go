// Package metric scores predicted object instances against ground truth
// using an average precision over a sweep of Intersection over Union
// thresholds.
package metric

import (
	"fmt"

	"github.com/swdee/go-nucleiseg"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// iouFloor replaces degenerate zero unions so the division is defined, such
// cells have zero intersection by construction and score IoU 0
const iouFloor = 1e-9

// sweep of IoU thresholds the precision is averaged over
var sweepThresholds = []float64{
	0.50, 0.55, 0.60, 0.65, 0.70, 0.75, 0.80, 0.85, 0.90, 0.95,
}

// Options control how the prediction and ground truth inputs are interpreted
type Options struct {
	// Threshold is the probability cutoff used to binarize probability
	// map inputs before instance labeling
	Threshold float64
	// InstanceLevel treats the truth input as an already labeled instance
	// image instead of a probability map
	InstanceLevel bool
}

// Confusion is the instance match outcome at one IoU threshold
type Confusion struct {
	// Threshold is the IoU cutoff a pair must exceed to match
	Threshold float64
	// TP is the number of true instances matched to exactly one
	// predicted instance
	TP int
	// FP is the number of predicted instances matched to no true instance
	FP int
	// FN is the number of true instances matched to no predicted instance
	FN int
	// Precision is TP/(TP+FP+FN), 0 when the denominator is 0
	Precision float64
}

// Score computes the mean precision of the predicted instances against the
// ground truth over the 10 threshold sweep 0.50 to 0.95.  The prediction is
// binarized and connected component labeled, the truth likewise unless
// opts.InstanceLevel is set in which case its values are used as instance
// labels directly.  Returns a value in [0,1]
func Score(pred, truth *nucleiseg.FloatMap, opts Options) (float64, error) {

	table, err := ScoreTable(pred, truth, opts)

	if err != nil {
		return 0, err
	}

	precs := make([]float64, len(table))

	for i, row := range table {
		precs[i] = row.Precision
	}

	return stat.Mean(precs, nil), nil
}

// ScoreTable computes the per threshold confusion counts behind Score,
// useful for printing a diagnostic precision table
func ScoreTable(pred, truth *nucleiseg.FloatMap, opts Options) ([]Confusion, error) {

	if err := nucleiseg.CheckShapes(pred, truth); err != nil {
		return nil, fmt.Errorf("prediction and truth: %w", err)
	}

	predLabels := nucleiseg.LabelComponents(
		pred.Threshold(opts.Threshold), nucleiseg.Conn8)

	var truthLabels *nucleiseg.LabelMap

	if opts.InstanceLevel {
		truthLabels = labelsFromValues(truth)
	} else {
		truthLabels = nucleiseg.LabelComponents(
			truth.Threshold(opts.Threshold), nucleiseg.Conn8)
	}

	iou := IoUMatrix(truthLabels, predLabels)

	nT := len(truthLabels.Labels())
	nP := len(predLabels.Labels())

	table := make([]Confusion, len(sweepThresholds))

	for i, t := range sweepThresholds {

		var tp, fp, fn int

		if nT == 0 || nP == 0 {
			// no pairs exist, every instance on either side is
			// unmatched
			fp = nP
			fn = nT
		} else {
			tp, fp, fn = ConfusionAt(iou, t)
		}

		row := Confusion{
			Threshold: t,
			TP:        tp,
			FP:        fp,
			FN:        fn,
		}

		if tp+fp+fn > 0 {
			row.Precision = float64(tp) / float64(tp+fp+fn)
		}

		table[i] = row
	}

	return table, nil
}

// IoUMatrix builds the contingency table of Intersection over Union values
// between every (true instance, predicted instance) pair, background label 0
// excluded.  Row i corresponds to the i-th smallest true label, column j to
// the j-th smallest predicted label.  The matrix is empty when either image
// has no instances
func IoUMatrix(truthLabels, predLabels *nucleiseg.LabelMap) *mat.Dense {

	trueIdx := labelIndex(truthLabels)
	predIdx := labelIndex(predLabels)

	nT := len(trueIdx)
	nP := len(predIdx)

	if nT == 0 || nP == 0 {
		return &mat.Dense{}
	}

	areaT := make([]float64, nT)
	areaP := make([]float64, nP)
	inter := mat.NewDense(nT, nP, nil)

	for i, tv := range truthLabels.Data {

		pv := predLabels.Data[i]

		ti, tok := trueIdx[tv]
		pi, pok := predIdx[pv]

		if tok {
			areaT[ti]++
		}

		if pok {
			areaP[pi]++
		}

		if tok && pok {
			inter.Set(ti, pi, inter.At(ti, pi)+1)
		}
	}

	iou := mat.NewDense(nT, nP, nil)

	for i := 0; i < nT; i++ {
		for j := 0; j < nP; j++ {

			in := inter.At(i, j)
			union := areaT[i] + areaP[j] - in

			if union == 0 {
				union = iouFloor
			}

			iou.Set(i, j, in/union)
		}
	}

	return iou
}

// ConfusionAt derives the instance match counts from an IoU contingency
// matrix at the given threshold.  A pair matches when its IoU strictly
// exceeds the threshold.  True instances (rows) matching exactly one
// prediction count as TP, rows with no match as FN and prediction columns
// with no match as FP
func ConfusionAt(iou mat.Matrix, t float64) (tp, fp, fn int) {

	nT, nP := iou.Dims()

	colMatched := make([]bool, nP)

	for i := 0; i < nT; i++ {

		rowMatches := 0

		for j := 0; j < nP; j++ {
			if iou.At(i, j) > t {
				rowMatches++
				colMatched[j] = true
			}
		}

		switch rowMatches {
		case 0:
			fn++
		case 1:
			tp++
		}
	}

	for j := 0; j < nP; j++ {
		if !colMatched[j] {
			fp++
		}
	}

	return tp, fp, fn
}

// labelsFromValues reads a probability map whose values are already integer
// instance labels, used for instance level ground truth
func labelsFromValues(fm *nucleiseg.FloatMap) *nucleiseg.LabelMap {

	labels := nucleiseg.NewLabelMap(fm.Width, fm.Height)

	for i, v := range fm.Data {
		if v > 0 {
			labels.Data[i] = int(v + 0.5)
		}
	}

	return labels
}

// labelIndex maps each positive label present in the image to a dense index
// in ascending label order
func labelIndex(labels *nucleiseg.LabelMap) map[int]int {

	idx := make(map[int]int)

	for i, v := range labels.Labels() {
		idx[v] = i
	}

	return idx
}
