/*
go-nucleiseg post-processes the probability maps produced by a pixel
classification model into discrete object instances, in the spirit of the
nuclei segmentation pipelines used for microscopy competition submissions.

The root package provides the 2D array types (FloatMap, BitMask, LabelMap)
along with the primitive image operations the pipeline is built on: connected
component labeling and the exact Euclidean distance transform.

The postprocess subpackage turns a probability map into separated object
instances using a marker controlled watershed and encodes each instance mask
as run-length pairs.  The metric subpackage scores predicted instances against
ground truth with an average precision over a sweep of IoU thresholds.

See example code and usage in the example subdirectory.
*/
package nucleiseg
