package visualization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// flatRange is the coordinate spread below which an axis is treated as constant
const flatRange = 1e-9

// Reducer projects row vectors into a lower dimensional space
type Reducer interface {
	Reduce(vectors [][]float64, dims int) ([][]float64, error)
	Name() string
}

// PCAReducer implements PCA dimensionality reduction
type PCAReducer struct{}

// NewPCAReducer creates a new PCA reducer
func NewPCAReducer() *PCAReducer {
	return &PCAReducer{}
}

// Name returns the reducer name
func (r *PCAReducer) Name() string {
	return "pca"
}

// Reduce projects vectors onto their first dims principal components. The
// result has min(dims, rows, columns) columns scaled to [-1, 1].
func (r *PCAReducer) Reduce(vectors [][]float64, dims int) ([][]float64, error) {
	if len(vectors) == 0 {
		return nil, nil
	}

	n := len(vectors)
	d := len(vectors[0])
	if d == 0 {
		return nil, fmt.Errorf("empty vectors")
	}

	if dims > d {
		dims = d
	}
	if dims > n {
		dims = n
	}

	X := mat.NewDense(n, d, nil)
	for i, v := range vectors {
		if len(v) != d {
			return nil, fmt.Errorf("vector %d has %d dimensions, want %d", i, len(v), d)
		}
		X.SetRow(i, v)
	}

	centered := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, X)
		mean := stat.Mean(col, nil)
		for i := range col {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	result := mat.NewDense(n, dims, nil)
	result.Mul(centered, v.Slice(0, d, 0, dims))

	reduced := make([][]float64, n)
	for i := range reduced {
		reduced[i] = mat.Row(nil, i, result)
	}

	return normalizeCoordinates(reduced), nil
}

// normalizeCoordinates scales every axis to [-1, 1]; constant axes collapse to 0
func normalizeCoordinates(coords [][]float64) [][]float64 {
	if len(coords) == 0 {
		return coords
	}

	dims := len(coords[0])
	mins := make([]float64, dims)
	maxs := make([]float64, dims)
	for j := 0; j < dims; j++ {
		mins[j] = math.MaxFloat64
		maxs[j] = -math.MaxFloat64
	}

	for _, coord := range coords {
		for j, v := range coord {
			mins[j] = math.Min(mins[j], v)
			maxs[j] = math.Max(maxs[j], v)
		}
	}

	normalized := make([][]float64, len(coords))
	for i, coord := range coords {
		normalized[i] = make([]float64, dims)
		for j, v := range coord {
			if rng := maxs[j] - mins[j]; rng > flatRange {
				normalized[i][j] = 2*(v-mins[j])/rng - 1
			}
		}
	}

	return normalized
}
