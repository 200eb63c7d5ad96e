package cgan_go

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestSliceRows(t *testing.T) {
	mat := tensor.New(tensor.WithShape(4, 2), tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6, 7, 8}))
	sliced, err := sliceRows(mat, 1, 3)
	require.NoError(t, err)
	require.True(t, sliced.Shape().Eq(tensor.Shape{2, 2}))
	require.Equal(t, []float64{3, 4, 5, 6}, sliced.Data().([]float64))
}

func TestSliceRowsSingleRowKeepsMatrixShape(t *testing.T) {
	mat := tensor.New(tensor.WithShape(3, 2), tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6}))
	sliced, err := sliceRows(mat, 2, 3)
	require.NoError(t, err)
	require.True(t, sliced.Shape().Eq(tensor.Shape{1, 2}))
	require.Equal(t, []float64{5, 6}, sliced.Data().([]float64))
}

func TestPadRows(t *testing.T) {
	mat := tensor.New(tensor.WithShape(2, 3), tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6}))
	padded, err := padRows(mat, 4)
	require.NoError(t, err)
	require.True(t, padded.Shape().Eq(tensor.Shape{4, 3}))
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6, 0, 0, 0, 0, 0, 0}, padded.Data().([]float64))
}

func TestPadRowsNoop(t *testing.T) {
	mat := tensor.New(tensor.WithShape(2, 3), tensor.WithBacking([]float64{1, 2, 3, 4, 5, 6}))
	padded, err := padRows(mat, 2)
	require.NoError(t, err)
	require.Equal(t, mat, padded)
}

func TestResidualStats(t *testing.T) {
	values := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float64{1, 2, 3, 4}))
	references := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float64{0, 0, 0, 0}))
	mean, std, err := ResidualStats(values, references)
	require.NoError(t, err)
	require.InDelta(t, 2.5, mean, 1e-9)
	require.Greater(t, std, 0.0)
}

func TestResidualStatsSizeMismatch(t *testing.T) {
	values := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float64{1, 2, 3, 4}))
	references := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0, 0}))
	_, _, err := ResidualStats(values, references)
	require.Error(t, err)
}

func TestPlotXYRejectsMatrices(t *testing.T) {
	mat := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{1, 2, 3, 4}))
	vec := tensor.New(tensor.WithShape(4), tensor.WithBacking([]float64{1, 2, 3, 4}))
	require.Error(t, PlotXY(mat, vec, "unused.png"))
	require.Error(t, PlotXY(vec, mat, "unused.png"))
}
