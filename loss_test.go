package cgan_go

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func lossVector(g *gorgonia.ExprGraph, name string, data []float64) *gorgonia.Node {
	backing := tensor.New(tensor.WithShape(len(data)), tensor.WithBacking(data))
	return gorgonia.NewVector(g, gorgonia.Float64, gorgonia.WithShape(len(data)), gorgonia.WithName(name), gorgonia.WithValue(backing))
}

func evalScalar(t *testing.T, g *gorgonia.ExprGraph, node *gorgonia.Node) float64 {
	t.Helper()
	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	value, ok := node.Value().Data().(float64)
	require.True(t, ok, "loss node does not hold a float64 scalar")
	return value
}

func TestMSELossMean(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{1, 2, 3})
	b := lossVector(g, "b", []float64{0, 2, 5})
	loss, err := MSELoss(a, b)
	require.NoError(t, err)
	// ((1-0)^2 + 0 + (3-5)^2) / 3
	require.InDelta(t, 5.0/3.0, evalScalar(t, g, loss), 1e-9)
}

func TestMSELossSumReduction(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{1, 2, 3})
	b := lossVector(g, "b", []float64{0, 2, 5})
	loss, err := MSELoss(a, b, LossReductionSum)
	require.NoError(t, err)
	require.InDelta(t, 5.0, evalScalar(t, g, loss), 1e-9)
}

func TestL1Loss(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{1, 2, 3})
	b := lossVector(g, "b", []float64{0, 2, 5})
	loss, err := L1Loss(a, b)
	require.NoError(t, err)
	require.InDelta(t, 1.0, evalScalar(t, g, loss), 1e-9)
}

func TestCrossEntropyLoss(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{0.5, 0.5})
	b := lossVector(g, "b", []float64{1, 0})
	loss, err := CrossEntropyLoss(a, b)
	require.NoError(t, err)
	// (-1*log(0.5) - 0*log(0.5)) / 2
	require.InDelta(t, math.Log(2)/2, evalScalar(t, g, loss), 1e-9)
}

func TestBinaryCrossEntropyLoss(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{0.5, 0.5})
	b := lossVector(g, "b", []float64{1, 0})
	loss, err := BinaryCrossEntropyLoss(a, b)
	require.NoError(t, err)
	// Both terms reduce to log(2) per element
	require.InDelta(t, math.Log(2), evalScalar(t, g, loss), 1e-9)
}

func TestHuberLoss(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{1, 2, 3})
	b := lossVector(g, "b", []float64{0, 2, 5})
	loss, err := HuberLoss(a, b, 1.0)
	require.NoError(t, err)
	expected := ((math.Sqrt(2) - 1) + 0 + (math.Sqrt(5) - 1)) / 3
	require.InDelta(t, expected, evalScalar(t, g, loss), 1e-9)
}

func TestHuberLossRejectsUnsupportedDelta(t *testing.T) {
	g := gorgonia.NewGraph()
	a := lossVector(g, "a", []float64{1})
	b := lossVector(g, "b", []float64{0})
	_, err := HuberLoss(a, b, "1.0")
	require.Error(t, err)
}
