package cgan_go

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func weightMatrix(g *gorgonia.ExprGraph, name string, rows, cols int, data []float64) *gorgonia.Node {
	backing := tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
	return gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(rows, cols), gorgonia.WithName(name), gorgonia.WithValue(backing))
}

func TestNetworkFwdRejectsEmpty(t *testing.T) {
	net := Network{Name: "empty"}
	g := gorgonia.NewGraph()
	input := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 2), gorgonia.WithName("input"))
	require.Error(t, net.Fwd(input, 1))
}

func TestNetworkFwdRejectsNilLayer(t *testing.T) {
	net := Network{Name: "broken", Layers: []*Layer{nil}}
	g := gorgonia.NewGraph()
	input := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 2), gorgonia.WithName("input"))
	require.Error(t, net.Fwd(input, 1))
}

func TestNetworkFwdRejectsNilWeights(t *testing.T) {
	net := Network{Name: "broken", Layers: []*Layer{
		{Type: LayerLinear, Activation: NoActivation},
	}}
	g := gorgonia.NewGraph()
	input := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 2), gorgonia.WithName("input"))
	require.Error(t, net.Fwd(input, 1))
}

func TestNetworkLearnables(t *testing.T) {
	g := gorgonia.NewGraph()
	w0 := weightMatrix(g, "w0", 2, 2, []float64{1, 0, 0, 1})
	b0 := weightMatrix(g, "b0", 1, 2, []float64{0, 0})
	w1 := weightMatrix(g, "w1", 1, 2, []float64{1, 1})
	net := Network{Name: "net", Layers: []*Layer{
		{WeightNode: w0, BiasNode: b0, Type: LayerLinear, Activation: NoActivation},
		{WeightNode: w1, Type: LayerLinear, Activation: NoActivation},
	}}
	require.Len(t, net.Learnables(), 3)
}

func TestNetworkLinearForward(t *testing.T) {
	g := gorgonia.NewGraph()
	w := weightMatrix(g, "w", 1, 2, []float64{2, 3})
	net := Network{Name: "net", Layers: []*Layer{
		{WeightNode: w, Type: LayerLinear, Activation: NoActivation},
	}}
	inputBacking := tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]float64{4, 5}))
	input := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 2), gorgonia.WithName("input"), gorgonia.WithValue(inputBacking))
	require.NoError(t, net.Fwd(input, 1))

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	// Output is a (1,1) matrix, so Data() yields a slice
	out := net.Out().Value().Data().([]float64)
	require.Len(t, out, 1)
	require.InDelta(t, 23.0, out[0], 1e-9)
}

func TestGeneratorConcatenatesConditional(t *testing.T) {
	g := gorgonia.NewGraph()
	w := weightMatrix(g, "w", 1, 3, []float64{1, 1, 1})
	generator := Generator(&Layer{WeightNode: w, Type: LayerLinear, Activation: NoActivation})

	noiseBacking := tensor.New(tensor.WithShape(1, 2), tensor.WithBacking([]float64{1, 2}))
	noise := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 2), gorgonia.WithName("noise"), gorgonia.WithValue(noiseBacking))
	condBacking := tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float64{3}))
	cond := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 1), gorgonia.WithName("conditional"), gorgonia.WithValue(condBacking))
	require.NoError(t, generator.Fwd(1, noise, cond))

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	out := generator.Out().Value().Data().([]float64)
	require.Len(t, out, 1)
	require.InDelta(t, 6.0, out[0], 1e-9)
}

func TestDiscriminatorConcatenatesConditional(t *testing.T) {
	g := gorgonia.NewGraph()
	w := weightMatrix(g, "w", 1, 2, []float64{1, 10})
	discriminator := Discriminator(&Layer{WeightNode: w, Type: LayerLinear, Activation: NoActivation})

	dataBacking := tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float64{2}))
	data := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 1), gorgonia.WithName("data"), gorgonia.WithValue(dataBacking))
	condBacking := tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float64{3}))
	cond := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 1), gorgonia.WithName("conditional"), gorgonia.WithValue(condBacking))
	require.NoError(t, discriminator.Fwd(1, data, cond))

	vm := gorgonia.NewTapeMachine(g)
	defer vm.Close()
	require.NoError(t, vm.RunAll())
	out := discriminator.Out().Value().Data().([]float64)
	require.Len(t, out, 1)
	require.InDelta(t, 32.0, out[0], 1e-9)
}
