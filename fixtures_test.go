package cgan_go

import (
	"gorgonia.org/gorgonia"
)

const (
	testNoiseDim       = 2
	testDataDim        = 1
	testConditionalDim = 1
)

// buildTestGenerator Single linear layer mapping [noise | conditional] rows straight to data space.
// Deliberately tiny: enough to learn "output = conditional mean + scaled noise".
func buildTestGenerator(g *gorgonia.ExprGraph, prefix string) *GeneratorNet {
	inputWidth := testNoiseDim + testConditionalDim
	w := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(testDataDim, inputWidth), gorgonia.WithName(prefix+"_w0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, testDataDim), gorgonia.WithName(prefix+"_b0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	return Generator(
		&Layer{
			WeightNode: w,
			BiasNode:   b,
			Type:       LayerLinear,
			Activation: NoActivation,
		},
	)
}

// buildTestDiscriminator Two dense layers over [data | conditional] rows with sigmoid head.
func buildTestDiscriminator(g *gorgonia.ExprGraph, prefix string) *DiscriminatorNet {
	inputWidth := testDataDim + testConditionalDim
	w0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(10, inputWidth), gorgonia.WithName(prefix+"_w0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 10), gorgonia.WithName(prefix+"_b0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	w1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 10), gorgonia.WithName(prefix+"_w1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, 1), gorgonia.WithName(prefix+"_b1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	return Discriminator(
		&Layer{
			WeightNode: w0,
			BiasNode:   b0,
			Type:       LayerLinear,
			Activation: Rectify,
		},
		&Layer{
			WeightNode: w1,
			BiasNode:   b1,
			Type:       LayerLinear,
			Activation: Sigmoid,
		},
	)
}

func testDefinition(batchSize int) Definition {
	return Definition{
		BatchSize:          batchSize,
		NoiseDim:           testNoiseDim,
		DataDims:           []int{testDataDim},
		ConditionalDims:    []int{testConditionalDim},
		BuildGenerator:     buildTestGenerator,
		BuildDiscriminator: buildTestDiscriminator,
	}
}

// gaussianBatches Training data drawn from a Gaussian distribution where the mean is the conditional input
func gaussianBatches(numBatches, batchSize int, seed int64) <-chan *Batch {
	return ConditionalGaussianBatches(numBatches, batchSize, 10.0, 2.0, NewNoiseSource(seed))
}

// singleBatch Materializes one synthetic batch for forward-pass checks
func singleBatch(batchSize int, seed int64) *Batch {
	return <-gaussianBatches(1, batchSize, seed)
}
