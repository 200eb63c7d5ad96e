package main

import (
	"fmt"
	"os"

	cgan "github.com/LdDl/cgan-go"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var (
	outputFolder    = "./output"
	batchSize       = 100
	noiseDim        = 2
	numBatches      = 1000
	numTestSamples  = 1000
	meanLimit       = 10.0
	stddev          = 2.0
	nGenerators     = 2
	nDiscriminators = 2
)

func main() {
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		panic(err)
	}

	def := cgan.Definition{
		BatchSize:          batchSize,
		NoiseDim:           noiseDim,
		DataDims:           []int{1},
		ConditionalDims:    []int{1},
		BuildGenerator:     defineGenerator,
		BuildDiscriminator: defineDiscriminator,
	}
	model, err := cgan.NewGANModel(def,
		cgan.WithGenerators(nGenerators),
		cgan.WithDiscriminators(nDiscriminators),
		cgan.WithLearningRate(0.01),
		cgan.WithSeed(1337),
	)
	if err != nil {
		panic(err)
	}
	defer model.Close()

	batches := cgan.ConditionalGaussianBatches(numBatches, batchSize, meanLimit, stddev, cgan.NewNoiseSource(42))
	err = model.Fit(batches, cgan.WithGeneratorSteps(0.5), cgan.WithCheckpointInterval(0), cgan.WithLogEvery(100))
	if err != nil {
		panic(err)
	}
	fmt.Printf("Trained for %d steps\n", model.GlobalStep())

	// Every generator of the mixture should track the conditional mean on its own
	testSource := cgan.NewNoiseSource(7)
	means := testSource.UniformRangeRandDense(numTestSamples, 1, 0, meanLimit)
	meansVec := means.Clone().(*tensor.Dense)
	if err := meansVec.Reshape(numTestSamples); err != nil {
		panic(err)
	}
	for i := 0; i < nGenerators; i++ {
		values, err := model.PredictGenerator(nil, []*tensor.Dense{means}, i)
		if err != nil {
			panic(err)
		}
		residualMean, residualStd, err := cgan.ResidualStats(values, means)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Generator #%d residuals: mean=%f std=%f\n", i, residualMean, residualStd)

		valuesVec := values.Clone().(*tensor.Dense)
		if err := valuesVec.Reshape(numTestSamples); err != nil {
			panic(err)
		}
		err = cgan.PlotXY(meansVec, valuesVec, fmt.Sprintf("%s/mix_gaussian_gen_%d.png", outputFolder, i))
		if err != nil {
			panic(err)
		}
	}
}

func defineGenerator(g *gorgonia.ExprGraph, prefix string) *cgan.GeneratorNet {
	inputWidth := noiseDim + 1

	shp0 := tensor.Shape{16, inputWidth}
	w0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(shp0...), gorgonia.WithName(prefix+"_w0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, shp0[0]), gorgonia.WithName(prefix+"_b0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))

	shp1 := tensor.Shape{1, 16}
	w1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(shp1...), gorgonia.WithName(prefix+"_w1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, shp1[0]), gorgonia.WithName(prefix+"_b1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))

	return cgan.Generator(
		&cgan.Layer{
			WeightNode: w0,
			BiasNode:   b0,
			Type:       cgan.LayerLinear,
			Activation: cgan.Rectify,
		},
		&cgan.Layer{
			WeightNode: w1,
			BiasNode:   b1,
			Type:       cgan.LayerLinear,
			Activation: cgan.NoActivation,
		},
	)
}

func defineDiscriminator(g *gorgonia.ExprGraph, prefix string) *cgan.DiscriminatorNet {
	inputWidth := 1 + 1

	shp0 := tensor.Shape{10, inputWidth}
	w0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(shp0...), gorgonia.WithName(prefix+"_w0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b0 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, shp0[0]), gorgonia.WithName(prefix+"_b0"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))

	shp1 := tensor.Shape{1, 10}
	w1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(shp1...), gorgonia.WithName(prefix+"_w1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b1 := gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(1, shp1[0]), gorgonia.WithName(prefix+"_b1"), gorgonia.WithInit(gorgonia.GlorotN(1.0)))

	return cgan.Discriminator(
		&cgan.Layer{
			WeightNode: w0,
			BiasNode:   b0,
			Type:       cgan.LayerLinear,
			Activation: cgan.LeakyRectify,
		},
		&cgan.Layer{
			WeightNode: w1,
			BiasNode:   b1,
			Type:       cgan.LayerLinear,
			Activation: cgan.Sigmoid,
		},
	)
}
