package cgan_go

import (
	rng "github.com/leesper/go_rng"
	"gorgonia.org/tensor"
)

// NoiseSource Source of latent space samples. Safe to reseed deterministically for reproducible runs.
//
// Not safe for concurrent use: underlying generators keep mutable state.
//
type NoiseSource struct {
	gaussian *rng.GaussianGenerator
	uniform  *rng.UniformGenerator
}

// NewNoiseSource Constructor for NoiseSource
//
// seed - seed for underlying pseudo-random generators
//
func NewNoiseSource(seed int64) *NoiseSource {
	return &NoiseSource{
		gaussian: rng.NewGaussianGenerator(seed),
		uniform:  rng.NewUniformGenerator(seed),
	}
}

// NormRandDense Return reference to tensor.Dense of shape (batchSize, n) filled with standard normal float64 values
//
// batchSize - Simply batch size
// n - Number of elements in each batch
// Resulting dense will have batchSize*n elements
//
func (src *NoiseSource) NormRandDense(batchSize, n int) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = src.gaussian.Gaussian(0.0, 1.0)
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// UniformRandDense Return reference to tensor.Dense of shape (batchSize, n) filled with pseudo-random float64 values in range [0.0,1.0)
//
// batchSize - Simply batch size
// n - Number of elements in each batch
// Resulting dense will have batchSize*n elements
//
func (src *NoiseSource) UniformRandDense(batchSize, n int) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = src.uniform.Float64()
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// GaussianRandDense Return reference to tensor.Dense of shape (batchSize, n) filled with N(mean, stddev) float64 values
func (src *NoiseSource) GaussianRandDense(batchSize, n int, mean, stddev float64) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = src.gaussian.Gaussian(mean, stddev)
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}

// UniformRangeRandDense Return reference to tensor.Dense of shape (batchSize, n) filled with pseudo-random float64 values in range [low,high)
func (src *NoiseSource) UniformRangeRandDense(batchSize, n int, low, high float64) *tensor.Dense {
	data := make([]float64, batchSize*n)
	for i := range data {
		data[i] = src.uniform.Float64Range(low, high)
	}
	return tensor.New(tensor.WithShape(batchSize, n), tensor.WithBacking(data))
}
