package cgan_go

import (
	"gorgonia.org/tensor"
)

// Batch Single training batch for conditional GAN.
//
// Data - real data tensors, one per data input, each of shape (batch_size, data_dim)
// Conditional - conditional tensors, one per conditional input, each of shape (batch_size, conditional_dim)
//
type Batch struct {
	Data        []*tensor.Dense
	Conditional []*tensor.Dense
}

// ConditionalGaussianBatches Streams synthetic batches where the conditional input is a mean
// drawn uniformly from [0;meanLimit) and the data is sampled from N(mean, stddev).
//
// Useful as a smoke dataset: a trained conditional generator should reproduce
// the shift by the conditional mean and keep the spread of the reference distribution.
//
// The channel is buffered to the full batch count, so the producer goroutine
// terminates on its own even when the consumer stops reading early.
//
func ConditionalGaussianBatches(numBatches, batchSize int, meanLimit, stddev float64, src *NoiseSource) <-chan *Batch {
	out := make(chan *Batch, numBatches)
	go func() {
		defer close(out)
		for b := 0; b < numBatches; b++ {
			means := make([]float64, batchSize)
			values := make([]float64, batchSize)
			for i := range means {
				means[i] = src.uniform.Float64Range(0, meanLimit)
				values[i] = src.gaussian.Gaussian(means[i], stddev)
			}
			out <- &Batch{
				Data:        []*tensor.Dense{tensor.New(tensor.WithShape(batchSize, 1), tensor.WithBacking(values))},
				Conditional: []*tensor.Dense{tensor.New(tensor.WithShape(batchSize, 1), tensor.WithBacking(means))},
			}
		}
	}()
	return out
}
