package cgan_go

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorgonia.org/tensor"
)

func TestConditionalGaussianBatches(t *testing.T) {
	numBatches := 10
	batchSize := 64
	count := 0
	for batch := range ConditionalGaussianBatches(numBatches, batchSize, 10.0, 2.0, NewNoiseSource(42)) {
		require.Len(t, batch.Data, 1)
		require.Len(t, batch.Conditional, 1)
		require.True(t, batch.Data[0].Shape().Eq(tensor.Shape{batchSize, 1}))
		require.True(t, batch.Conditional[0].Shape().Eq(tensor.Shape{batchSize, 1}))
		for _, mean := range batch.Conditional[0].Data().([]float64) {
			require.GreaterOrEqual(t, mean, 0.0)
			require.Less(t, mean, 10.0)
		}
		count++
	}
	require.Equal(t, numBatches, count)
}

func TestConditionalGaussianBatchesAbandonedConsumer(t *testing.T) {
	preexisting := goleak.IgnoreCurrent()
	batches := ConditionalGaussianBatches(50, 8, 10.0, 2.0, NewNoiseSource(42))
	<-batches
	// Producer must terminate on its own even though the rest of the stream is never drained
	goleak.VerifyNone(t, preexisting)
}

func TestConditionalGaussianBatchesResiduals(t *testing.T) {
	batch := <-ConditionalGaussianBatches(1, 10000, 10.0, 2.0, NewNoiseSource(42))
	// Values minus conditional means should follow N(0, 2)
	mean, std, err := ResidualStats(batch.Data[0], batch.Conditional[0])
	require.NoError(t, err)
	require.InDelta(t, 0.0, mean, 0.1)
	require.InDelta(t, 2.0, std, 0.1)
}
