package cgan_go

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gorgonia.org/tensor"
)

// SlicerOneStep Just iterator with step size = 1
type SlicerOneStep struct {
	StartIdx, EndIdx int
}

func (s SlicerOneStep) Start() int { return s.StartIdx }
func (s SlicerOneStep) End() int   { return s.EndIdx }
func (s SlicerOneStep) Step() int  { return 1 }

// sliceRows Materializes rows [start;end) of a matrix as a standalone dense
func sliceRows(t *tensor.Dense, start, end int) (*tensor.Dense, error) {
	view, err := t.Slice(SlicerOneStep{StartIdx: start, EndIdx: end})
	if err != nil {
		return nil, errors.Wrap(err, "Can't slice rows")
	}
	mat, ok := view.Materialize().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("Materialized slice is not a dense tensor")
	}
	// Single-row slices collapse to vectors, so shape is enforced explicitly
	if err := mat.Reshape(end-start, t.Shape()[1]); err != nil {
		return nil, errors.Wrap(err, "Can't reshape sliced rows to matrix")
	}
	return mat, nil
}

// padRows Zero-pads a matrix with extra rows up to provided count.
// Returns the input as is when it already has enough rows.
func padRows(t *tensor.Dense, rows int) (*tensor.Dense, error) {
	shape := t.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("Only matrices can be padded, but got %d dimensions", len(shape))
	}
	if shape[0] >= rows {
		return t, nil
	}
	raw, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("Padded tensor must hold float64 data")
	}
	data := make([]float64, rows*shape[1])
	copy(data, raw)
	return tensor.New(tensor.WithShape(rows, shape[1]), tensor.WithBacking(data)), nil
}

// ResidualStats Mean and standard deviation of elementwise residuals (values - references).
// Handy for checking how well a conditional generator tracks its conditional input.
func ResidualStats(values, references tensor.Tensor) (float64, float64, error) {
	if values.DataSize() != references.DataSize() {
		return 0, 0, fmt.Errorf("Values and references must have same number of elements, but got %d and %d", values.DataSize(), references.DataSize())
	}
	rawValues, ok := values.Data().([]float64)
	if !ok {
		return 0, 0, fmt.Errorf("Values tensor must hold float64 data")
	}
	rawReferences, ok := references.Data().([]float64)
	if !ok {
		return 0, 0, fmt.Errorf("References tensor must hold float64 data")
	}
	deltas := make([]float64, len(rawValues))
	for i := range deltas {
		deltas[i] = rawValues[i] - rawReferences[i]
	}
	mean, std := stat.MeanStdDev(deltas, nil)
	return mean, std, nil
}

// PlotXY Plot chart for input y(x)
func PlotXY(x, y tensor.Tensor, fname string) error {
	if x.Dims() != 1 {
		return fmt.Errorf("X must have one dimension, but got %d", x.Dims())
	}
	if y.Dims() != 1 {
		return fmt.Errorf("Y(X) must have one dimension, but got %d", y.Dims())
	}
	if x.DataSize() != y.DataSize() {
		return fmt.Errorf("X and Y(X) must have same number of elements, but X has %d elements and Y(X) has %d elements", x.DataSize(), y.DataSize())
	}
	scatterData := make(plotter.XYs, x.DataSize())
	for i := 0; i < x.DataSize(); i++ {
		xval, err := x.At(i)
		if err != nil {
			return errors.Wrap(err, "Can't select X-value")
		}
		yval, err := y.At(i)
		if err != nil {
			return errors.Wrap(err, "Can't select Y(x)-value")
		}
		// Do no cast interfaces{} to any type when you are not sure about types
		scatterData[i].X = xval.(float64)
		scatterData[i].Y = yval.(float64)
	}
	scatter, err := plotter.NewScatter(scatterData)
	if err != nil {
		return errors.Wrap(err, "Can't init new scatter")
	}
	scatter.GlyphStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	p := plot.New()
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())
	p.Add(scatter)
	// Save the plot to a PNG file.
	if err := p.Save(4*vg.Inch, 4*vg.Inch, fname); err != nil {
		return errors.Wrap(err, "Can't save plot")
	}
	return nil
}
