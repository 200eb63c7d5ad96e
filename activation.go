package cgan_go

import (
	"gorgonia.org/gorgonia"
)

// ActivationFunc Just an alias to Gorgonia'a api_gen.go - https://github.com/gorgonia/gorgonia/blob/master/api_gen.go#L1
type ActivationFunc func(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)

func NoActivation(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error) { return a, nil }
func Rectify(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)      { return gorgonia.Rectify(a) }
func Sigmoid(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)      { return gorgonia.Sigmoid(a) }
func Tanh(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)         { return gorgonia.Tanh(a) }
func Softplus(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)     { return gorgonia.Softplus(a) }
func Exp(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)          { return gorgonia.Exp(a) }
func Square(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)       { return gorgonia.Square(a) }
func Abs(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error)          { return gorgonia.Abs(a) }

// LeakyRectify Common choice for discriminators: plain ReLU tends to stop gradients too early in adversarial training.
func LeakyRectify(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error) {
	alpha := 0.01
	for i := range opts {
		if opts[i].Alpha != 0 {
			alpha = opts[i].Alpha
			break
		}
	}
	return gorgonia.LeakyRelu(a, alpha)
}

func Softmax(a *gorgonia.Node, opts ...Options) (*gorgonia.Node, error) {
	for i := range opts {
		// Check if axis option is provided
		// First i-th option with provided field 'Axis' would be considered for use.
		if len(opts[i].Axis) > 0 {
			return gorgonia.SoftMax(a, opts[i].Axis...)
		}
	}
	return gorgonia.SoftMax(a)
}

// Options Struct for holding options for certain activation functions.
type Options struct {
	Axis  []int
	Alpha float64
}
