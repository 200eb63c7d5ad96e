package cgan_go

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// GeneratorNet Abstraction for generator part of GAN. Maps noise (and optional conditional inputs) to data space.
type GeneratorNet struct {
	private *Network
}

// Generator Constructor for GeneratorNet
func Generator(layers ...*Layer) *GeneratorNet {
	return &GeneratorNet{private: &Network{
		Name:   "generator",
		Layers: layers,
	}}
}

// Out Returns reference to output node
func (net *GeneratorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *GeneratorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Fwd Initializates feedforward for provided inputs
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// noise - noise input node
// conditionals - optional conditional input nodes. When provided they are concatenated
// with noise along axis 1, so the generator sees [noise | conditional...] rows.
//
func (net *GeneratorNet) Fwd(batchSize int, noise *gorgonia.Node, conditionals ...*gorgonia.Node) error {
	input := noise
	if len(conditionals) > 0 {
		catOp, err := gorgonia.Concat(1, append([]*gorgonia.Node{noise}, conditionals...)...)
		if err != nil {
			return errors.Wrap(err, "[Generator] Can't concatenate noise input with conditional inputs")
		}
		input = catOp
	}
	if err := net.private.Fwd(input, batchSize); err != nil {
		return errors.Wrap(err, "[Generator]")
	}
	return nil
}
