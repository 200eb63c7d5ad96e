package cgan_go

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// DiscriminatorNet Abstraction for discriminator part of GAN. It's simple neural network actually.
type DiscriminatorNet struct {
	private *Network
}

// Discriminator Constructor for DiscriminatorNet
func Discriminator(layers ...*Layer) *DiscriminatorNet {
	return &DiscriminatorNet{private: &Network{
		Name:   "discriminator",
		Layers: layers,
	}}
}

// Out Returns reference to output node
func (net *DiscriminatorNet) Out() *gorgonia.Node {
	return net.private.out
}

// Learnables Returns learnables nodes
func (net *DiscriminatorNet) Learnables() gorgonia.Nodes {
	return net.private.Learnables()
}

// Fwd Initializates feedforward for provided inputs
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// data - data input node (real samples or generator output)
// conditionals - optional conditional input nodes, concatenated with data along
// axis 1 so the discriminator sees [data | conditional...] rows.
//
func (net *DiscriminatorNet) Fwd(batchSize int, data *gorgonia.Node, conditionals ...*gorgonia.Node) error {
	input := data
	if len(conditionals) > 0 {
		catOp, err := gorgonia.Concat(1, append([]*gorgonia.Node{data}, conditionals...)...)
		if err != nil {
			return errors.Wrap(err, "[Discriminator] Can't concatenate data input with conditional inputs")
		}
		input = catOp
	}
	if err := net.private.Fwd(input, batchSize); err != nil {
		return errors.Wrap(err, "[Discriminator]")
	}
	return nil
}
