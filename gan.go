package cgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GAN Conditional GAN assembly: one generator and frozen structural copies of
// one or more discriminators living on the generator's expression graph.
//
// generatorPart - reference to Generator
// discriminatorParts - copies of the trained discriminators; their learnables are
// ignored by the generator's solver. Copied weight nodes are created with
// gorgonia.WithValue over the source nodes' values, so they share tensor backing
// with the discriminators trained on their own graphs: a discriminator training
// step is immediately visible here without any explicit weight sync.
//
type GAN struct {
	generatorPart      *GeneratorNet
	discriminatorParts []*DiscriminatorNet

	outs          []*gorgonia.Node
	learnables    gorgonia.Nodes
	learnablesGen gorgonia.Nodes
}

// NewGAN Constructor for GAN
//
// g - graph the generator has been defined on
// definedGenerator - reference to Generator
// definedDiscriminators - discriminators to copy onto g (one head per discriminator)
//
func NewGAN(g *gorgonia.ExprGraph, definedGenerator *GeneratorNet, definedDiscriminators ...*DiscriminatorNet) (*GAN, error) {
	if len(definedDiscriminators) == 0 {
		return nil, fmt.Errorf("GAN must have one discriminator atleast")
	}
	definedGAN := GAN{
		generatorPart:      definedGenerator,
		discriminatorParts: make([]*DiscriminatorNet, len(definedDiscriminators)),
		learnablesGen:      definedGenerator.Learnables(),
		learnables:         append(gorgonia.Nodes{}, definedGenerator.Learnables()...),
	}
	for d, definedDiscriminator := range definedDiscriminators {
		copied := &DiscriminatorNet{private: &Network{
			Name:   fmt.Sprintf("gan_head_%d", d),
			Layers: make([]*Layer, len(definedDiscriminator.private.Layers)),
		}}
		for i, l := range definedDiscriminator.private.Layers {
			if l == nil {
				return nil, fmt.Errorf("Discriminator's #%d Layer %d is nil", d, i)
			}
			if l.WeightNode == nil && !noWeightsAllowed(l.Type) {
				return nil, fmt.Errorf("Discriminator's #%d Layer %d has nil weight node", d, i)
			}
			copied.private.Layers[i] = &Layer{
				Activation:   l.Activation,
				Type:         l.Type,
				KernelHeight: l.KernelHeight,
				KernelWidth:  l.KernelWidth,
				Padding:      l.Padding,
				Stride:       l.Stride,
				Dilation:     l.Dilation,
				ReshapeDims:  l.ReshapeDims,
			}
			if l.WeightNode != nil {
				copied.private.Layers[i].WeightNode = gorgonia.NewTensor(g, gorgonia.Float64, l.WeightNode.Dims(), gorgonia.WithShape(l.WeightNode.Shape()...), gorgonia.WithName(l.WeightNode.Name()+"_gan"), gorgonia.WithValue(l.WeightNode.Value()))
				definedGAN.learnables = append(definedGAN.learnables, copied.private.Layers[i].WeightNode)
			}
			if l.BiasNode != nil {
				copied.private.Layers[i].BiasNode = gorgonia.NewTensor(g, gorgonia.Float64, l.BiasNode.Dims(), gorgonia.WithShape(l.BiasNode.Shape()...), gorgonia.WithName(l.BiasNode.Name()+"_gan"), gorgonia.WithValue(l.BiasNode.Value()))
				definedGAN.learnables = append(definedGAN.learnables, copied.private.Layers[i].BiasNode)
			}
		}
		definedGAN.discriminatorParts[d] = copied
	}
	return &definedGAN, nil
}

// Out Returns reference to output node of the first discriminator head
func (net *GAN) Out() *gorgonia.Node {
	if len(net.outs) == 0 {
		return nil
	}
	return net.outs[0]
}

// Outs Returns references to output nodes of every discriminator head
func (net *GAN) Outs() []*gorgonia.Node {
	return net.outs
}

// GeneratorOut Returns reference to output node of generator part
func (net *GAN) GeneratorOut() *gorgonia.Node {
	return net.generatorPart.Out()
}

// Learnables Returns learnables nodes (generator's plus copied discriminators')
func (net *GAN) Learnables() gorgonia.Nodes {
	return net.learnables
}

// GeneratorLearnables Returns learnables nodes of generator part only
func (net *GAN) GeneratorLearnables() gorgonia.Nodes {
	return net.learnablesGen
}

// joinColumns Places matrix parts side by side along axis 1: every part is
// multiplied by a constant selector matrix and results are summed. Equivalent to
// Concat(1, parts...), but Concat's gradient collapses width-1 slices to vectors
// and breaks differentiation of the upstream matmul, so head inputs sitting
// downstream of generator learnables go through this form instead.
func joinColumns(parts ...*gorgonia.Node) (*gorgonia.Node, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("Nothing to join")
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	total := 0
	for i, p := range parts {
		if p.Dims() != 2 {
			return nil, fmt.Errorf("Part #%d must be a matrix, but got %d dimension(s)", i, p.Dims())
		}
		total += p.Shape()[1]
	}
	var joined *gorgonia.Node
	offset := 0
	for i, p := range parts {
		width := p.Shape()[1]
		backing := make([]float64, width*total)
		for r := 0; r < width; r++ {
			backing[r*total+offset+r] = 1.0
		}
		selector := gorgonia.NewConstant(
			tensor.New(tensor.WithShape(width, total), tensor.WithBacking(backing)),
			gorgonia.WithName(fmt.Sprintf("%s_join_selector_%d", parts[0].Name(), i)),
		)
		placed, err := gorgonia.Mul(p, selector)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't place part #%d into joined matrix", i))
		}
		if joined == nil {
			joined = placed
		} else if joined, err = gorgonia.Add(joined, placed); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't add part #%d into joined matrix", i))
		}
		offset += width
	}
	return joined, nil
}

// Fwd Initializates feedforward of generator output through every discriminator head
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// conditionals - optional conditional input nodes shared by all heads; they are
// joined with the generator output along axis 1, so every head sees
// [generated | conditional...] rows
// Note: data input node is not needed since input for each head is just Generator's output
//
func (net *GAN) Fwd(batchSize int, conditionals ...*gorgonia.Node) error {
	if net.generatorPart.Out() == nil {
		return fmt.Errorf("Generator part must be feedforwarded before GAN (call Generator's Fwd first)")
	}
	input, err := joinColumns(append([]*gorgonia.Node{net.generatorPart.Out()}, conditionals...)...)
	if err != nil {
		return errors.Wrap(err, "[GAN] Can't join generator output with conditional inputs")
	}
	net.outs = make([]*gorgonia.Node, len(net.discriminatorParts))
	for d, copied := range net.discriminatorParts {
		if err := copied.Fwd(batchSize, input); err != nil {
			return errors.Wrap(err, fmt.Sprintf("[GAN, head #%d]", d))
		}
		net.outs[d] = copied.Out()
	}
	return nil
}
