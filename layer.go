package cgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Layer Just an alias to Weight+Bias+ActivationFunc combo
type Layer struct {
	WeightNode *gorgonia.Node
	BiasNode   *gorgonia.Node
	Activation ActivationFunc
	Type       LayerType

	KernelHeight int
	KernelWidth  int
	Padding      []int
	Stride       []int
	Dilation     []int
	ReshapeDims  []int
}

type LayerType uint16

const (
	LayerLinear = LayerType(iota)
	LayerFlatten
	LayerConvolutional
	LayerMaxpool
	LayerReshape
)

var (
	allowedNoWeights = []LayerType{LayerMaxpool, LayerFlatten, LayerReshape}
)

func noWeightsAllowed(checkType LayerType) bool {
	return checkLayerType(checkType, allowedNoWeights...)
}

func checkLayerType(checkType LayerType, t ...LayerType) bool {
	for _, typeOf := range t {
		if checkType == typeOf {
			return true
		}
	}
	return false
}

// Fwd Feedforwards input node through the layer (activation is not applied here)
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied for bias part
// input - previous node in computational graph
//
func (layer *Layer) Fwd(batchSize int, input *gorgonia.Node) (*gorgonia.Node, error) {
	if layer.WeightNode == nil && !noWeightsAllowed(layer.Type) {
		return nil, fmt.Errorf("Layer of type '%d' must have non-nil weight node", layer.Type)
	}
	nonActivated := &gorgonia.Node{}
	var err error
	switch layer.Type {
	case LayerLinear:
		tOp, err := gorgonia.Transpose(layer.WeightNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't transpose weights")
		}
		// Plain Mul handles any batch size for rank-2 operands and stays differentiable
		nonActivated, err = gorgonia.Mul(input, tOp)
		if err != nil {
			return nil, errors.Wrap(err, "Can't multiply input and weights")
		}
	case LayerConvolutional:
		nonActivated, err = gorgonia.Conv2d(input, layer.WeightNode, tensor.Shape{layer.KernelHeight, layer.KernelWidth}, layer.Padding, layer.Stride, layer.Dilation)
		if err != nil {
			return nil, errors.Wrap(err, "Can't convolve[2D] input by kernel")
		}
	case LayerMaxpool:
		nonActivated, err = gorgonia.MaxPool2D(input, tensor.Shape{layer.KernelHeight, layer.KernelWidth}, layer.Padding, layer.Stride)
		if err != nil {
			return nil, errors.Wrap(err, "Can't maxpool[2D] input by kernel")
		}
	case LayerFlatten:
		nonActivated, err = gorgonia.Reshape(input, tensor.Shape{batchSize, input.Shape().TotalSize() / batchSize})
		if err != nil {
			return nil, errors.Wrap(err, "Can't flatten input")
		}
	case LayerReshape:
		nonActivated, err = gorgonia.Reshape(input, layer.ReshapeDims)
		if err != nil {
			return nil, errors.Wrap(err, "Can't reshape input")
		}
	default:
		return nil, fmt.Errorf("Layer type '%d' (uint16) is not handled", layer.Type)
	}
	if layer.BiasNode == nil {
		return nonActivated, nil
	}
	if batchSize < 2 {
		nonActivated, err = gorgonia.Add(nonActivated, layer.BiasNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't add bias to non-activated output")
		}
		return nonActivated, nil
	}
	nonActivated, err = gorgonia.BroadcastAdd(nonActivated, layer.BiasNode, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("Can't add bias [in broadcast term with batch_size = %d] to non-activated output", batchSize))
	}
	return nonActivated, nil
}
