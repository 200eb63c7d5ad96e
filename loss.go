package cgan_go

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

type LossReduction uint16

const (
	LossReductionSum = LossReduction(iota)
	LossReductionMean
)

func reduce(elementwise *gorgonia.Node, reduction []LossReduction) (*gorgonia.Node, error) {
	chosen := LossReductionMean
	if len(reduction) != 0 {
		chosen = reduction[0]
	}
	switch chosen {
	case LossReductionSum:
		return gorgonia.Sum(elementwise)
	case LossReductionMean:
		return gorgonia.Mean(elementwise)
	default:
		return nil, fmt.Errorf("Reduction type %d is not supported", chosen)
	}
}

// MSELoss See ref. https://en.wikipedia.org/wiki/Mean_squared_error
// Default reduction is 'mean'
func MSELoss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	sub, err := gorgonia.Sub(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A-B)")
	}
	sqr, err := gorgonia.Square(sub)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x^2)")
	}
	return reduce(sqr, reduction)
}

// L1Loss See ref. https://en.wikipedia.org/wiki/Least_absolute_deviations
// Default reduction is 'mean'
func L1Loss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	sub, err := gorgonia.Sub(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A-B)")
	}
	abs, err := gorgonia.Abs(sub)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do |x|")
	}
	return reduce(abs, reduction)
}

// CrossEntropyLoss See ref. https://en.wikipedia.org/wiki/Cross_entropy#Cross-entropy_loss_function_and_logistic_regression
// Default reduction is 'mean'
func CrossEntropyLoss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	log, err := gorgonia.Log(a)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(A)")
	}
	neg, err := gorgonia.Neg(log)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	hprod, err := gorgonia.HadamardProd(neg, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*B)")
	}
	return reduce(hprod, reduction)
}

// BinaryCrossEntropyLoss See ref. https://en.wikipedia.org/wiki/Cross_entropy#Cross-entropy_loss_function_and_logistic_regression
// Pretty the same as CrossEntropyLoss. BUT for C=2, where C - number of classes
// In case of binary variation of cross entropy loss: sample could belong to 0 or 1 only.
// Default reduction is 'mean'
func BinaryCrossEntropyLoss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	// -b*log(a) part, same as cross entropy
	logMain, err := gorgonia.Log(a)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(A)")
	}
	negMain, err := gorgonia.Neg(logMain)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	hprodMain, err := gorgonia.HadamardProd(negMain, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*B)")
	}
	// -(1-b)*log(1-a) part
	onesTensor := gorgonia.NewTensor(a.Graph(), a.Dtype(), a.Dims(), gorgonia.WithShape(a.Shape()...), gorgonia.WithInit(gorgonia.Ones()))
	oneSubA, err := gorgonia.Sub(onesTensor, a)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-A)")
	}
	logBin, err := gorgonia.Log(oneSubA)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(1-A)")
	}
	negBin, err := gorgonia.Neg(logBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}
	oneSubB, err := gorgonia.Sub(onesTensor, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-B)")
	}
	hprodBin, err := gorgonia.HadamardProd(negBin, oneSubB)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*(1-B))")
	}
	hprod, err := gorgonia.Add(hprodMain, hprodBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x+y)")
	}
	return reduce(hprod, reduction)
}

// HuberLoss See ref. https://en.wikipedia.org/wiki/Huber_loss
// This is actually Pseudo Huber Loss - see ref. https://en.wikipedia.org/wiki/Huber_loss#Pseudo-Huber_loss_function
// Delta value type should match Dtype of provided nodes. tensor.Float32 -> float32, tensor.Float64 -> float64 and etc.
// Default reduction is 'mean'
func HuberLoss(a, b *gorgonia.Node, delta interface{}, reduction ...LossReduction) (*gorgonia.Node, error) {
	var deltaSquared interface{}
	switch d := delta.(type) {
	case float64:
		deltaSquared = d * d
	case float32:
		deltaSquared = d * d
	default:
		return nil, fmt.Errorf("Delta type %T is not supported", delta)
	}
	deltaScalar := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(delta))
	sqrDelta := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(deltaSquared))
	oneScalar := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(1.0))

	sub, err := gorgonia.Sub(a, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A-B)")
	}
	div, err := gorgonia.Div(sub, deltaScalar)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (X/delta)")
	}
	sqr, err := gorgonia.Square(div)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x^2)")
	}
	addOneScalar, err := gorgonia.Add(oneScalar, sqr)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1.+X)")
	}
	sqrt, err := gorgonia.Sqrt(addOneScalar)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do sqrt(x)")
	}
	subOneScalar, err := gorgonia.Sub(sqrt, oneScalar)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (X.-1)")
	}
	matMul, err := gorgonia.Mul(sqrDelta, subOneScalar)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (y@x)")
	}
	return reduce(matMul, reduction)
}
