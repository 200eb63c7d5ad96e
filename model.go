package cgan_go

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Definition Shapes and builder callbacks defining a conditional GAN model.
//
// BatchSize - number of rows in every training batch
// NoiseDim - latent space size (noise input is of shape (BatchSize, NoiseDim))
// DataDims - width of each data input
// ConditionalDims - width of each conditional input (may be empty for an unconditional GAN)
// BuildGenerator/BuildDiscriminator - callbacks defining networks on a provided graph.
// Prefix must be used for node names: the model instantiates a builder several times
// and checkpointing matches weights by node name.
//
type Definition struct {
	BatchSize       int
	NoiseDim        int
	DataDims        []int
	ConditionalDims []int

	BuildGenerator     func(g *gorgonia.ExprGraph, prefix string) *GeneratorNet
	BuildDiscriminator func(g *gorgonia.ExprGraph, prefix string) *DiscriminatorNet
}

func (def *Definition) dataWidth() int {
	width := 0
	for _, d := range def.DataDims {
		width += d
	}
	return width
}

// generatorTower Generator-side assembly: a generator plus frozen copies of every
// discriminator on a dedicated expression graph.
type generatorTower struct {
	graph      *gorgonia.ExprGraph
	gan        *GAN
	noiseInput *gorgonia.Node
	condInputs []*gorgonia.Node
	target     *gorgonia.Node

	genOutVal gorgonia.Value
	lossVal   gorgonia.Value

	vmFwd   gorgonia.VM
	vmTrain gorgonia.VM
	solver  gorgonia.Solver
}

// criticUnit Discriminator-side assembly: a discriminator trained on stacked
// real and generated rows (2*BatchSize) on a dedicated expression graph.
type criticUnit struct {
	graph         *gorgonia.ExprGraph
	discriminator *DiscriminatorNet
	dataInput     *gorgonia.Node
	condInputs    []*gorgonia.Node
	target        *gorgonia.Node

	lossVal gorgonia.Value

	vm     gorgonia.VM
	solver gorgonia.Solver
}

// GANModel Conditional GAN with training loop, prediction and checkpoint persistence.
// Supports several generators and several discriminators ("mix" configuration).
type GANModel struct {
	def     Definition
	towers  []*generatorTower
	critics []*criticUnit

	nGenerators     int
	nDiscriminators int
	learningRate    float64
	modelDir        string
	noise           *NoiseSource

	globalStep  int
	genStepsDue float64
}

// ModelOption Optional GANModel parameter
type ModelOption func(*GANModel)

// WithGenerators Sets number of generators (default is 1)
func WithGenerators(n int) ModelOption {
	return func(m *GANModel) { m.nGenerators = n }
}

// WithDiscriminators Sets number of discriminators (default is 1)
func WithDiscriminators(n int) ModelOption {
	return func(m *GANModel) { m.nDiscriminators = n }
}

// WithLearningRate Sets solver learning rate (default is 0.001)
func WithLearningRate(lr float64) ModelOption {
	return func(m *GANModel) { m.learningRate = lr }
}

// WithModelDir Sets directory for checkpoint files. Without it checkpointing is a no-op.
func WithModelDir(dir string) ModelOption {
	return func(m *GANModel) { m.modelDir = dir }
}

// WithSeed Sets noise source seed for reproducible runs
func WithSeed(seed int64) ModelOption {
	return func(m *GANModel) { m.noise = NewNoiseSource(seed) }
}

// NewGANModel Constructor for GANModel
func NewGANModel(def Definition, opts ...ModelOption) (*GANModel, error) {
	if def.BatchSize < 1 {
		return nil, fmt.Errorf("Batch size must be positive, but got %d", def.BatchSize)
	}
	if def.NoiseDim < 1 {
		return nil, fmt.Errorf("Noise dimension must be positive, but got %d", def.NoiseDim)
	}
	if len(def.DataDims) == 0 {
		return nil, fmt.Errorf("Model must have one data input atleast")
	}
	if def.BuildGenerator == nil || def.BuildDiscriminator == nil {
		return nil, fmt.Errorf("Both generator and discriminator builders must be provided")
	}
	model := GANModel{
		def:             def,
		nGenerators:     1,
		nDiscriminators: 1,
		learningRate:    0.001,
		noise:           NewNoiseSource(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(&model)
	}
	if model.nGenerators < 1 || model.nDiscriminators < 1 {
		return nil, fmt.Errorf("Model must have one generator and one discriminator atleast, but got %d/%d", model.nGenerators, model.nDiscriminators)
	}
	// Discriminators come first: generator towers hold frozen copies of them
	for j := 0; j < model.nDiscriminators; j++ {
		critic, err := model.buildCritic(j)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't build discriminator #%d", j))
		}
		model.critics = append(model.critics, critic)
	}
	for i := 0; i < model.nGenerators; i++ {
		tower, err := model.buildTower(i)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't build generator #%d", i))
		}
		model.towers = append(model.towers, tower)
	}
	return &model, nil
}

func (m *GANModel) buildCritic(idx int) (*criticUnit, error) {
	prefix := fmt.Sprintf("discriminator_%d", idx)
	g := gorgonia.NewGraph()
	critic := criticUnit{
		graph:         g,
		discriminator: m.def.BuildDiscriminator(g, prefix),
	}
	if critic.discriminator == nil {
		return nil, fmt.Errorf("Discriminator builder returned nil")
	}
	// Real rows are stacked on top of generated rows, hence 2x batch size
	rows := 2 * m.def.BatchSize
	critic.dataInput = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(rows, m.def.dataWidth()), gorgonia.WithName(prefix+"_data_input"))
	for k, dim := range m.def.ConditionalDims {
		critic.condInputs = append(critic.condInputs, gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(rows, dim), gorgonia.WithName(fmt.Sprintf("%s_conditional_input_%d", prefix, k))))
	}
	if err := critic.discriminator.Fwd(rows, critic.dataInput, critic.condInputs...); err != nil {
		return nil, err
	}
	critic.target = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(rows, 1), gorgonia.WithName(prefix+"_target"))
	loss, err := MSELoss(critic.discriminator.Out(), critic.target)
	if err != nil {
		return nil, errors.Wrap(err, "Can't define discriminator loss")
	}
	gorgonia.WithName(prefix + "_loss")(loss)
	gorgonia.Read(loss, &critic.lossVal)
	if _, err := gorgonia.Grad(loss, critic.discriminator.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "Can't define gradients for discriminator")
	}
	critic.vm = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(critic.discriminator.Learnables()...))
	critic.solver = gorgonia.NewRMSPropSolver(gorgonia.WithBatchSize(float64(rows)), gorgonia.WithLearnRate(m.learningRate))
	return &critic, nil
}

func (m *GANModel) buildTower(idx int) (*generatorTower, error) {
	prefix := fmt.Sprintf("generator_%d", idx)
	g := gorgonia.NewGraph()
	generator := m.def.BuildGenerator(g, prefix)
	if generator == nil {
		return nil, fmt.Errorf("Generator builder returned nil")
	}
	tower := generatorTower{graph: g}
	tower.noiseInput = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(m.def.BatchSize, m.def.NoiseDim), gorgonia.WithName(prefix+"_noise_input"))
	for k, dim := range m.def.ConditionalDims {
		tower.condInputs = append(tower.condInputs, gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(m.def.BatchSize, dim), gorgonia.WithName(fmt.Sprintf("%s_conditional_input_%d", prefix, k))))
	}
	if err := generator.Fwd(m.def.BatchSize, tower.noiseInput, tower.condInputs...); err != nil {
		return nil, err
	}
	discriminators := make([]*DiscriminatorNet, 0, len(m.critics))
	for _, critic := range m.critics {
		discriminators = append(discriminators, critic.discriminator)
	}
	definedGAN, err := NewGAN(g, generator, discriminators...)
	if err != nil {
		return nil, err
	}
	if err := definedGAN.Fwd(m.def.BatchSize, tower.condInputs...); err != nil {
		return nil, err
	}
	tower.gan = definedGAN
	gorgonia.Read(definedGAN.GeneratorOut(), &tower.genOutVal)
	// Forward-only machine must be compiled before loss nodes are added to the graph:
	// prediction runs it without any target values bound
	tower.vmFwd = gorgonia.NewTapeMachine(g)
	tower.target = gorgonia.NewMatrix(g, gorgonia.Float64, gorgonia.WithShape(m.def.BatchSize, 1), gorgonia.WithName(prefix+"_target"))
	headLosses := make([]*gorgonia.Node, 0, len(definedGAN.Outs()))
	for h, out := range definedGAN.Outs() {
		headLoss, err := MSELoss(out, tower.target)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't define generator loss against head #%d", h))
		}
		headLosses = append(headLosses, headLoss)
	}
	loss := headLosses[0]
	if len(headLosses) > 1 {
		for _, headLoss := range headLosses[1:] {
			if loss, err = gorgonia.Add(loss, headLoss); err != nil {
				return nil, errors.Wrap(err, "Can't sum head losses")
			}
		}
		scale := gorgonia.NewConstant(1.0/float64(len(headLosses)), gorgonia.WithName(prefix+"_head_scale"))
		if loss, err = gorgonia.Mul(loss, scale); err != nil {
			return nil, errors.Wrap(err, "Can't average head losses")
		}
	}
	gorgonia.WithName(prefix + "_loss")(loss)
	gorgonia.Read(loss, &tower.lossVal)
	if _, err := gorgonia.Grad(loss, definedGAN.Learnables()...); err != nil {
		return nil, errors.Wrap(err, "Can't define gradients for generator")
	}
	tower.vmTrain = gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(definedGAN.Learnables()...))
	tower.solver = gorgonia.NewRMSPropSolver(gorgonia.WithBatchSize(float64(m.def.BatchSize)), gorgonia.WithLearnRate(m.learningRate))
	return &tower, nil
}

// Close Releases tape machines of every graph
func (m *GANModel) Close() {
	for _, tower := range m.towers {
		tower.vmFwd.Close()
		tower.vmTrain.Close()
	}
	for _, critic := range m.critics {
		critic.vm.Close()
	}
}

// NoiseBatch Samples a noise batch of shape (batchSize, NoiseDim)
func (m *GANModel) NoiseBatch(batchSize int) *tensor.Dense {
	return m.noise.NormRandDense(batchSize, m.def.NoiseDim)
}

// GlobalStep Returns number of training batches consumed so far (restored checkpoints included)
func (m *GANModel) GlobalStep() int {
	return m.globalStep
}

// allLearnables Trained nodes only: frozen discriminator copies share backing with
// critics' weights and are deliberately excluded.
func (m *GANModel) allLearnables() gorgonia.Nodes {
	nodes := gorgonia.Nodes{}
	for _, tower := range m.towers {
		nodes = append(nodes, tower.gan.GeneratorLearnables()...)
	}
	for _, critic := range m.critics {
		nodes = append(nodes, critic.discriminator.Learnables()...)
	}
	return nodes
}

// generate Runs forward pass of the selected generator for a single batch.
// nil noise means freshly sampled noise.
func (m *GANModel) generate(towerIdx int, noise *tensor.Dense, conditionals []*tensor.Dense) (*tensor.Dense, error) {
	tower := m.towers[towerIdx]
	if noise == nil {
		noise = m.NoiseBatch(m.def.BatchSize)
	}
	if err := gorgonia.Let(tower.noiseInput, noise); err != nil {
		return nil, errors.Wrap(err, "Can't bind noise input")
	}
	for k, cond := range conditionals {
		if err := gorgonia.Let(tower.condInputs[k], cond); err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("Can't bind conditional input #%d", k))
		}
	}
	if err := tower.vmFwd.RunAll(); err != nil {
		return nil, errors.Wrap(err, "Can't run forward pass machine")
	}
	tower.vmFwd.Reset()
	out, ok := tower.genOutVal.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("Generator output is not a dense tensor")
	}
	// Clone since the read value is overwritten by the next machine run
	return out.Clone().(*tensor.Dense), nil
}

// validateBatch Checks batch tensors against the model definition
func (m *GANModel) validateBatch(batch *Batch) error {
	if batch == nil {
		return fmt.Errorf("Batch is nil")
	}
	if len(batch.Data) != len(m.def.DataDims) {
		return fmt.Errorf("Batch has %d data tensors, but model defines %d data inputs", len(batch.Data), len(m.def.DataDims))
	}
	if len(batch.Conditional) != len(m.def.ConditionalDims) {
		return fmt.Errorf("Batch has %d conditional tensors, but model defines %d conditional inputs", len(batch.Conditional), len(m.def.ConditionalDims))
	}
	for i, d := range batch.Data {
		if d.Dims() != 2 || d.Shape()[0] != m.def.BatchSize || d.Shape()[1] != m.def.DataDims[i] {
			return fmt.Errorf("Data tensor #%d has shape %v, but (%d, %d) is expected", i, d.Shape(), m.def.BatchSize, m.def.DataDims[i])
		}
	}
	for i, c := range batch.Conditional {
		if c.Dims() != 2 || c.Shape()[0] != m.def.BatchSize || c.Shape()[1] != m.def.ConditionalDims[i] {
			return fmt.Errorf("Conditional tensor #%d has shape %v, but (%d, %d) is expected", i, c.Shape(), m.def.BatchSize, m.def.ConditionalDims[i])
		}
	}
	return nil
}

// stackDataRows Concatenates multiple data tensors horizontally into a single (batch, dataWidth) matrix
func stackDataRows(data []*tensor.Dense) (*tensor.Dense, error) {
	if len(data) == 1 {
		return data[0], nil
	}
	return data[0].Hstack(data[1:]...)
}

func (m *GANModel) trainCritic(criticIdx, towerIdx int, batch *Batch) error {
	critic := m.critics[criticIdx]
	generated, err := m.generate(towerIdx, nil, batch.Conditional)
	if err != nil {
		return errors.Wrap(err, "Can't generate fake samples")
	}
	realRows, err := stackDataRows(batch.Data)
	if err != nil {
		return errors.Wrap(err, "Can't stack real data rows")
	}
	allRows, err := tensor.Concat(0, realRows, generated)
	if err != nil {
		return errors.Wrap(err, "Can't stack real rows on generated rows")
	}
	// Assume that generator produces wrong data: label its rows as zero
	realLabels := tensor.Ones(tensor.Float64, m.def.BatchSize, 1)
	generatedLabels := tensor.Ones(tensor.Float64, m.def.BatchSize, 1)
	generatedLabels.Zero()
	labels, err := realLabels.Vstack(generatedLabels)
	if err != nil {
		return errors.Wrap(err, "Can't stack labels")
	}
	if err := gorgonia.Let(critic.dataInput, allRows); err != nil {
		return errors.Wrap(err, "Can't bind discriminator data input")
	}
	for k, cond := range batch.Conditional {
		// Generated rows share conditional values with real ones
		doubled, err := cond.Vstack(cond)
		if err != nil {
			return errors.Wrap(err, "Can't stack conditional rows")
		}
		if err := gorgonia.Let(critic.condInputs[k], doubled); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Can't bind discriminator conditional input #%d", k))
		}
	}
	if err := gorgonia.Let(critic.target, labels); err != nil {
		return errors.Wrap(err, "Can't bind discriminator target")
	}
	if err := critic.vm.RunAll(); err != nil {
		return errors.Wrap(err, "Can't run discriminator training machine")
	}
	if err := critic.solver.Step(gorgonia.NodesToValueGrads(critic.discriminator.Learnables())); err != nil {
		return errors.Wrap(err, "Can't do solver step for discriminator")
	}
	critic.vm.Reset()
	return nil
}

func (m *GANModel) trainGenerators(batch *Batch) error {
	for i, tower := range m.towers {
		if err := gorgonia.Let(tower.noiseInput, m.NoiseBatch(m.def.BatchSize)); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Can't bind noise input of generator #%d", i))
		}
		for k, cond := range batch.Conditional {
			if err := gorgonia.Let(tower.condInputs[k], cond); err != nil {
				return errors.Wrap(err, fmt.Sprintf("Can't bind conditional input #%d of generator #%d", k, i))
			}
		}
		// Generator is rewarded when discriminator heads call its output real
		if err := gorgonia.Let(tower.target, tensor.Ones(tensor.Float64, m.def.BatchSize, 1)); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Can't bind target of generator #%d", i))
		}
		if err := tower.vmTrain.RunAll(); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Can't run training machine of generator #%d", i))
		}
		if err := tower.solver.Step(gorgonia.NodesToValueGrads(tower.gan.GeneratorLearnables())); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Can't do solver step for generator #%d", i))
		}
		tower.vmTrain.Reset()
	}
	return nil
}

// FitOption Optional Fit parameter
type FitOption func(*fitConfig)

type fitConfig struct {
	generatorSteps     float64
	checkpointInterval int
	logEvery           int
}

// WithGeneratorSteps Sets number of generator steps per one discriminator step (default is 1.0).
// Fractional values are accumulated: 0.5 means one generator step per two batches.
func WithGeneratorSteps(steps float64) FitOption {
	return func(cfg *fitConfig) { cfg.generatorSteps = steps }
}

// WithCheckpointInterval Sets checkpoint period in batches (default is 1000).
// Zero disables checkpointing entirely, including the final one.
func WithCheckpointInterval(interval int) FitOption {
	return func(cfg *fitConfig) { cfg.checkpointInterval = interval }
}

// WithLogEvery Prints generator/discriminator losses every n batches (default is off)
func WithLogEvery(n int) FitOption {
	return func(cfg *fitConfig) { cfg.logEvery = n }
}

// Fit Consumes training batches and does adversarial training.
//
// Every batch trains every discriminator once (generated rows are sourced from
// generators in round-robin manner) and advances the generator step accumulator;
// whenever the accumulator reaches 1, every generator takes a training step.
// Global step counter is incremented once per consumed batch.
//
func (m *GANModel) Fit(batches <-chan *Batch, opts ...FitOption) error {
	cfg := fitConfig{
		generatorSteps:     1.0,
		checkpointInterval: 1000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.generatorSteps <= 0 {
		return fmt.Errorf("Generator steps must be positive, but got %f", cfg.generatorSteps)
	}
	for batch := range batches {
		if err := m.validateBatch(batch); err != nil {
			return errors.Wrap(err, fmt.Sprintf("Bad batch at global step %d", m.globalStep))
		}
		for j := range m.critics {
			towerIdx := (m.globalStep + j) % len(m.towers)
			if err := m.trainCritic(j, towerIdx, batch); err != nil {
				return errors.Wrap(err, fmt.Sprintf("Discriminator #%d step failed", j))
			}
		}
		m.genStepsDue += cfg.generatorSteps
		for m.genStepsDue >= 1 {
			m.genStepsDue--
			if err := m.trainGenerators(batch); err != nil {
				return errors.Wrap(err, "Generator step failed")
			}
		}
		m.globalStep++
		if cfg.logEvery > 0 && m.globalStep%cfg.logEvery == 0 {
			fmt.Printf("Step %d:\n\tGenerator's loss: %v\n\tDiscriminator's loss: %v\n", m.globalStep, m.towers[0].lossVal, m.critics[0].lossVal)
		}
		if cfg.checkpointInterval > 0 && m.globalStep%cfg.checkpointInterval == 0 {
			if err := m.checkpoint(); err != nil {
				return errors.Wrap(err, "Can't save checkpoint")
			}
		}
	}
	if cfg.checkpointInterval > 0 {
		if err := m.checkpoint(); err != nil {
			return errors.Wrap(err, "Can't save final checkpoint")
		}
	}
	return nil
}

// Losses Single forward pass: returns generator and discriminator losses for
// provided noise (nil means freshly sampled) and batch. No weights are updated.
func (m *GANModel) Losses(noise *tensor.Dense, batch *Batch) (float64, float64, error) {
	if err := m.validateBatch(batch); err != nil {
		return 0, 0, err
	}
	tower := m.towers[0]
	if noise == nil {
		noise = m.NoiseBatch(m.def.BatchSize)
	}
	if err := gorgonia.Let(tower.noiseInput, noise); err != nil {
		return 0, 0, errors.Wrap(err, "Can't bind noise input")
	}
	for k, cond := range batch.Conditional {
		if err := gorgonia.Let(tower.condInputs[k], cond); err != nil {
			return 0, 0, errors.Wrap(err, fmt.Sprintf("Can't bind conditional input #%d", k))
		}
	}
	if err := gorgonia.Let(tower.target, tensor.Ones(tensor.Float64, m.def.BatchSize, 1)); err != nil {
		return 0, 0, errors.Wrap(err, "Can't bind generator target")
	}
	if err := tower.vmTrain.RunAll(); err != nil {
		return 0, 0, errors.Wrap(err, "Can't run generator machine")
	}
	tower.vmTrain.Reset()
	generatorLoss, ok := tower.lossVal.Data().(float64)
	if !ok {
		return 0, 0, fmt.Errorf("Generator loss is not a float64 scalar")
	}

	critic := m.critics[0]
	generated, err := m.generate(0, noise, batch.Conditional)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't generate samples for discriminator loss")
	}
	realRows, err := stackDataRows(batch.Data)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't stack real data rows")
	}
	allRows, err := tensor.Concat(0, realRows, generated)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't stack real rows on generated rows")
	}
	realLabels := tensor.Ones(tensor.Float64, m.def.BatchSize, 1)
	generatedLabels := tensor.Ones(tensor.Float64, m.def.BatchSize, 1)
	generatedLabels.Zero()
	labels, err := realLabels.Vstack(generatedLabels)
	if err != nil {
		return 0, 0, errors.Wrap(err, "Can't stack labels")
	}
	if err := gorgonia.Let(critic.dataInput, allRows); err != nil {
		return 0, 0, errors.Wrap(err, "Can't bind discriminator data input")
	}
	for k, cond := range batch.Conditional {
		doubled, err := cond.Vstack(cond)
		if err != nil {
			return 0, 0, errors.Wrap(err, "Can't stack conditional rows")
		}
		if err := gorgonia.Let(critic.condInputs[k], doubled); err != nil {
			return 0, 0, errors.Wrap(err, fmt.Sprintf("Can't bind discriminator conditional input #%d", k))
		}
	}
	if err := gorgonia.Let(critic.target, labels); err != nil {
		return 0, 0, errors.Wrap(err, "Can't bind discriminator target")
	}
	if err := critic.vm.RunAll(); err != nil {
		return 0, 0, errors.Wrap(err, "Can't run discriminator machine")
	}
	critic.vm.Reset()
	discriminatorLoss, ok := critic.lossVal.Data().(float64)
	if !ok {
		return 0, 0, fmt.Errorf("Discriminator loss is not a float64 scalar")
	}
	return generatorLoss, discriminatorLoss, nil
}

// PredictGenerator Runs the selected generator over provided conditional inputs.
//
// noise - optional noise of shape (n, NoiseDim); nil means freshly sampled.
// conditionals - conditional tensors of shape (n, ConditionalDims[k]) each.
// generatorIndex - which generator to use (see WithGenerators).
//
// n may exceed model batch size: prediction runs in batch-size chunks and the
// final partial chunk is zero-padded and trimmed back. For fixed noise and
// weights output is deterministic.
//
func (m *GANModel) PredictGenerator(noise *tensor.Dense, conditionals []*tensor.Dense, generatorIndex int) (*tensor.Dense, error) {
	if generatorIndex < 0 || generatorIndex >= len(m.towers) {
		return nil, fmt.Errorf("Generator index %d is out of range [0;%d)", generatorIndex, len(m.towers))
	}
	if len(conditionals) != len(m.def.ConditionalDims) {
		return nil, fmt.Errorf("Got %d conditional tensors, but model defines %d conditional inputs", len(conditionals), len(m.def.ConditionalDims))
	}
	n := 0
	switch {
	case len(conditionals) > 0:
		n = conditionals[0].Shape()[0]
	case noise != nil:
		n = noise.Shape()[0]
	default:
		n = m.def.BatchSize
	}
	if noise != nil && noise.Shape()[0] != n {
		return nil, fmt.Errorf("Noise has %d rows, but conditional inputs have %d", noise.Shape()[0], n)
	}
	var predicted *tensor.Dense
	for start := 0; start < n; start += m.def.BatchSize {
		end := start + m.def.BatchSize
		if end > n {
			end = n
		}
		rows := end - start
		var chunkNoise *tensor.Dense
		if noise != nil {
			sliced, err := sliceRows(noise, start, end)
			if err != nil {
				return nil, errors.Wrap(err, "Can't slice noise rows")
			}
			if chunkNoise, err = padRows(sliced, m.def.BatchSize); err != nil {
				return nil, errors.Wrap(err, "Can't pad noise rows")
			}
		}
		chunkConds := make([]*tensor.Dense, len(conditionals))
		for k, cond := range conditionals {
			sliced, err := sliceRows(cond, start, end)
			if err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("Can't slice conditional #%d rows", k))
			}
			if chunkConds[k], err = padRows(sliced, m.def.BatchSize); err != nil {
				return nil, errors.Wrap(err, fmt.Sprintf("Can't pad conditional #%d rows", k))
			}
		}
		generated, err := m.generate(generatorIndex, chunkNoise, chunkConds)
		if err != nil {
			return nil, errors.Wrap(err, "Can't run generator")
		}
		if rows < m.def.BatchSize {
			if generated, err = sliceRows(generated, 0, rows); err != nil {
				return nil, errors.Wrap(err, "Can't trim padded rows")
			}
		}
		if predicted == nil {
			predicted = generated
			continue
		}
		if predicted, err = predicted.Vstack(generated); err != nil {
			return nil, errors.Wrap(err, "Can't stack predicted chunks")
		}
	}
	return predicted, nil
}

// checkpoint Persists current weights and global step into model directory.
// No-op when model directory is not set.
func (m *GANModel) checkpoint() error {
	if m.modelDir == "" {
		return nil
	}
	ckpt, err := NewCheckpoint(m.globalStep, m.allLearnables())
	if err != nil {
		return err
	}
	return ckpt.Save(m.modelDir)
}

// Restore Loads the latest checkpoint from model directory: weights are copied
// into graph nodes (frozen discriminator copies pick them up through shared
// backing) and global step is restored.
func (m *GANModel) Restore() error {
	if m.modelDir == "" {
		return fmt.Errorf("Model directory is not set (see WithModelDir)")
	}
	ckpt, err := LoadCheckpoint(m.modelDir)
	if err != nil {
		return err
	}
	if err := ckpt.Apply(m.allLearnables()); err != nil {
		return err
	}
	m.globalStep = ckpt.GlobalStep
	return nil
}
