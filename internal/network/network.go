// Package network implements the action-value approximator: a small
// fully connected network built on gorgonia and trained with Adam.
package network

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var (
	// ErrInputSize is returned when an observation or target has the wrong length
	ErrInputSize = errors.New("input has the wrong length")
	// ErrCheckpointShape is returned when a checkpoint does not match the network layout
	ErrCheckpointShape = errors.New("checkpoint does not match network shape")
)

// Config describes the network layout and optimiser.
type Config struct {
	Inputs       int
	Hidden       []int
	Outputs      int
	LearningRate float64
	Seed         uint64
}

// DefaultConfig returns the 147 -> 64 -> 32 -> 4 network trained with
// Adam at a learning rate of 1e-4.
func DefaultConfig() Config {
	return Config{
		Inputs:       147,
		Hidden:       []int{64, 32},
		Outputs:      4,
		LearningRate: 1e-4,
		Seed:         1,
	}
}

func (c Config) sizes() []int {
	sizes := make([]int, 0, len(c.Hidden)+2)
	sizes = append(sizes, c.Inputs)
	sizes = append(sizes, c.Hidden...)
	return append(sizes, c.Outputs)
}

// Validate checks the layout is usable
func (c Config) Validate() error {
	for i, s := range c.sizes() {
		if s <= 0 {
			return fmt.Errorf("layer %d has size %d, sizes must be positive", i, s)
		}
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %v", c.LearningRate)
	}
	return nil
}

// QNetwork maps an observation to one value estimate per action, with a
// ReLU after every hidden layer and a linear output.
//
// Two graphs hold separate copies of the parameters: a prediction graph
// that only runs forward, and a training graph with an MSE cost and
// gradients. After every gradient step the trained parameters are copied
// into the prediction graph.
type QNetwork struct {
	mu     sync.Mutex
	config Config
	sizes  []int

	// Prediction graph
	predGraph  *G.ExprGraph
	predInput  *G.Node
	predLayers []*fcLayer
	predVal    G.Value
	predVM     G.VM

	// Training graph
	trainGraph  *G.ExprGraph
	trainInput  *G.Node
	trainTarget *G.Node
	trainLayers []*fcLayer
	costVal     G.Value
	trainVM     G.VM
	solver      G.Solver

	steps  int64
	logger zerolog.Logger
}

// New builds a network with Glorot-uniform weights drawn from cfg.Seed.
func New(cfg Config, logger zerolog.Logger) (*QNetwork, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new network: %w", err)
	}

	q := &QNetwork{
		config: cfg,
		sizes:  cfg.sizes(),
		logger: logger.With().Str("component", "q_network").Logger(),
	}
	params := glorotUniform(q.sizes, cfg.Seed)

	if err := q.buildPrediction(params); err != nil {
		return nil, fmt.Errorf("new network: prediction graph: %w", err)
	}
	if err := q.buildTraining(params); err != nil {
		return nil, fmt.Errorf("new network: training graph: %w", err)
	}
	return q, nil
}

func (q *QNetwork) buildPrediction(params [][]float64) error {
	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(1, q.config.Inputs),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	layers := addLayers(g, q.sizes, params, "pred")
	out, err := forward(input, layers)
	if err != nil {
		return err
	}
	G.Read(out, &q.predVal)

	q.predGraph = g
	q.predInput = input
	q.predLayers = layers
	q.predVM = G.NewTapeMachine(g)
	return nil
}

func (q *QNetwork) buildTraining(params [][]float64) error {
	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(1, q.config.Inputs),
		G.WithName("input"), G.WithInit(G.Zeroes()))
	target := G.NewMatrix(g, tensor.Float64, G.WithShape(1, q.config.Outputs),
		G.WithName("target"), G.WithInit(G.Zeroes()))

	layers := addLayers(g, q.sizes, params, "train")
	out, err := forward(input, layers)
	if err != nil {
		return err
	}

	// Mean squared error over the whole action-value vector
	diff, err := G.Sub(out, target)
	if err != nil {
		return err
	}
	sq, err := G.Square(diff)
	if err != nil {
		return err
	}
	cost, err := G.Mean(sq)
	if err != nil {
		return err
	}
	G.Read(cost, &q.costVal)

	model := learnables(layers)
	if _, err := G.Grad(cost, model...); err != nil {
		return fmt.Errorf("could not compute gradient: %w", err)
	}

	q.trainGraph = g
	q.trainInput = input
	q.trainTarget = target
	q.trainLayers = layers
	q.trainVM = G.NewTapeMachine(g, G.BindDualValues(model...))
	q.solver = G.NewAdamSolver(G.WithLearnRate(q.config.LearningRate))
	return nil
}

func forward(input *G.Node, layers []*fcLayer) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range layers {
		if pred, err = l.fwd(pred); err != nil {
			return nil, fmt.Errorf("forward pass of layer %d: %w", i, err)
		}
	}
	return pred, nil
}

// Config returns the layout the network was built with
func (q *QNetwork) Config() Config {
	return q.config
}

// Steps returns how many gradient steps have been taken
func (q *QNetwork) Steps() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.steps
}

// Predict returns the action-value estimates for one observation
func (q *QNetwork) Predict(obs []float64) ([]float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(obs) != q.config.Inputs {
		return nil, fmt.Errorf("predict: observation of length %d, want %d: %w",
			len(obs), q.config.Inputs, ErrInputSize)
	}
	if err := G.Let(q.predInput, rowTensor(obs)); err != nil {
		return nil, fmt.Errorf("predict: could not set input: %w", err)
	}
	defer q.predVM.Reset()
	if err := q.predVM.RunAll(); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	out := make([]float64, q.config.Outputs)
	copy(out, q.predVal.Data().([]float64))
	return out, nil
}

// Fit takes one Adam step moving the prediction for obs towards target
// and returns the loss before the step.
func (q *QNetwork) Fit(obs, target []float64) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(obs) != q.config.Inputs || len(target) != q.config.Outputs {
		return 0, fmt.Errorf("fit: observation %d and target %d, want %d and %d: %w",
			len(obs), len(target), q.config.Inputs, q.config.Outputs, ErrInputSize)
	}
	if err := G.Let(q.trainInput, rowTensor(obs)); err != nil {
		return 0, fmt.Errorf("fit: could not set input: %w", err)
	}
	if err := G.Let(q.trainTarget, rowTensor(target)); err != nil {
		return 0, fmt.Errorf("fit: could not set target: %w", err)
	}

	if err := q.trainVM.RunAll(); err != nil {
		q.trainVM.Reset()
		return 0, fmt.Errorf("fit: %w", err)
	}
	loss, _ := q.costVal.Data().(float64)
	if err := q.solver.Step(G.NodesToValueGrads(learnables(q.trainLayers))); err != nil {
		q.trainVM.Reset()
		return 0, fmt.Errorf("fit: solver step: %w", err)
	}
	q.trainVM.Reset()
	q.steps++

	if err := q.syncPrediction(); err != nil {
		return loss, err
	}
	return loss, nil
}

// syncPrediction copies the trained parameters into the prediction graph
func (q *QNetwork) syncPrediction() error {
	src := learnables(q.trainLayers)
	for i, dst := range learnables(q.predLayers) {
		val, ok := src[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("sync: parameter %s is not a dense tensor", src[i].Name())
		}
		if err := G.Let(dst, val.Clone()); err != nil {
			return fmt.Errorf("sync: parameter %s: %w", dst.Name(), err)
		}
	}
	return nil
}

// Parameters returns a flattened copy of every weight and bias, layer by
// layer.
func (q *QNetwork) Parameters() []float64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	var flat []float64
	for _, p := range q.parameterSlices() {
		flat = append(flat, p...)
	}
	return flat
}

// parameterSlices returns a copy of each parameter tensor's data
func (q *QNetwork) parameterSlices() [][]float64 {
	nodes := learnables(q.trainLayers)
	out := make([][]float64, len(nodes))
	for i, n := range nodes {
		data := n.Value().Data().([]float64)
		out[i] = make([]float64, len(data))
		copy(out[i], data)
	}
	return out
}

// NumParameters returns the total number of weights and biases
func (q *QNetwork) NumParameters() int {
	n := 0
	for _, s := range layerShapes(q.sizes) {
		n += s[0] * s[1]
	}
	return n
}

// SetParameters replaces every weight and bias from a flattened vector in
// the order returned by Parameters.
func (q *QNetwork) SetParameters(flat []float64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	shapes := layerShapes(q.sizes)
	params := make([][]float64, len(shapes))
	offset := 0
	for i, s := range shapes {
		n := s[0] * s[1]
		if offset+n > len(flat) {
			return fmt.Errorf("set parameters: got %d values: %w", len(flat), ErrCheckpointShape)
		}
		params[i] = flat[offset : offset+n]
		offset += n
	}
	if offset != len(flat) {
		return fmt.Errorf("set parameters: got %d values, want %d: %w", len(flat), offset, ErrCheckpointShape)
	}
	return q.setParameterSlices(params)
}

func (q *QNetwork) setParameterSlices(params [][]float64) error {
	shapes := layerShapes(q.sizes)
	if len(params) != len(shapes) {
		return fmt.Errorf("got %d tensors, want %d: %w", len(params), len(shapes), ErrCheckpointShape)
	}
	for i, s := range shapes {
		if len(params[i]) != s[0]*s[1] {
			return fmt.Errorf("tensor %d has %d values, want %dx%d: %w",
				i, len(params[i]), s[0], s[1], ErrCheckpointShape)
		}
	}

	train, pred := learnables(q.trainLayers), learnables(q.predLayers)
	for i, s := range shapes {
		if err := G.Let(train[i], denseCopy(params[i], s)); err != nil {
			return fmt.Errorf("set %s: %w", train[i].Name(), err)
		}
		if err := G.Let(pred[i], denseCopy(params[i], s)); err != nil {
			return fmt.Errorf("set %s: %w", pred[i].Name(), err)
		}
	}
	return nil
}

func rowTensor(data []float64) *tensor.Dense {
	backing := make([]float64, len(data))
	copy(backing, data)
	return tensor.New(tensor.WithShape(1, len(data)), tensor.WithBacking(backing))
}
