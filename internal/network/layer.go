package network

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer is one fully connected layer of the network
type fcLayer struct {
	weights *G.Node
	bias    *G.Node
	relu    bool
}

// fwd adds the forward pass of the layer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}

	// Inputs always have a batch dimension of 1, so the bias is added
	// element-wise without broadcasting
	if x, err = G.Add(x, f.bias); err != nil {
		return nil, err
	}

	if !f.relu {
		return x, nil
	}
	return G.Rectify(x)
}

// layerShapes returns the (rows, cols) of every weight matrix followed by
// its bias row, in the order they are stored in a checkpoint.
func layerShapes(sizes []int) [][2]int {
	shapes := make([][2]int, 0, 2*(len(sizes)-1))
	for i := 0; i < len(sizes)-1; i++ {
		shapes = append(shapes, [2]int{sizes[i], sizes[i+1]}, [2]int{1, sizes[i+1]})
	}
	return shapes
}

// glorotUniform draws the starting parameters: weights uniform in
// ±sqrt(6/(fanIn+fanOut)), biases zero.
func glorotUniform(sizes []int, seed uint64) [][]float64 {
	src := rand.NewSource(seed)
	params := make([][]float64, 0, 2*(len(sizes)-1))

	for i := 0; i < len(sizes)-1; i++ {
		fanIn, fanOut := sizes[i], sizes[i+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
		dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}

		w := make([]float64, fanIn*fanOut)
		for j := range w {
			w[j] = dist.Rand()
		}
		params = append(params, w, make([]float64, fanOut))
	}
	return params
}

// addLayers builds the layers on g with copies of the given parameters
func addLayers(g *G.ExprGraph, sizes []int, params [][]float64, prefix string) []*fcLayer {
	shapes := layerShapes(sizes)
	layers := make([]*fcLayer, 0, len(sizes)-1)

	for i := 0; i < len(sizes)-1; i++ {
		wShape, bShape := shapes[2*i], shapes[2*i+1]

		w := G.NewMatrix(g, tensor.Float64,
			G.WithShape(wShape[0], wShape[1]),
			G.WithName(fmt.Sprintf("%sW%d", prefix, i)),
			G.WithValue(denseCopy(params[2*i], wShape)),
		)
		b := G.NewMatrix(g, tensor.Float64,
			G.WithShape(bShape[0], bShape[1]),
			G.WithName(fmt.Sprintf("%sB%d", prefix, i)),
			G.WithValue(denseCopy(params[2*i+1], bShape)),
		)

		layers = append(layers, &fcLayer{
			weights: w,
			bias:    b,
			relu:    i < len(sizes)-2,
		})
	}
	return layers
}

func denseCopy(data []float64, shape [2]int) *tensor.Dense {
	backing := make([]float64, len(data))
	copy(backing, data)
	return tensor.New(tensor.WithShape(shape[0], shape[1]), tensor.WithBacking(backing))
}

func learnables(layers []*fcLayer) G.Nodes {
	nodes := make(G.Nodes, 0, 2*len(layers))
	for _, l := range layers {
		nodes = append(nodes, l.weights, l.bias)
	}
	return nodes
}
