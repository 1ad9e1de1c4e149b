package nn

import (
	"fmt"
	"io"

	"github.com/adampy/neuralnet/internal/matrix"
	"github.com/adampy/neuralnet/internal/serialization"
)

// SaveOptions carries the optional parts of a saved model.
type SaveOptions struct {
	RunID      string                        // Training run identifier
	Metadata   map[string]string             // Free-form metadata
	Checkpoint *serialization.CheckpointMeta // Training progress, nil for a final model
}

// WeightName returns the tensor name of layer i's weights.
func WeightName(i int) string { return fmt.Sprintf("layer.%d.weight", i) }

// BiasName returns the tensor name of layer i's biases.
func BiasName(i int) string { return fmt.Sprintf("layer.%d.bias", i) }

// header builds the .nnet header and tensor list for n.
func (n *Network) header(opts SaveOptions) (serialization.Header, []serialization.Tensor, error) {
	if err := n.live(); err != nil {
		return serialization.Header{}, nil, err
	}
	header := serialization.Header{
		ModelType:    serialization.ModelFeedforward,
		RunID:        opts.RunID,
		HiddenLayers: n.hiddenLayers,
		Neurons:      n.Neurons(),
		LearningRate: n.learningRate,
		Metadata:     opts.Metadata,
		Checkpoint:   opts.Checkpoint,
	}
	tensors := make([]serialization.Tensor, 0, 2*len(n.weights))
	for i := range n.weights {
		w, b := n.weights[i], n.biases[i]
		tensors = append(tensors,
			serialization.Tensor{Name: WeightName(i), Shape: []int{w.Rows(), w.Columns()}, Data: w.Data()},
			serialization.Tensor{Name: BiasName(i), Shape: []int{b.Rows(), b.Columns()}, Data: b.Data()},
		)
	}
	return header, tensors, nil
}

// Write encodes n to w in the .nnet format.
func Write(w io.Writer, n *Network, opts SaveOptions) error {
	header, tensors, err := n.header(opts)
	if err != nil {
		return err
	}
	return serialization.Write(w, header, tensors)
}

// Save writes n to the .nnet file at path.
//
// Example:
//
//	err := nn.Save("mnist.nnet", net, nn.SaveOptions{RunID: runID})
func Save(path string, n *Network, opts SaveOptions) error {
	header, tensors, err := n.header(opts)
	if err != nil {
		return err
	}
	if err := serialization.WriteFile(path, header, tensors); err != nil {
		return fmt.Errorf("save network: %w", err)
	}
	return nil
}

// Read decodes a network from a .nnet stream.
func Read(r io.Reader) (*Network, serialization.Header, error) {
	header, tensors, err := serialization.Read(r, serialization.ReaderOptions{})
	if err != nil {
		return nil, serialization.Header{}, err
	}
	n, err := fromTensors(header, tensors)
	if err != nil {
		return nil, serialization.Header{}, err
	}
	return n, header, nil
}

// Load reads the .nnet file at path into a new network.
//
// The returned header carries the run ID, metadata and checkpoint block the
// file was saved with.
func Load(path string) (*Network, serialization.Header, error) {
	header, tensors, err := serialization.ReadFile(path, serialization.ReaderOptions{})
	if err != nil {
		return nil, serialization.Header{}, fmt.Errorf("load network: %w", err)
	}
	n, err := fromTensors(header, tensors)
	if err != nil {
		return nil, serialization.Header{}, fmt.Errorf("load network %s: %w", path, err)
	}
	return n, header, nil
}

func fromTensors(header serialization.Header, tensors []serialization.Tensor) (*Network, error) {
	if header.ModelType != serialization.ModelFeedforward {
		return nil, fmt.Errorf("%w: model type %q", ErrInvalidConfiguration, header.ModelType)
	}
	if err := validateArchitecture(header.HiddenLayers, header.Neurons, header.LearningRate); err != nil {
		return nil, err
	}
	n, err := allocate(header.HiddenLayers, header.Neurons, header.LearningRate)
	if err != nil {
		return nil, err
	}
	if len(tensors) != 2*len(n.weights) {
		return nil, fmt.Errorf("%d tensors for %d layers: %w", len(tensors), len(n.weights), ErrDimensionMismatch)
	}
	for i := range n.weights {
		if err := loadTensor(tensors, WeightName(i), n.weights[i]); err != nil {
			return nil, err
		}
		if err := loadTensor(tensors, BiasName(i), n.biases[i]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func loadTensor(tensors []serialization.Tensor, name string, dst *matrix.Matrix) error {
	t, ok := serialization.FindTensor(tensors, name)
	if !ok {
		return fmt.Errorf("%w: %s", serialization.ErrTensorNotFound, name)
	}
	if len(t.Shape) != 2 || t.Shape[0] != dst.Rows() || t.Shape[1] != dst.Columns() {
		return fmt.Errorf("tensor %s: shape %v, want %v: %w", name, t.Shape, dst.Shape(), ErrDimensionMismatch)
	}
	src, err := matrix.FromSlice(t.Shape[0], t.Shape[1], t.Data)
	if err != nil {
		return fmt.Errorf("tensor %s: %w", name, err)
	}
	return matrix.CopyInto(src, dst)
}
