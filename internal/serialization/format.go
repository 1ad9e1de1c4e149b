package serialization

import (
	"crypto/sha256"
	"time"
)

// Format constants.
const (
	MagicBytes      = "NNET"
	FormatVersion   = 1
	FixedHeaderSize = 64   // fixed header size (0x40 bytes)
	HeaderAlignment = 64   // payload starts on a 64-byte boundary
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // checksum offset in the fixed header
	ElementSize     = 8    // bytes per float64
)

// Creator identifies the writer in new files.
const Creator = "neuralnet/0.1.0"

// DTypeFloat64 is the only element type stored in .nnet payloads.
const DTypeFloat64 = "float64"

// ModelFeedforward is the model type of a dense sigmoid network.
const ModelFeedforward = "feedforward"

// Flags for the .nnet format.
const (
	FlagHasMetadata   uint32 = 1 << 0 // bit 0: custom metadata included
	FlagHasCheckpoint uint32 = 1 << 1 // bit 1: training checkpoint block included
)

// Header is the JSON header of a .nnet file.
type Header struct {
	FormatVersion int               `json:"format_version"`       // Version of the .nnet format
	Creator       string            `json:"creator"`              // Writer that created this file
	ModelType     string            `json:"model_type"`           // Model kind, ModelFeedforward
	CreatedAt     time.Time         `json:"created_at"`           // When the file was created
	RunID         string            `json:"run_id,omitempty"`     // Training run that produced the parameters
	HiddenLayers  int               `json:"hidden_layers"`        // Number of hidden layers
	Neurons       []int             `json:"neurons"`              // Neurons per layer, input first
	LearningRate  float64           `json:"learning_rate"`        // SGD learning rate
	Tensors       []TensorMeta      `json:"tensors"`              // Tensor table, payload order
	Metadata      map[string]string `json:"metadata"`             // Custom metadata
	Checkpoint    *CheckpointMeta   `json:"checkpoint,omitempty"` // Training state (optional)
}

// CheckpointMeta records where in a training run a file was written.
type CheckpointMeta struct {
	Epoch    int     `json:"epoch"`    // Last completed epoch (0-indexed)
	Accuracy float64 `json:"accuracy"` // Test accuracy after that epoch
	Cost     float64 `json:"cost"`     // Mean test cost after that epoch
}

// TensorMeta describes a tensor stored in the payload.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layer.0.weight")
	DType  string `json:"dtype"`  // Element type, always "float64"
	Shape  []int  `json:"shape"`  // [rows, columns]
	Offset int64  `json:"offset"` // Byte offset from the start of the payload
	Size   int64  `json:"size"`   // Size in bytes
}

// Tensor is a named row-major float64 buffer.
type Tensor struct {
	Name  string
	Shape []int
	Data  []float64
}

// numElements returns the product of shape's dimensions.
func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// paddedHeaderEnd returns the payload offset for a JSON header of size n.
func paddedHeaderEnd(n int64) int64 {
	pos := int64(FixedHeaderSize) + n
	return pos + (HeaderAlignment-(pos%HeaderAlignment))%HeaderAlignment
}

// ComputeChecksum computes the SHA-256 checksum of a payload.
func ComputeChecksum(payload []byte) [ChecksumSize]byte {
	return sha256.Sum256(payload)
}

// FindTensor returns the tensor called name.
func FindTensor(tensors []Tensor, name string) (Tensor, bool) {
	for _, t := range tensors {
		if t.Name == name {
			return t, true
		}
	}
	return Tensor{}, false
}
