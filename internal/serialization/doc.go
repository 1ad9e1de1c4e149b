// Package serialization implements the .nnet file format used to persist
// feedforward networks.
//
// A .nnet file is laid out as:
//
//	Fixed header (64 bytes, little-endian):
//	  0x00  [4]  magic "NNET"
//	  0x04  [4]  format version (uint32)
//	  0x08  [4]  flags (uint32)
//	  0x0C  [4]  reserved
//	  0x10  [8]  JSON header size (uint64)
//	  0x18  [8]  payload size (uint64)
//	  0x20  [32] SHA-256 of the payload
//	JSON header, zero-padded to a 64-byte boundary
//	Payload: float64 values (little-endian), one tensor after another,
//	each in row-major order.
//
// The JSON header records the network architecture (hidden layer count,
// neuron counts, learning rate) and a table of tensors with their name,
// shape, byte offset and size inside the payload. Tensors are written in
// the order given, so layer 0's weight and bias come first.
//
// Example:
//
//	header := serialization.Header{HiddenLayers: 1, Neurons: []int{784, 30, 10}, LearningRate: 3}
//	if err := serialization.WriteFile("mnist.nnet", header, tensors); err != nil {
//	    log.Fatal(err)
//	}
//
//	header, tensors, err := serialization.ReadFile("mnist.nnet", serialization.ReaderOptions{})
package serialization
