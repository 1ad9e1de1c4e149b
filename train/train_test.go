// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train_test

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adampy/neuralnet/matrix"
	"github.com/adampy/neuralnet/nn"
	"github.com/adampy/neuralnet/optim"
	"github.com/adampy/neuralnet/train"
)

// twoClass builds a set where label 0 lights the top row and label 1 the
// bottom row of a 2x2 image.
func twoClass(n int) []train.Image {
	images := make([]train.Image, n)
	for i := range images {
		img := train.Image{Rows: 2, Columns: 2, Label: i % 2}
		if img.Label == 0 {
			img.Pixels = []byte{255, 255, 0, 0}
		} else {
			img.Pixels = []byte{0, 0, 255, 255}
		}
		images[i] = img
	}
	return images
}

func TestPublicAPI_TrainSaveLoad(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	net, err := nn.New(1, []int{4, 6, 2}, 3, nn.WithRand(r))
	require.NoError(t, err)
	defer net.Release()

	history, err := train.MiniBatches(net, twoClass(40), twoClass(10), train.Config{
		Epochs:        30,
		MiniBatchSize: 4,
		Rand:          r,
	})
	require.NoError(t, err)
	require.Len(t, history, 30)
	last, ok := history.Last()
	require.True(t, ok)
	assert.GreaterOrEqual(t, last.Report.Accuracy, 0.9)

	path := filepath.Join(t.TempDir(), "net.nnet")
	require.NoError(t, nn.Save(path, net, nn.SaveOptions{RunID: "facade"}))
	loaded, header, err := nn.Load(path)
	require.NoError(t, err)
	defer loaded.Release()
	assert.Equal(t, "facade", header.RunID)

	report, err := train.Evaluate(loaded, twoClass(10))
	require.NoError(t, err)
	assert.Equal(t, last.Report, report)
}

func TestPublicAPI_ManualStep(t *testing.T) {
	net, err := nn.New(0, []int{2, 1}, 1, nn.WithInitializer(nn.ConstantInit(0)))
	require.NoError(t, err)
	defer net.Release()

	input, err := matrix.Column(1, 0)
	require.NoError(t, err)
	require.NoError(t, net.Forward(input))
	assert.InDelta(t, 0.5, net.Output().Data()[0], 1e-15)

	grads, err := nn.NewGradients(net)
	require.NoError(t, err)
	require.NoError(t, net.Backprop(0, grads))
	require.NoError(t, optim.NewSGD(optim.SGDConfig{}).Step(net, grads, 1))

	// delta = (0.5 - 1) * 0.25 = -0.125; w0 -= delta * 1, b -= delta.
	assert.InDeltaSlice(t, []float64{0.125, 0}, net.Weights(0).Data(), 1e-15)
	assert.InDelta(t, 0.125, net.Biases(0).Data()[0], 1e-15)
}

func TestPublicAPI_Errors(t *testing.T) {
	_, err := nn.New(2, []int{4, 2}, 1)
	assert.ErrorIs(t, err, nn.ErrInvalidConfiguration)

	_, err = matrix.New(0, 1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	a, _ := matrix.New(2, 3)
	_, err = matrix.Multiply(a, a)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
