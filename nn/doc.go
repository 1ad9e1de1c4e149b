// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a fully connected feedforward network with sigmoid
// activations, trained by backpropagation of the mean squared error.
//
// # Overview
//
// This package contains:
//   - Network: weights, biases and forward-pass caches for every layer
//   - Activations: Sigmoid, SigmoidPrime, ReLU, ReLUPrime
//   - Loss: one-hot targets, MSE cost and its derivative
//   - Gradients: per mini-batch accumulators filled by Backprop
//   - Persistence: Save and Load in the .nnet binary format
//
// # Basic Usage
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/adampy/neuralnet/nn"
//	)
//
//	func main() {
//	    r := rand.New(rand.NewPCG(1, 1))
//
//	    // 784 inputs, one hidden layer of 30, 10 outputs
//	    net, err := nn.New(1, []int{784, 30, 10}, 3.0, nn.WithRand(r))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer net.Release()
//
//	    if err := net.Forward(input); err != nil {
//	        log.Fatal(err)
//	    }
//	    digit, _ := net.Predict()
//	}
//
// # Concurrency
//
// A Network caches its forward pass, so only one Forward or Backprop may run
// on it at a time. Use Clone to give each goroutine its own replica.
package nn
