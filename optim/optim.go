// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the parameter update applied after each mini-batch.
package optim

import "github.com/adampy/neuralnet/internal/optim"

// Optimizer applies accumulated gradients to a network.
type Optimizer = optim.Optimizer

// SGD is plain stochastic gradient descent.
type SGD = optim.SGD

// SGDConfig configures SGD. A zero LR uses the network's learning rate.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
//
// Example:
//
//	sgd := optim.NewSGD(optim.SGDConfig{})
//	err := sgd.Step(net, grads, batchSize)
func NewSGD(cfg SGDConfig) *SGD { return optim.NewSGD(cfg) }
