// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs mini-batch stochastic gradient descent on labelled
// images and scores networks on held-out sets.
//
// # Basic Usage
//
//	trainSet, _ := train.LoadImages("train-images-idx3-ubyte", "train-labels-idx1-ubyte", 0)
//	testSet, _ := train.LoadImages("t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte", 0)
//
//	history, err := train.MiniBatches(net, trainSet, testSet, train.Config{
//	    Epochs:        30,
//	    MiniBatchSize: 10,
//	    Rand:          rand.New(rand.NewPCG(1, 1)),
//	})
//
// Each epoch shuffles the training set in place, applies one SGD step per
// mini-batch and logs the test set accuracy and cost with log/slog.
package train
