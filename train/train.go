// Copyright 2025 The neuralnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train

import (
	"math/rand/v2"

	"github.com/adampy/neuralnet/internal/mnist"
	"github.com/adampy/neuralnet/internal/nn"
	"github.com/adampy/neuralnet/internal/train"
)

// ErrData is returned for malformed IDX files.
var ErrData = mnist.ErrData

// Image is a labelled grayscale image.
type Image = mnist.Image

// LoadImages reads an IDX image file and its label file. A positive limit
// reads at most that many images.
func LoadImages(imagesPath, labelsPath string, limit int) ([]Image, error) {
	return mnist.Load(imagesPath, labelsPath, limit)
}

// Training

// Config controls a training run.
type Config = train.Config

// EpochResult describes one completed epoch.
type EpochResult = train.EpochResult

// History lists the results of every epoch run.
type History = train.History

// MiniBatches trains net with mini-batch SGD and evaluates it on testSet
// after every epoch.
func MiniBatches(net *nn.Network, trainingSet, testSet []Image, cfg Config) (History, error) {
	return train.MiniBatches(net, trainingSet, testSet, cfg)
}

// Shuffle permutes images in place with Fisher-Yates.
func Shuffle(images []Image, r *rand.Rand) { train.Shuffle(images, r) }

// Evaluation

// Report summarises a network's predictions on a set of images.
type Report = train.Report

// ClassStats counts the predictions for one true class.
type ClassStats = train.ClassStats

// Evaluate runs every image through net and scores the predictions.
func Evaluate(net *nn.Network, images []Image) (Report, error) { return train.Evaluate(net, images) }
