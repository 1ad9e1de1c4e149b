// Package train runs mini-batch stochastic gradient descent over labelled
// images and scores networks against held-out sets.
package train

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/adampy/neuralnet/internal/mnist"
	"github.com/adampy/neuralnet/internal/nn"
	"github.com/adampy/neuralnet/internal/optim"
	"github.com/adampy/neuralnet/internal/parallel"
	"github.com/adampy/neuralnet/internal/serialization"
)

// Config controls a training run.
type Config struct {
	Epochs        int        // Epochs to run, may be 0
	MiniBatchSize int        // Examples per update, must divide the training set
	Rand          *rand.Rand // Shuffle source, required

	// Workers splits each mini-batch across that many network replicas.
	// Values below 2 train sequentially.
	Workers int

	// StartEpoch numbers the first epoch, for runs resumed from a checkpoint.
	StartEpoch int

	// RunID tags log records and checkpoints.
	RunID string

	// Checkpoint, when set, is the path the network is saved to after
	// every epoch.
	Checkpoint string

	// OnEpoch is called after each epoch's evaluation. A non-nil error
	// stops training and is returned from MiniBatches.
	OnEpoch func(EpochResult) error

	Logger *slog.Logger // Default: slog.Default()
}

// EpochResult describes one completed epoch.
type EpochResult struct {
	Epoch      int
	Report     Report        // Evaluation on the test set
	Duration   time.Duration // Wall time of the training pass
	Throughput float64       // Training examples per second
}

// History lists the results of every epoch run.
type History []EpochResult

// Last returns the final epoch's result.
func (h History) Last() (EpochResult, bool) {
	if len(h) == 0 {
		return EpochResult{}, false
	}
	return h[len(h)-1], true
}

// validate checks cfg against the data before anything is touched.
func (cfg *Config) validate(net *nn.Network, trainingSet, testSet []mnist.Image) error {
	if net == nil || net.Released() {
		return nn.ErrReleased
	}
	if cfg.MiniBatchSize <= 0 {
		return fmt.Errorf("%w: mini-batch size %d", nn.ErrInvalidConfiguration, cfg.MiniBatchSize)
	}
	if len(trainingSet)%cfg.MiniBatchSize != 0 {
		return fmt.Errorf("%w: mini-batch size %d does not divide %d training images",
			nn.ErrInvalidConfiguration, cfg.MiniBatchSize, len(trainingSet))
	}
	if cfg.Epochs < 0 {
		return fmt.Errorf("%w: epochs %d", nn.ErrInvalidConfiguration, cfg.Epochs)
	}
	if cfg.Rand == nil {
		return fmt.Errorf("%w: nil random source", nn.ErrInvalidConfiguration)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers %d", nn.ErrInvalidConfiguration, cfg.Workers)
	}
	if err := checkImages(net, trainingSet, "training"); err != nil {
		return err
	}
	return checkImages(net, testSet, "evaluation")
}

// checkImages verifies every image fits the network's input and output.
func checkImages(net *nn.Network, images []mnist.Image, set string) error {
	for i := range images {
		img := &images[i]
		if img.Size() != net.Inputs() || len(img.Pixels) != net.Inputs() {
			return fmt.Errorf("%s image %d: %dx%d pixels for %d inputs: %w",
				set, i, img.Rows, img.Columns, net.Inputs(), nn.ErrDimensionMismatch)
		}
		if img.Label < 0 || img.Label >= net.Outputs() {
			return fmt.Errorf("%s image %d: label %d outside [0, %d): %w",
				set, i, img.Label, net.Outputs(), nn.ErrDimensionMismatch)
		}
	}
	return nil
}

// MiniBatches trains net with mini-batch SGD.
//
// Each epoch shuffles trainingSet in place, walks it in consecutive
// mini-batches, accumulates the gradients of every example in a batch and
// then applies one SGD step scaled by -lr/MiniBatchSize. After the epoch the
// network is evaluated on testSet and the result is logged.
//
// Every precondition is checked before trainingSet or net is modified.
//
// Example:
//
//	history, err := train.MiniBatches(net, trainSet, testSet, train.Config{
//	    Epochs:        30,
//	    MiniBatchSize: 10,
//	    Rand:          rand.New(rand.NewPCG(seed, seed)),
//	})
func MiniBatches(net *nn.Network, trainingSet, testSet []mnist.Image, cfg Config) (History, error) {
	if err := cfg.validate(net, trainingSet, testSet); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RunID != "" {
		logger = logger.With("run_id", cfg.RunID)
	}

	s, err := newStepper(net, cfg.Workers)
	if err != nil {
		return nil, err
	}
	defer s.release()

	logger.Info("training started",
		"neurons", net.Neurons(),
		"learning_rate", net.LearningRate(),
		"epochs", cfg.Epochs,
		"mini_batch_size", cfg.MiniBatchSize,
		"workers", len(s.replicas),
		"train", len(trainingSet),
		"test", len(testSet))

	history := make(History, 0, cfg.Epochs)
	for e := 0; e < cfg.Epochs; e++ {
		epoch := cfg.StartEpoch + e
		start := time.Now()

		Shuffle(trainingSet, cfg.Rand)
		for b := 0; b < len(trainingSet); b += cfg.MiniBatchSize {
			if err := s.batch(trainingSet[b : b+cfg.MiniBatchSize]); err != nil {
				return history, fmt.Errorf("epoch %d batch %d: %w", epoch, b/cfg.MiniBatchSize, err)
			}
		}
		elapsed := time.Since(start)

		report, err := Evaluate(net, testSet)
		if err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		result := EpochResult{Epoch: epoch, Report: report, Duration: elapsed}
		if secs := elapsed.Seconds(); secs > 0 {
			result.Throughput = float64(len(trainingSet)) / secs
		}
		history = append(history, result)

		logger.Info("epoch complete",
			"epoch", epoch,
			"accuracy", report.Accuracy,
			"correct", report.Correct,
			"total", report.Count,
			"cost", report.Cost,
			"duration", elapsed,
			"examples_per_sec", result.Throughput)

		if cfg.Checkpoint != "" {
			err := nn.Save(cfg.Checkpoint, net, nn.SaveOptions{
				RunID: cfg.RunID,
				Checkpoint: &serialization.CheckpointMeta{
					Epoch:    epoch,
					Accuracy: report.Accuracy,
					Cost:     report.Cost,
				},
			})
			if err != nil {
				return history, fmt.Errorf("epoch %d checkpoint: %w", epoch, err)
			}
			logger.Debug("checkpoint saved", "epoch", epoch, "path", cfg.Checkpoint)
		}

		if cfg.OnEpoch != nil {
			if err := cfg.OnEpoch(result); err != nil {
				return history, err
			}
		}
	}
	return history, nil
}

// stepper accumulates gradients for a mini-batch and applies the update.
type stepper struct {
	net   *nn.Network
	sgd   *optim.SGD
	total *nn.Gradients

	// Worker replicas and their gradients. With one worker the only
	// replica is net itself and its gradients are total.
	replicas []*nn.Network
	grads    []*nn.Gradients
	par      parallel.Config
}

func newStepper(net *nn.Network, workers int) (*stepper, error) {
	total, err := nn.NewGradients(net)
	if err != nil {
		return nil, err
	}
	s := &stepper{
		net:      net,
		sgd:      optim.NewSGD(optim.SGDConfig{}),
		total:    total,
		replicas: []*nn.Network{net},
		grads:    []*nn.Gradients{total},
	}
	if workers < 2 {
		return s, nil
	}

	s.par = parallel.Config{Enabled: true, NumWorkers: workers, MinChunkSize: 1}
	s.replicas = make([]*nn.Network, workers)
	s.grads = make([]*nn.Gradients, workers)
	for w := range s.replicas {
		if s.replicas[w], err = net.Clone(); err != nil {
			return nil, fmt.Errorf("replica %d: %w", w, err)
		}
		if s.grads[w], err = nn.NewGradients(s.replicas[w]); err != nil {
			return nil, fmt.Errorf("replica %d: %w", w, err)
		}
	}
	return s, nil
}

// release frees the worker replicas. net itself is left alone.
func (s *stepper) release() {
	for _, r := range s.replicas {
		if r != s.net {
			r.Release()
		}
	}
}

// batch runs one mini-batch and updates net.
func (s *stepper) batch(images []mnist.Image) error {
	if len(s.replicas) == 1 {
		s.total.Zero()
		if err := accumulate(s.net, s.total, images); err != nil {
			return err
		}
		return s.sgd.Step(s.net, s.total, len(images))
	}

	for _, g := range s.grads {
		g.Zero()
	}
	err := parallel.ForChunks(len(images), s.par, func(c parallel.Chunk) error {
		return accumulate(s.replicas[c.Worker], s.grads[c.Worker], images[c.Start:c.End])
	})
	if err != nil {
		return err
	}

	// Reduce in worker order.
	s.total.Zero()
	for _, g := range s.grads {
		if err := s.total.Add(g); err != nil {
			return err
		}
	}
	if err := s.sgd.Step(s.net, s.total, len(images)); err != nil {
		return err
	}
	for _, r := range s.replicas {
		if err := r.CopyParametersFrom(s.net); err != nil {
			return err
		}
	}
	return nil
}

// accumulate adds the gradients of every image into g.
func accumulate(net *nn.Network, g *nn.Gradients, images []mnist.Image) error {
	for i := range images {
		if err := net.ForwardImage(&images[i]); err != nil {
			return err
		}
		if err := net.Backprop(images[i].Label, g); err != nil {
			return err
		}
	}
	return nil
}
