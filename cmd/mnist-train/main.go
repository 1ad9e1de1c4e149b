// Command mnist-train trains a feedforward sigmoid network on MNIST IDX files.
//
// Usage:
//
//	mnist-train [flags] [train-images train-labels]
//
// Settings come from an optional YAML file (-config) and are overridden by
// flags. Positional arguments override the training image and label paths.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/adampy/neuralnet/internal/config"
	"github.com/adampy/neuralnet/internal/mnist"
	"github.com/adampy/neuralnet/internal/nn"
	"github.com/adampy/neuralnet/internal/parallel"
	"github.com/adampy/neuralnet/internal/train"
)

const version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("mnist-train failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// neuronsFlag parses a comma separated layer size list such as "784,30,10".
type neuronsFlag []int

func (f *neuronsFlag) String() string {
	parts := make([]string, len(*f))
	for i, n := range *f {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (f *neuronsFlag) Set(s string) error {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("layer size %q: %w", part, err)
		}
		out = append(out, n)
	}
	*f = out
	return nil
}

// options is the parsed command line.
type options struct {
	configPath string
	preview    int
	version    bool
	overrides  config.Overrides
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var neurons neuronsFlag
	o := &opts.overrides

	fs := flag.NewFlagSet("mnist-train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to YAML config (defaults apply when empty)")
	fs.IntVar(&opts.preview, "preview", 0, "Print the first N training images before training")
	fs.BoolVar(&opts.version, "version", false, "Print the version and exit")
	fs.StringVar(&o.TrainImages, "train-images", "", "Training images IDX file")
	fs.StringVar(&o.TrainLabels, "train-labels", "", "Training labels IDX file")
	fs.StringVar(&o.TestImages, "test-images", "", "Test images IDX file")
	fs.StringVar(&o.TestLabels, "test-labels", "", "Test labels IDX file")
	fs.IntVar(&o.TrainLimit, "train-limit", 0, "Max training images to read (0 = all)")
	fs.IntVar(&o.TestLimit, "test-limit", 0, "Max test images to read (0 = all)")
	fs.IntVar(&o.Holdout, "holdout", 0, "Training images held back for per-epoch validation")
	fs.Var(&neurons, "neurons", "Layer sizes, input to output, e.g. 784,30,10")
	fs.Float64Var(&o.LearningRate, "lr", 0, "Learning rate")
	fs.IntVar(&o.Epochs, "epochs", 0, "Number of training epochs")
	fs.IntVar(&o.MiniBatchSize, "batch", 0, "Mini-batch size")
	fs.IntVar(&o.Workers, "workers", 0, "Worker replicas per mini-batch (0 = config or physical cores)")
	fs.Uint64Var(&o.Seed, "seed", 0, "PRNG seed")
	fs.StringVar(&o.Checkpoint, "checkpoint", "", "Save the network here after every epoch")
	fs.StringVar(&o.Resume, "resume", "", "Continue training from a saved network")
	fs.StringVar(&o.Output, "output", "", "Path of the final model")
	fs.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	switch fs.NArg() {
	case 0:
	case 2:
		o.TrainImages, o.TrainLabels = fs.Arg(0), fs.Arg(1)
	default:
		return opts, fmt.Errorf("expected 0 or 2 positional arguments (train images, train labels), got %d", fs.NArg())
	}
	o.Neurons = neurons
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyOverrides(opts.overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "mnist-train %s\n", version)
		return nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	trainSet, err := mnist.Load(cfg.TrainImages, cfg.TrainLabels, cfg.TrainLimit)
	if err != nil {
		return fmt.Errorf("load training set: %w", err)
	}
	testSet, err := mnist.Load(cfg.TestImages, cfg.TestLabels, cfg.TestLimit)
	if err != nil {
		return fmt.Errorf("load test set: %w", err)
	}
	evalSet := testSet
	if cfg.Holdout > 0 {
		if cfg.Holdout >= len(trainSet) {
			return fmt.Errorf("%w: holdout %d leaves no training images from %d",
				config.ErrInvalid, cfg.Holdout, len(trainSet))
		}
		trainSet, evalSet = mnist.Split(trainSet, len(trainSet)-cfg.Holdout)
	}
	logger.Info("dataset loaded", "train", len(trainSet), "eval", len(evalSet), "test", len(testSet))

	for i := range min(opts.preview, len(trainSet)) {
		fmt.Fprintln(stdout, trainSet[i].String())
	}

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	net, startEpoch, err := buildNetwork(cfg, r, logger)
	if err != nil {
		return err
	}
	defer net.Release()
	fmt.Fprint(stdout, net.String())

	workers := cfg.Workers
	if workers == 0 {
		workers = parallel.DefaultWorkers()
	}

	history, err := train.MiniBatches(net, trainSet, evalSet, train.Config{
		Epochs:        cfg.Epochs,
		MiniBatchSize: cfg.MiniBatchSize,
		Rand:          r,
		Workers:       workers,
		StartEpoch:    startEpoch,
		RunID:         runID,
		Checkpoint:    cfg.Checkpoint,
		Logger:        logger,
		OnEpoch: func(train.EpochResult) error {
			return ctx.Err()
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("training interrupted", "epochs_completed", len(history))
	}

	final, err := train.Evaluate(net, testSet)
	if err != nil {
		return fmt.Errorf("evaluate test set: %w", err)
	}
	fmt.Fprintln(stdout, final.String())

	if cfg.Output != "" {
		err := nn.Save(cfg.Output, net, nn.SaveOptions{
			RunID: runID,
			Metadata: map[string]string{
				"train_images":  strconv.Itoa(len(trainSet)),
				"test_accuracy": strconv.FormatFloat(final.Accuracy, 'f', 4, 64),
				"epochs":        strconv.Itoa(startEpoch + len(history)),
			},
		})
		if err != nil {
			return err
		}
		logger.Info("model saved", "path", cfg.Output)
	}
	return nil
}

// buildNetwork creates a fresh network, or loads cfg.Resume and returns the
// epoch number to continue from.
func buildNetwork(cfg *config.Config, r *rand.Rand, logger *slog.Logger) (*nn.Network, int, error) {
	if cfg.Resume == "" {
		net, err := nn.New(cfg.HiddenLayers(), cfg.Neurons, cfg.LearningRate, nn.WithRand(r))
		return net, 0, err
	}

	net, header, err := nn.Load(cfg.Resume)
	if err != nil {
		return nil, 0, err
	}
	if !slices.Equal(net.Neurons(), cfg.Neurons) {
		net.Release()
		return nil, 0, fmt.Errorf("%w: %s has layers %v, config asks for %v",
			nn.ErrInvalidConfiguration, cfg.Resume, header.Neurons, cfg.Neurons)
	}
	if err := net.SetLearningRate(cfg.LearningRate); err != nil {
		net.Release()
		return nil, 0, err
	}
	start := 0
	if header.Checkpoint != nil {
		start = header.Checkpoint.Epoch + 1
	}
	logger.Info("resumed", "path", cfg.Resume, "from_run", header.RunID, "start_epoch", start)
	return net, start, nil
}
