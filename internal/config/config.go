// Package config loads the settings of a training run from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config captures the runtime knobs for a training run.
type Config struct {
	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	TrainLimit  int    `yaml:"train_limit"` // 0 reads every image
	TestLimit   int    `yaml:"test_limit"`  // 0 reads every image
	Holdout     int    `yaml:"holdout"`     // training images held back for per-epoch validation

	Neurons       []int   `yaml:"neurons"` // input, hidden..., output
	LearningRate  float64 `yaml:"learning_rate"`
	Epochs        int     `yaml:"epochs"`
	MiniBatchSize int     `yaml:"mini_batch_size"`
	Workers       int     `yaml:"workers"` // 0 uses one per physical core
	Seed          uint64  `yaml:"seed"`

	Checkpoint string `yaml:"checkpoint"` // saved after every epoch when set
	Resume     string `yaml:"resume"`     // model to continue training from
	Output     string `yaml:"output"`     // final model path
	LogLevel   string `yaml:"log_level"`
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	TrainImages   string
	TrainLabels   string
	TestImages    string
	TestLabels    string
	TrainLimit    int
	TestLimit     int
	Holdout       int
	Neurons       []int
	LearningRate  float64
	Epochs        int
	MiniBatchSize int
	Workers       int
	Seed          uint64
	Checkpoint    string
	Resume        string
	Output        string
	LogLevel      string
}

// Default returns the configuration of the classic MNIST run: one hidden
// layer of 30 neurons, learning rate 3, 30 epochs of mini-batches of 10.
func Default() *Config {
	return &Config{
		TrainImages:   "data/train-images-idx3-ubyte",
		TrainLabels:   "data/train-labels-idx1-ubyte",
		TestImages:    "data/t10k-images-idx3-ubyte",
		TestLabels:    "data/t10k-labels-idx1-ubyte",
		Neurons:       []int{784, 30, 10},
		LearningRate:  3.0,
		Epochs:        30,
		MiniBatchSize: 10,
		Seed:          1,
		Output:        "mnist.nnet",
		LogLevel:      "info",
	}
}

// Load reads and validates a Config from YAML. Keys absent from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r over Default. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	setString(&c.TrainImages, o.TrainImages)
	setString(&c.TrainLabels, o.TrainLabels)
	setString(&c.TestImages, o.TestImages)
	setString(&c.TestLabels, o.TestLabels)
	setString(&c.Checkpoint, o.Checkpoint)
	setString(&c.Resume, o.Resume)
	setString(&c.Output, o.Output)
	setString(&c.LogLevel, o.LogLevel)
	if o.TrainLimit > 0 {
		c.TrainLimit = o.TrainLimit
	}
	if o.TestLimit > 0 {
		c.TestLimit = o.TestLimit
	}
	if o.Holdout > 0 {
		c.Holdout = o.Holdout
	}
	if len(o.Neurons) > 0 {
		c.Neurons = append([]int(nil), o.Neurons...)
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.MiniBatchSize > 0 {
		c.MiniBatchSize = o.MiniBatchSize
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	if c.TrainImages == "" || c.TrainLabels == "" {
		return fmt.Errorf("%w: train_images and train_labels must be set", ErrInvalid)
	}
	if c.TestImages == "" || c.TestLabels == "" {
		return fmt.Errorf("%w: test_images and test_labels must be set", ErrInvalid)
	}
	if c.TrainLimit < 0 || c.TestLimit < 0 {
		return fmt.Errorf("%w: limits must be >= 0 (got %d, %d)", ErrInvalid, c.TrainLimit, c.TestLimit)
	}
	if c.Holdout < 0 {
		return fmt.Errorf("%w: holdout must be >= 0 (got %d)", ErrInvalid, c.Holdout)
	}
	if c.TrainLimit > 0 && c.Holdout >= c.TrainLimit {
		return fmt.Errorf("%w: holdout %d leaves no training images from %d", ErrInvalid, c.Holdout, c.TrainLimit)
	}
	if len(c.Neurons) < 2 {
		return fmt.Errorf("%w: neurons needs an input and an output size (got %v)", ErrInvalid, c.Neurons)
	}
	for i, n := range c.Neurons {
		if n <= 0 {
			return fmt.Errorf("%w: neurons[%d] must be > 0 (got %d)", ErrInvalid, i, n)
		}
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("%w: learning_rate must be > 0 (got %v)", ErrInvalid, c.LearningRate)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("%w: epochs must be >= 0 (got %d)", ErrInvalid, c.Epochs)
	}
	if c.MiniBatchSize <= 0 {
		return fmt.Errorf("%w: mini_batch_size must be > 0 (got %d)", ErrInvalid, c.MiniBatchSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0 (got %d)", ErrInvalid, c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// HiddenLayers returns the number of hidden layers described by Neurons.
func (c *Config) HiddenLayers() int {
	return len(c.Neurons) - 2
}

// Level parses LogLevel. An empty level is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return level, nil
}
