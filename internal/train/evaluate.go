package train

import (
	"fmt"
	"strings"

	"github.com/adampy/neuralnet/internal/mnist"
	"github.com/adampy/neuralnet/internal/nn"
)

// ClassStats counts predictions for one true class.
type ClassStats struct {
	Correct int
	Total   int
}

// Report summarises a network's performance on a labelled set.
type Report struct {
	Count    int                // Images evaluated
	Correct  int                // Images whose prediction matched the label
	Accuracy float64            // Correct / Count, 0 for an empty set
	Cost     float64            // Mean MSE cost, 0 for an empty set
	Outputs  int                // Number of classes the network predicts
	Classes  map[int]ClassStats // Per true class, only classes with examples
}

// ClassAccuracy returns the accuracy on images labelled c. ok is false when
// the set held no such image.
func (r Report) ClassAccuracy(c int) (accuracy float64, ok bool) {
	s, ok := r.Classes[c]
	if !ok || s.Total == 0 {
		return 0, false
	}
	return float64(s.Correct) / float64(s.Total), true
}

// PerClassAccuracy returns the accuracy of every class with examples.
func (r Report) PerClassAccuracy() map[int]float64 {
	out := make(map[int]float64, len(r.Classes))
	for c := range r.Classes {
		if acc, ok := r.ClassAccuracy(c); ok {
			out[c] = acc
		}
	}
	return out
}

// String renders the overall and per-class results.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy %d/%d (%.2f%%), cost %.6f\n", r.Correct, r.Count, 100*r.Accuracy, r.Cost)

	classes := r.Outputs
	for c := range r.Classes {
		classes = max(classes, c+1)
	}
	for c := 0; c < classes; c++ {
		if acc, ok := r.ClassAccuracy(c); ok {
			s := r.Classes[c]
			fmt.Fprintf(&b, "  class %d: %.2f%% (%d/%d)\n", c, 100*acc, s.Correct, s.Total)
		} else {
			fmt.Fprintf(&b, "  class %d: N/A\n", c)
		}
	}
	return b.String()
}

// Evaluate runs every image through net and scores the predictions.
//
// The prediction is the index of the largest output; ties go to the lowest
// class. Cost is the mean of ½Σ(a - y)² over the set. An empty set yields a
// zero Report.
func Evaluate(net *nn.Network, images []mnist.Image) (Report, error) {
	if net == nil || net.Released() {
		return Report{}, nn.ErrReleased
	}
	if err := checkImages(net, images, "evaluation"); err != nil {
		return Report{}, err
	}

	r := Report{
		Count:   len(images),
		Outputs: net.Outputs(),
		Classes: make(map[int]ClassStats),
	}
	if len(images) == 0 {
		return r, nil
	}

	var cost float64
	for i := range images {
		img := &images[i]
		if err := net.ForwardImage(img); err != nil {
			return Report{}, fmt.Errorf("evaluate image %d: %w", i, err)
		}
		predicted, err := net.Predict()
		if err != nil {
			return Report{}, fmt.Errorf("evaluate image %d: %w", i, err)
		}
		c, err := nn.MSECost(net.Output(), img.Label)
		if err != nil {
			return Report{}, fmt.Errorf("evaluate image %d: %w", i, err)
		}
		cost += c

		s := r.Classes[img.Label]
		s.Total++
		if predicted == img.Label {
			s.Correct++
			r.Correct++
		}
		r.Classes[img.Label] = s
	}

	r.Accuracy = float64(r.Correct) / float64(r.Count)
	r.Cost = cost / float64(r.Count)
	return r, nil
}
