// Package mnist reads handwritten digit datasets stored in the IDX format.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255), row-major
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
//
// All header integers are big-endian.
package mnist

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers.
const (
	ImageMagic = 2051
	LabelMagic = 2049
)

// Classes is the number of digit classes.
const Classes = 10

// maxPixels bounds the size of a single image read from a header.
const maxPixels = 1 << 20

// preallocate caps the capacity reserved from an untrusted header count.
// Larger sets grow as their data is actually read.
const preallocate = 1 << 16

// ErrData reports malformed dataset input.
var ErrData = errors.New("bad dataset")

// Image is a single labelled grayscale image.
type Image struct {
	Rows    int
	Columns int
	Pixels  []byte // Rows*Columns values, row-major
	Label   int
}

// Size returns the number of pixels in the image.
func (img *Image) Size() int {
	return img.Rows * img.Columns
}

// Normalized returns the pixel at index i scaled into [0, 1].
func (img *Image) Normalized(i int) float64 {
	return float64(img.Pixels[i]) / 255.0
}

// String renders the image as ASCII art followed by its label.
func (img *Image) String() string {
	const shades = " .:-=+*#%@"
	var b strings.Builder
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Columns; c++ {
			p := int(img.Pixels[r*img.Columns+c])
			b.WriteByte(shades[p*(len(shades)-1)/255])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "label: %d\n", img.Label)
	return b.String()
}

// imageHeader is the preamble of an IDX image file.
type imageHeader struct {
	Magic   uint32
	Count   uint32
	Rows    uint32
	Columns uint32
}

// labelHeader is the preamble of an IDX label file.
type labelHeader struct {
	Magic uint32
	Count uint32
}

// ReadImages reads up to limit images from an IDX image stream.
// A limit of zero or less reads every image.
func ReadImages(r io.Reader, limit int) (rows, columns int, pixels [][]byte, err error) {
	var h imageHeader
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return 0, 0, nil, fmt.Errorf("%w: failed to read image header: %v", ErrData, err)
	}
	if h.Magic != ImageMagic {
		return 0, 0, nil, fmt.Errorf("%w: invalid image magic number: got %d, want %d", ErrData, h.Magic, ImageMagic)
	}
	if h.Rows == 0 || h.Columns == 0 || uint64(h.Rows)*uint64(h.Columns) > maxPixels {
		return 0, 0, nil, fmt.Errorf("%w: invalid image size %dx%d", ErrData, h.Rows, h.Columns)
	}

	count := int(h.Count)
	if limit > 0 && limit < count {
		count = limit
	}
	size := int(h.Rows * h.Columns)

	pixels = make([][]byte, 0, min(count, preallocate))
	for i := 0; i < count; i++ {
		img := make([]byte, size)
		if _, err := io.ReadFull(r, img); err != nil {
			return 0, 0, nil, fmt.Errorf("%w: failed to read image %d of %d: %v", ErrData, i, count, err)
		}
		pixels = append(pixels, img)
	}
	return int(h.Rows), int(h.Columns), pixels, nil
}

// ReadLabels reads up to limit labels from an IDX label stream.
// A limit of zero or less reads every label.
func ReadLabels(r io.Reader, limit int) ([]byte, error) {
	var h labelHeader
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: failed to read label header: %v", ErrData, err)
	}
	if h.Magic != LabelMagic {
		return nil, fmt.Errorf("%w: invalid label magic number: got %d, want %d", ErrData, h.Magic, LabelMagic)
	}

	count := int(h.Count)
	if limit > 0 && limit < count {
		count = limit
	}
	labels, err := io.ReadAll(io.LimitReader(r, int64(count)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read labels: %v", ErrData, err)
	}
	if len(labels) != count {
		return nil, fmt.Errorf("%w: header promises %d labels, stream holds %d", ErrData, count, len(labels))
	}
	for i, l := range labels {
		if int(l) >= Classes {
			return nil, fmt.Errorf("%w: label %d out of range [0, %d) at index %d", ErrData, l, Classes, i)
		}
	}
	return labels, nil
}

// Decode pairs an image stream with a label stream.
func Decode(images, labels io.Reader, limit int) ([]Image, error) {
	rows, columns, pixels, err := ReadImages(images, limit)
	if err != nil {
		return nil, err
	}
	tags, err := ReadLabels(labels, limit)
	if err != nil {
		return nil, err
	}
	if len(pixels) != len(tags) {
		return nil, fmt.Errorf("%w: %d images but %d labels", ErrData, len(pixels), len(tags))
	}

	out := make([]Image, len(pixels))
	for i := range out {
		out[i] = Image{Rows: rows, Columns: columns, Pixels: pixels[i], Label: int(tags[i])}
	}
	return out, nil
}

// Load reads a dataset from an IDX image file and its label file.
//
// Example:
//
//	train, err := mnist.Load("train-images-idx3-ubyte", "train-labels-idx1-ubyte", 0)
func Load(imagesPath, labelsPath string, limit int) ([]Image, error) {
	imageFile, err := os.Open(imagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open images: %w", err)
	}
	defer imageFile.Close()

	labelFile, err := os.Open(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer labelFile.Close()

	images, err := Decode(bufio.NewReader(imageFile), bufio.NewReader(labelFile), limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imagesPath, err)
	}
	return images, nil
}

// Split divides images into the first n and the rest.
// n is clamped to [0, len(images)]. Both results share images' backing array.
func Split(images []Image, n int) (head, tail []Image) {
	n = max(0, min(n, len(images)))
	return images[:n:n], images[n:]
}
