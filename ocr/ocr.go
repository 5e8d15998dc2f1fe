// Package ocr defines the optical-character-recognition collaborator the
// editing engine falls back on when a page yields no native positioned text.
// The default engine is a no-op; importing the tesseract subpackage installs
// a real one.
package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Region is a rectangle in pixel coordinates, origin at the upper-left
// corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is a single image submitted for recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the Result.
	ID string
	// Image is the encoded payload in the format named by Format.
	Image []byte
	// Format declares the image content type.
	Format ImageFormat
	// PageIndex links the input back to the page it was rendered from.
	PageIndex int
	// DPI is the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists language hints (e.g. "eng") for trained-data selection.
	Languages []string
	// Region restricts recognition to part of the image; nil means all of it.
	Region *Region
	// Metadata passes engine-specific knobs through without widening the API.
	Metadata map[string]string
}

// Word is a single recognized token.
type Word struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// Line groups words sharing a baseline.
type Line struct {
	Text       string
	Bounds     Region
	Words      []Word
	Confidence float64
}

// Result is the recognition output for one input.
type Result struct {
	InputID   string
	PlainText string
	Lines     []Line
}

// Engine is the provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

var defaultEngine Engine = noopEngine{}

// DefaultEngine returns the installed default engine.
func DefaultEngine() Engine { return defaultEngine }

// SetDefaultEngine installs the default engine used by the fallback path.
func SetDefaultEngine(engine Engine) { defaultEngine = engine }

type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}

// InputOption mutates an Input before submission.
type InputOption func(*Input)

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithRegion restricts recognition to a subsection of the image.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithVariable sets an engine-specific variable on the input.
func WithVariable(key, value string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata[key] = value
	}
}
