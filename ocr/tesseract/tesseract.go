// Package tesseract provides the gosseract-backed default OCR engine.
// Importing it installs the engine as the package ocr default.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/wudi/pdfedit/ocr"
)

func init() {
	ocr.SetDefaultEngine(New())
}

// Engine recognizes text with a local Tesseract installation.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single input.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}
	c := e.clientFactory()
	defer c.Close()

	imgData, err := cropToRegion(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := c.SetImageFromBytes(imgData); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	words := extractWords(c)
	return ocr.Result{
		InputID:   in.ID,
		PlainText: strings.TrimSpace(text),
		Lines:     GroupWords(words),
	}, nil
}

func extractWords(c *gosseract.Client) []ocr.Word {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil
	}
	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, ocr.Word{
			Text: b.Word,
			Bounds: ocr.Region{
				X:      float64(b.Box.Min.X),
				Y:      float64(b.Box.Min.Y),
				Width:  float64(b.Box.Dx()),
				Height: float64(b.Box.Dy()),
			},
			Confidence: b.Confidence / 100.0,
		})
	}
	return words
}

// GroupWords assembles recognized words into lines: words whose vertical
// centers fall within half a word height of each other share a line.
func GroupWords(words []ocr.Word) []ocr.Line {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]ocr.Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi := sorted[i].Bounds.Y + sorted[i].Bounds.Height/2
		yj := sorted[j].Bounds.Y + sorted[j].Bounds.Height/2
		if math.Abs(yi-yj) > sorted[i].Bounds.Height/2 {
			return yi < yj
		}
		return sorted[i].Bounds.X < sorted[j].Bounds.X
	})

	var lines []ocr.Line
	var current []ocr.Word
	flush := func() {
		if len(current) == 0 {
			return
		}
		lines = append(lines, buildLine(current))
		current = nil
	}
	for _, w := range sorted {
		if len(current) > 0 {
			prev := current[len(current)-1]
			prevMid := prev.Bounds.Y + prev.Bounds.Height/2
			mid := w.Bounds.Y + w.Bounds.Height/2
			if math.Abs(mid-prevMid) > math.Max(prev.Bounds.Height, w.Bounds.Height)/2 {
				flush()
			}
		}
		current = append(current, w)
	}
	flush()
	return lines
}

func buildLine(words []ocr.Word) ocr.Line {
	var texts []string
	var sum float64
	bounds := words[0].Bounds
	for _, w := range words {
		texts = append(texts, w.Text)
		sum += w.Confidence
		bounds = union(bounds, w.Bounds)
	}
	return ocr.Line{
		Text:       strings.Join(texts, " "),
		Bounds:     bounds,
		Words:      words,
		Confidence: sum / float64(len(words)),
	}
}

func union(a, b ocr.Region) ocr.Region {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	x1 := math.Max(a.X+a.Width, b.X+b.Width)
	y1 := math.Max(a.Y+a.Height, b.Y+b.Height)
	return ocr.Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func cropToRegion(data []byte, region *ocr.Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := image.Rect(
		int(math.Round(region.X)),
		int(math.Round(region.Y)),
		int(math.Round(region.X+region.Width)),
		int(math.Round(region.Y+region.Height)),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}
