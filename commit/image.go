package commit

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/provider"
)

// commitImage covers the region's original geometry and, for a replace
// action, draws the replacement scaled to exactly that geometry. Embedding
// failures retry once with the alternate codec before the region is skipped.
func (e *Engine) commitImage(ctx context.Context, doc provider.Doc, page provider.Page, img ImageEdit) error {
	if err := page.DrawRectangle(img.Rect, img.Background); err != nil {
		return fmt.Errorf("cover rectangle: %w", err)
	}
	if img.Action != ActionReplace {
		return nil
	}

	handle, err := doc.EmbedRasterImage(ctx, img.Replacement)
	if err != nil {
		recoded, recodeErr := recodeToRegion(img.Replacement, img.Rect.W, img.Rect.H)
		if recodeErr != nil {
			return fmt.Errorf("embed image: %w", err)
		}
		e.log.Warn("image embed failed, retrying with alternate codec",
			observability.Error("err", err))
		if handle, err = doc.EmbedRasterImage(ctx, recoded); err != nil {
			return fmt.Errorf("embed image after recode: %w", err)
		}
	}
	if err := page.DrawImage(handle, img.Rect); err != nil {
		return fmt.Errorf("draw image: %w", err)
	}
	return nil
}

// recodeToRegion decodes the replacement, rescales it to the region's
// geometry, and re-encodes with the codec the original bytes did not use.
func recodeToRegion(data []byte, w, h float64) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode replacement: %w", err)
	}
	tw, th := int(w+0.5), int(h+0.5)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if format == "png" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	} else {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}
