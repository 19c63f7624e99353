// Package ocr defines the contract with the external OCR collaborator and
// two engine adapters honouring it: a tesseract subprocess and the Azure
// computer-vision printed-text API. The pipeline depends only on the Engine
// interface; word ordering within a page is not guaranteed by any engine and
// downstream components impose their own.
package ocr

import "context"

// BoundingBox is a page-relative rectangle in pixel coordinates, origin at
// the top-left.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge of the box.
func (b BoundingBox) Right() float64 { return b.Left + b.Width }

// Bottom returns the bottom edge of the box.
func (b BoundingBox) Bottom() float64 { return b.Top + b.Height }

// CenterY returns the vertical centre of the box.
func (b BoundingBox) CenterY() float64 { return b.Top + b.Height/2 }

// Word is a single recognized token. Immutable once received from an
// engine.
type Word struct {
	Text       string      `json:"text"`
	Box        BoundingBox `json:"bounding_box"`
	Confidence float64     `json:"confidence"` // 0..1
}

// Page is the recognized word bag for one rendered page.
type Page struct {
	Number int    `json:"number"`
	Words  []Word `json:"words"`
}

// Engine is the external OCR collaborator. Recognize is blocking and
// potentially slow; implementations bound it with their configured timeout,
// and a timeout surfaces as an ordinary error the pipeline treats as a
// document-open failure.
type Engine interface {
	Recognize(ctx context.Context, path string) ([]Page, error)
}
