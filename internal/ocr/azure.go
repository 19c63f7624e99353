package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"
	"github.com/Azure/go-autorest/autorest"
)

// AzureEngine recognizes printed text through the Azure computer-vision
// OCR API. One call handles one rendered page image; the result comes back
// as a single Page.
//
// The printed-text endpoint reports no per-word confidence, so words carry
// full confidence and downstream scoring degrades to pure keyword density.
type AzureEngine struct {
	client  *computervision.BaseClient
	timeout time.Duration
}

// NewAzureEngine creates an engine against the given endpoint and key.
func NewAzureEngine(endpoint, apiKey string, timeout time.Duration) *AzureEngine {
	client := computervision.New(endpoint)
	client.Authorizer = autorest.NewCognitiveServicesAuthorizer(apiKey)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &AzureEngine{client: &client, timeout: timeout}
}

// Recognize sends the image to the OCR endpoint and converts the
// region/line/word hierarchy into a flat word bag.
func (e *AzureEngine) Recognize(ctx context.Context, path string) ([]Page, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", path, err)
	}

	result, err := e.client.RecognizePrintedTextInStream(
		ctx,
		true,
		io.NopCloser(bytes.NewReader(data)),
		computervision.OcrLanguages(computervision.En),
	)
	if err != nil {
		return nil, fmt.Errorf("azure ocr on %s: %w", path, err)
	}

	page := Page{Number: 1}
	if result.Regions != nil {
		for _, region := range *result.Regions {
			if region.Lines == nil {
				continue
			}
			for _, line := range *region.Lines {
				if line.Words == nil {
					continue
				}
				for _, w := range *line.Words {
					word, ok := azureWord(w)
					if ok {
						page.Words = append(page.Words, word)
					}
				}
			}
		}
	}

	return []Page{page}, nil
}

// azureWord converts one API word, whose bounding box is encoded as
// "left,top,width,height".
func azureWord(w computervision.OcrWord) (Word, bool) {
	if w.Text == nil || w.BoundingBox == nil {
		return Word{}, false
	}
	parts := strings.Split(*w.BoundingBox, ",")
	if len(parts) != 4 {
		return Word{}, false
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Word{}, false
		}
		coords[i] = v
	}
	return Word{
		Text:       *w.Text,
		Box:        BoundingBox{Left: coords[0], Top: coords[1], Width: coords[2], Height: coords[3]},
		Confidence: 1.0,
	}, true
}
