// Package pipeline runs the document-at-a-time extraction: dispatching each
// filing to the digital or imaged path, degrading every failure to a record
// with explicit flags, and fanning batches out across workers. No state is
// shared between documents; the only aggregation point is the result slice.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/accdata/sheetscan/internal/config"
	"github.com/accdata/sheetscan/internal/filemeta"
	"github.com/accdata/sheetscan/internal/metrics"
	"github.com/accdata/sheetscan/internal/ocr"
	"github.com/accdata/sheetscan/internal/record"
	"github.com/accdata/sheetscan/internal/scanned"
	"github.com/accdata/sheetscan/internal/xbrl"
)

const (
	pathDigital = "digital"
	pathScanned = "scanned"
)

var digitalExts = map[string]bool{
	".html": true, ".htm": true, ".xhtml": true, ".xml": true, ".xbrl": true,
}

var imagedExts = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

// Supported reports whether the pipeline has an extraction path for the
// given filename.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return digitalExts[ext] || imagedExts[ext]
}

// Pipeline extracts canonical records from filings.
type Pipeline struct {
	logger   *zap.Logger
	engine   ocr.Engine
	locator  *scanned.PageLocator
	rows     *scanned.RowReconstructor
	currency *scanned.CurrencyInferencer

	now func() time.Time
}

// New creates a pipeline. The engine is the external OCR collaborator for
// the imaged path.
func New(cfg *config.Config, logger *zap.Logger, engine ocr.Engine) *Pipeline {
	locatorCfg := scanned.DefaultLocatorConfig()
	locatorCfg.ScoreThreshold = cfg.PageScoreThreshold
	return &Pipeline{
		logger:   logger,
		engine:   engine,
		locator:  scanned.NewPageLocator(locatorCfg),
		rows:     scanned.NewRowReconstructor(scanned.RowConfig{LineTolerance: cfg.LineTolerance}),
		currency: scanned.NewCurrencyInferencer(),
		now:      time.Now,
	}
}

// Process extracts one document. It never returns an error: any failure
// degrades to a record with doc_parsed=false and no elements, and retry
// policy stays with the caller.
func (p *Pipeline) Process(ctx context.Context, path string) record.Record {
	meta := metadataOf(path, p.now())
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case digitalExts[ext]:
		return p.processDigital(meta, path)
	case imagedExts[ext]:
		return p.processScanned(ctx, meta, path, ext)
	default:
		p.logger.Warn("unsupported document type",
			zap.String("doc", meta.DocName),
			zap.String("ext", ext))
		return p.failed(meta, pathDigital)
	}
}

// ProcessBatch extracts a batch of documents, one worker per document up to
// workers. Result order is not guaranteed; ordering within a document's
// element list is the only ordering contract.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string, workers int) []record.Record {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		records []record.Record
		wg      sync.WaitGroup
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rec := p.Process(ctx, path)
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return records
		}
	}
	close(jobs)
	wg.Wait()
	return records
}

// processDigital runs the tagged-document path.
func (p *Pipeline) processDigital(meta record.Metadata, path string) record.Record {
	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("failed to open document", zap.String("doc", meta.DocName), zap.Error(err))
		return p.failed(meta, pathDigital)
	}
	defer f.Close()

	doc, err := xbrl.Parse(f)
	if err != nil {
		p.logger.Warn("failed to parse tagged document", zap.String("doc", meta.DocName), zap.Error(err))
		return p.failed(meta, pathDigital)
	}

	std := xbrl.DetectStandard(doc)
	resolver := xbrl.NewResolver(doc)
	elements := xbrl.ExtractElements(doc, resolver)

	p.observe(pathDigital, meta.DocName, len(elements))
	return record.Assemble(meta, std, true, elements)
}

// processScanned runs the imaged path: OCR, page location, row
// reconstruction, document-wide unit inference.
func (p *Pipeline) processScanned(ctx context.Context, meta record.Metadata, path, ext string) record.Record {
	if ext == ".pdf" {
		if info, err := scanned.ProbePDF(path); err != nil {
			p.logger.Debug("pdf probe failed", zap.String("doc", meta.DocName), zap.Error(err))
		} else if info.HasTextLayer {
			p.logger.Info("scanned-path pdf has a text layer",
				zap.String("doc", meta.DocName),
				zap.Int("pages", info.Pages))
		}
	}

	start := p.now()
	pages, err := p.engine.Recognize(ctx, path)
	metrics.OCRDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		// OCR timeout or failure is treated identically to a
		// document-open failure.
		p.logger.Warn("ocr failed", zap.String("doc", meta.DocName), zap.Error(err))
		return p.failed(meta, pathScanned)
	}

	selected := p.locator.Locate(pages)
	if len(selected) == 0 {
		// The document opened fine; zero elements is the data-quality
		// signal, not a parse failure.
		p.logger.Info("no candidate balance-sheet pages",
			zap.String("doc", meta.DocName),
			zap.Int("pages", len(pages)))
		p.observe(pathScanned, meta.DocName, 0)
		return record.Assemble(meta, nil, true, nil)
	}

	triples := p.rows.Reconstruct(selected)
	inference := p.currency.Infer(triples)
	if inference.Count == 0 {
		inference = p.currency.InferFromPages(selected)
	}

	elements := elementsFromTriples(triples, inference.Currency)
	p.observe(pathScanned, meta.DocName, len(elements))
	return record.Assemble(meta, nil, true, elements)
}

// elementsFromTriples fans each matched row out into two elements, current
// year then prior year, sharing a name and disambiguated by occurrence
// index. The inferred unit applies uniformly since no per-fact tagging
// exists.
func elementsFromTriples(triples []scanned.Triple, unit record.Unit) []record.Element {
	occurrences := make(map[string]int)
	var elements []record.Element

	for _, t := range triples {
		name := normalizeLabel(t.Label)
		if name == "" {
			continue
		}
		for _, v := range []float64{t.Current, t.Prior} {
			value := v
			u := unit
			elements = append(elements, record.Element{
				Name:            name,
				RawValue:        t.Label,
				Numeric:         &value,
				Unit:            &u,
				OccurrenceIndex: occurrences[name],
			})
			occurrences[name]++
		}
	}
	return elements
}

// normalizeLabel reduces an OCR label to the same shape as digital fact
// names: lowercase letters only ("Total assets" and the tagged
// "TotalAssets" both become "totalassets").
func normalizeLabel(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p *Pipeline) failed(meta record.Metadata, extractionPath string) record.Record {
	metrics.DocumentsProcessedTotal.WithLabelValues(extractionPath, "failed").Inc()
	return record.Assemble(meta, nil, false, nil)
}

func (p *Pipeline) observe(extractionPath, doc string, elementCount int) {
	metrics.DocumentsProcessedTotal.WithLabelValues(extractionPath, "parsed").Inc()
	metrics.ElementsExtractedTotal.WithLabelValues(extractionPath).Add(float64(elementCount))
	if elementCount == 0 {
		metrics.EmptyDocumentsTotal.WithLabelValues(extractionPath).Inc()
		p.logger.Debug("document yielded no elements", zap.String("doc", doc))
	}
}

// metadataOf converts filename-derived metadata into the assembler's input.
func metadataOf(path string, now time.Time) record.Metadata {
	meta := filemeta.Parse(path)
	return record.Metadata{
		DocName:          meta.DocName,
		DocType:          meta.DocType,
		ArchiveName:      meta.ArchiveName,
		UploadDate:       now,
		BalanceSheetDate: meta.BalanceSheetDate,
		CompanyNumber:    meta.CompanyNumber,
	}
}
