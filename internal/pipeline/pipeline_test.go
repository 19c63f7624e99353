package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/accdata/sheetscan/internal/config"
	"github.com/accdata/sheetscan/internal/ocr"
	"github.com/accdata/sheetscan/internal/record"
)

// stubEngine returns canned pages or a canned error, recording call paths.
type stubEngine struct {
	pages []ocr.Page
	err   error
	calls []string
}

func (s *stubEngine) Recognize(_ context.Context, path string) ([]ocr.Page, error) {
	s.calls = append(s.calls, path)
	return s.pages, s.err
}

func newTestPipeline(t *testing.T, engine ocr.Engine) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	return New(cfg, zap.NewNop(), engine)
}

const digitalFixture = `<html xmlns:ix="http://www.xbrl.org/2008/inlineXBRL">
<head><title>accounts</title></head>
<body>
	<link:schemaRef xlink:href="https://xbrl.frc.org.uk/FRS-102/2014-09-01/FRS-102-2014-09-01.xsd"></link:schemaRef>
	<xbrli:context id="cy">
		<xbrli:period><xbrli:instant>2016-03-31</xbrli:instant></xbrli:period>
	</xbrli:context>
	<xbrli:unit id="gbp"><xbrli:measure>iso4217:GBP</xbrli:measure></xbrli:unit>
	<ix:nonFraction name="uk-gaap:TotalAssets" contextRef="cy" unitRef="gbp">1,234</ix:nonFraction>
	<ix:nonFraction name="uk-gaap:Creditors" contextRef="cy" unitRef="gbp">567</ix:nonFraction>
</body>
</html>`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/Prod224_0064_00913035_20160331.html"))
	assert.True(t, Supported("scan.PDF"))
	assert.True(t, Supported("scan.jpeg"))
	assert.False(t, Supported("notes.txt"))
	assert.False(t, Supported("archive.zip"))
}

func TestProcess_Digital(t *testing.T) {
	p := newTestPipeline(t, &stubEngine{})
	path := writeFixture(t, "Prod224_0064_00913035_20160331.html", digitalFixture)

	rec := p.Process(context.Background(), path)

	assert.True(t, rec.Parsed)
	require.NotNil(t, rec.CompanyNumber)
	assert.Equal(t, "00913035", *rec.CompanyNumber)
	require.NotNil(t, rec.BalanceSheetDate)
	assert.Equal(t, "2016-03-31", *rec.BalanceSheetDate)
	require.NotNil(t, rec.StandardType)
	assert.Equal(t, "FRS 102", *rec.StandardType)

	require.Len(t, rec.Elements, 2)
	assert.Equal(t, "totalassets", rec.Elements[0].Name)
	require.NotNil(t, rec.Elements[0].Numeric)
	assert.Equal(t, 1234.0, *rec.Elements[0].Numeric)
	require.NotNil(t, rec.Elements[0].Unit)
	assert.Equal(t, record.UnitGBP, *rec.Elements[0].Unit)
	require.NotNil(t, rec.Elements[1].Numeric)
	assert.Equal(t, 567.0, *rec.Elements[1].Numeric)
}

func TestProcess_DigitalOpenFailure(t *testing.T) {
	p := newTestPipeline(t, &stubEngine{})

	rec := p.Process(context.Background(), filepath.Join(t.TempDir(), "missing.html"))

	assert.False(t, rec.Parsed)
	assert.Empty(t, rec.Elements)
}

func TestProcess_Scanned(t *testing.T) {
	engine := &stubEngine{pages: []ocr.Page{{
		Number: 1,
		Words: []ocr.Word{
			scanWord("Assets", 10, 10, 0.9),
			scanWord("Liabilities", 10, 30, 0.9),
			scanWord("£'000", 600, 40, 0.9),
			scanWord("Total", 10, 60, 0.9),
			scanWord("assets", 90, 61, 0.9),
			scanWord("1,234", 500, 60, 0.9),
			scanWord("(567)", 600, 60, 0.9),
		},
	}}}
	p := newTestPipeline(t, engine)
	path := writeFixture(t, "scan_00913035_20160331.png", "not-a-real-image")

	rec := p.Process(context.Background(), path)

	assert.True(t, rec.Parsed)
	require.Len(t, rec.Elements, 2, "one matched row fans out to current and prior")
	assert.Equal(t, "totalassets", rec.Elements[0].Name)
	assert.Equal(t, "totalassets", rec.Elements[1].Name)
	assert.Equal(t, 0, rec.Elements[0].OccurrenceIndex)
	assert.Equal(t, 1, rec.Elements[1].OccurrenceIndex)
	require.NotNil(t, rec.Elements[0].Numeric)
	assert.Equal(t, 1234.0, *rec.Elements[0].Numeric)
	assert.Equal(t, -567.0, *rec.Elements[1].Numeric)
	require.NotNil(t, rec.Elements[0].Unit)
	assert.Equal(t, record.UnitGBP, *rec.Elements[0].Unit, "header marker drives unit inference")
	assert.Len(t, engine.calls, 1)
}

func TestProcess_ScannedNoCandidatePages(t *testing.T) {
	engine := &stubEngine{pages: []ocr.Page{{
		Number: 1,
		Words:  []ocr.Word{scanWord("Annual", 10, 10, 0.9), scanWord("Report", 80, 10, 0.9)},
	}}}
	p := newTestPipeline(t, engine)
	path := writeFixture(t, "cover.png", "not-a-real-image")

	rec := p.Process(context.Background(), path)

	assert.True(t, rec.Parsed, "the document opened; a missing balance sheet is not a parse failure")
	assert.Empty(t, rec.Elements)
}

func TestProcess_ScannedOCRFailure(t *testing.T) {
	engine := &stubEngine{err: errors.New("tesseract: timed out")}
	p := newTestPipeline(t, engine)
	path := writeFixture(t, "scan.png", "not-a-real-image")

	rec := p.Process(context.Background(), path)

	assert.False(t, rec.Parsed)
	assert.Empty(t, rec.Elements)
}

func TestProcessBatch(t *testing.T) {
	p := newTestPipeline(t, &stubEngine{err: errors.New("ocr unavailable")})

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a_001_20160331.html", "b_002_20160331.html", "c.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(digitalFixture), 0o644))
		paths = append(paths, path)
	}

	records := p.ProcessBatch(context.Background(), paths, 2)

	require.Len(t, records, 3)
	parsed := 0
	for _, rec := range records {
		if rec.Parsed {
			parsed++
		}
	}
	assert.Equal(t, 2, parsed, "both digital documents parse; the imaged one fails on OCR")
}

func TestProcessBatch_Cancellation(t *testing.T) {
	p := newTestPipeline(t, &stubEngine{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := p.ProcessBatch(ctx, []string{"a.html", "b.html", "c.html"}, 1)
	assert.LessOrEqual(t, len(records), 3)
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total assets", "totalassets"},
		{"Creditors: amounts falling due", "creditorsamountsfallingdue"},
		{"2016 2015", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLabel(tt.in))
	}
}

func scanWord(text string, left, top, conf float64) ocr.Word {
	return ocr.Word{
		Text:       text,
		Box:        ocr.BoundingBox{Left: left, Top: top, Width: 60, Height: 12},
		Confidence: conf,
	}
}
