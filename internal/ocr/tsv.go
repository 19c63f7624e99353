package ocr

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Tesseract TSV column layout. Word rows are level 5; rows with a negative
// confidence are layout markers, not words.
const (
	tsvColLevel = 0
	tsvColPage  = 1
	tsvColLeft  = 6
	tsvColTop   = 7
	tsvColWidth = 8
	tsvColHigh  = 9
	tsvColConf  = 10
	tsvColText  = 11
	tsvColumns  = 12

	wordLevel = 5
)

// ParseTSV decodes tesseract's TSV output into pages of words. It also
// accepts TSV files generated ahead of time by an external OCR run.
func ParseTSV(r io.Reader) ([]Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages []Page
	byNumber := make(map[int]int)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", tsvColumns)
		if len(fields) < tsvColumns {
			continue
		}
		if lineNo == 1 && fields[tsvColLevel] == "level" {
			continue // header
		}

		level, err := strconv.Atoi(fields[tsvColLevel])
		if err != nil {
			return nil, fmt.Errorf("tsv line %d: bad level %q", lineNo, fields[tsvColLevel])
		}
		if level != wordLevel {
			continue
		}

		conf, err := strconv.ParseFloat(fields[tsvColConf], 64)
		if err != nil || conf < 0 {
			continue
		}

		text := strings.TrimSpace(fields[tsvColText])
		if text == "" {
			continue
		}

		pageNum, err := strconv.Atoi(fields[tsvColPage])
		if err != nil {
			return nil, fmt.Errorf("tsv line %d: bad page number %q", lineNo, fields[tsvColPage])
		}

		box, err := boxFromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("tsv line %d: %w", lineNo, err)
		}

		word := Word{
			Text:       text,
			Box:        box,
			Confidence: conf / 100.0,
		}

		idx, ok := byNumber[pageNum]
		if !ok {
			pages = append(pages, Page{Number: pageNum})
			idx = len(pages) - 1
			byNumber[pageNum] = idx
		}
		pages[idx].Words = append(pages[idx].Words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tsv: %w", err)
	}

	return pages, nil
}

func boxFromFields(fields []string) (BoundingBox, error) {
	var box BoundingBox
	for _, f := range []struct {
		col  int
		dest *float64
	}{
		{tsvColLeft, &box.Left},
		{tsvColTop, &box.Top},
		{tsvColWidth, &box.Width},
		{tsvColHigh, &box.Height},
	} {
		v, err := strconv.ParseFloat(fields[f.col], 64)
		if err != nil {
			return box, fmt.Errorf("bad geometry field %q", fields[f.col])
		}
		*f.dest = v
	}
	return box, nil
}
