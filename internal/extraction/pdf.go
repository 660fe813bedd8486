package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed marks a document whose text layer could not be read.
// Callers treat it as advisory and continue with manual entry.
var ErrExtractionFailed = errors.New("EXTRACTION_FAILED")

// Decoder turns document bytes into one text string per page.
type Decoder interface {
	Decode(ctx context.Context, data []byte) ([]string, error)
}

type PDFDecoder struct {
	MaxPages int
}

func NewPDFDecoder(maxPages int) *PDFDecoder {
	return &PDFDecoder{MaxPages: maxPages}
}

// Decode reads the text layer page by page. The pdf library panics on some
// malformed inputs, so panics are converted into ErrExtractionFailed.
func (d *PDFDecoder) Decode(ctx context.Context, data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed document: %v", ErrExtractionFailed, r)
		}
	}()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrExtractionFailed)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	total := reader.NumPage()
	if d.MaxPages > 0 && total > d.MaxPages {
		total = d.MaxPages
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtractionFailed, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ExtractDocument decodes the document and extracts fields from the joined
// page text. On decode failure the returned fields are empty, never nil.
func (e *Extractor) ExtractDocument(ctx context.Context, decoder Decoder, data []byte) (Fields, error) {
	pages, err := decoder.Decode(ctx, data)
	if err != nil {
		if !errors.Is(err, ErrExtractionFailed) {
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		return newFields(), err
	}
	return e.Extract(strings.Join(pages, "\n")), nil
}
