package guideline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// DocumentExtractor turns an uploaded guideline document into plain text.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

type PDFExtractor struct{}

// NewPDFExtractor registers the unipdf metered licence when a key is given.
func NewPDFExtractor(licenseKey string) (*PDFExtractor, error) {
	if licenseKey != "" {
		if err := license.SetMeteredKey(licenseKey); err != nil {
			return nil, fmt.Errorf("failed to set unipdf licence: %w", err)
		}
	}
	return &PDFExtractor{}, nil
}

// ExtractText concatenates the text of every page, one page per line.
// Pages that cannot be read or carry no text are skipped. When no page yields
// text and at least one failed, the last page error is returned so an
// unlicensed or damaged document is reported rather than read as empty.
func (p *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	enc, err := pdfReader.IsEncrypted()
	if err != nil {
		return "", fmt.Errorf("failed checking encryption: %w", err)
	}
	if enc {
		ok, err := pdfReader.Decrypt([]byte(""))
		if err != nil {
			return "", fmt.Errorf("failed to decrypt PDF (empty password): %w", err)
		}
		if !ok {
			return "", fmt.Errorf("PDF is password-protected")
		}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to get page count: %w", err)
	}

	return joinPages(ctx, numPages, func(i int) (string, error) {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}
		return ex.ExtractText()
	})
}

// joinPages collects the text of pages 1..n.
func joinPages(ctx context.Context, n int, pageText func(i int) (string, error)) (string, error) {
	var (
		sb      strings.Builder
		failed  int
		lastErr error
	)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}

		text, err := pageText(i)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("page %d: %w", i, err)
			continue
		}
		if text == "" {
			continue
		}

		sb.WriteString(text)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 && failed > 0 {
		return "", fmt.Errorf("no extractable text (%d of %d pages failed): %w", failed, n, lastErr)
	}
	return sb.String(), nil
}
