// Package extract checks uploads before they are sent to the backend.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned for content that is not a readable PDF.
var ErrNotPDF = errors.New("not a PDF document")

var pdfMagic = []byte("%PDF-")

// PDFInfo describes an uploadable PDF.
type PDFInfo struct {
	Pages int
}

// InspectPDF verifies content is a PDF with at least one page.
func InspectPDF(content []byte) (PDFInfo, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), pdfMagic) {
		return PDFInfo{}, ErrNotPDF
	}
	r, err := openPDF(content)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %w", ErrNotPDF, err)
	}
	info := PDFInfo{Pages: r.NumPage()}
	if info.Pages == 0 {
		return PDFInfo{}, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	return info, nil
}

// Preflight rejects files that should not be uploaded: a name without a .pdf
// extension or content that fails InspectPDF.
func Preflight(filename string, content []byte) error {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, filepath.Base(filename))
	}
	_, err := InspectPDF(content)
	return err
}

// openPDF guards against reader panics on malformed cross-reference tables.
func openPDF(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("open PDF: %v", p)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return r, nil
}
