package pdftext

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"
)

// document is the slice of a PDF library the extractor needs.
type document interface {
	PageCount() (int, error)
	PageText(n int) (string, error) // n is 1-indexed
	Close() error
}

type openFunc func(path string) (document, error)

// tabula back-end (pure Go, layout aware).

type tabulaDoc struct {
	r *reader.Reader
}

func openTabula(path string) (document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, err
	}
	return &tabulaDoc{r: r}, nil
}

func (d *tabulaDoc) PageCount() (int, error) {
	return d.r.PageCount()
}

func (d *tabulaDoc) PageText(n int) (string, error) {
	// FromReader leaves the reader open; we close it in Close.
	text, _, err := tabula.FromReader(d.r).Pages(n).Text()
	return text, err
}

func (d *tabulaDoc) Close() error {
	return d.r.Close()
}

// ledongthuc back-end (plain text per page, no layout analysis).

type ledongthucDoc struct {
	f *os.File
	r *pdf.Reader
}

func openLedongthuc(path string) (document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		return nil, err
	}
	return &ledongthucDoc{f: f, r: r}, nil
}

func (d *ledongthucDoc) PageCount() (int, error) {
	return d.r.NumPage(), nil
}

func (d *ledongthucDoc) PageText(n int) (string, error) {
	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *ledongthucDoc) Close() error {
	return d.f.Close()
}

// safely runs fn, converting a panic from the PDF library into an error.
// Both libraries panic on some malformed object streams.
func safely[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()
	return fn()
}
