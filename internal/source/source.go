// Package source decodes the external assets a scene references: plain
// images, image directories, and PDF pages rasterized through MuPDF.
package source

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source yields page images for scene backdrops and sprites.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	// fitz documents are not safe for concurrent page renders; a throwaway
	// document per render keeps callers free to parallelize.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// LoadElementImage resolves a scene element's input reference to an image.
// Plain image paths decode directly; PDF paths rasterize page 1, or the page
// given by a "#page" suffix ("deck.pdf#3").
func LoadElementImage(input string, dpi int) (image.Image, error) {
	path, page := splitPageRef(input)

	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		src, err := NewFitzPDFSource(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer src.Close()
		if page < 0 || page >= src.PageCount() {
			return nil, fmt.Errorf("%s has no page %d", path, page+1)
		}
		return src.RenderPage(page, dpi)
	}

	src, err := NewImageSource(path)
	if err != nil {
		return nil, err
	}
	if src.PageCount() == 0 {
		return nil, fmt.Errorf("no images found at %s", path)
	}
	if page < 0 || page >= src.PageCount() {
		page = 0
	}
	return src.RenderPage(page, dpi)
}

func splitPageRef(input string) (string, int) {
	path, ref, found := strings.Cut(input, "#")
	if !found {
		return input, 0
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return path, 0
	}
	return path, n - 1
}
