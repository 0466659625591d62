// Package docfile handles uploaded source files: type detection, page
// counting and per-page payload slicing for the OCR and LLM calls.
package docfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/image/tiff"

	"kycdocs/internal/domain"
)

// File is an uploaded source document held in memory for the duration of
// one processing request.
type File struct {
	Filename string
	Type     domain.FileType
	Data     []byte
	NumPages int
}

// Open validates an upload and counts its pages.
func Open(filename string, data []byte) (*File, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	ft, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFileType, ext)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	pages, err := countPages(ft, data)
	if err != nil {
		return nil, err
	}

	return &File{
		Filename: filename,
		Type:     ft,
		Data:     data,
		NumPages: pages,
	}, nil
}

// ContentType returns the MIME type for the file's page payloads.
func (f *File) ContentType() string {
	return domain.ContentTypeFor[f.Type]
}

// PagePayload returns the bytes to send upstream for one page. PDFs are
// trimmed to a single-page document; image formats are sent whole, with
// the page number carried out of band.
func (f *File) PagePayload(page int) ([]byte, error) {
	if page < 1 || page > f.NumPages {
		return nil, fmt.Errorf("%w: %d of %d", domain.ErrInvalidPageNumber, page, f.NumPages)
	}
	if f.Type != domain.FileTypePDF {
		return f.Data, nil
	}

	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(f.Data), &out, []string{strconv.Itoa(page)}, nil); err != nil {
		return nil, fmt.Errorf("extracting page %d: %w", page, err)
	}
	return out.Bytes(), nil
}

func countPages(ft domain.FileType, data []byte) (int, error) {
	switch ft {
	case domain.FileTypePDF:
		n, err := api.PageCount(bytes.NewReader(data), nil)
		if err != nil {
			return 0, fmt.Errorf("counting PDF pages: %w", err)
		}
		if n < 1 {
			return 0, domain.ErrEmptyDocument
		}
		return n, nil
	case domain.FileTypeTIFF:
		if _, err := tiff.DecodeConfig(bytes.NewReader(data)); err != nil {
			return 0, fmt.Errorf("reading TIFF: %w", err)
		}
		return countTIFFPages(data)
	default:
		return 1, nil
	}
}

// countTIFFPages walks the IFD chain. x/image/tiff decodes only the
// first directory, so the count comes from the container structure.
func countTIFFPages(data []byte) (int, error) {
	if len(data) < 8 {
		return 0, domain.ErrEmptyDocument
	}

	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return 0, fmt.Errorf("%w: not a TIFF container", domain.ErrUnsupportedFileType)
	}

	offset := int64(order.Uint32(data[4:8]))
	count := 0
	for offset != 0 {
		if offset < 0 || offset+2 > int64(len(data)) {
			return 0, fmt.Errorf("malformed TIFF: directory offset out of range")
		}
		entries := int64(order.Uint16(data[offset : offset+2]))
		next := offset + 2 + entries*12
		if next+4 > int64(len(data)) {
			return 0, fmt.Errorf("malformed TIFF: directory truncated")
		}
		count++
		offset = int64(order.Uint32(data[next : next+4]))
	}
	if count < 1 {
		return 0, domain.ErrEmptyDocument
	}
	return count, nil
}
