package docfile

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"kycdocs/internal/domain"
)

func testImageBytes(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func TestOpen_RejectsUnsupportedExtension(t *testing.T) {
	_, err := Open("notes.docx", []byte("data"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestOpen_RejectsEmptyData(t *testing.T) {
	_, err := Open("scan.png", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestOpen_PNGIsSinglePage(t *testing.T) {
	data := testImageBytes(t, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})

	f, err := Open("scan.PNG", data)
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypePNG, f.Type)
	assert.Equal(t, 1, f.NumPages)
	assert.Equal(t, "image/png", f.ContentType())

	payload, err := f.PagePayload(1)
	require.NoError(t, err)
	assert.Equal(t, data, payload)

	_, err = f.PagePayload(2)
	assert.ErrorIs(t, err, domain.ErrInvalidPageNumber)
	_, err = f.PagePayload(0)
	assert.ErrorIs(t, err, domain.ErrInvalidPageNumber)
}

func TestOpen_SinglePageTIFF(t *testing.T) {
	data := testImageBytes(t, func(buf *bytes.Buffer, img image.Image) error {
		return tiff.Encode(buf, img, nil)
	})

	f, err := Open("scan.tif", data)
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeTIFF, f.Type)
	assert.Equal(t, 1, f.NumPages)
	assert.Equal(t, "image/tiff", f.ContentType())
}

func TestCountTIFFPages_WalksIFDChain(t *testing.T) {
	// Minimal little-endian container with three empty directories.
	var buf bytes.Buffer
	buf.WriteString("II")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(42)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(8)))
	for _, next := range []uint32{14, 20, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(0)))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, next))
	}

	count, err := countTIFFPages(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCountTIFFPages_MalformedOffset(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("II")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(42)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(4096)))

	_, err := countTIFFPages(buf.Bytes())
	assert.Error(t, err)
}
