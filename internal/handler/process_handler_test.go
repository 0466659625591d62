package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
	"kycdocs/internal/pipeline"
	"kycdocs/internal/port"
	"kycdocs/mocks"
)

func testRouter(t *testing.T, archive port.ObjectStorage, bucket string) (*gin.Engine, *mocks.MockObjectStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	table, err := doctype.Default()
	require.NoError(t, err)

	ocrMock := new(mocks.MockOCRProvider)
	clsMock := new(mocks.MockPageClassifier)
	extMock := new(mocks.MockEntityExtractor)

	ocrMock.On("ExtractText", mock.Anything, mock.Anything).
		Return(&port.OCRResult{Text: "passport text"}, nil)
	clsMock.On("Classify", mock.Anything, mock.Anything).
		Return(domain.ClassificationVote{ClassName: "Passport", Score: 1, Technique: "openai - level 1"}, nil)
	extMock.On("Extract", mock.Anything, mock.Anything).
		Return([]domain.Entity{
			{EntityName: "Passport Number", BackendEntityKey: "passport_number", EntityValue: domain.Value("A12345678")},
			{EntityName: "Customer Name", BackendEntityKey: "customer_name_passport", EntityValue: domain.Value("John Smith")},
			{EntityName: "Date Of Birth", BackendEntityKey: "date_of_birth", EntityValue: domain.Value("1990-03-05")},
		}, nil)

	p := pipeline.New(pipeline.Options{
		OCR:               ocrMock,
		PrimaryClassifier: clsMock,
		PrimaryExtractor:  extMock,
		Table:             table,
		PageConcurrency:   1,
	})

	var archiveMock *mocks.MockObjectStorage
	if m, ok := archive.(*mocks.MockObjectStorage); ok {
		archiveMock = m
	}

	h := NewProcessHandler(p, table, archive, bucket, 10)

	r := gin.New()
	r.POST("/api/v1/documents/process", h.Process)
	r.DELETE("/api/v1/documents/:id/source", h.DeleteSource)
	return r, archiveMock
}

func multipartPNG(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "scan.png")
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestProcess_CompletedRun(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	body, contentType := multipartPNG(t, map[string]string{"customer_type": "Individual"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ExtractionStatus string                `json:"extraction_status"`
			NumPages         int                   `json:"num_pages"`
			ExtractedData    domain.DocumentResult `json:"extracted_data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "completed", resp.Data.ExtractionStatus)
	assert.Equal(t, 1, resp.Data.NumPages)

	record, ok := resp.Data.ExtractedData.Included[1]
	require.True(t, ok)
	assert.Equal(t, "Passport", record.Classification.ClassName)
	assert.Len(t, record.Extraction, 3)
}

func TestProcess_MissingFile(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILE")
}

func TestProcess_UnsupportedExtension(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "scan.docx")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_FILE_TYPE")
}

func TestProcess_XLSXFormat(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	body, contentType := multipartPNG(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process?format=xlsx", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="scan.xlsx"`)
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestProcess_TemplateOverride(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	// A table without a Passport row: the classified page passes through
	// with no required-coverage filtering.
	template := `[
		{
			"document_name": "Utility Bill",
			"document_backend_key": "utility_bill",
			"entities": [{"entity_name": "Address", "backend_entity_key": "address"}]
		}
	]`

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	filePart, err := w.CreateFormFile("file", "scan.png")
	require.NoError(t, err)
	_, err = filePart.Write(imgBuf.Bytes())
	require.NoError(t, err)
	tmplPart, err := w.CreateFormFile("template", "table.json")
	require.NoError(t, err)
	_, err = tmplPart.Write([]byte(template))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ExtractedData domain.DocumentResult `json:"extracted_data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	record, ok := resp.Data.ExtractedData.Included[1]
	require.True(t, ok)
	// "Passport" has no row in the override table, so no extraction ran.
	assert.Empty(t, record.Extraction)
}

func TestProcess_InvalidTemplateRejected(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	filePart, err := w.CreateFormFile("file", "scan.png")
	require.NoError(t, err)
	_, err = filePart.Write(imgBuf.Bytes())
	require.NoError(t, err)
	tmplPart, err := w.CreateFormFile("template", "table.json")
	require.NoError(t, err)
	_, err = tmplPart.Write([]byte(`{"not": "an array"}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TEMPLATE")
}

func TestProcess_ArchivesSourceFile(t *testing.T) {
	archiveMock := new(mocks.MockObjectStorage)
	archiveMock.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "kyc-archive" && in.ContentType == "image/png"
	})).Return(&port.UploadOutput{Location: "s3://kyc-archive/x"}, nil)

	r, _ := testRouter(t, archiveMock, "kyc-archive")

	body, contentType := multipartPNG(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/process", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	archiveMock.AssertExpectations(t)
}

func TestDeleteSource_RemovesArchivedObject(t *testing.T) {
	docID := uuid.New()
	archiveMock := new(mocks.MockObjectStorage)
	archiveMock.On("Delete", mock.Anything, "kyc-archive", "uploads/"+docID.String()+"/scan.png").
		Return(nil)

	r, _ := testRouter(t, archiveMock, "kyc-archive")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+docID.String()+"/source?filename=scan.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	archiveMock.AssertExpectations(t)
}

func TestDeleteSource_InvalidDocumentID(t *testing.T) {
	r, _ := testRouter(t, new(mocks.MockObjectStorage), "kyc-archive")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/not-a-uuid/source?filename=scan.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_DOCUMENT_ID")
}

func TestDeleteSource_MissingFilename(t *testing.T) {
	r, _ := testRouter(t, new(mocks.MockObjectStorage), "kyc-archive")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+uuid.NewString()+"/source", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MISSING_FILENAME")
}

func TestDeleteSource_ArchiveNotConfigured(t *testing.T) {
	r, _ := testRouter(t, nil, "")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/"+uuid.NewString()+"/source?filename=scan.png", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ARCHIVE_DISABLED")
}

func TestDoctypeList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	table, err := doctype.Default()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/api/v1/doctypes", NewDoctypeHandler(table).List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctypes", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Emirates ID")
	assert.Contains(t, rec.Body.String(), "Trade License")
}
