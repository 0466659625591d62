package handler

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kycdocs/internal/docfile"
	"kycdocs/internal/doctype"
	"kycdocs/internal/domain"
	"kycdocs/internal/pipeline"
	"kycdocs/internal/port"
	"kycdocs/internal/report"
)

// ProcessHandler handles document processing endpoints.
type ProcessHandler struct {
	pipeline      *pipeline.Pipeline
	table         *doctype.Table
	archive       port.ObjectStorage
	archiveBucket string
	maxUploadMB   int64
}

// NewProcessHandler creates a new ProcessHandler. archive may be nil when
// source-file archival is not configured.
func NewProcessHandler(p *pipeline.Pipeline, table *doctype.Table, archive port.ObjectStorage, archiveBucket string, maxUploadMB int64) *ProcessHandler {
	return &ProcessHandler{
		pipeline:      p,
		table:         table,
		archive:       archive,
		archiveBucket: archiveBucket,
		maxUploadMB:   maxUploadMB,
	}
}

// processResponse is the JSON body returned for a completed run.
type processResponse struct {
	ExtractionStatus string                 `json:"extraction_status"`
	DocumentID       string                 `json:"document_id"`
	Filename         string                 `json:"filename"`
	NumPages         int                    `json:"num_pages"`
	ExtractedData    *domain.DocumentResult `json:"extracted_data"`
}

// Process handles POST /api/v1/documents/process. It accepts a multipart
// upload with a "file" part and an optional "customer_type" field, runs
// the full pipeline, and returns the included/excluded page records. With
// format=xlsx the result is streamed as a workbook instead.
func (h *ProcessHandler) Process(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxUploadMB > 0 && header.Size > h.maxUploadMB*1024*1024 {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	src, err := docfile.Open(header.Filename, data)
	if err != nil {
		HandleError(c, err)
		return
	}

	customer := domain.NormalizeCustomerType(c.PostForm("customer_type"))
	if customer == "" {
		customer = domain.CustomerIndividual
	}

	table, override, err := h.requestTable(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_TEMPLATE", err.Error())
		return
	}

	var doc *domain.Document
	var result *domain.DocumentResult
	if override {
		doc, result, err = h.pipeline.ProcessDocumentWith(c.Request.Context(), src, customer, table)
	} else {
		doc, result, err = h.pipeline.ProcessDocument(c.Request.Context(), src, customer)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	if h.archive != nil {
		h.archiveSource(c, doc.ID, src)
	}

	if strings.EqualFold(c.Query("format"), "xlsx") {
		h.respondWorkbook(c, src.Filename, result)
		return
	}

	RespondOK(c, processResponse{
		ExtractionStatus: "completed",
		DocumentID:       doc.ID.String(),
		Filename:         src.Filename,
		NumPages:         src.NumPages,
		ExtractedData:    result,
	})
}

// requestTable reads the optional "template" part: a schema-validated
// document-type table JSON that shadows the configured one for this
// request only.
func (h *ProcessHandler) requestTable(c *gin.Context) (*doctype.Table, bool, error) {
	tmpl, _, err := c.Request.FormFile("template")
	if err != nil {
		return nil, false, nil
	}
	defer func() { _ = tmpl.Close() }()

	raw, err := io.ReadAll(tmpl)
	if err != nil {
		return nil, false, fmt.Errorf("reading template: %w", err)
	}
	table, err := doctype.Parse(raw)
	if err != nil {
		return nil, false, err
	}
	return table, true, nil
}

// DeleteSource handles DELETE /api/v1/documents/:id/source. It removes
// the archived source file for a processed document, keyed by the
// document id and the original filename from the process response.
func (h *ProcessHandler) DeleteSource(c *gin.Context) {
	if h.archive == nil {
		RespondError(c, http.StatusNotFound, "ARCHIVE_DISABLED", "source archival is not configured")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_ID", "document id must be a UUID")
		return
	}

	filename := c.Query("filename")
	if filename == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_FILENAME", "filename query parameter is required")
		return
	}

	key := archiveKey(id, filename)
	if err := h.archive.Delete(c.Request.Context(), h.archiveBucket, key); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": key})
}

func archiveKey(docID uuid.UUID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", docID, filepath.Base(filename))
}

// archiveSource uploads the original file to the archive bucket. Failures
// are logged, not surfaced; archival never blocks a completed extraction.
func (h *ProcessHandler) archiveSource(c *gin.Context, docID uuid.UUID, src *docfile.File) {
	key := archiveKey(docID, src.Filename)
	_, err := h.archive.Upload(c.Request.Context(), port.UploadInput{
		Bucket:      h.archiveBucket,
		Key:         key,
		Body:        bytes.NewReader(src.Data),
		ContentType: src.ContentType(),
		Size:        int64(len(src.Data)),
	})
	if err != nil {
		log.Printf("processHandler: archiving %s failed: %v", key, err)
	}
}

func (h *ProcessHandler) respondWorkbook(c *gin.Context, filename string, result *domain.DocumentResult) {
	var buf bytes.Buffer
	if err := report.Write(&buf, filename, result); err != nil {
		HandleError(c, err)
		return
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, base))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// DoctypeHandler serves the configured document-type table.
type DoctypeHandler struct {
	table *doctype.Table
}

// NewDoctypeHandler creates a new DoctypeHandler.
func NewDoctypeHandler(table *doctype.Table) *DoctypeHandler {
	return &DoctypeHandler{table: table}
}

// List handles GET /api/v1/doctypes
func (h *DoctypeHandler) List(c *gin.Context) {
	RespondOK(c, h.table.Types())
}
