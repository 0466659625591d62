package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"kycdocs/internal/domain"
)

func testResult() *domain.DocumentResult {
	return &domain.DocumentResult{
		Included: map[int]domain.PageRecord{
			1: {
				Classification: domain.ResolvedClassification{
					ClassificationVote: domain.ClassificationVote{ClassName: "Passport", Score: 1},
				},
				Extraction: []domain.Entity{
					{
						EntityName:       "Passport Number",
						BackendEntityKey: "passport_number",
						EntityValue:      domain.Value("A12345678"),
						SourceModel:      "gpt-4o",
						Checked:          true,
					},
				},
			},
			2: {
				Classification: domain.ResolvedClassification{
					ClassificationVote: domain.ClassificationVote{ClassName: "Emirates ID", Score: 1},
				},
				Extraction: []domain.Entity{},
				Status:     domain.StatusVisaCard,
			},
		},
		Excluded: map[int]domain.PageRecord{
			2: {
				Classification: domain.ResolvedClassification{
					ClassificationVote: domain.ClassificationVote{ClassName: "Emirates ID", Score: 1},
				},
				Extraction: []domain.Entity{{BackendEntityKey: "emirates_id_number"}},
				Status:     domain.StatusVisaCard,
			},
		},
	}
}

func TestWrite_WorkbookRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "scan.pdf", testResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{entitiesSheet, excludedSheet}, f.GetSheetList())

	rows, err := f.GetRows(entitiesSheet)
	require.NoError(t, err)
	// Header, one entity row for page 1, one placeholder row for page 2.
	require.Len(t, rows, 3)
	assert.Equal(t, entityColumns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Passport", rows[1][1])
	assert.Equal(t, "A12345678", rows[1][6])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, domain.StatusVisaCard, rows[2][3])

	excludedRows, err := f.GetRows(excludedSheet)
	require.NoError(t, err)
	require.Len(t, excludedRows, 2)
	assert.Equal(t, excludedColumns, excludedRows[0])
	assert.Equal(t, "2", excludedRows[1][0])
	assert.Equal(t, domain.StatusVisaCard, excludedRows[1][2])
	assert.Equal(t, "1", excludedRows[1][3])
}

func TestWrite_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "scan.pdf", &domain.DocumentResult{
		Included: map[int]domain.PageRecord{},
		Excluded: map[int]domain.PageRecord{},
	}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(entitiesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
