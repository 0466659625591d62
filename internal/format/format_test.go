package format

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kycdocs/internal/domain"
)

func TestDate_DayFirst(t *testing.T) {
	v := Date("05/03/1990")
	assert.False(t, v.ManualCheck)
	assert.Equal(t, "1990-03-05", v.Raw)
}

func TestDate_YearFirst(t *testing.T) {
	v := Date("1990-03-05")
	assert.False(t, v.ManualCheck)
	assert.Equal(t, "1990-03-05", v.Raw)
}

func TestDate_TextualMonth(t *testing.T) {
	v := Date("12 Jan 2030")
	assert.False(t, v.ManualCheck)
	assert.Equal(t, "2030-01-12", v.Raw)
}

func TestDate_Unparseable(t *testing.T) {
	v := Date("not a date")
	assert.True(t, v.ManualCheck)
	assert.Equal(t, "not a date", v.Raw)
}

func TestDate_Empty(t *testing.T) {
	v := Date("")
	assert.True(t, v.ManualCheck)
}

func TestPassportNumber(t *testing.T) {
	v := PassportNumber("A12 345 678 extra")
	assert.False(t, v.ManualCheck)
	assert.Equal(t, "A12345678", v.Raw)
}

func TestPassportNumber_TooShort(t *testing.T) {
	v := PassportNumber("A123")
	assert.True(t, v.ManualCheck)
	assert.Equal(t, "A123", v.Raw)
}

func TestIDNumber_KeepsLast15(t *testing.T) {
	assert.Equal(t, "784199012345671", IDNumber("784-1990-1234567-1"))
	assert.Equal(t, "784199012345671", IDNumber("ID 784-1990-1234567-1"))
}

func TestIDNumber_ShortValueUntruncated(t *testing.T) {
	assert.Equal(t, "784199", IDNumber("784-199"))
}

func TestTradeLicenseNumber(t *testing.T) {
	assert.Equal(t, "CN1234567", TradeLicenseNumber("CN-123 45/67"))
}

func TestEntities_DispatchByKey(t *testing.T) {
	entities := []domain.Entity{
		{BackendEntityKey: "date_of_birth", EntityValue: domain.Value("05/03/1990")},
		{BackendEntityKey: "passport_number", EntityValue: domain.Value("A12 345 678")},
		{BackendEntityKey: "trade_license_number", EntityValue: domain.Value("CN-12/34")},
		{BackendEntityKey: "customer_name", EntityValue: domain.Value("  John Smith ")},
	}

	out := Entities(entities)

	assert.Equal(t, "1990-03-05", out[0].EntityValue.Raw)
	assert.Equal(t, "A12345678", out[1].EntityValue.Raw)
	// Keys without a formatter pass through untouched; only the date
	// keys and passport_number get rewritten.
	assert.Equal(t, "CN-12/34", out[2].EntityValue.Raw)
	assert.Equal(t, "  John Smith ", out[3].EntityValue.Raw)
}

func TestEntities_TradeLicenseNumberPassesThrough(t *testing.T) {
	entities := []domain.Entity{
		{BackendEntityKey: "trade_license_number", EntityValue: domain.Value("CN-12/34")},
	}

	out := Entities(entities)

	assert.Equal(t, "CN-12/34", out[0].EntityValue.Raw)
	assert.False(t, out[0].ManualCheck)
}

func TestPassportNumber_MultibyteRunesNotSplit(t *testing.T) {
	v := PassportNumber("É12 345 678")
	assert.False(t, v.ManualCheck)
	assert.Equal(t, "É12345678", v.Raw)
}

func TestEntities_FailureIsolatedPerEntity(t *testing.T) {
	entities := []domain.Entity{
		{BackendEntityKey: "eid_expiry_date", EntityValue: domain.Value("garbage")},
		{BackendEntityKey: "eid_issuance_date", EntityValue: domain.Value("01/02/2025")},
	}

	out := Entities(entities)

	assert.True(t, out[0].ManualCheck)
	assert.Equal(t, "garbage", out[0].EntityValue.Raw)
	assert.False(t, out[1].ManualCheck)
	assert.Equal(t, "2025-02-01", out[1].EntityValue.Raw)
}
