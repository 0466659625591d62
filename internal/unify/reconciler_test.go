package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdocs/internal/domain"
)

func entity(key, value string) domain.Entity {
	return domain.Entity{
		EntityName:       key,
		BackendEntityKey: key,
		EntityValue:      domain.Value(value),
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("john smith", "john smith"))
	assert.GreaterOrEqual(t, Similarity("john smith", "jon smith"), SimilarityThreshold)
	assert.Less(t, Similarity("john smith", "acme trading llc"), SimilarityThreshold)
}

func TestReconcile_NilSecondary(t *testing.T) {
	primary := []domain.Entity{entity("customer_name", "John Smith")}
	primary[0].Checked = true

	unified := Reconcile(primary, nil, "")

	require.Len(t, unified, 1)
	assert.False(t, unified[0].Checked)
}

func TestReconcile_CorroborationDespiteCaseAndTypos(t *testing.T) {
	primary := []domain.Entity{entity("customer_name", "John Smith")}
	secondary := []domain.Entity{entity("customer_name", "JON SMITH")}

	unified := Reconcile(primary, secondary, "gemini-1.5-flash")

	require.Len(t, unified, 1)
	assert.True(t, unified[0].Checked)
	assert.Equal(t, "John Smith", unified[0].EntityValue.Raw)
}

func TestReconcile_DisagreementStaysUnchecked(t *testing.T) {
	primary := []domain.Entity{entity("customer_name", "John Smith")}
	secondary := []domain.Entity{entity("customer_name", "Acme Trading LLC")}

	unified := Reconcile(primary, secondary, "gemini-1.5-flash")

	require.Len(t, unified, 1)
	assert.False(t, unified[0].Checked)
	// The primary value is authoritative either way.
	assert.Equal(t, "John Smith", unified[0].EntityValue.Raw)
}

func TestReconcile_SecondaryFillsGaps(t *testing.T) {
	primary := []domain.Entity{entity("customer_name", "John Smith")}
	secondary := []domain.Entity{
		entity("customer_name", "John Smith"),
		entity("date_of_birth", "1990-03-05"),
	}

	unified := Reconcile(primary, secondary, "gemini-1.5-flash")

	require.Len(t, unified, 2)
	assert.True(t, unified[0].Checked)
	assert.Equal(t, "date_of_birth", unified[1].BackendEntityKey)
	assert.False(t, unified[1].Checked)
	assert.Equal(t, "gemini-1.5-flash", unified[1].SourceModel)
}

func TestReconcile_LengthBounds(t *testing.T) {
	primary := []domain.Entity{
		entity("a", "1"),
		entity("b", "2"),
	}
	secondary := []domain.Entity{
		entity("b", "2"),
		entity("c", "3"),
	}

	unified := Reconcile(primary, secondary, "m2")

	assert.GreaterOrEqual(t, len(unified), len(primary))
	assert.LessOrEqual(t, len(unified), len(primary)+len(secondary))
	assert.Len(t, unified, 3)
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	primary := []domain.Entity{entity("customer_name", "John Smith")}
	secondary := []domain.Entity{entity("customer_name", "John Smith")}

	_ = Reconcile(primary, secondary, "m2")

	assert.False(t, primary[0].Checked)
	assert.Empty(t, secondary[0].SourceModel)
}

func TestReconcile_EmptyPrimary(t *testing.T) {
	secondary := []domain.Entity{entity("passport_number", "A12345678")}

	unified := Reconcile(nil, secondary, "m2")

	require.Len(t, unified, 1)
	assert.Equal(t, "m2", unified[0].SourceModel)
	assert.False(t, unified[0].Checked)
}
