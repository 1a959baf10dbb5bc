package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuery(t *testing.T) {
	t.Run("valid query", func(t *testing.T) {
		assert.NoError(t, ValidateQuery("vitamin d"))
	})

	t.Run("empty query", func(t *testing.T) {
		err := ValidateQuery("")
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("whitespace only", func(t *testing.T) {
		err := ValidateQuery("   \t\n")
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("at maximum length", func(t *testing.T) {
		assert.NoError(t, ValidateQuery(strings.Repeat("a", MaxQueryLength)))
	})

	t.Run("over maximum length", func(t *testing.T) {
		err := ValidateQuery(strings.Repeat("a", MaxQueryLength+1))
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.ErrorIs(t, err, ErrQueryTooLong)
	})
}

func TestValidateRecord(t *testing.T) {
	valid := func() *SupplementRecord {
		return &SupplementRecord{
			Name:   "Creatine",
			Vector: []float32{0.1, 0.2, 0.3},
			Metadata: SupplementMetadata{
				Grade: GradeB,
			},
		}
	}

	t.Run("valid record", func(t *testing.T) {
		assert.NoError(t, ValidateRecord(valid(), 3))
	})

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, ValidateRecord(nil, 3), ErrInvalidRecord)
	})

	t.Run("empty name", func(t *testing.T) {
		record := valid()
		record.Name = ""
		err := ValidateRecord(record, 3)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		record := valid()
		err := ValidateRecord(record, 512)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("missing vector", func(t *testing.T) {
		record := valid()
		record.Vector = nil
		err := ValidateRecord(record, 3)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("invalid grade", func(t *testing.T) {
		record := valid()
		record.Metadata.Grade = "Z"
		err := ValidateRecord(record, 3)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("unset grade is allowed", func(t *testing.T) {
		record := valid()
		record.Metadata.Grade = ""
		assert.NoError(t, ValidateRecord(record, 3))
	})
}

func TestGradeForStudyCount(t *testing.T) {
	tests := []struct {
		count int
		want  EvidenceGrade
	}{
		{0, GradeD},
		{3, GradeD},
		{9, GradeD},
		{10, GradeC},
		{49, GradeC},
		{50, GradeB},
		{99, GradeB},
		{100, GradeA},
		{25000, GradeA},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeForStudyCount(tt.count), "count=%d", tt.count)
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []DiscoveryStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed} {
		assert.NoError(t, ValidateStatus(s))
	}
	assert.ErrorIs(t, ValidateStatus(0), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateStatus(99), ErrInvalidStatus)
}
