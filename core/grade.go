package core

// EvidenceGrade classifies the strength of published evidence behind a
// catalog record, from A (strongest) to F (none).
type EvidenceGrade string

const (
	GradeA EvidenceGrade = "A"
	GradeB EvidenceGrade = "B"
	GradeC EvidenceGrade = "C"
	GradeD EvidenceGrade = "D"
	GradeE EvidenceGrade = "E"
	GradeF EvidenceGrade = "F"
)

// IsValid reports whether g is one of the defined grades.
func (g EvidenceGrade) IsValid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE, GradeF:
		return true
	}
	return false
}

// GradeForStudyCount maps a study count to an evidence grade using fixed
// bucket thresholds. These buckets are the canonical rule for both the
// synchronous discovery path and the background worker.
func GradeForStudyCount(count int) EvidenceGrade {
	switch {
	case count >= 100:
		return GradeA
	case count >= 50:
		return GradeB
	case count >= 10:
		return GradeC
	default:
		return GradeD
	}
}
