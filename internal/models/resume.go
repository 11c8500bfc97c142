package models

import (
	"time"
)

// Stage is one discrete step of the ingestion pipeline. The wire values
// match the persisted record layout.
type Stage string

const (
	// StageCreated is set by the gatekeeper when the record is inserted.
	StageCreated Stage = "uploaded"
	// StageTextExtracted is set after raw text extraction succeeds.
	StageTextExtracted Stage = "text-parsed"
	// StageMetadataExtracted is set after enrichment, even when enrichment
	// produced an empty result.
	StageMetadataExtracted Stage = "metadata-parsed"
	// StageIndexed is the terminal stage, set after the vector upsert.
	StageIndexed Stage = "embedded"
)

// Ordinal maps a stage to its position in the pipeline. Unknown stages
// sort before StageCreated so a corrupt value can never block progress.
func (s Stage) Ordinal() int {
	switch s {
	case StageCreated:
		return 1
	case StageTextExtracted:
		return 2
	case StageMetadataExtracted:
		return 3
	case StageIndexed:
		return 4
	default:
		return 0
	}
}

// ExperienceItem is one employment entry extracted from a resume.
type ExperienceItem struct {
	Company  string `json:"company"`
	Role     string `json:"role"`
	Duration string `json:"duration"`
}

// EducationItem is one education entry extracted from a resume.
type EducationItem struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// ResumeMetadata holds the structured fields produced by enrichment.
// An all-zero value is valid: it means enrichment could not map the
// reasoning service's output onto this schema.
type ResumeMetadata struct {
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Skills     []string         `json:"skills"`
	Experience []ExperienceItem `json:"experience"`
	Education  []EducationItem  `json:"education"`
}

// Resume is the durable record for one uploaded document and its
// processing progress.
type Resume struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	StoragePath string          `json:"filepath"`
	Text        string          `json:"text,omitempty"`
	Metadata    *ResumeMetadata `json:"metadata,omitempty"`
	Stage       Stage           `json:"step"`
	Status      bool            `json:"status"`
	Reason      string          `json:"reason,omitempty"`
	UploadedAt  time.Time       `json:"uploaded_at"`
}

// UploadResult is returned to the caller as soon as the record exists;
// no pipeline stage has run yet.
type UploadResult struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// SearchRequest is the free-text similarity query.
type SearchRequest struct {
	Description string `json:"description"`
	TopK        int    `json:"top_k"`
}

// SearchHit is one similarity match. Score is the raw similarity scaled
// to [0,100] and rounded to two decimals.
type SearchHit struct {
	ResumeID string  `json:"resume_id"`
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// ResumeDetail is the caller-facing view of a record. The raw text is
// deliberately omitted.
type ResumeDetail struct {
	ID         string          `json:"id"`
	Filename   string          `json:"filename"`
	Metadata   *ResumeMetadata `json:"metadata,omitempty"`
	Stage      Stage           `json:"step"`
	Status     bool            `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	UploadedAt time.Time       `json:"uploaded_at"`
}
