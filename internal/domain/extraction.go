package domain

import "context"

// ExtractedFields is the fixed structured-extraction schema. Every field is
// nullable; the lists are never nil after decoding (empty means "nothing
// extracted").
type ExtractedFields struct {
	FullName     *string
	Email        *string
	Phone        *string
	IDNumber     *string
	LocationCity *string
	Education    []ExtractedEducation
	Experiences  []ExtractedExperience
}

type ExtractedEducation struct {
	Institution            *string
	Degree                 *string
	Major                  *string
	GPA                    *string
	Status                 *string
	ExpectedGraduationDate *string
}

type ExtractedExperience struct {
	Company          *string
	Title            *string
	Dates            *string
	EmploymentStatus *string
	Description      *string
}

// SafeDefaultFields is the fallback returned whenever the extraction
// backend cannot produce a trustworthy answer: empty lists, all scalars
// absent. The pipeline never aborts on extraction instability.
func SafeDefaultFields() ExtractedFields {
	return ExtractedFields{
		Education:   []ExtractedEducation{},
		Experiences: []ExtractedExperience{},
	}
}

// TextExtractor turns a document file into best-effort plain text. It never
// fails from the caller's perspective: unsupported types and parse errors
// yield the empty string, with the distinction logged only.
type TextExtractor interface {
	Extract(path string) string
}

// StructuredExtractor turns a free-text paragraph plus optional document
// text into ExtractedFields. Implementations must degrade to
// SafeDefaultFields on any backend or parse failure instead of erroring.
type StructuredExtractor interface {
	Extract(ctx context.Context, paragraph, cvText string) ExtractedFields
}
