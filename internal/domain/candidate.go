package domain

import (
	"context"
	"time"
)

// Candidate is the central applicant record, keyed by phone number for
// upsert purposes. All scalar fields are overwritten wholesale on every
// successful reconciliation; the raw id number is never stored, only its
// salted hash.
type Candidate struct {
	ID           int64     `json:"id"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	FullName     *string   `json:"full_name"`
	IDNumberHash *string   `json:"-"`
	LocationCity *string   `json:"location_city"`
	RawParagraph string    `json:"raw_paragraph"`
	CVText       string    `json:"cv_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Education belongs to exactly one candidate and is always fully replaced
// on reconciliation, never patched.
type Education struct {
	ID                     int64   `json:"-"`
	CandidateID            int64   `json:"-"`
	Institution            *string `json:"institution"`
	Degree                 *string `json:"degree"`
	Major                  *string `json:"major"`
	GPA                    *string `json:"gpa"`
	Status                 *string `json:"status"` // graduated | attending | null
	ExpectedGraduationDate *string `json:"expected_graduation_date"`
}

// Experience belongs to exactly one candidate and is always fully replaced
// on reconciliation.
type Experience struct {
	ID               int64   `json:"-"`
	CandidateID      int64   `json:"-"`
	Company          *string `json:"company"`
	Title            *string `json:"title"`
	Dates            *string `json:"dates"`
	EmploymentStatus *string `json:"employment_status"` // working | finished | null
	Description      *string `json:"description"`
}

// CandidateDetail is the full outbound projection: scalars plus children.
type CandidateDetail struct {
	Candidate
	Education   []Education  `json:"education"`
	Experiences []Experience `json:"experiences"`
}

// ReconcileAction reports whether a reconciliation created a new candidate
// or replaced an existing one.
type ReconcileAction string

const (
	ActionCreated ReconcileAction = "created"
	ActionUpdated ReconcileAction = "updated"
)

// ReconcileInput carries everything one inbound event contributes to the
// store. EffectivePhone() decides the upsert identity.
type ReconcileInput struct {
	Fields         ExtractedFields
	RawParagraph   string
	TransportPhone *string
	CVText         string
	IDNumberHash   *string
}

// EffectivePhone is the identity key for upsert: the extracted phone when
// present, else the transport-level sender phone, else nil.
func (in ReconcileInput) EffectivePhone() *string {
	if in.Fields.Phone != nil && *in.Fields.Phone != "" {
		return in.Fields.Phone
	}
	if in.TransportPhone != nil && *in.TransportPhone != "" {
		return in.TransportPhone
	}
	return nil
}

// SearchFilter holds the optional candidate search criteria. All filters
// are case-insensitive substring matches.
type SearchFilter struct {
	Skills         string // comma-separated terms; ALL must appear
	EducationLevel string
	City           string
}

// SearchResult is the outbound search projection.
type SearchResult struct {
	Count int               `json:"count"`
	Items []CandidateDetail `json:"items"`
}

type CandidateRepository interface {
	// Reconcile persists one inbound event atomically: create-or-overwrite
	// the candidate row, then replace all child rows, in one transaction.
	Reconcile(ctx context.Context, in ReconcileInput) (int64, ReconcileAction, error)
	GetByID(ctx context.Context, id int64) (*CandidateDetail, error)
	// Search applies the city and education filters in SQL and returns
	// full details; keyword filtering happens in the usecase.
	Search(ctx context.Context, f SearchFilter) ([]CandidateDetail, error)
}

type CandidateUsecase interface {
	GetCandidate(ctx context.Context, id int64) (*CandidateDetail, error)
	Search(ctx context.Context, f SearchFilter) (*SearchResult, error)
}
