package usecase

import (
	"context"
	"strings"

	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/apperror"
)

type candidateUsecase struct {
	repo domain.CandidateRepository
}

func NewCandidateUsecase(repo domain.CandidateRepository) domain.CandidateUsecase {
	return &candidateUsecase{repo: repo}
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, id int64) (*domain.CandidateDetail, error) {
	detail, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return detail, nil
}

func (u *candidateUsecase) Search(ctx context.Context, f domain.SearchFilter) (*domain.SearchResult, error) {
	candidates, err := u.repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	// Skills are independent substring checks over the combined text blob,
	// not tokenized word matching. ALL terms must appear.
	terms := splitKeywords(f.Skills)
	if len(terms) > 0 {
		filtered := candidates[:0]
		for _, c := range candidates {
			if matchesAllKeywords(c, terms) {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	return &domain.SearchResult{Count: len(candidates), Items: candidates}, nil
}

func splitKeywords(skills string) []string {
	var terms []string
	for _, k := range strings.Split(skills, ",") {
		if k = strings.TrimSpace(k); k != "" {
			terms = append(terms, strings.ToLower(k))
		}
	}
	return terms
}

func matchesAllKeywords(c domain.CandidateDetail, terms []string) bool {
	var blob strings.Builder
	blob.WriteString(c.CVText)
	blob.WriteByte('\n')
	blob.WriteString(c.RawParagraph)
	for _, x := range c.Experiences {
		blob.WriteByte('\n')
		if x.Title != nil {
			blob.WriteString(*x.Title)
		}
		blob.WriteByte(' ')
		if x.Description != nil {
			blob.WriteString(*x.Description)
		}
	}

	text := strings.ToLower(blob.String())
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}
