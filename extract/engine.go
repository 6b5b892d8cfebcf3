package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/coachscout/coachscout/models"
)

// Extractor runs the content-pattern cascade over acquired page content and
// yields deduplicated, validated StaffRecords.
type Extractor struct {
	patterns  []ContentPattern
	validator *NameValidator
	now       func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithPatterns overrides the default pattern cascade.
func WithPatterns(patterns []ContentPattern) Option {
	return func(e *Extractor) { e.patterns = patterns }
}

// WithValidator overrides the default name validator.
func WithValidator(v *NameValidator) Option {
	return func(e *Extractor) { e.validator = v }
}

// WithClock overrides the ExtractedAt timestamp source. Tests use a fixed
// clock.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor builds an Extractor with the default cascade and validator.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		patterns:  DefaultPatterns(),
		validator: NewNameValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs every pattern in cascade order against the content and
// returns the surviving staff records.
//
// Acceptance pipeline per candidate: name cleaning → coaching-context
// co-occurrence → first-pattern-wins dedup (case-insensitive name) →
// context resolution → coaching-position classification. Validation
// rejections are expected high-frequency noise and are dropped silently.
func (e *Extractor) Extract(content models.RawContent) []models.StaffRecord {
	seen := make(map[string]struct{})
	var records []models.StaffRecord

	for _, pattern := range e.patterns {
		for _, cand := range pattern.Match(content.Text) {
			name, ok := e.validator.Clean(cand.Name)
			if !ok {
				continue
			}
			key := strings.ToLower(name)
			if _, dup := seen[key]; dup {
				// An earlier pattern already claimed this name.
				continue
			}
			if !HasCoachingContext(name, content.Text) && !coachingKeywordRe.MatchString(cand.TitleHint) {
				continue
			}

			rec, ok := e.resolve(name, cand, content)
			if !ok {
				continue
			}
			seen[key] = struct{}{}
			records = append(records, rec)
		}
	}

	if len(records) > 0 {
		slog.Debug("extraction complete",
			"source", content.SourceURL,
			"strategy", content.Strategy,
			"records", len(records),
		)
	}
	return records
}

// resolve turns an accepted candidate into a StaffRecord, or rejects it when
// its position reads academic rather than coaching.
func (e *Extractor) resolve(name string, cand Candidate, content models.RawContent) (models.StaffRecord, bool) {
	ctx := ExtractContext(name, content.Text)

	title := ctx.Title
	sport := ctx.Sport
	if hint := strings.TrimSpace(cand.TitleHint); hint != "" {
		// A pattern-supplied title fragment beats windowed inference: it
		// was paired with the name by page structure, not proximity.
		if !IsCoachingPosition(hint) {
			return models.StaffRecord{}, false
		}
		if t, ok := MatchTitle(hint); ok {
			title = t
		}
		if s := MatchSport(hint); s != DefaultSport {
			sport = s
		}
	}
	if !IsCoachingPosition(title) {
		return models.StaffRecord{}, false
	}

	confidence := cand.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 0.75
	}

	return models.StaffRecord{
		Name:            name,
		Title:           title,
		Sport:           sport,
		Email:           ctx.Email,
		Phone:           ctx.Phone,
		PhotoURL:        cand.PhotoURL,
		ConfidenceScore: confidence,
		SourceStrategy:  content.Strategy,
		ExtractedAt:     e.now(),
	}, true
}
