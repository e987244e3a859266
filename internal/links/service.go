// Package links ties the registry to the recovery pipeline. It owns the
// collision retry the code generator deliberately leaves to callers, and
// the order in which recovery strategies are tried.
package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/usnaveen/paperlink/internal/code"
	"github.com/usnaveen/paperlink/internal/correct"
	"github.com/usnaveen/paperlink/internal/logger"
	"github.com/usnaveen/paperlink/internal/match"
	"github.com/usnaveen/paperlink/internal/store"
)

// maxGenerateAttempts bounds the collision retry loop in Shorten. With
// 29^6 codes a second attempt is already vanishingly rare.
const maxGenerateAttempts = 5

// Resolution methods, reported so callers can tell how a scan resolved.
const (
	MethodExact = "exact"
	MethodFuzzy = "fuzzy"
	MethodLive  = "live"
)

var (
	// ErrNoMatch is returned when recovery cannot resolve a scan to any
	// registered code.
	ErrNoMatch = errors.New("no matching code found")

	// ErrInvalidURL is returned when a target URL is unparseable or not
	// http(s).
	ErrInvalidURL = errors.New("invalid target URL")
)

// Resolution is the outcome of a successful recovery.
type Resolution struct {
	Link     *store.Link `json:"link"`
	Code     string      `json:"code"`
	Scanned  string      `json:"scanned"`
	Method   string      `json:"method"`
	Distance int         `json:"distance"`
}

// Service exposes the registry operations plus the recovery pipeline.
type Service struct {
	store    *store.Store
	resolver *match.Resolver
	log      zerolog.Logger
}

// NewService builds a Service over the given registry, confusion table
// and edit-distance budget.
func NewService(st *store.Store, table correct.Table, maxDistance int) *Service {
	return &Service{
		store:    st,
		resolver: match.New(table, maxDistance),
		log:      logger.WithComponent("links"),
	}
}

// Shorten registers rawURL under a freshly generated code. The generator
// never checks for collisions, so the retry loop lives here: on a taken
// code a new one is minted, up to maxGenerateAttempts times.
func (s *Service) Shorten(ctx context.Context, rawURL string) (*store.Link, error) {
	const op = "Shorten"

	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || target.Host == "" || (target.Scheme != "http" && target.Scheme != "https") {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidURL, rawURL)
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		c := code.Generate()
		link, err := s.store.CreateLink(ctx, c, target.String())
		if errors.Is(err, store.ErrCodeTaken) {
			s.log.Warn().Str("code", c).Int("attempt", attempt).Msg("Generated code collided, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info().Str("code", link.Code).Str("url", link.URL).Msg("Link registered")
		return link, nil
	}
	return nil, fmt.Errorf("%s: codes kept colliding after %d attempts", op, maxGenerateAttempts)
}

// Resolve recovers a registered link from raw OCR output or pasted text.
//
// Code-shaped substrings are extracted and tried first, in order of
// appearance. The whole normalized input is then tried as a single
// near-miss code, which covers scans garbled enough to miss the grammar
// ("PL-0A9-K2M" extracts nothing but resolves fine). Each attempt runs
// the full candidate pipeline; the first hit wins and is recorded as a
// scan.
func (s *Service) Resolve(ctx context.Context, rawText string) (*Resolution, error) {
	const op = "Resolve"

	codes, err := s.store.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	scans := code.ExtractAll(rawText)
	if whole := code.Normalize(rawText); whole != "" && !slices.Contains(scans, whole) {
		scans = append(scans, whole)
	}

	for _, scanned := range scans {
		m, ok := s.resolver.FindBestMatch(scanned, codes)
		if !ok {
			continue
		}
		method := MethodFuzzy
		if m.Exact {
			method = MethodExact
		}
		return s.resolved(ctx, op, m.Code, scanned, method, m.Distance)
	}

	s.log.Info().Int("attempts", len(scans)).Msg("Recovery found no match")
	return nil, fmt.Errorf("%s: %w", op, ErrNoMatch)
}

// ResolveLive is the interactive path: an exact lookup first, then the
// single-substitution matcher. Candidate generation and edit distance
// are skipped entirely, keeping it cheap enough to call per camera
// frame.
func (s *Service) ResolveLive(ctx context.Context, scanned string) (*Resolution, error) {
	const op = "ResolveLive"

	normalized := code.Normalize(scanned)
	if code.IsValid(normalized) {
		_, err := s.store.FindByCode(ctx, normalized)
		if err == nil {
			return s.resolved(ctx, op, normalized, scanned, MethodExact, 0)
		}
		if !errors.Is(err, store.ErrLinkNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	codes, err := s.store.Codes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m, ok := match.FindSingleSubstitutionMatch(scanned, codes)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoMatch)
	}
	return s.resolved(ctx, op, m.Code, m.Scanned, MethodLive, 1)
}

// Get returns the link registered under c without counting a scan.
func (s *Service) Get(ctx context.Context, c string) (*store.Link, error) {
	return s.store.FindByCode(ctx, c)
}

// List returns registered links newest first, up to limit.
func (s *Service) List(ctx context.Context, limit int) ([]store.Link, error) {
	return s.store.List(ctx, limit)
}

// Visit resolves a code for redirecting and counts the visit.
func (s *Service) Visit(ctx context.Context, c string) (*store.Link, error) {
	link, err := s.store.FindByCode(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := s.store.RecordScan(ctx, c); err != nil {
		s.log.Warn().Err(err).Str("code", c).Msg("Failed to record visit")
	}
	return link, nil
}

func (s *Service) resolved(ctx context.Context, op, matched, scanned, method string, distance int) (*Resolution, error) {
	link, err := s.store.FindByCode(ctx, matched)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.RecordScan(ctx, matched); err != nil {
		s.log.Warn().Err(err).Str("code", matched).Msg("Failed to record scan")
	}
	s.log.Info().
		Str("code", matched).
		Str("scanned", scanned).
		Str("method", method).
		Int("distance", distance).
		Msg("Scan resolved")
	return &Resolution{
		Link:     link,
		Code:     matched,
		Scanned:  scanned,
		Method:   method,
		Distance: distance,
	}, nil
}
