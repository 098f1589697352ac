package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxToolNameLength is the longest tool name stored on a candidate.
	MaxToolNameLength = 60
	// DescriptionPreviewLength is how much of a description the ranked answer shows.
	DescriptionPreviewLength = 100
	// FallbackTitleLength caps page titles used as tool names for scraped fallbacks.
	FallbackTitleLength = 50
	// MaxExtractedTools caps tools accepted from a single extraction response.
	MaxExtractedTools = 5
	// MaxFallbackResults is how many search results are ingested when extraction yields nothing.
	MaxFallbackResults = 3
)

// Provenance notes attached to ingested candidates.
const (
	ProvenanceLLMExtracted = "LLM extracted"
	ProvenanceDirectScrape = "Direct scrape"
	ProvenanceCuratedList  = "Curated list"
	ProvenanceManualEntry  = "Manual entry"
)

var (
	ErrInvalidDepartment = errors.New("invalid department")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Department is the closed set of business functions tools are bucketed by.
type Department string

const (
	Marketing       Department = "Marketing"
	CustomerSuccess Department = "Customer Success"
	HR              Department = "HR"
	Product         Department = "Product"
	General         Department = "General"
)

// Departments lists every valid department in display order.
func Departments() []Department {
	return []Department{Marketing, CustomerSuccess, HR, Product, General}
}

// ParseDepartment accepts display names and their space-less identifiers,
// case-insensitively. "customer success" and "CustomerSuccess" both resolve.
func ParseDepartment(s string) (Department, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, d := range Departments() {
		if strings.ToLower(strings.ReplaceAll(string(d), " ", "")) == key {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDepartment, s)
}

// MustParseDepartment panics on anything outside the closed set.
func MustParseDepartment(s string) Department {
	d, err := ParseDepartment(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether d is one of the canonical department values.
func (d Department) Valid() bool {
	for _, known := range Departments() {
		if d == known {
			return true
		}
	}
	return false
}

func (d Department) String() string {
	return string(d)
}

// Status is the moderation state of a tool candidate.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) String() string {
	return string(s)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
