package labeling

import (
	"fmt"

	"github.com/ironsheep/floorplan-mcp/internal/diag"
	"github.com/ironsheep/floorplan-mcp/internal/region"
)

// MatchMode says which side of a comparison the flexible category applies to.
type MatchMode string

const (
	// MatchLabel lets a label whose expected category is the flexible one
	// claim a region of any category. A region colored with the flexible
	// category still only matches labels expecting it.
	MatchLabel MatchMode = "label"

	// MatchSymmetric applies the flexible category on either side.
	MatchSymmetric MatchMode = "symmetric"
)

// ParseMatchMode validates a mode name. The empty string selects MatchLabel.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case "", MatchLabel:
		return MatchLabel, nil
	case MatchSymmetric:
		return MatchSymmetric, nil
	}
	return "", diag.Inputf("match mode", "unknown mode %q, want %q or %q", s, MatchLabel, MatchSymmetric)
}

// Matcher decides whether a label expecting one category may claim a region
// of another.
type Matcher struct {
	Flexible region.Category // empty for exact matching
	Mode     MatchMode
}

// ExactMatch accepts only identical categories.
func ExactMatch() Matcher {
	return Matcher{}
}

// FlexibleMatch treats flex as a wildcard according to mode.
func FlexibleMatch(flex region.Category, mode MatchMode) Matcher {
	if mode == "" {
		mode = MatchLabel
	}
	return Matcher{Flexible: flex, Mode: mode}
}

// Match reports whether a label expecting want may claim a region of got.
func (m Matcher) Match(want, got region.Category) bool {
	if want == got {
		return true
	}
	if m.Flexible == "" {
		return false
	}
	if want == m.Flexible {
		return true
	}
	return m.Mode == MatchSymmetric && got == m.Flexible
}

func (m Matcher) String() string {
	if m.Flexible == "" {
		return "exact"
	}
	return fmt.Sprintf("flexible(%s, %s)", m.Flexible, m.Mode)
}
