// Package labeling binds store names to detected regions.
//
// Assign walks the label table in order and gives each label the nearest
// unclaimed region of a compatible category, provided it lies strictly inside
// the label's search radius. The result is a partial one-to-one mapping:
// labels that found nothing and regions nobody claimed are both reported.
//
// Category compatibility is an explicit Matcher value rather than a rule
// buried in the loop, so callers choose between exact matching and a single
// flexible category that may claim regions of any color.
package labeling
