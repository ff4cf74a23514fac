// Package detection finds store regions on a floor plan by their fill color.
//
// Floor plans color each store by category, so a per-category RGB range is
// enough to pull candidate footprints straight from the raster without any
// learned model.
//
// # Algorithm Overview
//
// For each color range:
//
//  1. Membership: mark every pixel whose RGB lies inside the inclusive range
//  2. Cleanup: morphological closing then opening with a 3×3 square, to merge
//     speckle and drop isolated noise
//  3. Contours: trace the outer border of every 8-connected component that is
//     not nested in another component's hole
//  4. Filtering: drop contours below the absolute or relative minimum area,
//     above the relative maximum, or (optionally) not store-shaped
//  5. Extraction: simplify each survivor into a region.Region
//
// Color ranges are evaluated concurrently. Results are merged in input order
// and then sorted by descending area, so identical inputs always produce an
// identical region list.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
