// Package geometry implements the planar primitives used to turn binary masks
// into store outlines.
//
// # Contours
//
// ExternalContours traces the outer border of every 8-connected foreground
// component that is not nested inside a hole of another component. Borders are
// followed with the Suzuki–Abe border-following rule, starting at the
// component's first pixel in raster order, and are emitted as ordered pixel
// chains whose last point implicitly connects back to the first.
//
// # Simplification
//
// Simplify runs Douglas–Peucker on a closed chain, CompressChain collapses runs
// of collinear pixels to their endpoints.
//
// # Coordinate System
//
// Points are image.Point values in pixel space: origin at top-left, X
// rightward, Y downward. Rectangles returned by Bounds use the standard
// exclusive-max convention of image.Rectangle.
package geometry
