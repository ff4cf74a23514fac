// Package imaging holds the raster primitives the floor-plan pipeline is built
// on: decoded images, binary masks, color-range membership, square-element
// morphology, flood fill and rendered previews.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. A point is written (x, y);
// mask rows are indexed [y][x].
//
// # Sessions
//
// ImageCache maps an image path to its decoded Raster. Callers pass the path on
// every request instead of relying on a process-wide current image, so the
// cache is the only shared state and it is safe for concurrent use.
//
// # Masks
//
// A Mask is a width × height grid of booleans. Morphological operations never
// modify their input; they return a new mask of the same shape.
//
// # Error Handling
//
// Invalid coordinates, empty paths and zero-size images are reported as
// diag.InputError. File and codec failures are wrapped with fmt.Errorf.
package imaging
