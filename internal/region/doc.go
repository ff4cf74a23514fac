// Package region defines the durable output of the pipeline: simplified store
// outlines with centroid, bounding box, pixel area, category and label.
//
// Extract is the polygon extractor. It traces the largest component of a mask,
// simplifies the border with Douglas–Peucker at a tolerance proportional to
// the border length, and derives the centroid from the border's area moments.
//
// Categories are not free-form strings: a Catalog enumerates them, and every
// name is validated against it before it is attached to a region or a label.
package region
