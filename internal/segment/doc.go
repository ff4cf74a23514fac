// Package segment turns prompt clicks and oracle output into a single
// accepted mask.
//
// The segmentation model itself is an external Oracle. This package prepares
// what is sent to it (EnhancePrompts), validates and ranks what comes back
// (Rank, which refines every candidate with Refine), and packages the result
// in the prediction response shape (Predictor).
//
// Every stage is a pure function of its inputs. The only blocking call is
// Oracle.Predict, which the Predictor bounds with a caller-side timeout.
package segment
