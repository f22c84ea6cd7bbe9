// Package consistency checks that the primary and interactive renderings of
// a scene agree.
//
// Two independent checks are provided. The structural check is exact: for
// every group, the element count stored in a recording must equal the count
// the domain layer drew (see [CheckStructure]) and the count the interactive
// figure shows (see [CheckReplay]). The perceptual check is advisory: it
// fingerprints two rasters with a per-channel difference hash and reports a
// normalised Hamming distance in [0, 1] (see [Checker.Compare]). Different
// rasterisers never agree pixel for pixel, so only bounded similarity is
// asserted.
package consistency
