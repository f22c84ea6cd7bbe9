// Package ir defines the drawing intermediate representation shared by the
// recorder and the interactive renderer.
//
// A [Recording] is an ordered list of [Command] values plus the projection
// and canvas descriptors of the scene they were drawn into. Each command
// carries exactly one [Geometry] variant:
//
//   - [PointCluster]: parallel x/y/size/color/alpha arrays
//   - [Polyline]: one connected run of points
//   - [Polygon]: one closed ring
//   - [TextLabel]: one positioned string
//   - [LineBundle]: many disjoint segments sharing a style
//   - [GradientFill]: a background colour ramp
//
// # Invariants
//
// Parallel arrays inside one command have identical length. Metadata is
// either empty or holds one [Record] per element. The group id names the
// logical layer and is reused verbatim by every command of that layer. Z
// ties are broken by recording order.
//
// Violations are rejected by [Command.Validate] and [Recording.Append] with
// an INVALID_COMMAND error before anything is appended.
//
// # Lifecycle
//
// A Recording is written by exactly one capturing session. [Recording.Finalize]
// freezes it in place and [Recording.Snapshot] returns a frozen copy while the
// original keeps accepting commands. [Recording.Clear] resets it for reuse.
package ir
