// Package deepclone duplicates arbitrary object graphs at runtime:
// [Clone] produces a structurally independent copy of any value,
// preserving shared references and terminating on cycles, without
// per-type clone code.
//
// The following is a summary (intended for maintainers) of the moving
// parts and their invariants.
//
// Glossary:
//
//   - Strategy
//
//     The classification of a concrete runtime type that selects how
//     its instances are duplicated: value-copy, string passthrough,
//     behavioral (func/chan), array, struct, or reference
//     (pointer/map/slice). Interfaces defer to their dynamic value.
//
//   - Plain type
//
//     A type whose storage reaches no reference, behavioral, or
//     dynamic types at any depth. Assignment copies it completely, so
//     no plan is compiled and the identity map is never consulted.
//
//   - Clone plan
//
//     A compiled routine duplicating instances of exactly one type.
//     Built once per type from memoized member descriptors
//     (package internal/member), with a precomputed op per storage location.
//     Members with concrete compound types bind their plan at compile
//     time; interface-typed members are classified at execution time,
//     since the declared abstraction says nothing about the value.
//
//   - Identity map
//
//     A call-scoped table from a reference-typed node's identity to
//     its clone. A node is registered before its members are
//     populated; that ordering is the entire cycle-termination and
//     shared-node story.
//
//   - Full tier / limited tier
//
//     The two process-wide plan caches. The full tier is unbounded;
//     the limited tier evicts beyond its configured capacity. The
//     limited tier serves lookups whenever its capacity is greater
//     than zero, the full tier otherwise; both remain clearable and
//     inspectable either way.
//
// Invariants:
//
//   - A plan always yields a value assignable to its associated type.
//
//   - Between clearing operations, a plan is compiled at most once per
//     type and tier state; concurrent misses may compile redundantly
//     but never corrupt a tier.
//
//   - Errors are total: a failed [Clone] returns the zero value,
//     never a partially populated copy, and nothing is logged,
//     retried, or swallowed.
//
//   - A behavioral (func/chan) root fails with [ErrUnsupportedType];
//     a behavioral member clones to nil. The asymmetry is deliberate:
//     an incidental callback field must not doom an otherwise
//     clonable graph.
//
//   - Unexported fields are read and written through their storage
//     addresses. That unsafe access is confined to internal/member
//     and never escapes this module's boundary.
//
// Not addressed here: stack exhaustion on pathologically deep acyclic
// graphs (traversal is plain recursion), and any form of
// serialization.
package deepclone
