// Package retention decides which Versions a policy keeps.
//
// Evaluate never deletes anything; it partitions Versions into Retain and Eligible.
// Rules combine with OR semantics: a Version matching any rule is retained, and the
// single most recent Version is always retained so a store never empties itself.
//
// Policies come from CLI flags or from a TOML file:
//
//	keep_last       = 10
//	keep_newer_than = "30d"
//	keep_tagged     = ["release", "pre-upgrade"]
package retention
