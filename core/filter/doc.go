// Package filter provides name-based inclusion rules for emoji catalogs.
//
// A Filter holds ordered include and exclude glob pattern sets and answers
// whether a given emoji name should be processed. Exclude patterns are always
// evaluated before include patterns, so a name matching both is excluded.
//
// Matching uses shell-glob semantics ('*' any run, '?' single character,
// bracket classes) against the full name, case-sensitive. There is no
// substring matching.
//
// # Usage
//
//	f := filter.New([]string{"party*"}, []string{"*-old"})
//	f.Accepts("partyparrot")     // true
//	f.Accepts("partyparrot-old") // false
package filter
