package filter

import (
	"fmt"
	"path"
)

// Filter decides whether an emoji name should be processed based on
// include and exclude glob patterns.
type Filter struct {
	include []string
	exclude []string
}

// New creates a Filter from include and exclude pattern sets.
// Either set may be nil or empty.
func New(include, exclude []string) *Filter {
	return &Filter{include: include, exclude: exclude}
}

// Validate checks that every configured pattern is a valid glob expression.
func (f *Filter) Validate() error {
	for _, p := range append(append([]string{}, f.include...), f.exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// Accepts reports whether the name passes the filter.
//
// Exclude patterns are checked first: any match rejects the name. If include
// patterns are configured, the name must match at least one of them; an empty
// include set accepts everything that survived exclusion.
func (f *Filter) Accepts(name string) bool {
	for _, p := range f.exclude {
		if matched, err := path.Match(p, name); err == nil && matched {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, p := range f.include {
		if matched, err := path.Match(p, name); err == nil && matched {
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no patterns configured at all.
func (f *Filter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}
