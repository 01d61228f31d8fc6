// Package defect tracks the closed set of non-fatal protocol violations
// encountered while parsing a message, and the closed set of fatal error
// kinds that subsystems may return.
package defect

import "fmt"

// Kind identifies one of the non-fatal defects a parser can register.
// The set is closed and indexes directly into a Set's fixed-size array,
// so registering a defect never allocates.
type Kind int

const (
	MissingSeparators Kind = iota
	MultipleFieldOccurrence
	UnbalancedBoundaryQuote
	MultipleBoundaries
	MultipleColonSeparators
	MultipleEqualsSeparators
	UnbalancedQuotes
	MultipleQuotes
	MultipleNames
	MultipleFilenames

	numKinds
)

var names = [numKinds]string{
	MissingSeparators:        "missing separators",
	MultipleFieldOccurrence:  "multiple field occurrence",
	UnbalancedBoundaryQuote:  "unbalanced boundary quote",
	MultipleBoundaries:       "multiple boundaries",
	MultipleColonSeparators:  "multiple colon separators",
	MultipleEqualsSeparators: "multiple equals separators",
	UnbalancedQuotes:         "unbalanced quotes",
	MultipleQuotes:           "multiple quotes",
	MultipleNames:            "multiple names",
	MultipleFilenames:        "multiple filenames",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= int(numKinds) {
		return fmt.Sprintf("defect(%d)", int(k))
	}
	return names[k]
}

// Set is a per-message defect histogram. The zero value is ready to use.
type Set struct {
	counts [numKinds]int
}

// Add increments the count for k. It never allocates.
func (s *Set) Add(k Kind) {
	if k >= 0 && int(k) < int(numKinds) {
		s.counts[k]++
	}
}

// Count returns the number of times k has been registered.
func (s *Set) Count(k Kind) int { return s.counts[k] }

// Total returns the sum of all defect counts.
func (s *Set) Total() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

// Merge folds other's counts into s, for propagating a nested part's
// defects up to the enclosing message.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for k, c := range other.counts {
		s.counts[k] += c
	}
}

// Report returns a list of (kind, count) entries for every kind with a
// non-zero count, in Kind order. Used by the sink's message-close callback.
type Entry struct {
	Kind  Kind
	Count int
}

func (s *Set) Report() []Entry {
	var out []Entry
	for i, c := range s.counts {
		if c > 0 {
			out = append(out, Entry{Kind: Kind(i), Count: c})
		}
	}
	return out
}
