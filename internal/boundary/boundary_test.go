package boundary

import "testing"

func TestPushPopTop(t *testing.T) {
	var st Stack
	if _, ok := st.Top(); ok {
		t.Fatal("Top() on empty stack reported ok")
	}
	st.Push("A")
	st.Push("B")
	if top, ok := st.Top(); !ok || top != "B" {
		t.Fatalf("Top() = %q, %v, want B, true", top, ok)
	}
	if got := st.Pop(); got != "B" {
		t.Fatalf("Pop() = %q, want B", got)
	}
	if top, _ := st.Top(); top != "A" {
		t.Fatalf("Top() = %q, want A", top)
	}
}

func TestMatchSeparatorAndTerminator(t *testing.T) {
	var st Stack
	st.Push("outer")

	kind, s := st.Match("--outer")
	if kind != Separator || s != "outer" {
		t.Fatalf("Match(--outer) = %v, %q, want Separator, outer", kind, s)
	}
	if st.Len() != 0 {
		t.Fatalf("Len() = %d after matched separator, want 0 (matched entry popped)", st.Len())
	}

	st.Push("outer")
	kind, s = st.Match("--outer--")
	if kind != Terminator || s != "outer" {
		t.Fatalf("Match(--outer--) = %v, %q, want Terminator, outer", kind, s)
	}
}

func TestMatchNoMatch(t *testing.T) {
	var st Stack
	st.Push("B")
	if kind, _ := st.Match("some text"); kind != NoMatch {
		t.Fatalf("Match(some text) = %v, want NoMatch", kind)
	}
	if kind, _ := st.Match("--other"); kind != NoMatch {
		t.Fatalf("Match(--other) = %v, want NoMatch", kind)
	}
	if st.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (no mutation on NoMatch)", st.Len())
	}
}

func TestMatchAutoPopsDeeperBoundaries(t *testing.T) {
	// Nested multipart: "outer" pushed first, then "inner" for a child
	// multipart that never saw its own closing delimiter before "outer"
	// shows up again. Spec §3: a match against a boundary below the top
	// auto-pops everything above it.
	var st Stack
	st.Push("outer")
	st.Push("inner")
	st.Push("innermost")

	kind, s := st.Match("--outer--")
	if kind != Terminator || s != "outer" {
		t.Fatalf("Match(--outer--) = %v, %q, want Terminator, outer", kind, s)
	}
	if st.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (inner and innermost auto-popped)", st.Len())
	}
}

func TestMatchPrefersInnermost(t *testing.T) {
	// Two boundaries where one is a prefix of another: innermost (top)
	// must be tried first so it wins over a coincidental outer match.
	var st Stack
	st.Push("AAAA")
	st.Push("AAAABBBB")

	kind, s := st.Match("--AAAABBBB")
	if kind != Separator || s != "AAAABBBB" {
		t.Fatalf("Match(--AAAABBBB) = %v, %q, want Separator, AAAABBBB", kind, s)
	}
	if st.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (only topmost popped)", st.Len())
	}
}
