package namepolicy

import "testing"

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		name          string
		preserveSlash bool
		want          string
	}{
		{"report.pdf", false, "report.pdf"},
		{"a/b\\c", false, "a_b_c"},
		{"a/b\\c", true, "a/b_c"},
		{"na\x01me\x7f.txt", false, "na_me_.txt"},
		{"héllo.txt", false, "h_llo.txt"},
	} {
		if got := Sanitize(tc.name, tc.preserveSlash); got != tc.want {
			t.Errorf("Sanitize(%q, %v) = %q, want %q", tc.name, tc.preserveSlash, got, tc.want)
		}
	}
}

func TestHasMacResourceParams(t *testing.T) {
	if HasMacResourceParams(map[string]string{"name": "x"}) {
		t.Error("HasMacResourceParams = true without mac params")
	}
	if !HasMacResourceParams(map[string]string{"x-mac-type": "TEXT", "x-mac-creator": "ttxt"}) {
		t.Error("HasMacResourceParams = false with both mac params present")
	}
	if HasMacResourceParams(map[string]string{"x-mac-type": "TEXT"}) {
		t.Error("HasMacResourceParams = true with only one mac param")
	}
}

func TestCounterNext(t *testing.T) {
	var c Counter
	if got := c.Next(DefaultPrefix); got != "textfile0" {
		t.Errorf("Next() = %q, want textfile0", got)
	}
	if got := c.Next(DefaultPrefix); got != "textfile1" {
		t.Errorf("Next() = %q, want textfile1", got)
	}
}

func TestTypePrefix(t *testing.T) {
	if got := TypePrefix("application/octet-stream"); got != "application-octet-stream" {
		t.Errorf("TypePrefix() = %q, want application-octet-stream", got)
	}
}

func TestRenameSchemes(t *testing.T) {
	for _, tc := range []struct {
		scheme RenameScheme
		name   string
		attupt int
		want   string
	}{
		{PrefixCounter, "a.txt", 1, "1_a.txt"},
		{InfixCounter, "a.txt", 1, "a_1.txt"},
		{PostfixCounter, "a.txt", 1, "a.txt_1"},
		{InfixCounter, "noext", 2, "noext_2"},
	} {
		if got := Rename(tc.scheme, tc.name, tc.attupt); got != tc.want {
			t.Errorf("Rename(%v, %q, %d) = %q, want %q", tc.scheme, tc.name, tc.attupt, got, tc.want)
		}
	}
}

func TestRenameRandomVariantsDiffer(t *testing.T) {
	a := Rename(PrefixCounterRandom, "a.txt", 1)
	b := Rename(PrefixCounterRandom, "a.txt", 1)
	if a == b {
		t.Errorf("Rename with random scheme produced identical names %q twice", a)
	}
}

func TestNameStack(t *testing.T) {
	var ns NameStack
	if ns.Add("") {
		t.Error("Add(\"\") reported new")
	}
	if !ns.Add("a.txt") {
		t.Error("Add(a.txt) reported not new")
	}
	if ns.Add("a.txt") {
		t.Error("Add(a.txt) again reported new")
	}
	ns.Add("b.txt")

	if got := ns.Primary(); got != "a.txt" {
		t.Errorf("Primary() = %q, want a.txt", got)
	}
	if got := ns.Aliases(); len(got) != 1 || got[0] != "b.txt" {
		t.Errorf("Aliases() = %v, want [b.txt]", got)
	}
	if got := ns.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
