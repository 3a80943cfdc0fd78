package collections

import "testing"

func TestParseStatus(t *testing.T) {
	valid := []string{"wish", "watching", "watched", "on_hold", "dropped"}
	for _, s := range valid {
		got, err := ParseStatus(s)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", s, err)
		}
		if string(got) != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}

	for _, s := range []string{"", "WISH", "plan_to_watch", "watched "} {
		if _, err := ParseStatus(s); err == nil {
			t.Fatalf("ParseStatus(%q) accepted invalid input", s)
		}
	}
}
