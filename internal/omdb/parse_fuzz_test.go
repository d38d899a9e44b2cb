package omdb

import "testing"

func FuzzParseBoxOffice(f *testing.F) {
	for _, seed := range []string{"$28,341,469", "N/A", "", "$-1", "1e9"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		if got := ParseBoxOffice(raw); got < 0 {
			t.Fatalf("ParseBoxOffice(%q) = %d, want non-negative", raw, got)
		}
	})
}

func FuzzParseYear(f *testing.F) {
	for _, seed := range []string{"1995", "1995–1999", "N/A", "-"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, raw string) {
		got := ParseYear(raw)
		if got < 0 || got > 32767 {
			t.Fatalf("ParseYear(%q) = %d out of int16 range", raw, got)
		}
	})
}
