// Package title turns raw catalog titles into provider search titles.
//
// Catalog titles follow the MovieLens convention: "Name (Year)", with leading
// articles moved to the end ("Matrix, The (1999)") and optional alias or
// foreign-title annotations in parentheses.
package title

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// A trailing year, optionally followed by one annotation ("(1999) (aka X)").
	trailingYearPattern = regexp.MustCompile(`\s\((\d{4})\)(\s\([^()]*\))?$`)
	trailingArticle     = regexp.MustCompile(`(?i),\s+(The|An|A|Les|La|Le|El|L'|L’)$`)
	trailingParen       = regexp.MustCompile(`\s\([^()]*\)$`)
)

// Normalized is the search form of a catalog title.
type Normalized struct {
	SearchTitle string
	YearHint    *int
}

// Normalize parses a raw catalog title. It never performs I/O.
func Normalize(raw string) Normalized {
	working := strings.TrimSpace(norm.NFC.String(raw))

	base, year := splitYear(working)

	out, moved := moveArticle(base)
	out = trailingParen.ReplaceAllString(out, "")
	if !moved {
		out, _ = moveArticle(strings.TrimSpace(out))
	}

	return Normalized{
		SearchTitle: strings.TrimSpace(out),
		YearHint:    year,
	}
}

// splitYear removes a trailing " (YYYY)" and returns it as the year hint. An
// annotation directly after the year is kept on the base so it can be stripped
// like any other trailing parenthetical.
func splitYear(value string) (string, *int) {
	loc := trailingYearPattern.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, nil
	}
	year, err := strconv.Atoi(value[loc[2]:loc[3]])
	if err != nil {
		return value, nil
	}
	base := value[:loc[0]]
	if loc[4] >= 0 {
		base += value[loc[4]:loc[5]]
	}
	return base, &year
}

func moveArticle(value string) (string, bool) {
	loc := trailingArticle.FindStringSubmatchIndex(value)
	if loc == nil {
		return value, false
	}
	article := value[loc[2]:loc[3]]
	base := strings.TrimSpace(value[:loc[0]])
	return article + " " + base, true
}
