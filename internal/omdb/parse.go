package omdb

import (
	"strconv"
	"strings"

	"github.com/Clark-Hu/movie-etl/internal/domain"
)

var currencyStripper = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", " ", "", "\u00a0", "",
)

// ParseBoxOffice converts a currency-formatted amount into whole units.
// Unknown markers and anything that is not a non-negative integer map to 0.
func ParseBoxOffice(raw string) int64 {
	cleaned := currencyStripper.Replace(strings.TrimSpace(raw))
	if cleaned == "" || strings.EqualFold(cleaned, "N/A") || strings.EqualFold(cleaned, "unknown") {
		return 0
	}
	if !isDigits(cleaned) {
		return 0
	}
	value, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// ParseYear returns the first year of a possibly ranged value ("1994–1996").
// Non-numeric input maps to 0.
func ParseYear(raw string) int {
	head := strings.TrimSpace(raw)
	if idx := strings.IndexAny(head, "–—-"); idx >= 0 {
		head = strings.TrimSpace(head[:idx])
	}
	if !isDigits(head) {
		return 0
	}
	year, err := strconv.ParseInt(head, 10, 16)
	if err != nil {
		return 0
	}
	return int(year)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func toResult(p *Payload) *domain.EnrichmentResult {
	result := &domain.EnrichmentResult{
		Director: p.Director,
		Plot:     p.Plot,
	}
	if p.BoxOffice != nil {
		result.BoxOffice = ParseBoxOffice(*p.BoxOffice)
	}
	if p.Year != nil {
		result.ReleaseYear = ParseYear(*p.Year)
	}
	return result
}
