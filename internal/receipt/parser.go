// Package receipt extracts a best-effort purchase record from OCR text.
//
// The parser never fails: it scans the text once, line by line, and returns
// whatever fields it could recognize. Callers pre-fill entry forms with the
// result and leave the rest to manual entry.
package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// Data is the partial record recovered from a receipt. Absent fields are
// zero-valued; Price is a pointer because 0.00 is a legal extracted price.
type Data struct {
	Date     string   `json:"date,omitempty"`
	Name     string   `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Store    string   `json:"store,omitempty"`
	Category string   `json:"category,omitempty"`
}

// storeThreshold is the minimum similarity score for a line to claim a store.
const storeThreshold = 0.5

var (
	datePattern  = regexp.MustCompile(`(?i)(?:date\s*[:\-]?\s*)?(\d{1,2}/\d{1,2}/\d{2,4})`)
	defaultPrice = regexp.MustCompile(`\$?\d+\.\d{2}`)

	// Store-specific price patterns. Some chains print trailing column codes
	// after the amount that the default pattern would swallow.
	storePricePatterns = map[string]*regexp.Regexp{
		"NoFrills": regexp.MustCompile(`\d{1,2}\.\d{2}$`),
	}

	leadingDigits  = regexp.MustCompile(`[0-9. ]+`)
	multiSpace     = regexp.MustCompile(`\s{2,}`)
	specialChars   = regexp.MustCompile(`[*#]+`)
	edgeNonWord    = regexp.MustCompile(`^\W+|\W+$`)
	quantityPrefix = regexp.MustCompile(`(?i)\b(?:QTY|QUANTITY|ITEM|NO)\b\s*:?\s*`)
	hasLetter      = regexp.MustCompile(`[a-zA-Z]`)
)

// Parse scans OCR text and extracts at most one date, one store, and one
// price/name pair. First match wins for every field; later, possibly better
// candidates are ignored. knownStores drives the fuzzy store match.
func Parse(text string, knownStores []string) Data {
	var data Data
	pricePattern := defaultPrice
	previousLine := ""

	upperStores := make([]string, len(knownStores))
	for i, s := range knownStores {
		upperStores[i] = strings.ToUpper(s)
	}

	for _, line := range strings.Split(text, "\n") {
		if data.Date == "" {
			if m := datePattern.FindStringSubmatch(line); m != nil {
				data.Date = normalizeDate(m[1])
			}
		}

		if data.Store == "" {
			if idx := bestStoreMatch(strings.ToUpper(line), upperStores); idx >= 0 {
				data.Store = knownStores[idx]
			}
		}

		// Once the store is known, it may dictate a stricter price pattern.
		if data.Store != "" {
			if p, ok := storePricePatterns[data.Store]; ok {
				pricePattern = p
			}
		}

		if data.Price == nil {
			if m := pricePattern.FindString(line); m != "" {
				if v, err := strconv.ParseFloat(strings.TrimPrefix(m, "$"), 64); err == nil {
					data.Price = &v

					// Prefer a name from text before the price on the same
					// line; fall back to the last line seen with a letter.
					if idx := strings.Index(line, m); idx > 0 {
						if name := cleanItemName(line[:idx]); name != "" && hasLetter.MatchString(name) {
							data.Name = name
						}
					}
					if data.Name == "" && previousLine != "" {
						if name := cleanItemName(previousLine); name != "" && hasLetter.MatchString(name) {
							data.Name = name
						}
					}
				}
			}
		}

		if strings.TrimSpace(line) != "" && hasLetter.MatchString(line) {
			previousLine = line
		}
	}

	return data
}

// bestStoreMatch returns the index of the best-scoring store for the line, or
// -1 when nothing reaches the threshold.
func bestStoreMatch(upperLine string, upperStores []string) int {
	best, bestIdx := 0.0, -1
	for i, s := range upperStores {
		if score := Similarity(upperLine, s); score > best {
			best, bestIdx = score, i
		}
	}
	if best >= storeThreshold {
		return bestIdx
	}
	return -1
}

// normalizeDate converts a D/D/D-shaped match to YYYY-MM-DD. Day/month
// ordering is a heuristic: a first component over 12 must be a day, otherwise
// month-first is assumed. This is a guess, not a guarantee.
func normalizeDate(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ""
	}
	first, _ := strconv.Atoi(parts[0])
	second, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if year < 100 {
		year += 2000
	}

	month, day := first, second
	if first > 12 {
		month, day = second, first
	}
	return itoa4(year) + "-" + itoa2(month) + "-" + itoa2(day)
}

// cleanItemName strips quantity codes and OCR noise from a candidate name.
func cleanItemName(s string) string {
	if loc := leadingDigits.FindStringIndex(s); loc != nil {
		s = s[:loc[0]] + s[loc[1]:]
	}
	s = multiSpace.ReplaceAllString(s, " ")
	s = specialChars.ReplaceAllString(s, "")
	s = edgeNonWord.ReplaceAllString(s, "")
	s = quantityPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func itoa2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func itoa4(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}
