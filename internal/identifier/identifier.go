// Package identifier parses the collector line printed at the bottom of a
// card, e.g. "12/204 EN 3": card number, set size, language and series.
package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoMatch is returned when the text carries no recognizable identifier.
var ErrNoMatch = errors.New("no card identifier found")

// DefaultSetSize is assumed when the text carries no set size.
const DefaultSetSize = "204"

// UnknownSet is the set name of series numbers outside SetNames.
const UnknownSet = "Unknown Set"

// SetNames maps series numbers to published set names.
var SetNames = map[int]string{
	1: "The First Chapter",
	2: "Rise of the Floodborn",
	3: "Into the Inklands",
	4: "Ursula's Return",
	5: "Shimmering Skies",
	6: "Azurite Sea",
}

// The number and the set size are separated by a slash, or run together
// when the set size is directly followed by the language code.
var (
	slashed = regexp.MustCompile(`(\d+)/(\d{3})[-.]?([A-Za-z]+)[-.]?[\d.-]*?(\d)$`)
	joined  = regexp.MustCompile(`(\d+)(\d{3})([A-Za-z]+)[-.]?[\d.-]*?(\d)$`)
)

// Identifier is a parsed collector line.
type Identifier struct {
	Number   string `json:"number"`
	SetSize  string `json:"set_size"`
	Language string `json:"language"`
	Series   int    `json:"series"`
	SetName  string `json:"set_name"` // slug, e.g. "Rise-of-the-Floodborn"
}

// Key identifies the card in a catalog: number-setsize-language-series.
func (id Identifier) Key() string {
	return fmt.Sprintf("%s-%s-%s-%d", id.Number, id.SetSize, id.Language, id.Series)
}

func (id Identifier) String() string {
	return fmt.Sprintf("%s/%s %s %d", id.Number, id.SetSize, id.Language, id.Series)
}

// Parse extracts the identifier that ends text. Whitespace anywhere in text
// is ignored.
func Parse(text string) (Identifier, error) {
	s := strings.Join(strings.Fields(text), "")

	m := leftmost(s, slashed, joined)
	if m == nil {
		return Identifier{}, fmt.Errorf("%w in %q", ErrNoMatch, text)
	}

	series, err := strconv.Atoi(m[4])
	if err != nil {
		return Identifier{}, fmt.Errorf("series %q: %w", m[4], err)
	}
	size := m[2]
	if size == "" {
		size = DefaultSetSize
	}
	return Identifier{
		Number:   m[1],
		SetSize:  size,
		Language: m[3],
		Series:   series,
		SetName:  Slug(SetName(series)),
	}, nil
}

// leftmost returns the submatches of the pattern matching earliest in s;
// on equal positions the first pattern wins.
func leftmost(s string, patterns ...*regexp.Regexp) []string {
	best, bestAt := []string(nil), len(s)+1
	for _, re := range patterns {
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil || loc[0] >= bestAt {
			continue
		}
		best, bestAt = submatches(s, loc), loc[0]
	}
	return best
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

// SetName returns the published name of a series.
func SetName(series int) string {
	if name, ok := SetNames[series]; ok {
		return name
	}
	return UnknownSet
}

// Slug turns a display name into its URL form: spaces become dashes and
// apostrophes are dropped.
func Slug(name string) string {
	s := strings.ReplaceAll(name, " - ", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "'", "")
}
