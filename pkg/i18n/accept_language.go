package i18n

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// maxAcceptLanguageLength prevents DoS attacks through oversized Accept-Language headers.
const maxAcceptLanguageLength = 4096

// Built-in tail of every preference chain, lowest priority last.
const (
	TagAll  = "all"
	TagEN   = "en"
	TagENUS = "en-us"
)

// DefaultChain is the fallback appended to every preference chain.
var DefaultChain = []string{TagAll, TagEN, TagENUS}

// tagPattern matches a two-letter language with an optional variant separated by
// '-' or '_'.
var tagPattern = regexp.MustCompile(`^([A-Za-z]{2})(?:[-_]([A-Za-z0-9_-]+))?$`)

// preference is a single parsed Accept-Language entry.
type preference struct {
	language string
	variant  string
	quality  float64
	sequence int
}

// tags returns the entry's tags from most to least specific.
func (p preference) tags() []string {
	if p.variant == "" {
		return []string{p.language}
	}
	return []string{p.language + "-" + p.variant, p.language}
}

// PreferenceChain turns an Accept-Language style header into an ordered list of locale
// tags. The first element is the most preferred tag; the list always ends with
// DefaultChain.
//
// Entries are ordered by quality value (highest first); entries with equal quality keep
// their declaration order. A variant tag ("zh-tw") is placed ahead of its bare language
// ("zh"). Entries that cannot be parsed are dropped.
//
// Example:
//
//	PreferenceChain("en-us;q=0.5, fr;q=0.9")
//	// [fr en-us en all en en-us]
func PreferenceChain(header string) []string {
	prefs := parsePreferences(header)

	slices.SortStableFunc(prefs, func(a, b preference) int {
		if c := cmp.Compare(b.quality, a.quality); c != 0 {
			return c
		}
		return cmp.Compare(a.sequence, b.sequence)
	})

	chain := make([]string, 0, 2*len(prefs)+len(DefaultChain))
	seen := make(map[string]struct{}, 2*len(prefs))
	for _, p := range prefs {
		for _, tag := range p.tags() {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			chain = append(chain, tag)
		}
	}

	return append(chain, DefaultChain...)
}

// parsePreferences splits the header into entries, skipping malformed ones.
// The sequence field records the position among all declared entries.
func parsePreferences(header string) []preference {
	if len(header) > maxAcceptLanguageLength {
		header = header[:maxAcceptLanguageLength]
	}

	var prefs []preference
	sequence := 0

	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sequence++

		p, ok := parsePreference(part)
		if !ok {
			continue
		}
		p.sequence = sequence
		prefs = append(prefs, p)
	}

	return prefs
}

// parsePreference parses "lang[-variant][;q=factor][;param...]". An unparsable
// tag rejects the entry; an unparsable quality keeps the default of 1 and an
// out-of-range one is clamped to [0, 1].
func parsePreference(entry string) (preference, bool) {
	tag, params, _ := strings.Cut(entry, ";")

	m := tagPattern.FindStringSubmatch(strings.TrimSpace(tag))
	if m == nil {
		return preference{}, false
	}

	p := preference{
		language: strings.ToLower(m[1]),
		variant:  strings.ToLower(m[2]),
		quality:  1,
	}

	for param := range strings.SplitSeq(params, ";") {
		param = strings.TrimSpace(param)
		value, ok := strings.CutPrefix(param, "q=")
		if !ok {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(q) {
			continue
		}
		p.quality = min(max(q, 0), 1)
	}

	return p, true
}
