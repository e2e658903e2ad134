// Package langs resolves free-form language input to canonical names.
//
// It works with the following standards:
//   - ISO 639-1: 2-letter codes
//   - ISO 639-2/B: 3-letter codes with English names
//
// The code table is embedded at build time, so the resolver has no runtime
// dependencies and never fails to load.
package langs

import (
	"strings"
	"unicode/utf8"

	_ "embed"
)

//go:embed language-codes.csv
var languageCodesCSV string

type entry struct {
	key  string // lowercased short code or long name
	long string // canonical long name
}

// Resolver maps user input (short code, long name, or a fragment of a long
// name) to a canonical language name.
type Resolver struct {
	index map[string]string
	order []entry
}

// New parses the embedded code table and returns a ready Resolver.
func New() *Resolver {
	r := &Resolver{index: make(map[string]string)}

	for _, line := range strings.Split(languageCodesCSV, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		short2, short3 := parts[0], parts[1]

		longs := strings.ReplaceAll(parts[2], `"`, "")
		mainLong := strings.TrimSpace(strings.SplitN(longs, ";", 2)[0])

		r.add(short2, mainLong)
		r.add(short3, mainLong)
		for _, long := range strings.Split(longs, ";") {
			r.add(strings.ToLower(strings.TrimSpace(long)), mainLong)
		}
	}

	return r
}

func (r *Resolver) add(key, long string) {
	if _, ok := r.index[key]; !ok {
		r.order = append(r.order, entry{key: key, long: long})
	}
	r.index[key] = long
}

// Resolve returns the canonical name for the given free-form input, or ""
// when the input cannot be recognized.
//
// Matching is case-insensitive and tries, in order: exact short code, exact
// long name, substring of a long name. The substring scan walks entries in
// code-table order and the first hit wins. Inputs shorter than two
// characters never resolve.
//
// When full is false the matched key is returned instead of the canonical
// long name (e.g. "en" stays "en").
func (r *Resolver) Resolve(input string, full bool) string {
	if utf8.RuneCountInString(input) < 2 {
		return ""
	}

	needle := strings.ToLower(input)

	if long, ok := r.index[needle]; ok {
		if full {
			return long
		}
		return needle
	}

	for _, e := range r.order {
		if strings.Contains(strings.ToLower(e.long), needle) {
			if full {
				return e.long
			}
			return e.key
		}
	}

	return ""
}
