package providers

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortedKeys returns the keys of m in English collation order, so "Lucia" and
// "lucia: Crimson Abyss" sort the way a reader expects.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	collate.New(language.English).SortStrings(keys)

	return keys
}

// Pick returns want when it is one of the options, otherwise the first option.
func Pick(options []string, want string) string {
	for _, o := range options {
		if o == want {
			return o
		}
	}
	if len(options) == 0 {
		return ""
	}

	return options[0]
}
