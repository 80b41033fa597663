package embed

import (
	"sort"
	"strings"
)

const minKeywordLen = 4

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "to": {}, "is": {}, "it": {}, "that": {}, "this": {},
	"with": {}, "as": {}, "was": {}, "were": {}, "by": {}, "be": {},
	"are": {}, "at": {}, "from": {},
}

// ExtractKeywords returns the lowercased keyword tokens of text: cleaned
// words of at least four characters that are not stopwords, plus the
// underscore-joined bigrams of consecutive kept words. The result is
// sorted and duplicate-free; empty input yields nil.
func ExtractKeywords(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	kept := make([]string, 0, 8)
	for _, token := range tokenize(text) {
		token = strings.Trim(token, "-_'")
		if len(token) < minKeywordLen {
			continue
		}
		if _, stop := stopwords[token]; stop {
			continue
		}
		kept = append(kept, token)
	}
	set := make(map[string]struct{}, len(kept)*2)
	for _, k := range kept {
		set[k] = struct{}{}
	}
	for i := 0; i+1 < len(kept); i++ {
		set[kept[i]+"_"+kept[i+1]] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
