// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"strings"
	"unicode"
)

// Stop words ignored when checking for verbatim matches
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {},
}

// tokenizeAndFilter lowercases text, splits it on anything that is not a
// letter, digit or apostrophe, and drops stop words.
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	filtered := words[:0]
	for _, word := range words {
		word = strings.Trim(word, "'")
		if word == "" {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		filtered = append(filtered, word)
	}
	return filtered
}

// containsAllWords reports whether every word appears in document.
// An empty word list never matches.
func containsAllWords(document string, words []string) bool {
	if len(words) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, w := range tokenizeAndFilter(document) {
		present[w] = struct{}{}
	}

	for _, w := range words {
		if _, ok := present[w]; !ok {
			return false
		}
	}
	return true
}
