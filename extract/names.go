package extract

import (
	"strings"
	"unicode"
)

// nameDenylist contains lowercase words that disqualify a candidate name.
// These are role words, page chrome, and social-network labels that the
// tabular patterns habitually mistake for people. Kept as package data so
// tests can extend it via NewNameValidator.
var nameDenylist = []string{
	// role / department words
	"coach", "coaches", "coaching", "staff", "director", "athletics",
	"assistant", "associate", "head", "coordinator", "trainer", "manager",
	"department", "administration", "recruiting", "roster", "schedule",
	// page chrome
	"menu", "loading", "search", "login", "logout", "home", "news",
	"tickets", "shop", "store", "donate", "contact", "about", "more",
	"skip", "navigation", "footer", "header", "privacy", "terms",
	// social networks
	"facebook", "twitter", "instagram", "youtube", "tiktok", "linkedin",
}

// leadingArticles are stripped from the front of a raw span.
var leadingArticles = []string{"the ", "a ", "an "}

// honorifics are stripped from the front of a cleaned name.
var honorifics = []string{"dr.", "dr", "mr.", "mr", "mrs.", "mrs", "ms.", "ms", "prof.", "prof", "coach"}

// trailingSuffixes are role/department tails cut off after a separator.
var trailingSuffixes = []string{
	"jr.", "jr", "sr.", "sr", "ii", "iii", "iv",
}

// NameValidator normalizes and accepts or rejects candidate person names.
// It is a pure value with no side effects: the same input always yields the
// same output, which is what makes extraction precision testable.
type NameValidator struct {
	denylist map[string]struct{}
}

// NewNameValidator builds a validator from the default denylist plus any
// extra terms (lowercased).
func NewNameValidator(extra ...string) *NameValidator {
	set := make(map[string]struct{}, len(nameDenylist)+len(extra))
	for _, w := range nameDenylist {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &NameValidator{denylist: set}
}

// Clean normalizes a raw text span into a person name. It returns the
// cleaned name and true when the span passes every rule, or "" and false
// when the span is rejected.
//
// Rules, in order: strip leading articles and honorifics, cut trailing
// role/department fragments after a comma, collapse whitespace, require at
// least two capitalized parts, reject denylisted words, enforce length
// [4,40], reject digits and disallowed punctuation.
func (v *NameValidator) Clean(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Anything after a comma is a role or department tail ("Jane Doe,
	// Head Coach"), never part of the name.
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}

	lower := strings.ToLower(s)
	for _, art := range leadingArticles {
		if strings.HasPrefix(lower, art) {
			s = s[len(art):]
			break
		}
	}

	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", false
	}

	// Honorific prefix ("Dr. Amanda Lee" → "Amanda Lee").
	if len(parts) > 2 {
		if _, ok := matchWord(honorifics, parts[0]); ok {
			parts = parts[1:]
		}
	}

	// Generational suffix at the tail is kept out of the part count but
	// not out of the name ("Cal Ripken Jr." stays intact).
	countable := parts
	if len(parts) > 2 {
		if _, ok := matchWord(trailingSuffixes, parts[len(parts)-1]); ok {
			countable = parts[:len(parts)-1]
		}
	}

	if len(countable) < 2 {
		return "", false
	}

	for _, p := range countable {
		first := []rune(p)[0]
		if !unicode.IsUpper(first) {
			return "", false
		}
		if _, bad := v.denylist[strings.ToLower(strings.Trim(p, "."))]; bad {
			return "", false
		}
		for _, r := range p {
			if unicode.IsDigit(r) {
				return "", false
			}
			if !unicode.IsLetter(r) && r != '\'' && r != '-' && r != '.' {
				return "", false
			}
		}
	}

	name := strings.Join(parts, " ")
	if len(name) < 4 || len(name) > 40 {
		return "", false
	}
	return name, true
}

func matchWord(list []string, word string) (string, bool) {
	w := strings.ToLower(word)
	for _, l := range list {
		if w == l {
			return l, true
		}
	}
	return "", false
}
