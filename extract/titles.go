package extract

import (
	"regexp"
	"strings"
)

// Normalized coaching titles. Every StaffRecord title is one of these.
const (
	TitleHeadCoach         = "Head Coach"
	TitleAssociateHead     = "Associate Head Coach"
	TitleAssistantCoach    = "Assistant Coach"
	TitleVolunteerCoach    = "Volunteer Coach"
	TitleGraduateAssistant = "Graduate Assistant Coach"
	TitleRecruitingCoord   = "Recruiting Coordinator"
	TitleAthleticsDirector = "Athletics Director"
	TitleStrengthCoach     = "Strength & Conditioning Coach"
)

// DefaultSport and DefaultTitle apply when no matcher fires near a name.
const (
	DefaultSport = "General Athletics"
	DefaultTitle = TitleAssistantCoach
)

// titleMatcher maps a text pattern onto a normalized title. Matchers run in
// order and the first hit wins, so more specific titles MUST precede more
// general ones ("Associate Head Coach" before "Head Coach", otherwise the
// general pattern misclassifies the specific one).
type titleMatcher struct {
	re    *regexp.Regexp
	title string
}

var titleMatchers = []titleMatcher{
	{regexp.MustCompile(`(?i)associate\s+head\s+(?:[\w'&.-]+\s+){0,3}coach`), TitleAssociateHead},
	{regexp.MustCompile(`(?i)graduate\s+assistant`), TitleGraduateAssistant},
	{regexp.MustCompile(`(?i)volunteer\s+(?:[\w'&.-]+\s+){0,3}coach`), TitleVolunteerCoach},
	{regexp.MustCompile(`(?i)strength\s*(?:&|and)\s*conditioning`), TitleStrengthCoach},
	{regexp.MustCompile(`(?i)recruiting\s+coordinator`), TitleRecruitingCoord},
	{regexp.MustCompile(`(?i)(?:athletics?\s+director|director\s+of\s+athletics)`), TitleAthleticsDirector},
	{regexp.MustCompile(`(?i)(?:assistant|asst\.?)\s+(?:[\w'&.-]+\s+){0,3}coach`), TitleAssistantCoach},
	{regexp.MustCompile(`(?i)head\s+(?:[\w'&.-]+\s+){0,3}coach`), TitleHeadCoach},
	{regexp.MustCompile(`(?i)interim\s+(?:[\w'&.-]+\s+){0,3}coach`), TitleHeadCoach},
}

// sportMatcher maps sport keywords onto a canonical sport label. First
// match wins; multi-word sports precede substrings of themselves.
type sportMatcher struct {
	re    *regexp.Regexp
	sport string
}

var sportMatchers = []sportMatcher{
	{regexp.MustCompile(`(?i)football`), "Football"},
	{regexp.MustCompile(`(?i)basketball`), "Basketball"},
	{regexp.MustCompile(`(?i)baseball`), "Baseball"},
	{regexp.MustCompile(`(?i)softball`), "Softball"},
	{regexp.MustCompile(`(?i)soccer`), "Soccer"},
	{regexp.MustCompile(`(?i)volleyball`), "Volleyball"},
	{regexp.MustCompile(`(?i)track\s*(?:&|and)\s*field`), "Track and Field"},
	{regexp.MustCompile(`(?i)cross\s*country`), "Cross Country"},
	{regexp.MustCompile(`(?i)swimming`), "Swimming & Diving"},
	{regexp.MustCompile(`(?i)tennis`), "Tennis"},
	{regexp.MustCompile(`(?i)golf`), "Golf"},
	{regexp.MustCompile(`(?i)lacrosse`), "Lacrosse"},
	{regexp.MustCompile(`(?i)wrestling`), "Wrestling"},
	{regexp.MustCompile(`(?i)hockey`), "Hockey"},
	{regexp.MustCompile(`(?i)gymnastics`), "Gymnastics"},
	{regexp.MustCompile(`(?i)rowing`), "Rowing"},
}

// facultyMarkers disqualify a position unless a coaching term co-occurs.
var facultyMarkers = []string{
	"professor", "lecturer", "advisor", "adviser", "administrator",
	"faculty", "dean", "registrar", "instructor", "counselor", "librarian",
	"chair of", "department of",
}

// coachingTerms mark a position as coaching staff.
var coachingTerms = []string{
	"coach", "coaching", "recruiting coordinator", "athletics director",
	"athletic director", "director of athletics", "strength",
}

// NormalizeTitle maps free-form title text onto the closed set of coaching
// titles. Returns DefaultTitle when nothing matches.
func NormalizeTitle(text string) string {
	for _, m := range titleMatchers {
		if m.re.MatchString(text) {
			return m.title
		}
	}
	return DefaultTitle
}

// MatchTitle is like NormalizeTitle but reports whether any matcher fired.
func MatchTitle(text string) (string, bool) {
	for _, m := range titleMatchers {
		if m.re.MatchString(text) {
			return m.title, true
		}
	}
	return DefaultTitle, false
}

// MatchSport returns the first sport category found in the text, or
// DefaultSport when none matches.
func MatchSport(text string) string {
	for _, m := range sportMatchers {
		if m.re.MatchString(text) {
			return m.sport
		}
	}
	return DefaultSport
}

// IsCoachingPosition reports whether a raw position label belongs to
// coaching staff. Labels carrying faculty or administrative markers are
// rejected unless they also explicitly contain a coaching term — academic
// staff never become StaffRecords.
func IsCoachingPosition(label string) bool {
	l := strings.ToLower(label)
	for _, term := range coachingTerms {
		if strings.Contains(l, term) {
			return true
		}
	}
	for _, marker := range facultyMarkers {
		if strings.Contains(l, marker) {
			return false
		}
	}
	// No faculty marker and no coaching term: plausible when the label is
	// a bare sport or empty fragment; the context extractor supplies the
	// default title downstream.
	return true
}
