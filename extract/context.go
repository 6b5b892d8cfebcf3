package extract

import (
	"regexp"
	"strings"
)

// Window sizes, in characters each side of the name. Title and sport are
// usually adjacent to the name; contact info can sit a table cell or two
// away, so it gets a wider window.
const (
	titleWindow   = 200
	contactWindow = 300
	keywordWindow = 150
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)

	// coachingKeywordRe marks text as coaching-related. A candidate name
	// must co-occur with one of these within keywordWindow to be accepted.
	coachingKeywordRe = regexp.MustCompile(`(?i)\b(?:coach|coaching|coordinator|athletics?|recruiting|strength\s*(?:&|and)\s*conditioning)\b`)
)

// Context is the field set resolved for a validated name from its
// surrounding text.
type Context struct {
	Sport string
	Title string
	Email string
	Phone string
}

// ExtractContext locates the first occurrence of name in content and
// resolves sport, title, and contact info from bounded windows around it.
// The zero-value defaults (DefaultSport, DefaultTitle) apply when a field's
// matchers find nothing.
func ExtractContext(name, content string) Context {
	ctx := Context{Sport: DefaultSport, Title: DefaultTitle}

	idx := indexFold(content, name)
	if idx < 0 {
		return ctx
	}

	near := window(content, idx, len(name), titleWindow)
	ctx.Sport = MatchSport(near)
	if title, ok := MatchTitle(near); ok {
		ctx.Title = title
	}

	wide := window(content, idx, len(name), contactWindow)
	ctx.Email = emailRe.FindString(wide)
	if phone := phoneRe.FindString(wide); phone != "" {
		ctx.Phone = strings.TrimSpace(phone)
	}

	return ctx
}

// HasCoachingContext reports whether the name co-occurs with a coaching
// keyword inside a bounded window. Names appearing in unrelated page
// furniture (news headlines, donor lists) fail this check.
func HasCoachingContext(name, content string) bool {
	idx := indexFold(content, name)
	if idx < 0 {
		return false
	}
	return coachingKeywordRe.MatchString(window(content, idx, len(name), keywordWindow))
}

// window slices content around [idx, idx+length) padded by radius on each
// side, clamped to the content bounds.
func window(content string, idx, length, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	if start > len(content) {
		start = len(content)
	}
	end := idx + length + radius
	if end > len(content) {
		end = len(content)
	}
	if end < start {
		end = start
	}
	return content[start:end]
}

// indexFold is a case-insensitive strings.Index returning a byte offset
// into haystack itself. Searching a ToLower copy is not equivalent: runes
// whose lowercase form has a different byte length (U+023A "Ⱥ" is 2 bytes,
// its lowercase 3) shift offsets between the copy and the original.
func indexFold(haystack, needle string) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(haystack); i++ {
		if strings.EqualFold(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}
