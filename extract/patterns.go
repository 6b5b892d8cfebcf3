package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Candidate is an unvalidated name/title pair yielded by a content pattern,
// prior to cleaning and context resolution.
type Candidate struct {
	Name       string
	TitleHint  string
	PhotoURL   string
	Confidence float64
}

// ContentPattern is one extraction pattern run against a content blob.
// Patterns are pure: Match never mutates state, so the cascade order alone
// determines precedence.
type ContentPattern interface {
	Name() string
	Match(content string) []Candidate
}

// DefaultPatterns returns the extraction cascade in precedence order.
// Structured layouts (markdown tables, HTML markup) come first because they
// carry the strongest name/title pairing signal; loose prose forms run last.
func DefaultPatterns() []ContentPattern {
	return []ContentPattern{
		&tableLinkPattern{},
		&tableRowPattern{},
		&htmlStaffPattern{},
		&titleColonPattern{},
		&nameDashTitlePattern{},
		&nameLinePattern{},
	}
}

// namePart matches one capitalized word of a person name.
const namePart = `[A-Z][\w.'-]*`

// ── Markdown table row with a linked name ───────────────────────────

// tableLinkPattern matches rows like:
//
//	| [Jane Doe](https://site/roster/jane) | Head Basketball Coach |
//
// The link target frequently doubles as the bio/profile URL.
type tableLinkPattern struct{}

var tableLinkRe = regexp.MustCompile(`(?m)^\s*\|[^|\n]*?\[([^\]]+)\]\(([^)]*)\)[^|\n]*\|\s*([^|\n]+?)\s*\|`)

func (*tableLinkPattern) Name() string { return "table_link" }

func (*tableLinkPattern) Match(content string) []Candidate {
	var out []Candidate
	for _, m := range tableLinkRe.FindAllStringSubmatch(content, -1) {
		out = append(out, Candidate{
			Name:       m[1],
			TitleHint:  m[3],
			Confidence: 0.8,
		})
	}
	return out
}

// ── Plain markdown/pipe table row ───────────────────────────────────

type tableRowPattern struct{}

var tableRowRe = regexp.MustCompile(`(?m)^\s*\|\s*(` + namePart + `(?:\s+` + namePart + `)+)\s*\|\s*([^|\n]+?)\s*\|`)

func (*tableRowPattern) Name() string { return "table_row" }

func (*tableRowPattern) Match(content string) []Candidate {
	var out []Candidate
	for _, m := range tableRowRe.FindAllStringSubmatch(content, -1) {
		out = append(out, Candidate{
			Name:       m[1],
			TitleHint:  m[2],
			Confidence: 0.75,
		})
	}
	return out
}

// ── "Title: Name" prose form ────────────────────────────────────────

type titleColonPattern struct{}

var titleColonRe = regexp.MustCompile(
	`(?im)((?:associate\s+head|head|assistant|asst\.?|volunteer|interim)\s+(?:[\w'&.-]+\s+){0,3}coach|recruiting\s+coordinator|athletics?\s+director)\s*:\s*(` + namePart + `(?:\s+` + namePart + `)+)`)

func (*titleColonPattern) Name() string { return "title_colon" }

func (*titleColonPattern) Match(content string) []Candidate {
	var out []Candidate
	for _, m := range titleColonRe.FindAllStringSubmatch(content, -1) {
		out = append(out, Candidate{
			Name:       m[2],
			TitleHint:  m[1],
			Confidence: 0.7,
		})
	}
	return out
}

// ── "Name - Title" prose form ───────────────────────────────────────

type nameDashTitlePattern struct{}

var nameDashRe = regexp.MustCompile(
	`(?m)\b(` + namePart + `(?:\s+` + namePart + `)+)\s*[-–—]\s*([A-Za-z][^,\n|]{0,60}?(?:[Cc]oach|[Cc]oordinator|[Dd]irector)(?:[^,\n|]*)?)`)

func (*nameDashTitlePattern) Name() string { return "name_dash_title" }

func (*nameDashTitlePattern) Match(content string) []Candidate {
	var out []Candidate
	for _, m := range nameDashRe.FindAllStringSubmatch(content, -1) {
		out = append(out, Candidate{
			Name:       m[1],
			TitleHint:  m[2],
			Confidence: 0.7,
		})
	}
	return out
}

// ── Structured HTML markup ──────────────────────────────────────────

// htmlStaffPattern runs only when the blob still looks like HTML (strategies
// normally hand the engine markdown/text, but remote APIs sometimes return
// raw markup). It walks table rows and common staff-card layouts via
// goquery.
type htmlStaffPattern struct{}

var staffCardSelectors = []string{
	".staff-member", ".coach-card", ".s-person-card", ".sidearm-roster-player",
	"[class*='staff-directory']", "[class*='coach']",
}

func (*htmlStaffPattern) Name() string { return "html_markup" }

func (*htmlStaffPattern) Match(content string) []Candidate {
	if !strings.Contains(content, "<") || !strings.Contains(content, ">") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var out []Candidate

	// Table rows: first cell name, any later cell carrying a coaching word
	// is the title.
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Text())
		var title string
		cells.Slice(1, cells.Length()).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			text := strings.TrimSpace(cell.Text())
			if coachingKeywordRe.MatchString(text) {
				title = text
				return false
			}
			return true
		})
		if name == "" || title == "" {
			return
		}
		photo, _ := row.Find("img").First().Attr("src")
		out = append(out, Candidate{Name: name, TitleHint: title, PhotoURL: photo, Confidence: 0.8})
	})

	// Staff-card layouts: a name element and a title element inside one
	// card container.
	for _, sel := range staffCardSelectors {
		doc.Find(sel).Each(func(_ int, card *goquery.Selection) {
			name := strings.TrimSpace(card.Find("h2, h3, h4, .name, [class*='name']").First().Text())
			title := strings.TrimSpace(card.Find(".title, .position, [class*='title'], [class*='position']").First().Text())
			if name == "" || title == "" {
				return
			}
			photo, _ := card.Find("img").First().Attr("src")
			out = append(out, Candidate{Name: name, TitleHint: title, PhotoURL: photo, Confidence: 0.8})
		})
	}

	return out
}

// ── One-name-per-line list layout ───────────────────────────────────

// nameLinePattern matches list layouts where a line holds only a person
// name and the following non-empty line holds their position.
type nameLinePattern struct{}

var bareNameRe = regexp.MustCompile(`^\s*(` + namePart + `(?:\s+` + namePart + `){1,3})\s*$`)

func (*nameLinePattern) Name() string { return "name_line" }

func (*nameLinePattern) Match(content string) []Candidate {
	lines := strings.Split(content, "\n")
	var out []Candidate
	for i, line := range lines {
		m := bareNameRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		// Find the next non-empty line; it must read like a position.
		for j := i + 1; j < len(lines) && j <= i+2; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				continue
			}
			if coachingKeywordRe.MatchString(next) {
				out = append(out, Candidate{Name: m[1], TitleHint: next, Confidence: 0.7})
			}
			break
		}
	}
	return out
}
