package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	advisor "github.com/shridharrathore/advisor-gpt-mvp"
)

var (
	sectionHeaderRe = regexp.MustCompile(`(?m)^## (.+)$`)
	severityRe      = regexp.MustCompile(`(?i)\*\*Severity:\*\*\s*(\w+)`)
	sectionIDRe     = regexp.MustCompile(`(?i)\*\*Section ID:\*\*\s*(\w+)`)
)

// introSectionID is the fixed identifier for the synthetic leading section.
const introSectionID = "introduction"

// ExtractSections splits a document body into titled sections at level-2
// markdown headers. Content before the first header becomes a synthetic
// "Introduction" section when it is not just whitespace. Each section's
// content is scanned for explicit severity and section-identifier
// annotations; when no identifier is present one is derived from the
// title, with duplicate slugs disambiguated by a numeric suffix.
func ExtractSections(body string) []advisor.Section {
	var sections []advisor.Section
	used := map[string]int{}

	locs := sectionHeaderRe.FindAllStringSubmatchIndex(body, -1)

	var leading string
	if len(locs) == 0 {
		leading = body
	} else {
		leading = body[:locs[0][0]]
	}
	if strings.TrimSpace(leading) != "" {
		sections = append(sections, advisor.Section{
			Title:     "Introduction",
			SectionID: introSectionID,
			Content:   strings.TrimSpace(leading),
		})
		used[introSectionID] = 1
	}

	for i, loc := range locs {
		title := strings.TrimSpace(body[loc[2]:loc[3]])
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(body[loc[1]:end])

		id := extractSectionID(content)
		if id == "" {
			id = uniqueSlug(title, used)
		} else {
			used[id]++
		}

		sections = append(sections, advisor.Section{
			Title:     title,
			SectionID: id,
			Content:   content,
			Severity:  extractSeverity(content),
		})
	}

	return sections
}

// extractSeverity finds a bolded "Severity:" annotation and returns the
// following word, lowercased. Returns "" when absent.
func extractSeverity(content string) string {
	m := severityRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// extractSectionID finds a bolded "Section ID:" annotation and returns
// the following token verbatim. Returns "" when absent.
func extractSectionID(content string) string {
	m := sectionIDRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

// uniqueSlug derives a section identifier from the title and records it,
// suffixing a counter when the slug has been seen before.
func uniqueSlug(title string, used map[string]int) string {
	slug := slugify(title)
	used[slug]++
	if n := used[slug]; n > 1 {
		slug = slug + "_" + strconv.Itoa(n)
		used[slug]++
	}
	return slug
}

// foldDiacritics strips combining marks so accented titles slug cleanly.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify lowercases a title and replaces spaces with underscores.
func slugify(title string) string {
	if folded, _, err := transform.String(foldDiacritics, title); err == nil {
		title = folded
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
}
