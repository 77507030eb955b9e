// Package classify maps the free-text titles of portal feed sessions to
// human-friendly, emoji-labeled display summaries.
//
// Classification is data-driven: the subject table is an ordered list of
// (code, name) pairs loaded from YAML, because match order is semantically
// significant (first code found in a session's text wins). The table ships
// embedded and can be replaced per deployment without a rebuild.
package classify

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed subjects.yaml
var embeddedTable []byte

// Subject is one (code, display name) pair of the classification table.
type Subject struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Table holds the classification rules. Subjects keeps file order; Special
// is the tier-a keyword list for non-course events.
type Table struct {
	Special  []string  `yaml:"special"`
	Subjects []Subject `yaml:"subjects"`
}

// Load reads a classification table. An empty path selects the embedded
// default table.
func Load(path string) (*Table, error) {
	data := embeddedTable
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("classification table: %w", err)
		}
		data = b
	}

	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("classification table: %w", err)
	}
	if len(t.Subjects) == 0 {
		return nil, errors.New("classification table: no subjects defined")
	}
	return &t, nil
}

// dsRe matches "DS" (devoir surveillé) as a standalone word; a bare
// substring test would fire on codes like "DS1104".
var dsRe = regexp.MustCompile(`\bDS\b`)

// codeRe recognizes course-code-shaped tokens (R107, SAE15, ...) in
// normalized text; used only for the unknown-codes diagnostic report.
var codeRe = regexp.MustCompile(`(?:R\d{3}|SAE\d{2,3})`)

// accentFolder strips the accents the portal actually emits. Folding runs
// after upper-casing, so only upper-case forms are listed.
var accentFolder = strings.NewReplacer(
	"É", "E", "È", "E", "Ê", "E", "Ë", "E",
	"À", "A", "Â", "A", "Ä", "A",
	"Î", "I", "Ï", "I",
	"Ô", "O", "Ö", "O",
	"Ù", "U", "Û", "U", "Ü", "U",
	"Ç", "C",
)

// normalizeZone prepares text for substring code search: upper-case, strip
// separators and fold accents so "saé 1.01" and "SAE101" compare equal.
func normalizeZone(s string) string {
	s = strings.ToUpper(s)
	s = accentFolder.Replace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// SpecialEmoji returns the tier-a category emoji for title, and whether any
// special keyword matched at all.
func (t *Table) SpecialEmoji(title string) (string, bool) {
	titleUpper := strings.ToUpper(title)

	matched := false
	for _, kw := range t.Special {
		if strings.Contains(titleUpper, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return "", false
	}

	switch {
	case strings.Contains(titleUpper, "HACK"):
		return "🛠️", true
	case strings.Contains(titleUpper, "SORTIE"), strings.Contains(titleUpper, "VISITE"):
		return "🚌", true
	case strings.Contains(titleUpper, "EXAM"):
		return "🚨", true
	default:
		return "✨", true
	}
}

// SubjectFor searches title+notes for a known subject code and returns its
// display name. First match in table order wins.
func (t *Table) SubjectFor(title, notes string) (string, bool) {
	zone := normalizeZone(title + " " + notes)
	for _, s := range t.Subjects {
		if strings.Contains(zone, s.Code) {
			return s.Name, true
		}
	}
	return "", false
}

// StripAdminPrefix drops the leading administrative segment of titles shaped
// like "BUT RT1 - TP R107", keeping the remainder when it is substantial
// (more than 2 runes). Otherwise the title is returned unchanged.
func StripAdminPrefix(title string) string {
	_, after, found := strings.Cut(title, " - ")
	if !found {
		return title
	}
	after = strings.TrimSpace(after)
	if len([]rune(after)) <= 2 {
		return title
	}
	return after
}

// TypeEmoji classifies the session type (exam, practical, lecture, ...) from
// title and notes. Exam keywords take absolute priority; the title is
// consulted before the notes for everything else. The returned prefix is
// non-empty only for exams ("Examen ").
func TypeEmoji(title, notes string) (emoji, prefix string) {
	titleUpper := strings.ToUpper(title)
	notesUpper := strings.ToUpper(notes)
	zone := titleUpper + " " + notesUpper

	switch {
	case strings.Contains(zone, "EXAM"),
		strings.Contains(zone, "EVALUATION"),
		strings.Contains(zone, "ÉVALUATION"),
		strings.Contains(zone, "PARTIEL"),
		dsRe.MatchString(zone):
		return "🚨", "Examen "
	case strings.Contains(titleUpper, "TP"):
		return "💻", ""
	case strings.Contains(titleUpper, "TD"):
		return "✏️", ""
	case strings.Contains(titleUpper, "CM"), strings.Contains(titleUpper, "AMPHI"):
		return "🎤", ""
	case strings.Contains(titleUpper, "SOUTIEN"):
		return "🆘", ""
	case strings.Contains(titleUpper, "ANGLAIS"):
		return "🇬🇧", ""
	}

	// Title carries no type keyword: fall back to the notes, where some
	// portals put the session type.
	switch {
	case strings.Contains(notesUpper, "TP"):
		return "💻", ""
	case strings.Contains(notesUpper, "TD"):
		return "✏️", ""
	case strings.Contains(notesUpper, "CM"):
		return "🎤", ""
	}

	return "📅", ""
}

// Summary composes the display summary for one session: either the tier-a
// special form "<emoji> <original title>", or "<type-emoji> <subject>" where
// subject is the mapped table name or the prefix-stripped raw title.
// Deterministic for fixed (title, notes) and table; repeated whitespace is
// collapsed.
func (t *Table) Summary(title, notes string) string {
	title = strings.TrimSpace(title)

	if emoji, ok := t.SpecialEmoji(title); ok {
		return collapseSpaces(emoji + " " + title)
	}

	subject, ok := t.SubjectFor(title, notes)
	if !ok {
		subject = StripAdminPrefix(title)
	}

	typeEmoji, prefix := TypeEmoji(title, notes)
	return collapseSpaces(typeEmoji + " " + prefix + subject)
}

// UnknownCodes returns the course-code-shaped tokens found in the given
// texts that have no table entry, deduplicated, in first-seen order. Purely
// diagnostic: it feeds the optional report file.
func (t *Table) UnknownCodes(texts ...string) []string {
	known := make(map[string]bool, len(t.Subjects))
	for _, s := range t.Subjects {
		known[s.Code] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, txt := range texts {
		for _, code := range codeRe.FindAllString(normalizeZone(txt), -1) {
			if known[code] || seen[code] {
				continue
			}
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
