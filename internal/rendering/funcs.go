package rendering

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/jonathan/cvmaker/internal/types"
)

var (
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	profilePrefix  = regexp.MustCompile(`^(https?://)?(www\.)?(linkedin\.com/in/|github\.com/)`)
	imageURLPrefix = []string{"data:image/", "https://", "http://", "/"}
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"fullName":       fullName,
		"initials":       initials,
		"initialsSpaced": initialsSpaced,
		"hasBullets":     hasBullets,
		"barWidth":       barWidth,
		"isLast":         func(i, n int) bool { return i == n-1 },
		"externalURL":    externalURL,
		"githubURL":      githubURL,
		"handle":         handle,
		"imageURL":       imageURL,
	}
}

func fullName(d *types.ResumeData) string {
	return d.FullName()
}

// initials returns the upper-case first letters of first and last name, e.g. "JD".
func initials(d *types.ResumeData) string {
	return strings.Join(initialLetters(d), "")
}

// initialsSpaced returns the initials separated by a bar, e.g. "J | D".
func initialsSpaced(d *types.ResumeData) string {
	return strings.Join(initialLetters(d), " | ")
}

func initialLetters(d *types.ResumeData) []string {
	var out []string
	for _, name := range []string{d.FirstName, d.LastName} {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r := []rune(name)
		out = append(out, strings.ToUpper(string(r[0])))
	}
	return out
}

// hasBullets reports whether a responsibilities list has something to show.
// A list whose first entry is blank is treated as empty.
func hasBullets(lines []string) bool {
	return len(lines) > 0 && strings.TrimSpace(lines[0]) != ""
}

// barWidth returns the fill percentage of a level bar; an unset level fills the bar.
func barWidth(level int) int {
	if level <= 0 {
		return 100
	}
	return min(level, 100)
}

// externalURL prefixes a bare host such as "linkedin.com/in/jane" with https://.
func externalURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if schemePattern.MatchString(raw) {
		if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
			return template.URL(raw)
		}
		return ""
	}
	return template.URL("https://" + raw)
}

// githubURL accepts either a bare username or a full profile URL.
func githubURL(raw string) template.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "github.com") {
		return externalURL(raw)
	}
	return template.URL("https://github.com/" + strings.TrimPrefix(raw, "@"))
}

// handle strips the profile prefix from linkedin and github URLs.
func handle(raw string) string {
	return strings.TrimSuffix(profilePrefix.ReplaceAllString(strings.TrimSpace(raw), ""), "/")
}

// imageURL returns the profile picture reference when it is a data URL, an http(s)
// URL or a site-relative path. Anything else renders as no picture.
func imageURL(ref *string) template.URL {
	if ref == nil {
		return ""
	}
	v := strings.TrimSpace(*ref)
	for _, prefix := range imageURLPrefix {
		if strings.HasPrefix(v, prefix) {
			return template.URL(v)
		}
	}
	return ""
}
