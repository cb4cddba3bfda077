package listening

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	videoIDPattern = regexp.MustCompile(`(?:v=|youtu\.be/)([A-Za-z0-9_-]{11})`)
	videoIDExact   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	numberBreak  = regexp.MustCompile(`(\d+)\s*[\r\n]+\s*番`)
	problemMark  = regexp.MustCompile(`(問題[1-7])`)
	chooseNumber = regexp.MustCompile(`(選んでください)(\s*)(\d+番)`)
	sectionStart = regexp.MustCompile(`\n問題[1-7]`)
	sectionNum   = regexp.MustCompile(`問題([1-7])`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// ExtractVideoID returns the 11 character video id in a watch or short URL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ValidVideoID reports whether id is a bare 11 character video id. Artifact
// paths are built from it, so nothing else is accepted.
func ValidVideoID(id string) bool {
	return videoIDExact.MatchString(id)
}

// Section is one numbered part of a listening test transcript.
type Section struct {
	Number int
	Text   string
}

// SplitSections breaks a transcript into its 問題 sections. Parts without a
// section number are dropped; a repeated number keeps the last part.
func SplitSections(text string) []Section {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n", "　", " ").Replace(text)
	text = numberBreak.ReplaceAllString(text, "${1}番")
	text = problemMark.ReplaceAllString(text, "\n${1}")
	text = chooseNumber.ReplaceAllString(text, "${1}\n${3}")

	var parts []string
	prev := 0
	for _, loc := range sectionStart.FindAllStringIndex(text, -1) {
		parts = append(parts, text[prev:loc[0]])
		prev = loc[0] + 1
	}
	parts = append(parts, text[prev:])

	var sections []Section
	index := make(map[int]int)
	for _, part := range parts {
		m := sectionNum.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		s := Section{Number: n, Text: strings.TrimSpace(part)}
		if i, ok := index[n]; ok {
			sections[i] = s
			continue
		}
		index[n] = len(sections)
		sections = append(sections, s)
	}
	return sections
}

// CleanText collapses whitespace runs, ideographic spaces included.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "　", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
