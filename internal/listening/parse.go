package listening

import (
	"fmt"
	"regexp"
	"strings"
)

// Question is a structured listening question. JSON keys match the block
// labels so stored structures read back unchanged.
type Question struct {
	Introduction  string   `json:"Introduction"`
	Conversation  string   `json:"Conversation"`
	Question      string   `json:"Question"`
	Options       []string `json:"Options"`
	CorrectAnswer string   `json:"CorrectAnswer,omitempty"`
}

func (q *Question) empty() bool {
	return q.Introduction == "" && q.Conversation == "" && q.Question == "" && len(q.Options) == 0
}

// Document is the text embedded for similarity search.
func (q *Question) Document() string {
	return fmt.Sprintf("Introduction: %s\nConversation: %s\nQuestion: %s\nOptions: %s",
		q.Introduction, q.Conversation, q.Question, strings.Join(q.Options, "; "))
}

func isOptionLine(line string) bool {
	for _, p := range []string{"1.", "2.", "3.", "4."} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ParseQuestions reads structured blocks line by line. A field label takes
// the following line (Conversation and Options take a run of lines) and
// </question> closes a record if any field was set.
func ParseQuestions(text string) []Question {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var questions []Question
	var cur Question

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "<question>"):
			cur = Question{}
		case strings.HasPrefix(line, "Introduction:"):
			if i+1 < len(lines) {
				i++
				cur.Introduction = strings.TrimSpace(lines[i])
			}
		case strings.HasPrefix(line, "Conversation:"):
			var conv []string
			for i+1 < len(lines) && !strings.HasPrefix(lines[i+1], "Question:") {
				i++
				conv = append(conv, strings.TrimSpace(lines[i]))
			}
			cur.Conversation = strings.TrimSpace(strings.Join(conv, "\n"))
		case strings.HasPrefix(line, "Question:"):
			if i+1 < len(lines) {
				i++
				cur.Question = strings.TrimSpace(lines[i])
			}
		case strings.HasPrefix(line, "Options:"):
			options := []string{}
			for i+1 < len(lines) && isOptionLine(strings.TrimSpace(lines[i+1])) {
				i++
				options = append(options, strings.TrimSpace(strings.TrimSpace(lines[i])[2:]))
			}
			cur.Options = options
		case strings.HasPrefix(line, "</question>"):
			if !cur.empty() {
				questions = append(questions, cur)
			}
			cur = Question{}
		}
	}
	return questions
}

var (
	questionBlock = regexp.MustCompile(`<question>([\s\S]*?)</question>`)
	labelLine     = regexp.MustCompile(`^\s*(?:Introduction|Conversation|Question|Options|CorrectAnswer):`)
	optionLine    = regexp.MustCompile(`^[1-4]\.`)
	correctAnswer = regexp.MustCompile(`CorrectAnswer:\s*([1-4])`)
)

var fieldLabels = map[string]*regexp.Regexp{
	"Introduction": regexp.MustCompile(`Introduction:[ \t]*`),
	"Conversation": regexp.MustCompile(`Conversation:[ \t]*`),
	"Question":     regexp.MustCompile(`Question:[ \t]*`),
	"Options":      regexp.MustCompile(`Options:[ \t]*`),
}

// blockField returns the text after the first "label:" up to the next line
// that starts another label.
func blockField(block, label string) string {
	loc := fieldLabels[label].FindStringIndex(block)
	if loc == nil {
		return ""
	}
	lines := strings.Split(block[loc[1]:], "\n")
	var out []string
	for i, line := range lines {
		if i > 0 && labelLine.MatchString(line) {
			break
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// ParseGeneratedQuestion extracts a single question block from a completion.
// It reports false when a field is empty or the answer is not one of the
// listed option numbers.
func ParseGeneratedQuestion(text string) (*Question, bool) {
	m := questionBlock.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	block := m[1]

	q := &Question{
		Introduction: blockField(block, "Introduction"),
		Conversation: blockField(block, "Conversation"),
		Question:     blockField(block, "Question"),
	}
	for _, line := range strings.Split(blockField(block, "Options"), "\n") {
		opt := strings.TrimSpace(line)
		if optionLine.MatchString(opt) {
			q.Options = append(q.Options, strings.TrimSpace(opt[2:]))
		}
	}
	if a := correctAnswer.FindStringSubmatch(block); a != nil {
		q.CorrectAnswer = a[1]
	}

	if q.Introduction == "" || q.Conversation == "" || q.Question == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
		return nil, false
	}
	if int(q.CorrectAnswer[0]-'0') > len(q.Options) {
		return nil, false
	}
	return q, true
}
