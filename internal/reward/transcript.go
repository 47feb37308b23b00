// internal/reward/transcript.go
//
// Transcript types and the XML field parser used to read agent replies.
//
// An agent reply looks like
//
//	<think>…</think>
//	<guess>[crane]</guess>
//
// The parser extracts named fields; the answer field of the last assistant
// message that has one is the agent's final answer.

package reward

import (
	"regexp"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript is an ordered list of messages.
type Transcript []Message

// ByRole returns the messages authored by role, in order.
func (t Transcript) ByRole(role string) []Message {
	var out []Message
	for _, m := range t {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// Parser extracts XML-style fields from agent replies.
type Parser struct {
	Fields      []string
	AnswerField string
	patterns    map[string]*regexp.Regexp
}

// NewParser builds a parser for fields; answerField must be one of them.
func NewParser(answerField string, fields ...string) *Parser {
	p := &Parser{Fields: fields, AnswerField: answerField, patterns: make(map[string]*regexp.Regexp, len(fields))}
	for _, f := range fields {
		p.patterns[f] = regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(f) + `>\s*(.*?)\s*</` + regexp.QuoteMeta(f) + `>`)
	}
	if _, ok := p.patterns[answerField]; !ok {
		p.patterns[answerField] = regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(answerField) + `>\s*(.*?)\s*</` + regexp.QuoteMeta(answerField) + `>`)
	}
	return p
}

// ThinkParser reads <think> and <guess>.
func ThinkParser() *Parser { return NewParser("guess", "think", "guess") }

// GuessParser reads <guess> only.
func GuessParser() *Parser { return NewParser("guess", "guess") }

// Field returns the last occurrence of field in content.
func (p *Parser) Field(content, field string) (string, bool) {
	re, ok := p.patterns[field]
	if !ok {
		return "", false
	}
	all := re.FindAllStringSubmatch(content, -1)
	if len(all) == 0 {
		return "", false
	}
	return strings.TrimSpace(all[len(all)-1][1]), true
}

// ParseAnswer returns the answer field of the latest assistant message that
// carries one.
func (p *Parser) ParseAnswer(t Transcript) (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role != RoleAssistant {
			continue
		}
		if v, ok := p.Field(t[i].Content, p.AnswerField); ok {
			return v, true
		}
	}
	return "", false
}
