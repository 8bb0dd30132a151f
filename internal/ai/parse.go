package ai

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ExtractJSON pulls the first JSON array or object out of a model
// reply, tolerating markdown fences and surrounding prose.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", errors.New("no JSON payload in reply")
	}
	open := s[start]
	var close byte = ']'
	if open == '{' {
		close = '}'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errors.New("unterminated JSON payload in reply")
}

// ParseQuestions decodes a model reply into intake questions.
func ParseQuestions(raw string) ([]Question, error) {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, errors.New("reply contained no questions")
	}
	return questions, nil
}

// ParseEstimate pulls the first numeric value out of a model reply.
// Replies like "$450", "450.00 USD" or "The estimate is 450" all
// resolve to 450.
func ParseEstimate(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, errors.New("no numeric estimate in reply")
	}
	end := start
	seenDot := false
	for end < len(s) {
		ch := s[end]
		if ch >= '0' && ch <= '9' {
			end++
			continue
		}
		if ch == ',' {
			end++
			continue
		}
		if ch == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	token := strings.ReplaceAll(s[start:end], ",", "")
	token = strings.TrimSuffix(token, ".")
	amount, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, err
	}
	return amount, nil
}
