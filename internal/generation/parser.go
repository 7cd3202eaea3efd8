package generation

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The model is instructed to append its recommended topics as a JSON
// array, preferably in a fenced code block. These patterns pull that
// array back out of free-form prose.
var (
	fencedTopicsRe = regexp.MustCompile("(?s)```json\\s*(\\[.*?\\])\\s*```")
	bareArrayRe    = regexp.MustCompile(`\[.*\]`)
	trailingRecRe  = regexp.MustCompile(`(?is)\s*Recommended lessons:.*$`)
)

// ParseModelOutput splits raw model output into the answer prose and the
// recommended topic titles, in order of preference:
//
//  1. A fenced ```json code block containing a JSON array: parsed as the
//     topics, the whole block removed from the prose.
//  2. Any bracketed array literal that parses as JSON: treated as the
//     topics, the matched substring removed from the prose.
//  3. Neither: the entire text is the answer, zero topics.
//
// A trailing "Recommended lessons:" line is stripped from the answer,
// whitespace trimmed, and topics filtered to non-empty strings. No hard
// cap is applied beyond what the model returned.
func ParseModelOutput(raw string) (answer string, topics []string) {
	answer = raw
	topics = []string{}

	if m := fencedTopicsRe.FindStringSubmatch(raw); m != nil {
		topics = decodeTopics(m[1])
		answer = strings.Replace(raw, m[0], "", 1)
	} else if m := bareArrayRe.FindString(raw); m != "" && json.Valid([]byte(m)) {
		topics = decodeTopics(m)
		answer = strings.Replace(raw, m, "", 1)
	}

	answer = trailingRecRe.ReplaceAllString(answer, "")
	answer = strings.TrimSpace(answer)

	return answer, topics
}

// decodeTopics parses a JSON array and keeps its non-empty string
// elements, trimmed. Anything else in the array is dropped.
func decodeTopics(jsonStr string) []string {
	var elems []interface{}
	if err := json.Unmarshal([]byte(jsonStr), &elems); err != nil {
		return []string{}
	}

	topics := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		topics = append(topics, s)
	}
	return topics
}
