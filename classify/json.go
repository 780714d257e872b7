// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package classify

import "encoding/json"

// maxCandidates bounds how many opening brackets are tried before giving up.
const maxCandidates = 16

// findJSON returns the first balanced JSON object or array in s that decodes,
// possibly after repairKeyQuotes. Prose, code fences and trailing chatter
// around the value are ignored.
func findJSON(s string) (any, bool) {
	tried := 0
	for start := 0; start < len(s) && tried < maxCandidates; start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		tried++

		end, ok := balancedEnd(s, start)
		if !ok {
			continue
		}
		if v, ok := decode(s[start:end]); ok {
			return v, true
		}
	}
	return nil, false
}

// balancedEnd returns the index just past the bracket that closes s[start].
// Brackets inside string literals are skipped, honouring escapes.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func decode(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}
	repaired := repairKeyQuotes(raw)
	if repaired == raw {
		return nil, false
	}
	if err := json.Unmarshal([]byte(repaired), &v); err == nil {
		return v, true
	}
	return nil, false
}

// repairKeyQuotes restores the opening quote small models tend to drop from
// object keys, turning `{type": "task"}` into `{"type": "task"}`.
func repairKeyQuotes(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+16)

	for i := 0; i < len(in); {
		ch := in[i]
		out = append(out, ch)
		i++
		if ch != '{' && ch != ',' {
			continue
		}

		for i < len(in) && isSpace(in[i]) {
			out = append(out, in[i])
			i++
		}
		if i >= len(in) || !isLetter(in[i]) {
			continue
		}

		keyStart := i
		for i < len(in) && (isLetter(in[i]) || in[i] == '_') {
			i++
		}
		if i+1 < len(in) && in[i] == '"' && in[i+1] == ':' {
			out = append(out, '"')
		}
		out = append(out, in[keyStart:i]...)
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
