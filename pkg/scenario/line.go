package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyLine is returned by ParseLine for blank and comment lines.
var ErrEmptyLine = errors.New("empty line")

const metaPrefix = "meta."

// ParseLine parses the one-line form of a step used by the REPL:
//
//	op key=value key="quoted value" meta.key=value
//
// Lines starting with '#' are comments.
func ParseLine(line string) (Step, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Step{}, ErrEmptyLine
	}

	words, err := splitWords(line)
	if err != nil {
		return Step{}, err
	}

	step := Step{Op: words[0]}
	for _, w := range words[1:] {
		key, value, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return Step{}, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidScenario, w)
		}
		if err := step.setArg(key, value); err != nil {
			return Step{}, err
		}
	}
	if err := step.Validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}

func (s *Step) setArg(key, value string) error {
	if k, ok := strings.CutPrefix(key, metaPrefix); ok {
		if k == "" {
			return fmt.Errorf("%w: empty metadata key", ErrInvalidScenario)
		}
		s.Metadata.Set(k, value)
		return nil
	}

	switch key {
	case "name":
		s.Name = value
	case "title":
		s.Title = &value
	case "description":
		s.Description = &value
	case "entity":
		s.Entity = value
	case "request":
		s.Request = value
	case "target":
		s.Target = value
	case "kind":
		s.Kind = value
	case "as":
		s.As = value
	case "expect":
		s.Expect = value
	case "granted":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: granted must be a boolean, got %q", ErrInvalidScenario, value)
		}
		s.Granted = b
	default:
		return fmt.Errorf("%w: unknown argument %q", ErrInvalidScenario, key)
	}
	return nil
}

// splitWords splits on unquoted whitespace. Single and double quotes group;
// inside double quotes a backslash escapes the next character.
func splitWords(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"':
				escaped = true
			default:
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidScenario)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
