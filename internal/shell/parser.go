package shell

import (
	"fmt"
	"strings"
)

type Command struct {
	Name string
	Args []string
	Line string
}

// Parse splits line into a command name and arguments. Double quotes group words, so
// `add incubations name="Alpha Labs"` yields the single argument name=Alpha Labs.
func Parse(line string) (*Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("empty command")
	}

	parts, err := split(line)
	if err != nil {
		return nil, err
	}

	return &Command{
		Name: strings.ToLower(parts[0]),
		Args: parts[1:],
		Line: line,
	}, nil
}

func split(line string) ([]string, error) {
	var (
		parts   []string
		cur     strings.Builder
		quoted  bool
		pending bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case !quoted && (r == ' ' || r == '\t'):
			if pending {
				parts = append(parts, cur.String())
				cur.Reset()
				pending = false
			}
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if pending {
		parts = append(parts, cur.String())
	}
	return parts, nil
}

func ValidateArgs(cmd *Command, count int) error {
	if len(cmd.Args) < count {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, count, len(cmd.Args))
	}
	return nil
}
