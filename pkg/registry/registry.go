// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var ErrInvalidCatalog = errors.New("invalid activity catalog")

// LoadCatalog reads and validates a JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects empty or duplicate codes, empty labels and unknown
// categories. All problems are reported at once.
func (c *Catalog) Validate() error {
	var problems []string
	seen := make(map[string]int, len(c.Activities))
	for i, a := range c.Activities {
		code := strings.TrimSpace(a.Code)
		switch {
		case code == "":
			problems = append(problems, fmt.Sprintf("activity %d: empty code", i))
		case seen[code] > 0:
			problems = append(problems, fmt.Sprintf("activity %d: duplicate code %q (first at %d)", i, code, seen[code]-1))
		default:
			seen[code] = i + 1
		}
		if strings.TrimSpace(a.Label) == "" {
			problems = append(problems, fmt.Sprintf("activity %d: empty label", i))
		}
		if a.Category != CategoryTrade && a.Category != CategoryIntellectual {
			problems = append(problems, fmt.Sprintf("activity %d: unknown category %q", i, a.Category))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

// Lookup returns the activity with the given code.
func (c *Catalog) Lookup(code string) (Activity, bool) {
	if c == nil {
		return Activity{}, false
	}
	for _, a := range c.Activities {
		if a.Code == code {
			return a, true
		}
	}
	return Activity{}, false
}

// Label returns the display label for code, or code itself when unknown.
func (c *Catalog) Label(code string) string {
	if a, ok := c.Lookup(code); ok {
		return a.Label
	}
	return code
}

// Labels maps Label over codes.
func (c *Catalog) Labels(codes []string) []string {
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = c.Label(code)
	}
	return out
}

// ByCategory returns the activities of one category sorted by code.
func (c *Catalog) ByCategory(category string) []Activity {
	var out []Activity
	for _, a := range c.Activities {
		if a.Category == category {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
