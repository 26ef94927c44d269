// Package catalog lists the coal-quality parameters the lab knows about.
//
// The catalog is informational. Results for codes not listed here are still
// aggregated like any other.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// maxSuggestDistance is the largest edit distance Suggest accepts.
const maxSuggestDistance = 2

//go:embed parameters.yaml
var defaultParameters []byte

// Parameter describes one tested coal-quality parameter.
type Parameter struct {
	Code        string `yaml:"code" json:"code"`
	Name        string `yaml:"name" json:"name"`
	Unit        string `yaml:"unit" json:"unit"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is a read-only set of parameters. It is safe for concurrent use.
type Catalog struct {
	params []Parameter
	byCode map[string]int
}

// Parse reads a catalog from YAML with a top-level "parameters" list.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Parameters []Parameter `yaml:"parameters"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse parameter catalog: %w", err)
	}

	c := &Catalog{params: doc.Parameters, byCode: make(map[string]int, len(doc.Parameters))}
	for i, p := range doc.Parameters {
		if p.Code == "" {
			return nil, fmt.Errorf("parameter %d has no code", i)
		}
		key := strings.ToUpper(p.Code)
		if _, ok := c.byCode[key]; ok {
			return nil, fmt.Errorf("duplicate parameter code %q", p.Code)
		}
		c.byCode[key] = i
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultParameters)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns every parameter in catalog order.
func (c *Catalog) All() []Parameter {
	return append([]Parameter(nil), c.params...)
}

// Lookup finds a parameter by code, ignoring case.
func (c *Catalog) Lookup(code string) (Parameter, bool) {
	i, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Parameter{}, false
	}
	return c.params[i], true
}

// Suggest returns the known code closest to code, if one is within a small
// edit distance. Ties go to the parameter listed first.
func (c *Catalog) Suggest(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, p := range c.params {
		d := levenshtein.ComputeDistance(code, strings.ToUpper(p.Code))
		if d < bestDist {
			best, bestDist = p.Code, d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
