// Package visualizer renders a transition table as a Mermaid state diagram or
// as a YAML rule listing.
package visualizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amp-labs/winedispenser/statemachine"
	"gopkg.in/yaml.v3"
)

// Visualizer errors.
var (
	ErrEmptyTable       = errors.New("table has no rules")
	ErrInvalidDirection = errors.New("direction must be TB or LR")
)

// Document is the YAML layout of an exported table.
type Document struct {
	Initial statemachine.State `yaml:"initial"`
	Rules   statemachine.Table `yaml:"rules"`
}

// GenerateMermaid renders table with the default options.
func GenerateMermaid(table statemachine.Table) (string, error) {
	return GenerateMermaidWithOptions(table, DefaultOptions())
}

// GenerateMermaidWithOptions renders table as a stateDiagram-v2. States appear
// in definition order, each followed by its outgoing edges in table order.
func GenerateMermaidWithOptions(table statemachine.Table, opts Options) (string, error) {
	if len(table) == 0 {
		return "", ErrEmptyTable
	}

	if opts.Direction != "TB" && opts.Direction != "LR" {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, opts.Direction)
	}

	highlightMap := make(map[statemachine.State]bool, len(opts.HighlightPath))
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    direction %s\n", opts.Direction)
	fmt.Fprintf(&sb, "    [*] --> %s\n", statemachine.Idle)

	for _, state := range statemachine.States() {
		switch {
		case highlightMap[state]:
			fmt.Fprintf(&sb, "    class %s highlighted\n", state)
		case state == statemachine.Dispensing:
			fmt.Fprintf(&sb, "    class %s pumping\n", state)
		case state.OutOfStock():
			fmt.Fprintf(&sb, "    class %s outOfStock\n", state)
		}

		for _, rule := range table.From(state) {
			label := ""
			if opts.ShowEvents {
				label = ": " + rule.Event.String()
			}

			fmt.Fprintf(&sb, "    %s --> %s%s\n", rule.From, rule.To, label)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef pumping fill:#e1f5ff,stroke:#01579b,stroke-width:2px\n")
	sb.WriteString("    classDef outOfStock fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px\n")
	sb.WriteString("    classDef highlighted fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

// GenerateYAML exports table as a YAML document.
func GenerateYAML(table statemachine.Table) ([]byte, error) {
	data, err := yaml.Marshal(Document{Initial: statemachine.Idle, Rules: table})
	if err != nil {
		return nil, fmt.Errorf("failed to encode table: %w", err)
	}

	return data, nil
}

// ParseYAML reads a document written by GenerateYAML.
func ParseYAML(data []byte) (statemachine.Table, error) {
	var doc Document

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(doc.Rules) == 0 {
		return nil, ErrEmptyTable
	}

	return doc.Rules, nil
}

// LoadYAML reads an exported table from path.
func LoadYAML(path string) (statemachine.Table, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseYAML(data)
}
