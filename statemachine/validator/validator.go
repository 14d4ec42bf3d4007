// Package validator checks a transition table for structural problems before
// it is handed to the engine.
package validator

import (
	"fmt"
	"strings"

	"github.com/amp-labs/winedispenser/statemachine"
)

// Finding codes.
const (
	CodeDuplicateRule           = "DUPLICATE_RULE"
	CodeUnknownState            = "UNKNOWN_STATE"
	CodeUnknownEvent            = "UNKNOWN_EVENT"
	CodeDispenseWhileOutOfStock = "DISPENSE_WHILE_OUT_OF_STOCK"
	CodeUnreachableState        = "UNREACHABLE_STATE"
	CodeSelfLoop                = "SELF_LOOP"
)

const noRule = -1

// Finding is one problem found in a table.
type Finding struct {
	Code    string
	Message string
	Index   int                // rule index, -1 when the finding is about a state
	State   statemachine.State // state the finding refers to, if any
}

func (f Finding) String() string {
	if f.Index >= 0 {
		return fmt.Sprintf("[%s] rule %d: %s", f.Code, f.Index, f.Message)
	}

	return fmt.Sprintf("[%s] %s", f.Code, f.Message)
}

// Result contains the findings of one validation run.
type Result struct {
	Valid    bool
	Errors   []Finding
	Warnings []Finding
}

// HasErrors returns true if the result has any errors.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Codes returns the codes of every error and warning, errors first.
func (r Result) Codes() []string {
	codes := make([]string, 0, len(r.Errors)+len(r.Warnings))

	for _, f := range r.Errors {
		codes = append(codes, f.Code)
	}

	for _, f := range r.Warnings {
		codes = append(codes, f.Code)
	}

	return codes
}

// String returns a human-readable summary.
func (r Result) String() string {
	var sb strings.Builder

	if r.Valid {
		sb.WriteString("table is valid\n")
	} else {
		fmt.Fprintf(&sb, "table has %d error(s)\n", len(r.Errors))

		for _, f := range r.Errors {
			fmt.Fprintf(&sb, "  %s\n", f)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "%d warning(s):\n", len(r.Warnings))

		for _, f := range r.Warnings {
			fmt.Fprintf(&sb, "  %s\n", f)
		}
	}

	return sb.String()
}

// Validate runs the default rules against table.
func Validate(table statemachine.Table) Result {
	return ValidateWithRules(table, DefaultRules())
}

// ValidateWithRules runs custom rules against table.
func ValidateWithRules(table statemachine.Table, rules []Rule) Result {
	var result Result

	for _, rule := range rules {
		ruleResult := rule.Check(table)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// ValidateStrict treats warnings as errors.
func ValidateStrict(table statemachine.Table) Result {
	result := Validate(table)

	result.Errors = append(result.Errors, result.Warnings...)
	result.Warnings = nil
	result.Valid = len(result.Errors) == 0

	return result
}
