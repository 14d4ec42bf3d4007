package validator

import (
	"fmt"

	"github.com/amp-labs/winedispenser/statemachine"
)

// RuleResult contains both errors and warnings from a rule check.
type RuleResult struct {
	Errors   []Finding
	Warnings []Finding
}

// Rule is one check run against a table.
type Rule interface {
	Name() string
	Check(table statemachine.Table) RuleResult
}

// DefaultRules returns the standard set of checks.
func DefaultRules() []Rule {
	return []Rule{
		&knownValuesRule{},
		&duplicateRule{},
		&outOfStockDispenseRule{},
		&unreachableStateRule{},
		&selfLoopRule{},
	}
}

// knownValuesRule flags rules naming a state or event outside the defined sets.
type knownValuesRule struct{}

func (r *knownValuesRule) Name() string {
	return "KnownValues"
}

func (r *knownValuesRule) Check(table statemachine.Table) RuleResult {
	var result RuleResult

	for i, rule := range table {
		for _, state := range []statemachine.State{rule.From, rule.To} {
			if !state.Valid() {
				result.Errors = append(result.Errors, Finding{
					Code:    CodeUnknownState,
					Message: fmt.Sprintf("state %d is not defined", uint8(state)),
					Index:   i,
					State:   state,
				})
			}
		}

		if !rule.Event.Valid() {
			result.Errors = append(result.Errors, Finding{
				Code:    CodeUnknownEvent,
				Message: fmt.Sprintf("event %d is not defined", uint8(rule.Event)),
				Index:   i,
				State:   rule.From,
			})
		}
	}

	return result
}

// duplicateRule flags a second rule for an already-used (from, event) pair.
// Lookup is first-match, so the later rule could never fire.
type duplicateRule struct{}

func (r *duplicateRule) Name() string {
	return "Duplicate"
}

func (r *duplicateRule) Check(table statemachine.Table) RuleResult {
	var result RuleResult

	type key struct {
		from  statemachine.State
		event statemachine.Event
	}

	first := make(map[key]int, len(table))

	for i, rule := range table {
		k := key{rule.From, rule.Event}

		if j, seen := first[k]; seen {
			result.Errors = append(result.Errors, Finding{
				Code:    CodeDuplicateRule,
				Message: fmt.Sprintf("%s shadowed by rule %d", rule, j),
				Index:   i,
				State:   rule.From,
			})

			continue
		}

		first[k] = i
	}

	return result
}

// outOfStockDispenseRule flags any rule that starts the pumps while a
// reservoir is known to be low.
type outOfStockDispenseRule struct{}

func (r *outOfStockDispenseRule) Name() string {
	return "OutOfStockDispense"
}

func (r *outOfStockDispenseRule) Check(table statemachine.Table) RuleResult {
	var result RuleResult

	for i, rule := range table {
		if rule.To == statemachine.Dispensing && rule.From.OutOfStock() {
			result.Errors = append(result.Errors, Finding{
				Code:    CodeDispenseWhileOutOfStock,
				Message: fmt.Sprintf("%s starts the pumps while out of stock", rule),
				Index:   i,
				State:   rule.From,
			})
		}
	}

	return result
}

// unreachableStateRule flags defined states that Idle cannot reach.
type unreachableStateRule struct{}

func (r *unreachableStateRule) Name() string {
	return "UnreachableState"
}

func (r *unreachableStateRule) Check(table statemachine.Table) RuleResult {
	var result RuleResult

	reachable := map[statemachine.State]bool{statemachine.Idle: true}
	queue := []statemachine.State{statemachine.Idle}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, rule := range table.From(current) {
			if !reachable[rule.To] {
				reachable[rule.To] = true
				queue = append(queue, rule.To)
			}
		}
	}

	for _, state := range statemachine.States() {
		if !reachable[state] {
			result.Warnings = append(result.Warnings, Finding{
				Code:    CodeUnreachableState,
				Message: fmt.Sprintf("state %s cannot be reached from %s", state, statemachine.Idle),
				Index:   noRule,
				State:   state,
			})
		}
	}

	return result
}

// selfLoopRule flags rules that re-enter their own state. They re-run the
// entry action, which an unmatched event would not.
type selfLoopRule struct{}

func (r *selfLoopRule) Name() string {
	return "SelfLoop"
}

func (r *selfLoopRule) Check(table statemachine.Table) RuleResult {
	var result RuleResult

	for i, rule := range table {
		if rule.From == rule.To {
			result.Warnings = append(result.Warnings, Finding{
				Code:    CodeSelfLoop,
				Message: fmt.Sprintf("%s re-enters its own state", rule),
				Index:   i,
				State:   rule.From,
			})
		}
	}

	return result
}
