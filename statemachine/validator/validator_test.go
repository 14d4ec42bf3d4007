package validator

import (
	"testing"

	"github.com/amp-labs/winedispenser/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableIsClean(t *testing.T) {
	t.Parallel()

	result := Validate(statemachine.DefaultTable())
	assert.True(t, result.Valid)
	assert.False(t, result.HasErrors())
	assert.False(t, result.HasWarnings(), result.String())
	assert.Equal(t, "table is valid\n", result.String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := statemachine.DefaultTable()

	tests := []struct {
		name      string
		table     statemachine.Table
		wantValid bool
		wantCodes []string
	}{
		{
			name:      "duplicate rule",
			table:     append(base, statemachine.Rule{From: statemachine.Idle, Event: statemachine.DispenseStart, To: statemachine.OutOfWine}),
			wantCodes: []string{CodeDuplicateRule},
		},
		{
			name:      "unknown target state",
			table:     append(base, statemachine.Rule{From: statemachine.Idle, Event: statemachine.DispenseStop, To: statemachine.State(42)}),
			wantCodes: []string{CodeUnknownState},
		},
		{
			name:      "unknown event",
			table:     append(base, statemachine.Rule{From: statemachine.Idle, Event: statemachine.EventUnknown, To: statemachine.Idle}),
			wantCodes: []string{CodeUnknownEvent, CodeSelfLoop},
		},
		{
			name:      "dispense while out of stock",
			table:     append(base, statemachine.Rule{From: statemachine.OutOfWine, Event: statemachine.DispenseStart, To: statemachine.Dispensing}),
			wantCodes: []string{CodeDispenseWhileOutOfStock},
		},
		{
			name: "unreachable states",
			table: statemachine.Table{
				{From: statemachine.Idle, Event: statemachine.DispenseStart, To: statemachine.Dispensing},
				{From: statemachine.Dispensing, Event: statemachine.DispenseStop, To: statemachine.Idle},
			},
			wantValid: true,
			wantCodes: []string{CodeUnreachableState, CodeUnreachableState, CodeUnreachableState},
		},
		{
			name:      "self loop",
			table:     append(base, statemachine.Rule{From: statemachine.OutOfWater, Event: statemachine.DispenseStart, To: statemachine.OutOfWater}),
			wantValid: true,
			wantCodes: []string{CodeSelfLoop},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := Validate(tt.table)
			assert.Equal(t, tt.wantValid, result.Valid, result.String())
			assert.Equal(t, tt.wantCodes, result.Codes())
		})
	}
}

func TestFindingLocation(t *testing.T) {
	t.Parallel()

	table := append(statemachine.DefaultTable(),
		statemachine.Rule{From: statemachine.OutOfWaterAndWine, Event: statemachine.DispenseStart, To: statemachine.Dispensing})

	result := Validate(table)
	require.Len(t, result.Errors, 1)

	finding := result.Errors[0]
	assert.Equal(t, 12, finding.Index)
	assert.Equal(t, statemachine.OutOfWaterAndWine, finding.State)
	assert.Contains(t, finding.String(), "rule 12")
	assert.Contains(t, result.String(), CodeDispenseWhileOutOfStock)
}

func TestUnreachableFindingNamesState(t *testing.T) {
	t.Parallel()

	result := Validate(statemachine.Table{
		{From: statemachine.Idle, Event: statemachine.WineLevelDroppedLow, To: statemachine.OutOfWine},
		{From: statemachine.OutOfWine, Event: statemachine.WineLevelRecovered, To: statemachine.Idle},
	})

	var states []statemachine.State
	for _, f := range result.Warnings {
		assert.Equal(t, noRule, f.Index)
		states = append(states, f.State)
	}

	assert.Equal(t, []statemachine.State{
		statemachine.Dispensing, statemachine.OutOfWater, statemachine.OutOfWaterAndWine,
	}, states)
}

func TestValidateStrict(t *testing.T) {
	t.Parallel()

	table := append(statemachine.DefaultTable(),
		statemachine.Rule{From: statemachine.Dispensing, Event: statemachine.DispenseStart, To: statemachine.Dispensing})

	assert.True(t, Validate(table).Valid)

	strict := ValidateStrict(table)
	assert.False(t, strict.Valid)
	assert.Equal(t, []string{CodeSelfLoop}, strict.Codes())
	assert.False(t, strict.HasWarnings())
}

type alwaysFails struct{}

func (alwaysFails) Name() string { return "AlwaysFails" }

func (alwaysFails) Check(statemachine.Table) RuleResult {
	return RuleResult{Errors: []Finding{{Code: "CUSTOM", Index: noRule}}}
}

func TestValidateWithRules(t *testing.T) {
	t.Parallel()

	result := ValidateWithRules(statemachine.DefaultTable(), []Rule{alwaysFails{}})
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"CUSTOM"}, result.Codes())
}
