package statemachine

import "fmt"

// Rule moves the machine from From to To when Event arrives in From.
type Rule struct {
	From  State `yaml:"from"`
	Event Event `yaml:"event"`
	To    State `yaml:"to"`
}

func (r Rule) String() string {
	return fmt.Sprintf("%s --%s--> %s", r.From, r.Event, r.To)
}

// Table is an ordered rule set. Lookup takes the first matching rule.
type Table []Rule

// DefaultTable returns a copy of the dispenser's rule table.
func DefaultTable() Table {
	return Table{
		{From: Idle, Event: DispenseStart, To: Dispensing},
		{From: Idle, Event: WineLevelDroppedLow, To: OutOfWine},
		{From: Idle, Event: WaterLevelDroppedLow, To: OutOfWater},

		{From: Dispensing, Event: DispenseStop, To: Idle},
		{From: Dispensing, Event: WineLevelDroppedLow, To: OutOfWine},
		{From: Dispensing, Event: WaterLevelDroppedLow, To: OutOfWater},

		{From: OutOfWine, Event: WineLevelRecovered, To: Idle},
		{From: OutOfWine, Event: WaterLevelDroppedLow, To: OutOfWaterAndWine},

		{From: OutOfWater, Event: WaterLevelRecovered, To: Idle},
		{From: OutOfWater, Event: WineLevelDroppedLow, To: OutOfWaterAndWine},

		{From: OutOfWaterAndWine, Event: WaterLevelRecovered, To: OutOfWine},
		{From: OutOfWaterAndWine, Event: WineLevelRecovered, To: OutOfWater},
	}
}

// Lookup returns the target of the first rule matching (from, event). When no
// rule matches it returns from and false: the machine stays where it is.
func (t Table) Lookup(from State, event Event) (State, bool) {
	for _, rule := range t {
		if rule.From == from && rule.Event == event {
			return rule.To, true
		}
	}

	return from, false
}

// From returns the rules leaving state, in table order.
func (t Table) From(state State) []Rule {
	var out []Rule

	for _, rule := range t {
		if rule.From == state {
			out = append(out, rule)
		}
	}

	return out
}

// Validate checks that every rule names valid states and events and that no
// (state, event) pair appears twice.
func (t Table) Validate() error {
	type key struct {
		from  State
		event Event
	}

	seen := make(map[key]int, len(t))

	for idx, rule := range t {
		if !rule.From.Valid() || !rule.To.Valid() {
			return &RuleError{Index: idx, Rule: rule, Err: ErrUnknownState}
		}

		if !rule.Event.Valid() {
			return &RuleError{Index: idx, Rule: rule, Err: ErrUnknownEvent}
		}

		k := key{from: rule.From, event: rule.Event}
		if _, dup := seen[k]; dup {
			return &RuleError{Index: idx, Rule: rule, Err: ErrDuplicateRule}
		}

		seen[k] = idx
	}

	return nil
}
