package macro

import "fmt"

// Regime is a qualitative label summarizing a macro state.
type Regime struct {
	Label       string
	Description string
}

// String renders the regime as "Label: Description".
func (r Regime) String() string {
	return fmt.Sprintf("%s: %s", r.Label, r.Description)
}

// Classify maps a state to its regime. The rules form an ordered decision
// list and the first match wins - order matters because the ranges overlap.
// A state like {growth: 3.5, inflation: 3.5} is Overheating only because
// the Boom and Goldilocks rules are checked and rejected first.
func Classify(s State) Regime {
	growth, inflation := s.Growth, s.Inflation

	switch {
	case growth > 4.0 && inflation > 4.0:
		return Regime{"Boom", "High growth with elevated inflation"}
	case growth > 3.0 && inflation < 3.0:
		return Regime{"Goldilocks", "Strong growth with moderate inflation"}
	case growth > 3.0 && inflation > 3.0:
		return Regime{"Overheating", "Strong growth with rising inflation pressures"}
	case growth < 1.0 && inflation < 2.0:
		return Regime{"Stagnation", "Low growth and subdued inflation"}
	case growth < 1.0 && inflation > 3.0:
		return Regime{"Stagflation", "Low growth with high inflation"}
	case growth < 0:
		return Regime{"Recession", "Negative growth"}
	default:
		return Regime{"Expansion", "Moderate growth"}
	}
}
