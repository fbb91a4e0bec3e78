// Package check resolves 2d6 attribute checks.
package check

// Outcome is the four-tier check result.
type Outcome int

const (
	CriticalFailure Outcome = iota
	Failure
	Success
	CriticalSuccess
)

// String returns the outcome's identifier, e.g. "criticalSuccess".
func (o Outcome) String() string {
	switch o {
	case CriticalSuccess:
		return "criticalSuccess"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CriticalFailure:
		return "criticalFailure"
	default:
		return "unknown"
	}
}

// Label returns the display text, e.g. "Sucesso Crítico".
func (o Outcome) Label() string {
	switch o {
	case CriticalSuccess:
		return "Sucesso Crítico"
	case Success:
		return "Sucesso"
	case CriticalFailure:
		return "Falha Crítica"
	default:
		return "Falha"
	}
}

// Key returns the CSS-style key, e.g. "critical-success".
func (o Outcome) Key() string {
	switch o {
	case CriticalSuccess:
		return "critical-success"
	case Success:
		return "success"
	case CriticalFailure:
		return "critical-failure"
	default:
		return "failure"
	}
}

// IsSuccess reports whether o is Success or CriticalSuccess.
func (o Outcome) IsSuccess() bool {
	return o == Success || o == CriticalSuccess
}

// Classify decides the outcome of a check. A natural 12 or 2 wins over the
// comparison of total against difficulty.
//
// Postcondition: natural == 12 → CriticalSuccess; natural == 2 → CriticalFailure.
func Classify(natural, total, difficulty int) Outcome {
	switch {
	case natural == 12:
		return CriticalSuccess
	case natural == 2:
		return CriticalFailure
	case total >= difficulty:
		return Success
	default:
		return Failure
	}
}

// State is a step of one check resolution.
type State int

const (
	Idle State = iota
	Rolled
	Classified
	Resolved
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rolled:
		return "rolled"
	case Classified:
		return "classified"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}
