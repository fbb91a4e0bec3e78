package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged formula evaluation.
// All rolls are logged at debug level with formula, dice values, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates f with vars and logs the result at debug level.
//
// Precondition: f must come from Parse.
// Postcondition: result logged; returns Result or error.
func (r *Roller) Roll(f *Formula, vars map[string]float64) (Result, error) {
	result, err := Evaluate(f, vars, r.src)
	if err != nil {
		r.logger.Debug("dice evaluation failed",
			zap.String("formula", f.Raw),
			zap.Error(err),
		)
		return Result{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("formula", result.Formula),
		zap.String("breakdown", result.String()),
		zap.Int("terms", len(result.Dice)),
		zap.Float64("total", result.Total),
	)
	return result, nil
}

// Evaluate parses formula and rolls it, logging the result.
//
// Postcondition: Returns a Result or a parse/evaluation error.
func (r *Roller) Evaluate(formula string, vars map[string]float64) (Result, error) {
	f, err := Parse(formula)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(f, vars)
}
