package gateway

// ValidationError carries the user-facing message of a failed range check.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidationRule checks one resolved field.
type ValidationRule interface {
	Name() string
	Check(r Resolved) error
}

// RangeRule accepts values in the closed interval [Min, Max]. NaN is never
// inside the interval.
type RangeRule struct {
	Field   string
	Min     float64
	Max     float64
	Message string
	value   func(Resolved) float64
}

func (r *RangeRule) Name() string {
	return r.Field + "_range"
}

func (r *RangeRule) Check(resolved Resolved) error {
	v := r.value(resolved)
	if v >= r.Min && v <= r.Max {
		return nil
	}
	return &ValidationError{Rule: r.Name(), Message: r.Message}
}

// DefaultRules are the range checks in evaluation order. The first failing
// rule decides the error.
func DefaultRules() []ValidationRule {
	return []ValidationRule{
		&RangeRule{
			Field:   FieldAge,
			Min:     0,
			Max:     120,
			Message: "Age must be between 0 and 120",
			value:   func(r Resolved) float64 { return r.Age },
		},
		&RangeRule{
			Field:   FieldBMI,
			Min:     10,
			Max:     70,
			Message: "BMI must be between 10 and 70",
			value:   func(r Resolved) float64 { return r.BMI },
		},
		&RangeRule{
			Field:   FieldHbA1c,
			Min:     3,
			Max:     15,
			Message: "HbA1c must be between 3 and 15",
			value:   func(r Resolved) float64 { return r.HbA1c },
		},
		&RangeRule{
			Field:   FieldGlucose,
			Min:     50,
			Max:     600,
			Message: "Blood glucose must be between 50 and 600",
			value:   func(r Resolved) float64 { return r.Glucose },
		},
	}
}

func validate(rules []ValidationRule, resolved Resolved) error {
	for _, rule := range rules {
		if err := rule.Check(resolved); err != nil {
			return err
		}
	}
	return nil
}
