package form

// Form holds the current values, derived error map, and touched set for one
// flow. Errors are shown only for touched fields: a field validates live on
// change only after its first blur, so restored drafts and half-typed input
// don't flash stale errors.
type Form struct {
	rules   RuleSet
	initial Values

	values  Values
	errors  Errors
	touched Touched
}

// New creates a form with the given initial values and rule set.
func New(initial Values, rules RuleSet) *Form {
	f := &Form{
		rules:   rules,
		initial: initial,
		values:  make(Values, len(initial)),
		errors:  make(Errors),
		touched: make(Touched),
	}
	for k, v := range initial {
		f.values[k] = v
	}
	return f
}

// HandleChange updates a field value. If the field has been touched it is
// re-validated immediately.
func (f *Form) HandleChange(name string, value any) {
	f.values[name] = value
	if f.touched[name] {
		f.errors[name] = ValidateField(name, value, f.rules, f.values)
	}
}

// HandleBlur marks a field touched and validates it.
func (f *Form) HandleBlur(name string) {
	f.touched[name] = true
	f.errors[name] = ValidateField(name, f.values[name], f.rules, f.values)
}

// ValidateAll validates every field in the rule set, marks all fields
// touched, and reports overall validity. Used as the gate before final
// submission.
func (f *Form) ValidateAll() bool {
	valid := true
	for name := range f.rules {
		err := ValidateField(name, f.values[name], f.rules, f.values)
		f.errors[name] = err
		f.touched[name] = true
		if err != "" {
			valid = false
		}
	}
	return valid
}

// Reset restores the initial values and clears errors and touched state.
func (f *Form) Reset() {
	f.values = make(Values, len(f.initial))
	for k, v := range f.initial {
		f.values[k] = v
	}
	f.errors = make(Errors)
	f.touched = make(Touched)
}

// SetValue sets a field without marking it touched or validating.
// Used when replaying a persisted draft into the form.
func (f *Form) SetValue(name string, value any) {
	f.values[name] = value
}

// Value returns the current value for a field.
func (f *Form) Value(name string) any {
	return f.values[name]
}

// Values returns a copy of the current field values.
func (f *Form) Values() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Errors returns a copy of the current error map.
func (f *Form) Errors() Errors {
	out := make(Errors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Touched returns a copy of the touched set.
func (f *Form) Touched() Touched {
	out := make(Touched, len(f.touched))
	for k, v := range f.touched {
		out[k] = v
	}
	return out
}

// TouchedField reports whether one field has been touched.
func (f *Form) TouchedField(name string) bool {
	return f.touched[name]
}

// HasErrors reports whether any validated field currently has an error.
func (f *Form) HasErrors() bool {
	for _, e := range f.errors {
		if e != "" {
			return true
		}
	}
	return false
}

// FieldValid reports whether a field is present and error-free. Step gates
// use this on each field the step owns.
func (f *Form) FieldValid(name string) bool {
	if f.errors[name] != "" {
		return false
	}
	return !isEmpty(f.values[name])
}
