package form

import "testing"

func testRules() RuleSet {
	return RuleSet{
		"fullName": {Required: true, MinLength: 2, RequiredMessage: "Full name is required"},
		"email":    {Required: true, Email: true, RequiredMessage: "Email is required"},
		"phone":    {Phone: true},
		"message":  {Required: true, MinLength: 5, MaxLength: 20},
		"agreement": {
			Required:        true,
			RequiredMessage: "You must agree to the terms and conditions",
		},
		"confirm": {
			Custom: func(value any, values Values) string {
				if value != values["email"] {
					return "Emails do not match"
				}
				return ""
			},
		},
	}
}

func TestValidateField(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"required empty string", "fullName", "", "Full name is required"},
		{"required whitespace only", "fullName", "   ", "Full name is required"},
		{"required nil", "fullName", nil, "Full name is required"},
		{"required ok", "fullName", "Ada", ""},
		{"min length", "fullName", "A", "Must be at least 2 characters"},
		{"email invalid", "email", "not-an-email", "Please enter a valid email address"},
		{"email missing tld", "email", "a@b", "Please enter a valid email address"},
		{"email double at", "email", "a@@b.c", "Please enter a valid email address"},
		{"email ok", "email", "ada@example.com", ""},
		{"phone optional empty", "phone", "", ""},
		{"phone formatted ok", "phone", "+1 (555) 123-4567", ""},
		{"phone leading zero", "phone", "0123456", "Please enter a valid phone number"},
		{"phone letters", "phone", "555-CALL", "Please enter a valid phone number"},
		{"max length", "message", "this message is far too long", "Must not exceed 20 characters"},
		{"min length override default", "message", "hey", "Must be at least 5 characters"},
		{"bool required false", "agreement", false, "You must agree to the terms and conditions"},
		{"bool required true", "agreement", true, ""},
		{"unknown field always valid", "nonexistent", "anything", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.field, tt.value, rules, Values{})
			if got != tt.want {
				t.Errorf("ValidateField(%q, %v) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateFieldIsPure(t *testing.T) {
	rules := testRules()
	values := Values{"email": "ada@example.com"}
	first := ValidateField("confirm", "other@example.com", rules, values)
	for i := 0; i < 5; i++ {
		got := ValidateField("confirm", "other@example.com", rules, values)
		if got != first {
			t.Fatalf("ValidateField not deterministic: %q vs %q", got, first)
		}
	}
	if first != "Emails do not match" {
		t.Errorf("custom rule = %q, want cross-field mismatch error", first)
	}
}

func TestRequiredShortCircuitsBeforeFormat(t *testing.T) {
	rules := RuleSet{"email": {Required: true, Email: true, RequiredMessage: "Email is required"}}
	if got := ValidateField("email", "", rules, Values{}); got != "Email is required" {
		t.Errorf("empty required email = %q, want required message", got)
	}
}

func TestHandleChangeValidatesOnlyAfterBlur(t *testing.T) {
	f := New(Values{"email": ""}, testRules())

	// Typing an invalid value before first blur must not surface an error.
	f.HandleChange("email", "bogus")
	if f.Errors()["email"] != "" {
		t.Fatalf("expected no error before blur, got %q", f.Errors()["email"])
	}

	f.HandleBlur("email")
	if f.Errors()["email"] == "" {
		t.Fatal("expected error after blur of invalid value")
	}

	// After blur, changes validate live.
	f.HandleChange("email", "ada@example.com")
	if got := f.Errors()["email"]; got != "" {
		t.Errorf("expected live revalidation to clear error, got %q", got)
	}
}

func TestValidateAll(t *testing.T) {
	f := New(Values{
		"fullName":  "",
		"email":     "ada@example.com",
		"message":   "hello there",
		"agreement": true,
		"confirm":   "ada@example.com",
	}, testRules())

	if f.ValidateAll() {
		t.Fatal("expected overall invalid with empty required fullName")
	}
	// Every rule-set field must now be touched.
	touched := f.Touched()
	for name := range testRules() {
		if !touched[name] {
			t.Errorf("field %q not touched after ValidateAll", name)
		}
	}

	f.HandleChange("fullName", "Ada Lovelace")
	if !f.ValidateAll() {
		t.Fatalf("expected valid form, errors: %v", f.Errors())
	}
}

func TestResetRestoresInitialSnapshot(t *testing.T) {
	f := New(Values{"fullName": "", "email": ""}, testRules())
	f.HandleChange("fullName", "Ada")
	f.HandleBlur("email")
	f.Reset()

	if got := f.Value("fullName"); got != "" {
		t.Errorf("after reset fullName = %v, want empty", got)
	}
	if len(f.Errors()) != 0 || len(f.Touched()) != 0 {
		t.Errorf("after reset errors/touched not empty: %v / %v", f.Errors(), f.Touched())
	}
}

func TestSetValueDoesNotTouch(t *testing.T) {
	f := New(Values{"email": ""}, testRules())
	f.SetValue("email", "bogus")
	if f.Touched()["email"] {
		t.Error("SetValue must not mark field touched")
	}
	if f.Errors()["email"] != "" {
		t.Error("SetValue must not validate")
	}
	if f.Value("email") != "bogus" {
		t.Errorf("value = %v, want bogus", f.Value("email"))
	}
}
