package schema

import (
	"strings"
	"testing"
)

func addressValues() Values {
	return Values{
		"streetAddress": "1 Main St",
		"city":          "Austin",
		"state":         "TX",
		"zipCode":       "78701",
	}
}

func TestDefaultSchemaShape(t *testing.T) {
	s := Default()
	if s.Steps() != 13 {
		t.Fatalf("Steps() = %d, want 13", s.Steps())
	}
	if s.NameStep() != 1 {
		t.Fatalf("NameStep() = %d, want 1", s.NameStep())
	}
	shoe := s.Enums()["shoe"]
	if len(shoe) != 19 || shoe[0] != "6" || shoe[1] != "6.5" || shoe[len(shoe)-1] != "15" {
		t.Fatalf("unexpected shoe ladder %v", shoe)
	}
	if got := strings.Join(s.Enums()["garment"], ","); got != "xs,s,m,l,xl,xxl,xxxl" {
		t.Fatalf("unexpected garment sizes %s", got)
	}
}

func TestShippingNotValidatedWhenSameAsMailing(t *testing.T) {
	s := Default()
	values := addressValues()
	values["sameAsMailing"] = true

	result := s.ValidateStep(2, values)
	if !result.Valid {
		t.Fatalf("expected valid, got errors %v", result.Errors)
	}
}

func TestShippingRequiredWhenNotSameAsMailing(t *testing.T) {
	s := Default()
	shipping := []string{"shippingStreetAddress", "shippingCity", "shippingState", "shippingZipCode"}

	for _, missing := range shipping {
		values := addressValues()
		values["sameAsMailing"] = false
		values["shippingStreetAddress"] = "2 Side St"
		values["shippingCity"] = "Dallas"
		values["shippingState"] = "TX"
		values["shippingZipCode"] = "75201"
		values[missing] = "  "

		result := s.ValidateStep(2, values)
		if result.Valid {
			t.Fatalf("expected invalid when %s is empty", missing)
		}
		if _, ok := result.Errors[missing]; !ok || len(result.Errors) != 1 {
			t.Fatalf("expected single error on %s, got %v", missing, result.Errors)
		}
	}
}

func TestShippingRequiredWhenFlagAbsent(t *testing.T) {
	result := Default().ValidateStep(2, addressValues())
	if result.Valid || len(result.Errors) != 4 {
		t.Fatalf("expected four shipping errors, got %v", result.Errors)
	}
}

func TestEnumRejectsUnknownSize(t *testing.T) {
	s := Default()
	result := s.ValidateStep(3, Values{
		"shirtSize":  "m",
		"jacketSize": "xxxxl",
		"pantsSize":  "l",
		"shoeSize":   "10.5",
	})
	if result.Valid {
		t.Fatal("expected jacket size rejection")
	}
	if _, ok := result.Errors["jacketSize"]; !ok {
		t.Fatalf("expected jacketSize error, got %v", result.Errors)
	}

	result = s.ValidateStep(3, Values{"shirtSize": "m", "jacketSize": "l", "pantsSize": "l", "shoeSize": "15.5"})
	if _, ok := result.Errors["shoeSize"]; !ok {
		t.Fatalf("expected shoeSize error, got %v", result.Errors)
	}
}

func TestReviewStepRequiresW9(t *testing.T) {
	s := Default()
	result := s.ValidateStep(13, Values{
		"reviewConfirmed": true,
		"w9Completed":     false,
		"badgePhotoUrl":   "https://files.example.com/badge.png",
	})
	if result.Valid {
		t.Fatal("expected review step to fail without W-9")
	}
	if msg := result.Errors["w9Completed"]; !strings.Contains(msg, "W-9") {
		t.Fatalf("expected W-9 message, got %q", msg)
	}
}

func TestBooleanAcceptsFormStrings(t *testing.T) {
	s := Default()
	values := addressValues()
	values["sameAsMailing"] = "on"
	if result := s.ValidateStep(2, values); !result.Valid {
		t.Fatalf("expected valid, got %v", result.Errors)
	}

	values["sameAsMailing"] = "maybe"
	result := s.ValidateStep(2, values)
	if result.Errors["sameAsMailing"] != msgBoolean {
		t.Fatalf("expected boolean error, got %v", result.Errors)
	}
}

func TestPatternUsesFieldMessage(t *testing.T) {
	result := Default().ValidateStep(9, Values{
		"routingNumber":          "12345",
		"accountNumber":          "000123456",
		"accountType":            "checking",
		"directDepositConfirmed": true,
	})
	if result.Errors["routingNumber"] != "Routing number must be 9 digits" {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
}

func TestUnknownStep(t *testing.T) {
	result := Default().ValidateStep(14, Values{})
	if result.Valid || result.Errors["step"] == "" {
		t.Fatalf("expected step error, got %+v", result)
	}
}

func TestColumnsRoundTrip(t *testing.T) {
	s := Default()
	values := Values{"firstName": " Ada ", "lastName": "Lovelace", "phone": ""}
	cols := s.Columns(1, values)
	if cols["first_name"] != "Ada" {
		t.Fatalf("first_name = %v", cols["first_name"])
	}
	if v, ok := cols["phone"]; !ok || v != nil {
		t.Fatalf("expected NULL phone column, got %v", v)
	}

	back := s.ValuesFromColumns(map[string]any{"first_name": "Ada", "w9_completed": true})
	if back["firstName"] != "Ada" || back["w9Completed"] != true {
		t.Fatalf("unexpected values %v", back)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"no steps":       "steps: []",
		"bad index":      "steps:\n  - {index: 2, name: a, fields: []}",
		"bad column":     "steps:\n  - {index: 1, name: a, fields: [{name: x, column: 'X-Y', type: string}]}",
		"unknown enum":   "steps:\n  - {index: 1, name: a, fields: [{name: x, column: x, type: enum, enum: nope}]}",
		"bad unless ref": "steps:\n  - {index: 1, name: a, fields: [{name: x, column: x, type: string, required_unless: y}]}",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}
