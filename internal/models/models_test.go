package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDate(t *testing.T) {
	t.Run("marshals as calendar day", func(t *testing.T) {
		data, err := json.Marshal(NewDate(2024, 2, 29))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != `"2024-02-29"` {
			t.Errorf("Got %s, want \"2024-02-29\"", data)
		}
	})

	t.Run("unmarshals date-only and RFC3339 forms", func(t *testing.T) {
		for _, raw := range []string{`"2024-02-29"`, `"2024-02-29T13:45:00Z"`} {
			var d Date
			if err := json.Unmarshal([]byte(raw), &d); err != nil {
				t.Fatalf("Unmarshal %s failed: %v", raw, err)
			}
			if d.String() != "2024-02-29" {
				t.Errorf("Unmarshal %s = %s, want 2024-02-29", raw, d)
			}
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"29.02.2024"`), &d); err == nil {
			t.Error("Expected error for non-ISO date")
		}
	})
}

func TestUserValidate(t *testing.T) {
	valid := User{
		Email:          "jan@example.com",
		Name:           "Jan Kowalski",
		NIP:            "1234567890",
		REGON:          "123456789",
		City:           "Warszawa",
		Street:         "Prosta",
		BuildingNumber: "1",
	}

	t.Run("valid user passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("every invalid field reported", func(t *testing.T) {
		user := User{NIP: "123", REGON: "abc"}
		err := user.Validate()
		if err == nil {
			t.Fatal("Expected validation errors")
		}

		var errs ValidationErrors
		if !errors.As(err, &errs) {
			t.Fatalf("Expected ValidationErrors, got %T", err)
		}
		fields := make(map[string]bool)
		for _, fe := range errs {
			fields[fe.Field] = true
		}
		for _, want := range []string{"email", "name", "nip", "regon", "city", "street"} {
			if !fields[want] {
				t.Errorf("Field %s not reported (got %v)", want, errs)
			}
		}
	})
}

func TestEmployerValidate(t *testing.T) {
	base := Employer{
		Name:           "Clinic",
		NIP:            "1234567890",
		City:           "Warszawa",
		Street:         "Prosta",
		DefaultPercent: decimal.NewFromInt(20),
	}

	t.Run("valid employer passes without REGON", func(t *testing.T) {
		if err := base.Validate(); err != nil {
			t.Errorf("Validate failed: %v", err)
		}
	})

	t.Run("percent out of range reported", func(t *testing.T) {
		for _, percent := range []decimal.Decimal{decimal.NewFromInt(-1), decimal.NewFromInt(101)} {
			e := base
			e.DefaultPercent = percent
			if err := e.Validate(); err == nil {
				t.Errorf("Percent %s accepted", percent)
			}
		}
	})

	t.Run("boundary percents accepted", func(t *testing.T) {
		for _, percent := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(100)} {
			e := base
			e.DefaultPercent = percent
			if err := e.Validate(); err != nil {
				t.Errorf("Percent %s rejected: %v", percent, err)
			}
		}
	})
}

func TestTransactionEarnings(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		percent string
		want    string
	}{
		{"round cut", "1000", "20", "200"},
		{"fractional percent", "100", "33.5", "33.5"},
		{"zero percent", "500", "0", "0"},
		{"full amount", "123.45", "100", "123.45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{
				Amount:  decimal.RequireFromString(tt.amount),
				Percent: decimal.RequireFromString(tt.percent),
			}
			if got := tx.Earnings(); !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Earnings() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidationErrorsOrNil(t *testing.T) {
	var empty ValidationErrors
	if err := empty.OrNil(); err != nil {
		t.Errorf("Empty OrNil = %v, want untyped nil", err)
	}

	full := ValidationErrors{{Field: "name", Message: "name is required"}}
	if err := full.OrNil(); err == nil {
		t.Error("Non-empty OrNil returned nil")
	}
}
