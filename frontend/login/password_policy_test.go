package login

import "testing"

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		name string
		pwd  string
		ok   bool
	}{
		{name: "valid mixed", pwd: "Warehouse-2024!", ok: true},
		{name: "too short", pwd: "Wh-2024!", ok: false},
		{name: "no digit", pwd: "Warehouse-Pass!", ok: false},
		{name: "no symbol", pwd: "Warehouse2024x", ok: false},
		{name: "no upper", pwd: "warehouse-2024!", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tc.pwd)
			if tc.ok && err != nil {
				t.Fatalf("expected valid password, got error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected policy error")
			}
		})
	}
}
