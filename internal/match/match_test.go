package match

import (
	"errors"
	"testing"
)

func TestValidatePool(t *testing.T) {
	cases := []struct {
		name    string
		format  Format
		pool    []string
		wantErr bool
	}{
		{"default pool single map", FormatSingleMap, DefaultMapPool, false},
		{"default pool series", FormatThreeMapSeries, DefaultMapPool, false},
		{"single map minimal", FormatSingleMap, []string{"Bind", "Haven"}, false},
		{"single map one entry", FormatSingleMap, []string{"Bind"}, true},
		{"single map empty", FormatSingleMap, []string{}, true},
		{"series six maps runs out before decider", FormatThreeMapSeries, []string{"Abyss", "Bind", "Corrode", "Haven", "Pearl", "Split"}, true},
		{"series eight maps leaves two deciders", FormatThreeMapSeries, []string{"Abyss", "Bind", "Corrode", "Haven", "Pearl", "Split", "Sunset", "Fracture"}, true},
		{"duplicate name", FormatSingleMap, []string{"Bind", "Bind", "Haven"}, true},
		{"blank name", FormatThreeMapSeries, []string{"Abyss", "Bind", "Corrode", "Haven", "Pearl", "Split", ""}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePool(tc.format, tc.pool)
			if tc.wantErr && !errors.Is(err, ErrInvalidPool) {
				t.Fatalf("err = %v, want %v", err, ErrInvalidPool)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}
