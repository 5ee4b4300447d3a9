package main

import "testing"

func TestNormalizeDirection(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "up", want: "up"},
		{raw: " UP ", want: "up"},
		{raw: "Down", want: "down"},
		{raw: "status", want: "status"},
		{raw: "sideways", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := normalizeDirection(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("normalizeDirection(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeDirection(%q): unexpected error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("normalizeDirection(%q): got %q, want %q", tc.raw, got, tc.want)
		}
	}
}
