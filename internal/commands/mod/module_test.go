package mod

import "testing"

func TestWantsDM(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name     string
		body     string
		explicit *bool
		want     bool
	}{
		{"reason, no option", "spam", nil, true},
		{"no reason, no option", "", nil, false},
		{"reason, dm off", "spam", &no, false},
		{"no reason, dm on", "", &yes, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wantsDM(tt.body, tt.explicit); got != tt.want {
				t.Errorf("wantsDM(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}
