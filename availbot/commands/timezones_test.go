package commands

import "testing"

func Test_validTimezone(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want bool
	}{
		{"utc", "UTC", true},
		{"iana zone", "Europe/Sofia", true},
		{"empty", "", false},
		{"garbage", "Sofia Time", false},
		{"misspelled", "Europe/Sophia", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validTimezone(tt.tz); got != tt.want {
				t.Errorf("validTimezone(%q) = %v, want %v", tt.tz, got, tt.want)
			}
		})
	}
}

func Test_suggestTimezones(t *testing.T) {
	got := suggestTimezones("sofia", 3)
	if len(got) == 0 {
		t.Fatal("no suggestions for near-miss input")
	}
	if got[0] != "Europe/Sofia" {
		t.Errorf("top suggestion = %q, want Europe/Sofia", got[0])
	}

	if got := suggestTimezones("newyork", 3); len(got) == 0 || got[0] != "America/New_York" {
		t.Errorf("suggestions for newyork = %v", got)
	}

	if got := suggestTimezones("zzzzqqqq", 3); len(got) != 0 {
		t.Errorf("suggestions for nonsense input = %v", got)
	}
}
