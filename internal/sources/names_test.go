// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import "testing"

func TestSurname(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"given family", "Jane Doe", "Doe"},
		{"three parts", "Juan Carlos Ortega", "Ortega"},
		{"family comma given", "Doe, Jane", "Doe"},
		{"single word", "Aristotle", "Aristotle"},
		{"doctor prefix", "Dr. Jane Doe", "Doe"},
		{"professor prefix", "Professor John Smith", "Smith"},
		{"phd suffix", "Jane Doe, Ph.D.", "Doe"},
		{"jr suffix", "Sammy Davis Jr.", "Davis"},
		{"prefix and suffix", "Dr. Jane Doe PhD", "Doe"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Surname(tt.in); got != tt.want {
				t.Errorf("Surname(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
