package extract

import "testing"

func TestClean_ValidNames(t *testing.T) {
	v := NewNameValidator()

	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "Jane Doe"},
		{"  John   Smith  ", "John Smith"},
		{"Dr. Amanda Lee", "Amanda Lee"},
		{"Jane Doe, Head Coach", "Jane Doe"},
		{"D'Angelo Russell", "D'Angelo Russell"},
		{"Mary Smith-Jones", "Mary Smith-Jones"},
		{"Cal Ripken Jr.", "Cal Ripken Jr."},
	}
	for _, tt := range tests {
		got, ok := v.Clean(tt.in)
		if !ok {
			t.Errorf("Clean(%q) rejected, want %q", tt.in, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClean_Idempotent(t *testing.T) {
	v := NewNameValidator()

	once, ok := v.Clean("Dr. Jane A. Doe, Head Coach")
	if !ok {
		t.Fatal("first Clean rejected a valid name")
	}
	twice, ok := v.Clean(once)
	if !ok {
		t.Fatalf("Clean rejected its own output %q", once)
	}
	if once != twice {
		t.Errorf("Clean not idempotent: %q vs %q", once, twice)
	}
}

func TestClean_Rejections(t *testing.T) {
	v := NewNameValidator()

	tests := []struct {
		name string
		in   string
	}{
		{"single word", "Madonna"},
		{"digits", "John Smith2"},
		{"lowercase part", "john Smith"},
		{"ui chrome", "Loading More"},
		{"menu term", "Main Menu"},
		{"role words", "Head Coach"},
		{"social", "Facebook Page"},
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", "Bartholomew Maximilian Constantine Wellington-Smythe III"},
		{"punctuation noise", "John @Smith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := v.Clean(tt.in); ok {
				t.Errorf("Clean(%q) = %q, want rejection", tt.in, got)
			}
		})
	}
}

func TestClean_ExtraDenylist(t *testing.T) {
	v := NewNameValidator("gameday")
	if got, ok := v.Clean("Gameday Central"); ok {
		t.Errorf("extra denylist term accepted: %q", got)
	}
}
