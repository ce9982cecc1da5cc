package identity

import "testing"

func TestNormalizeDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jan Novák", "jan novak"},
		{"jan-novak", "jan novak"},
		{"  Jiří  ", "jiri"},
		{"ALICE", "alice"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeDisplayName(tt.input); got != tt.want {
				t.Errorf("NormalizeDisplayName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRemoveDiacritics(t *testing.T) {
	if got := RemoveDiacritics("Žluťoučký kůň"); got != "Zlutoucky kun" {
		t.Errorf("RemoveDiacritics = %q", got)
	}
}
