package sanitize

import (
	"strings"
	"testing"
)

func TestLore_StripsScripts(t *testing.T) {
	in := `<p>The grove <strong>whispers</strong>.</p><script>alert(1)</script><img src=x onerror=alert(1)>`
	out := Lore(in)
	if strings.Contains(out, "script") || strings.Contains(out, "onerror") {
		t.Errorf("dangerous markup survived: %q", out)
	}
	if !strings.Contains(out, "<strong>whispers</strong>") {
		t.Errorf("formatting should survive: %q", out)
	}
}

func TestText_RemovesMarkup(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  Whisper Grove  ", "Whisper Grove"},
		{"<b>Ash</b> & Ember", "Ash & Ember"},
		{`The "Old" King's Road`, `The "Old" King's Road`},
		{"<script>x</script>Keep", "Keep"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
