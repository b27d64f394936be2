package phone

import "testing"

func TestNormalizeStripsFormatting(t *testing.T) {
	cases := map[string]string{
		"+1 (555) 123-4567": "15551234567",
		"555-123-4567":      "5551234567",
		"+52 55 1234 5678":  "5215512345678",
		"  +34 600 00 00  ": "346000000",
		"":                  "",
		"abc":               "",
	}
	for raw, want := range cases {
		if got := Normalize(raw); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+1 (555) 123-4567", "5215512345678", "", "+++12"}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", raw, twice, once)
		}
	}
}

func TestForWhatsApp(t *testing.T) {
	if got := ForWhatsApp("+52 55 1234 5678"); got != "whatsapp:+5215512345678" {
		t.Fatalf("unexpected recipient: %q", got)
	}
	if got := ForWhatsApp("whatsapp:+123"); got != "whatsapp:+123" {
		t.Fatalf("prefixed input should pass through, got %q", got)
	}
	if got := ForWhatsApp("nope"); got != "" {
		t.Fatalf("expected empty recipient for garbage input, got %q", got)
	}
}
