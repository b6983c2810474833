package lang

import "testing"

func TestFromPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  string
	}{
		{"+393331234567", "it"},
		{"whatsapp:+393331234567", "it"},
		{"+39 333 123-4567", "it"},
		{"+34612345678", "es"},
		{"+351912345678", "pt"}, // must not be shadowed by "35x" neighbours
		{"+5511912345678", "pt"},
		{"+14155552671", "en"},
		{"+442071234567", "en"},
		{"+4915112345678", "de"},
		{"+861012345678", "en"}, // unknown prefix falls back
		{"", "en"},
		{"whatsapp:", "en"},
	}

	for _, tc := range cases {
		if got := FromPhone(tc.phone); got != tc.want {
			t.Errorf("FromPhone(%q) = %q, want %q", tc.phone, got, tc.want)
		}
	}
}

func TestLongestPrefixWins(t *testing.T) {
	// "1" (US) is a literal prefix of nothing in the table, but "351"
	// shares its first digit with "39"-adjacent codes; ordering must not
	// matter.
	if got := FromPhone("+351210000000"); got != "pt" {
		t.Fatalf("expected pt for +351, got %q", got)
	}
	if got := FromPhone("+390612345678"); got != "it" {
		t.Fatalf("expected it for +39, got %q", got)
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("whatsapp:+39 333 1234567"); got != "393331234567" {
		t.Fatalf("Digits = %q", got)
	}
}
