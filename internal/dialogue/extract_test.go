package dialogue

import "testing"

func TestExtractSpeakable(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello! (你好！)", "Hello!"},
		{"Hi there", "Hi there"},
		{"(仅中文)", ""},
		{"Would you like a latte?（你想要拿铁吗？）", "Would you like a latte?"},
		{"Take the (second) left (第二个路口) please", "Take the (second) left  please"},
		{"  Sure.  ", "Sure."},
	}
	for _, tc := range cases {
		if got := ExtractSpeakable(tc.in); got != tc.want {
			t.Fatalf("ExtractSpeakable(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSpeakableNeedsMoreThanThreeRunes(t *testing.T) {
	for in, want := range map[string]bool{
		"":      false,
		"Hi!":   false,
		"Okay":  true,
		"你好世界": true,
		"好的":    false,
	} {
		if got := speakable(in); got != want {
			t.Fatalf("speakable(%q) = %v, want %v", in, got, want)
		}
	}
}
