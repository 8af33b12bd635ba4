package voice

import "testing"

func TestSpeechText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"emphasis and emoji", "Sure 😊 **let's** order a latte!", "Sure let's order a latte!"},
		{"link label kept", "Check [the menu](https://example.com/menu) first.", "Check the menu first."},
		{"bare url dropped", "See https://example.com now", "See now"},
		{"whitespace collapsed", "Hello,\n\n  how are\tyou?", "Hello, how are you?"},
		{"cjk untouched", "你好，欢迎光临。", "你好，欢迎光临。"},
		{"only symbols", "🎉✨", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := speechText(tc.in); got != tc.want {
				t.Fatalf("speechText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
