package cache

import (
	"strings"
	"testing"
)

func TestMakeKeyNormalizes(t *testing.T) {
	variants := []string{
		"Error: db down",
		"error db down",
		"  ERROR:::   db   down!!! ",
		"error\tdb\ndown.",
	}
	want := MakeKey(variants[0])
	for _, v := range variants[1:] {
		if got := MakeKey(v); got != want {
			t.Errorf("MakeKey(%q) = %s, want %s", v, got, want)
		}
	}
}

func TestMakeKeyDistinguishesContent(t *testing.T) {
	if MakeKey("error db down") == MakeKey("error db up") {
		t.Error("distinct text should produce distinct keys")
	}
}

func TestMakeKeyFixedLength(t *testing.T) {
	for _, in := range []string{"", "x", strings.Repeat("long text ", 1000)} {
		if got := len(MakeKey(in)); got != 64 {
			t.Errorf("len(MakeKey(%d chars)) = %d, want 64", len(in), got)
		}
	}
}

func TestMakeKeyTruncatesInput(t *testing.T) {
	base := strings.Repeat("a", maxKeyInput)
	if MakeKey(base+"b") != MakeKey(base+"c") {
		t.Error("text beyond the normalized bound should not affect the key")
	}
}
