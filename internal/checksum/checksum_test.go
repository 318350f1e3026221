package checksum

import "testing"

func TestSum(t *testing.T) {
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different input, same digest")
	}
}

func TestFromIfMatch(t *testing.T) {
	cases := map[string]string{
		`"abc"`:   "abc",
		`W/"abc"`: "abc",
		"abc":     "abc",
		" ":       "",
		"*":       "",
		`"*"`:     "",
	}
	for in, want := range cases {
		if got := FromIfMatch(in); got != want {
			t.Errorf("FromIfMatch(%q) = %q, want %q", in, got, want)
		}
	}
	if ETag("abc") != `"abc"` {
		t.Errorf("ETag = %s", ETag("abc"))
	}
}
