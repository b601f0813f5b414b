package cryptox

import "testing"

func TestSum256KnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, c := range cases {
		sum := Sum256([]byte(c.in))
		got := HexEncode(sum[:])
		if got != c.want {
			t.Errorf("Sum256(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestHMACSHA256KnownVector(t *testing.T) {
	// RFC 4231 test case 1.
	key := make([]byte, 20)
	for i := range key {
		key[i] = 0x0b
	}
	data := []byte("Hi There")
	want := "b0344c61d8db38535ca8afceaf0bf12b881dc200c9833da726e9376c2e32cff7"

	sum := HMACSHA256(key, data)
	got := HexEncode(sum[:])
	if got != want {
		t.Errorf("HMACSHA256 = %s, want %s", got, want)
	}
}
