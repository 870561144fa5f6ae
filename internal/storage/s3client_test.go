package storage

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"My Mortgage (final).pdf", "My Mortgage (final).pdf"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\windows\\system.ini", "system.ini"},
		{"dir/sub/notice.png", "notice.png"},
		{"file\x00name.pdf", "filename.pdf"},
		{"..", "file"},
		{"", "file"},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisabledClientIsSafe(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Error("nil client must report disabled")
	}
}
