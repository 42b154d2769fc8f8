package util

import "testing"

func TestHashUserKeyIsStableHex(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "resume.pdf", want: "resume.pdf"},
		{name: "slashes replaced", in: "a/b\\c.txt", want: "a_b_c.txt"},
		{name: "trimmed", in: "  notes.md  ", want: "notes.md"},
		{name: "traversal rejected", in: "../../etc/passwd", wantErr: true},
		{name: "empty rejected", in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeFileName(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
