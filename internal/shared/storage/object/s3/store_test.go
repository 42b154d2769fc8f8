package s3

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestNormalizePrefix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"uploads", "uploads/"},
		{"uploads/", "uploads/"},
		{" nested/path ", "nested/path/"},
	}
	for _, tc := range cases {
		if got := normalizePrefix(tc.in); got != tc.want {
			t.Fatalf("normalizePrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCountingReaderTracksBytes(t *testing.T) {
	cr := &countingReader{r: strings.NewReader("hello world")}
	data, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected data: %q", data)
	}
	if cr.n != int64(len("hello world")) {
		t.Fatalf("expected count %d, got %d", len("hello world"), cr.n)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), "us-east-1", "", ""); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}
