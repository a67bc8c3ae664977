package s3

import "testing"

func TestParseEndpoint(t *testing.T) {
	cases := map[string]string{
		"http://localhost:9000":  "localhost:9000",
		"https://s3.example.com": "s3.example.com",
		"localhost:9000":         "localhost:9000",
	}
	for in, want := range cases {
		if got := parseEndpoint(in); got != want {
			t.Fatalf("parseEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanKey(t *testing.T) {
	if got, err := cleanKey(" /fixtures/villas.json/ "); err != nil || got != "fixtures/villas.json" {
		t.Fatalf("unexpected key %q %v", got, err)
	}
	if _, err := cleanKey(" / "); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestNewSnapshotStoreRequiresBucket(t *testing.T) {
	if _, err := NewSnapshotStore(Options{Endpoint: "localhost:9000"}, nil); err == nil {
		t.Fatal("expected error without bucket")
	}
	if _, err := NewSnapshotStore(Options{Bucket: "b"}, nil); err == nil {
		t.Fatal("expected error without endpoint")
	}
	if _, err := NewSnapshotStore(Options{Endpoint: "http://localhost:9000", Bucket: "b"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
