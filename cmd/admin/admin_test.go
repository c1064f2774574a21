package main

import "testing"

func TestEndpoint(t *testing.T) {
	cases := map[string]string{
		"http://127.0.0.1:8080": "http://127.0.0.1:8080/admin/v1/state",
		" http://localhost:9/ ": "http://localhost:9/admin/v1/state",
		"https://example.org//": "https://example.org/admin/v1/state",
	}
	for in, want := range cases {
		if got := endpoint(in, "state"); got != want {
			t.Fatalf("endpoint(%q)=%q want %q", in, got, want)
		}
	}
}
