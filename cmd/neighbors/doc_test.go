package main

import (
	"go/format"
	"os"
	"testing"
)

func TestSourcesFormatted(t *testing.T) {
	for _, name := range []string{"neighbors.go", "config.go"} {
		src, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		out, err := format.Source(src)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if string(out) != string(src) {
			t.Errorf("Expected %s to be gofmt-clean, including doc headings", name)
		}
	}
}
