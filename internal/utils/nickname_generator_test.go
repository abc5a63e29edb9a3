package utils

import (
	"regexp"
	"testing"
)

func TestGenerateDisplayName(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z]+_[A-Za-z]+_\d{4}$`)
	for i := 0; i < 50; i++ {
		name, err := GenerateDisplayName()
		if err != nil {
			t.Fatalf("failed to generate: %v", err)
		}
		if !pattern.MatchString(name) {
			t.Fatalf("unexpected format %q", name)
		}
	}
}
