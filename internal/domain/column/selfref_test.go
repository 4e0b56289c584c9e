package column

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/resultgrid/internal/domain"
)

func TestParseSelf(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		deployment string
		entity     string
		org        string
		project    string
		rest       int
	}{
		{"with base path", selfURL, "https://bbp.example.org/nexus", "resources", "my-org", "my-proj", 2},
		{"at root", "http://localhost:8080/v1/files/org/proj/file-1", "http://localhost:8080", "files", "org", "proj", 1},
		{"project url", "https://h/v1/projects/org/proj", "https://h", "projects", "org", "proj", 0},
		{"escaped segments", "https://h/v1/resources/my%20org/p/_/x", "https://h", "resources", "my org", "p", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseSelf(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.Deployment != tt.deployment || ref.EntityType != tt.entity ||
				ref.Org != tt.org || ref.Project != tt.project || len(ref.Rest) != tt.rest {
				t.Errorf("ParseSelf(%q) = %+v", tt.in, ref)
			}
		})
	}
}

func TestParseSelf_Invalid(t *testing.T) {
	for _, in := range []string{"", "https://h/no/version/here", "https://h/v1/resources/org", "::"} {
		if _, err := ParseSelf(in); !errors.Is(err, domain.ErrInvalidSelfReference) {
			t.Errorf("ParseSelf(%q) error = %v, want ErrInvalidSelfReference", in, err)
		}
	}
}

func TestTerminalSegment(t *testing.T) {
	tests := map[string]string{
		"https://x/a/b":       "b",
		"https://x/a/b/":      "b",
		"https://x/vocab#Cls": "Cls",
		"plain":               "plain",
		"":                    "",
	}
	for in, want := range tests {
		if got := TerminalSegment(in); got != want {
			t.Errorf("TerminalSegment(%q) = %q, want %q", in, got, want)
		}
	}
}
