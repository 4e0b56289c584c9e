package field

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/resultgrid/internal/domain"
)

func TestNew_Valid(t *testing.T) {
	d, err := New("project", "Project", "_project", true, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Key() != "project" || d.Title() != "Project" || d.DataIndex() != "_project" {
		t.Errorf("unexpected descriptor: %+v", d)
	}
	if !d.Sortable() || d.DisplayIndex() != 1 {
		t.Errorf("unexpected sortable/displayIndex: %v %d", d.Sortable(), d.DisplayIndex())
	}
}

func TestNew_DataIndexDefaultsToKey(t *testing.T) {
	d, err := New("description", "Description", "", false, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DataIndex() != "description" {
		t.Errorf("DataIndex() = %q, want description", d.DataIndex())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name, key, title string
	}{
		{"empty key", "", "Title"},
		{"empty title", "key", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.key, tt.title, "", false, 0)
			if !errors.Is(err, domain.ErrInvalidDescriptor) {
				t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
			}
		})
	}
}

func TestValidateSet_DuplicateTitle(t *testing.T) {
	a, _ := New("a", "Same", "", false, 0)
	b, _ := New("b", "Same", "", false, 1)
	if err := ValidateSet([]Descriptor{a, b}); !errors.Is(err, domain.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestValidateSet_DuplicateKey(t *testing.T) {
	a, _ := New("label", "Label", "", true, 0)
	b, _ := New("label", "Name", "name", true, 1)
	if err := ValidateSet([]Descriptor{a, b}); !errors.Is(err, domain.ErrInvalidDescriptor) {
		t.Fatalf("expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	ds := Defaults()
	if len(ds) != 4 {
		t.Fatalf("expected 4 default fields, got %d", len(ds))
	}
	if err := ValidateSet(ds); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if ds[0].Sortable() {
		t.Error("label is not sortable by default")
	}
	if ds[2].DataIndex() != "_constrainedBy" {
		t.Errorf("schema dataIndex = %q", ds[2].DataIndex())
	}
}
