package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Table.DefaultPageSize = 200

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when default page size exceeds max")
	}
	expected := "table.default_page_size (200) must not exceed table.max_page_size (100)"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Dashboards(t *testing.T) {
	tests := []struct {
		name    string
		fields  []FieldConfig
		wantErr string
	}{
		{"valid", []FieldConfig{{Key: "label", Title: "Label"}, {Key: "project", Title: "Project"}}, ""},
		{"missing key", []FieldConfig{{Title: "Label"}}, "dashboards.d[0].key is required"},
		{"missing title", []FieldConfig{{Key: "label"}}, "dashboards.d[0].title is required"},
		{"duplicate title", []FieldConfig{{Key: "a", Title: "X"}, {Key: "b", Title: "X"}}, `dashboards.d[1].title "X" is duplicated`},
		{"duplicate key", []FieldConfig{{Key: "a", Title: "X"}, {Key: "a", Title: "Y"}}, `dashboards.d[1].key "a" is duplicated`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Dashboards = map[string][]FieldConfig{"d": tt.fields}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.Name != "resultgrid_hits" {
		t.Errorf("expected Index.Name='resultgrid_hits', got %q", cfg.Index.Name)
	}
	if cfg.Index.KeyPrefix != "resultgrid:hit:" {
		t.Errorf("expected KeyPrefix='resultgrid:hit:', got %q", cfg.Index.KeyPrefix)
	}
	if len(cfg.Index.SortableFields) == 0 {
		t.Error("expected default sortable fields")
	}
	if cfg.Table.DefaultPageSize != 20 || cfg.Table.MaxPageSize != 100 {
		t.Errorf("unexpected page sizes %d/%d", cfg.Table.DefaultPageSize, cfg.Table.MaxPageSize)
	}
	if cfg.Table.SessionTTLSec != 1800 {
		t.Errorf("expected SessionTTLSec=1800, got %d", cfg.Table.SessionTTLSec)
	}
	if cfg.Breaker.ConsecutiveFailures != 5 {
		t.Errorf("expected ConsecutiveFailures=5, got %d", cfg.Breaker.ConsecutiveFailures)
	}
	if cfg.NATS.SubjectPrefix != "resultgrid.tables" {
		t.Errorf("expected SubjectPrefix='resultgrid.tables', got %q", cfg.NATS.SubjectPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index: IndexConfig{Name: "idx", KeyPrefix: "custom:", SortableFields: []string{"a"}},
		Table: TableConfig{DefaultPageSize: 50, MaxPageSize: 500},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Index.KeyPrefix)
	}
	if len(cfg.Index.SortableFields) != 1 {
		t.Errorf("sortable fields overridden: %v", cfg.Index.SortableFields)
	}
	if cfg.Table.MaxPageSize != 500 {
		t.Errorf("expected MaxPageSize=500, got %d", cfg.Table.MaxPageSize)
	}
}

func TestDashboard(t *testing.T) {
	cfg := validConfig()
	cfg.Dashboards = map[string][]FieldConfig{"datasets": {{Key: "label", Title: "Label"}}}

	if f, ok := cfg.Dashboard("datasets"); !ok || len(f) != 1 {
		t.Errorf("datasets = %v, %v", f, ok)
	}
	if f, ok := cfg.Dashboard(""); !ok || f != nil {
		t.Errorf("implicit default dashboard = %v, %v", f, ok)
	}
	if _, ok := cfg.Dashboard("missing"); ok {
		t.Error("unknown dashboard should not resolve")
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("RESULTGRID_TEST_PORT", "9090")
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := strings.Join([]string{
		"http:",
		"  port: ${RESULTGRID_TEST_PORT}",
		"database:",
		"  addrs: [\"${RESULTGRID_TEST_ADDR:-localhost:6379}\"]",
		"dashboards:",
		"  default:",
		"    - key: label",
		"      title: Label",
		"    - key: project",
		"      title: Project",
		"      data_index: _project",
		"      sortable: true",
		"      display_index: 1",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	fields, _ := cfg.Dashboard("")
	if len(fields) != 2 || !fields[1].Sortable || fields[1].DataIndex != "_project" {
		t.Errorf("dashboard = %+v", fields)
	}
}

func TestLoadFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := "- key: label\n  title: Label\n- key: label\n  title: Label\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFields(path); err == nil {
		t.Fatal("expected duplicate title error")
	}
}

func TestDashboardDescriptors(t *testing.T) {
	cfg := validConfig()
	cfg.Dashboards = map[string][]FieldConfig{
		"datasets": {
			{Key: "label", Title: "Label", Sortable: true},
			{Key: "project", Title: "Project", DataIndex: "_project", Sortable: true, DisplayIndex: 1},
		},
	}

	all, err := cfg.DashboardDescriptors()
	if err != nil {
		t.Fatalf("DashboardDescriptors: %v", err)
	}
	if got := all["datasets"]; len(got) != 2 || got[1].DataIndex() != "_project" || !got[1].Sortable() {
		t.Errorf("datasets = %+v", got)
	}
	if len(all[DefaultDashboard]) == 0 {
		t.Error("default dashboard should fall back to the built-in fields")
	}
}

func TestDescriptors_RejectsEmptyKey(t *testing.T) {
	if _, err := Descriptors([]FieldConfig{{Title: "Label"}}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
