package config

import (
	"fmt"

	"github.com/kailas-cloud/resultgrid/internal/domain/field"
)

// Descriptors converts configured fields into field descriptors.
func Descriptors(fields []FieldConfig) ([]field.Descriptor, error) {
	out := make([]field.Descriptor, 0, len(fields))
	for i, f := range fields {
		d, err := field.New(f.Key, f.Title, f.DataIndex, f.Sortable, f.DisplayIndex)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out = append(out, d)
	}
	if err := field.ValidateSet(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DashboardDescriptors resolves every configured dashboard. The default
// dashboard falls back to the built-in field set when it is not configured.
func (c *Config) DashboardDescriptors() (map[string][]field.Descriptor, error) {
	out := make(map[string][]field.Descriptor, len(c.Dashboards)+1)
	for name, fields := range c.Dashboards {
		ds, err := Descriptors(fields)
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", name, err)
		}
		out[name] = ds
	}
	if _, ok := out[DefaultDashboard]; !ok {
		out[DefaultDashboard] = field.Defaults()
	}
	return out, nil
}
