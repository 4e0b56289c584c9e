package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/config"
	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/export"
	"github.com/kailas-cloud/resultgrid/internal/output"
	"github.com/kailas-cloud/resultgrid/internal/render"
	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

type renderOptions struct {
	hits    string
	fields  string
	search  string
	sort    string
	columns []string
	studio  bool
	xlsx    string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved search response",
		Long: `Render reads a search response (or a JSON array of _source objects)
and prints it as a table. Malformed hits are dropped and reported with --verbose.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, o, root.logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.hits, "hits", "", "search response file (required)")
	f.StringVar(&o.fields, "fields", "", "field descriptor YAML (default: built-in fields)")
	f.StringVar(&o.search, "search", "", "free-text row filter")
	f.StringVar(&o.sort, "sort", "", "sort column as key[:asc|desc]")
	f.StringSliceVar(&o.columns, "columns", nil, "column titles to show (implies --studio)")
	f.BoolVar(&o.studio, "studio", false, "enable the studio view")
	f.StringVar(&o.xlsx, "xlsx", "", "also write the table to this .xlsx file")
	_ = cmd.MarkFlagRequired("hits")
	return cmd
}

func runRender(cmd *cobra.Command, o *renderOptions, logger *zap.Logger) error {
	data, err := os.ReadFile(filepath.Clean(o.hits))
	if err != nil {
		return fmt.Errorf("read hits: %w", err)
	}
	page, err := hit.DecodeResponse(data)
	if err != nil {
		return err
	}

	descriptors, err := loadDescriptors(o.fields)
	if err != nil {
		return err
	}

	opts := []table.Option{
		table.WithLogger(logger),
		table.WithRenderer(render.New()),
	}
	if o.studio || len(o.columns) > 0 {
		opts = append(opts, table.WithStudio())
	}
	engine, err := table.New(descriptors, opts...)
	if err != nil {
		return err
	}

	if dropped := engine.ReplaceResults(page); dropped > 0 {
		logger.Warn("dropped malformed hits", zap.Int("dropped", dropped))
	}
	engine.SetSearchText(o.search)
	engine.SelectColumns(o.columns)

	if o.sort != "" {
		if err := applySort(engine, o.sort); err != nil {
			return err
		}
	}

	view := engine.View()
	if err := output.Render(cmd.OutOrStdout(), view); err != nil {
		return err
	}
	if o.xlsx != "" {
		return writeXLSX(o.xlsx, view)
	}
	return nil
}

func loadDescriptors(path string) ([]field.Descriptor, error) {
	if path == "" {
		return field.Defaults(), nil
	}
	fields, err := config.LoadFields(path)
	if err != nil {
		return nil, err
	}
	return config.Descriptors(fields)
}

// applySort toggles the column once for ascending and twice for descending.
func applySort(e *table.Engine, flag string) error {
	key, dir, err := output.ParseSort(flag)
	if err != nil {
		return err
	}
	toggles := 1
	if dir == sorting.Descending {
		toggles = 2
	}
	for range toggles {
		if !e.ToggleSort(key, false) {
			return fmt.Errorf("column %q is not sortable", key)
		}
	}
	return nil
}

func writeXLSX(path string, v table.View) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.XLSX(f, v)
}
