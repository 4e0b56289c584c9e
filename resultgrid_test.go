package resultgrid_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/resultgrid"
)

const fruits = `[
{"_original_source":"{\"name\":\"Banana\"}","_self":"https://h/v1/resources/org/proj/_/banana"},
{"_original_source":"{\"name\":\"Apple\"}","_self":"https://h/v1/resources/org/proj/_/apple"},
{"_original_source":"{\"name\":\"Cherry\"}","_self":"https://h/v1/resources/org/proj/_/cherry"}
]`

func labelField(t *testing.T) []resultgrid.Field {
	t.Helper()
	f, err := resultgrid.NewField("label", "Label", "", true, 0)
	if err != nil {
		t.Fatal(err)
	}
	return []resultgrid.Field{f}
}

func fruitPage(t *testing.T) resultgrid.Page {
	t.Helper()
	p, err := resultgrid.DecodeHits([]byte(fruits))
	if err != nil {
		t.Fatalf("DecodeHits: %v", err)
	}
	return p
}

func labels(v resultgrid.View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Cells[0].String()
	}
	return out
}

func TestTable_LocalSortCycle(t *testing.T) {
	tbl, err := resultgrid.New(labelField(t), resultgrid.WithStudio())
	if err != nil {
		t.Fatal(err)
	}
	tbl.ReplaceResults(fruitPage(t))

	steps := [][]string{
		{"Apple", "Banana", "Cherry"},
		{"Cherry", "Banana", "Apple"},
		{"Banana", "Apple", "Cherry"},
	}
	for i, want := range steps {
		tbl.ToggleSort("label", false)
		if got := labels(tbl.View()); !slices.Equal(got, want) {
			t.Errorf("toggle %d: rows = %v, want %v", i+1, got, want)
		}
	}

	tbl.SetSearchText("err")
	if got := labels(tbl.View()); !slices.Equal(got, []string{"Cherry"}) {
		t.Errorf("search rows = %v", got)
	}
	tbl.Reset()
	if got := len(tbl.View().Rows); got != 3 {
		t.Errorf("rows after reset = %d", got)
	}
}

func TestTable_Delegated(t *testing.T) {
	var intents []resultgrid.SortIntent
	tbl, err := resultgrid.New(labelField(t),
		resultgrid.WithSortDelegate(func(i resultgrid.SortIntent) { intents = append(intents, i) }))
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Mode() != resultgrid.Delegated {
		t.Fatalf("mode = %v", tbl.Mode())
	}
	tbl.ReplaceResults(fruitPage(t))

	tbl.ToggleSort("label", false)
	tbl.ToggleSort("label", false)
	if got := labels(tbl.View()); !slices.Equal(got, []string{"Banana", "Apple", "Cherry"}) {
		t.Errorf("delegated mode reordered rows: %v", got)
	}
	if len(intents) != 2 {
		t.Fatalf("intents = %d", len(intents))
	}
	d, ok := intents[1].First()
	if !ok || d.Key != "label" || d.Direction != resultgrid.Descending {
		t.Errorf("last intent = %+v", d)
	}
}

func TestTable_ReportsMalformedHits(t *testing.T) {
	var reported []error
	tbl, err := resultgrid.New(labelField(t), resultgrid.WithErrorReporter(func(err error) {
		reported = append(reported, err)
	}))
	if err != nil {
		t.Fatal(err)
	}

	page, err := resultgrid.DecodeHits([]byte(`[{"_original_source":"{oops","_self":"x"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if dropped := tbl.ReplaceResults(page); dropped != 1 {
		t.Errorf("dropped = %d", dropped)
	}
	if len(reported) != 1 || !errors.Is(reported[0], resultgrid.ErrMalformedDocument) {
		t.Errorf("reported = %v", reported)
	}
}

func TestTable_Activate(t *testing.T) {
	var got resultgrid.Row
	tbl, err := resultgrid.New(resultgrid.DefaultFields(),
		resultgrid.WithRowActivation(func(r resultgrid.Row) { got = r }))
	if err != nil {
		t.Fatal(err)
	}
	tbl.ReplaceResults(fruitPage(t))

	if err := tbl.Activate("https://h/v1/resources/org/proj/_/apple"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got.GetString("name") != "Apple" {
		t.Errorf("activated = %v", got.Map())
	}
	if err := tbl.Activate("nope"); !errors.Is(err, resultgrid.ErrRowNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestNew_RejectsDuplicateTitles(t *testing.T) {
	a, _ := resultgrid.NewField("a", "Same", "", false, 0)
	b, _ := resultgrid.NewField("b", "Same", "", false, 1)
	if _, err := resultgrid.New([]resultgrid.Field{a, b}); !errors.Is(err, resultgrid.ErrInvalidDescriptor) {
		t.Errorf("err = %v, want ErrInvalidDescriptor", err)
	}
}
