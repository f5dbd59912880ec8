package logit

import (
	"testing"

	"cbctsurvey/domain/table"
)

func TestCollapse_BlanksPassThrough(t *testing.T) {
	tbl, err := table.New([]string{"size"}, [][]string{
		{"one"}, {""}, {"two to three"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = Collapse(tbl, "size", "size_group", func(level string) string {
		if level == "one" {
			return "solo"
		}
		return "group"
	})
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}

	got, err := tbl.Column("size_group")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	want := []string{"solo", "", "group"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCollapse_MoreThanTwoBucketsFails(t *testing.T) {
	tbl, err := table.New([]string{"size"}, [][]string{
		{"a"}, {"b"}, {"c"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = Collapse(tbl, "size", "size_group", func(level string) string { return level })
	if err == nil {
		t.Fatal("expected an error for a three-bucket partition")
	}
}
