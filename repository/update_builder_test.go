package repository

import (
	"errors"
	"reflect"
	"testing"
)

func TestSetBuilder_Build(t *testing.T) {
	var b setBuilder
	if _, _, err := b.build("projects", 1); !errors.Is(err, ErrNoFields) {
		t.Fatalf("empty builder err = %v, want ErrNoFields", err)
	}

	b.set("project_name", "New")
	b.set("description", nil)
	b.setRaw("updated_at", "CURRENT_TIMESTAMP")
	q, args, err := b.build("projects", 42)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := "UPDATE projects SET project_name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if q != want {
		t.Fatalf("query = %q\nwant    %q", q, want)
	}
	if !reflect.DeepEqual(args, []any{"New", nil, int64(42)}) {
		t.Fatalf("args = %#v", args)
	}
}

func TestSetBuilder_RawOnlyIsEmpty(t *testing.T) {
	var b setBuilder
	b.setRaw("updated_at", "CURRENT_TIMESTAMP")
	if _, _, err := b.build("bugs", 1); !errors.Is(err, ErrNoFields) {
		t.Fatalf("raw-only builder err = %v, want ErrNoFields", err)
	}
}
