package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
)

func record(id, hash string, at time.Time) Record {
	return Record{
		RunID:     id,
		JobHash:   hash,
		CreatedAt: at,
		Layout: layout.Export{
			Pins: []geom.Shape{geom.NewShape("clk", geom.R(0, 0, 1, 1), "m3")},
		},
	}
}

func TestMemorySaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	defer s.Close(ctx)

	r := record("run-1", "h1", time.Unix(100, 0))
	if err := s.Save(ctx, r); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := s.Load(ctx, "run-1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.JobHash != "h1" || len(got.Layout.Pins) != 1 {
		t.Errorf("Load() = %+v", got)
	}

	r.Unclassified = []string{"foo"}
	if err := s.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() after replace = %d, want 1", s.Len())
	}

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryLatest(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	base := time.Unix(1000, 0)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, record(id, "h", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Save(ctx, record("other", "h2", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err := s.Latest(ctx, "h")
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != "c" {
		t.Errorf("Latest() = %s, want c", got.RunID)
	}
	if _, err := s.Latest(ctx, "none"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Latest(none) error = %v, want NOT_FOUND", err)
	}
}

func TestMemoryValidate(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	tests := []struct {
		name string
		r    Record
	}{
		{"no run id", Record{JobHash: "h"}},
		{"no job hash", Record{RunID: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save(ctx, tt.r); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Save() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestOpenMongoInvalid(t *testing.T) {
	ctx := context.Background()
	if _, err := OpenMongo(ctx, "mongodb://localhost:27017", ""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("OpenMongo(empty db) error = %v, want INVALID_CONFIG", err)
	}
	if _, err := OpenMongo(ctx, "postgres://nope", "macroroute"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("OpenMongo(bad scheme) error = %v, want INVALID_CONFIG", err)
	}
}
