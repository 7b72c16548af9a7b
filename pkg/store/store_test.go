package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func seed() []*fact.Fact {
	return []*fact.Fact{
		fact.New(1, at(8, 0), at(9, 0), "a"),
		fact.New(2, at(9, 0), at(10, 0), "b"),
		fact.New(3, at(11, 0), at(12, 0), "c"),
	}
}

// stores runs fn against every Persistence implementation, seeded alike.
func stores(t *testing.T, fn func(t *testing.T, p Persistence)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory(seed()))
	})
	t.Run("disk", func(t *testing.T) {
		d := NewDisk(t.TempDir())
		// Seeding through Save assigns pks 1, 2, 3 in order.
		var fresh []*fact.Fact
		for i, f := range seed() {
			c := f.Copy()
			c.PK = int64(-1 - i)
			fresh = append(fresh, c)
		}
		saved, err := d.Save(context.Background(), fresh)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		for i, f := range saved {
			if f.PK != int64(i+1) {
				t.Fatalf("expected pk %d, got %d", i+1, f.PK)
			}
		}
		fn(t, d)
	})
}

func TestAntecedentAndSubsequent(t *testing.T) {
	stores(t, func(t *testing.T, p Persistence) {
		ctx := context.Background()
		ref := fact.New(3, at(11, 0), at(12, 0), "c")

		prev, err := p.Antecedent(ctx, ref)
		if err != nil {
			t.Fatalf("antecedent: %v", err)
		}
		if prev == nil || prev.PK != 2 {
			t.Fatalf("expected #2 before #3, got %s", prev.Short())
		}

		next, err := p.Subsequent(ctx, prev)
		if err != nil {
			t.Fatalf("subsequent: %v", err)
		}
		if next == nil || next.PK != 3 {
			t.Fatalf("expected #3 after #2, got %s", next.Short())
		}

		last, err := p.Subsequent(ctx, ref)
		if err != nil {
			t.Fatalf("subsequent: %v", err)
		}
		if last != nil {
			t.Fatalf("expected nothing after #3, got %s", last.Short())
		}

		newFact := fact.New(-1, at(10, 0), at(11, 0), "new")
		prev, err = p.Antecedent(ctx, newFact)
		if err != nil || prev == nil || prev.PK != 2 {
			t.Fatalf("expected #2 before an unsaved fact, got %s (%v)", prev.Short(), err)
		}
	})
}

func TestSurrounding(t *testing.T) {
	stores(t, func(t *testing.T, p Persistence) {
		ctx := context.Background()
		got, err := p.Surrounding(ctx, at(9, 0), true)
		if err != nil {
			t.Fatalf("surrounding: %v", err)
		}
		if len(got) != 2 || got[0].PK != 1 || got[1].PK != 2 {
			t.Fatalf("expected #1 and #2 around 09:00, got %v", got)
		}

		got, err = p.Surrounding(ctx, at(9, 0), false)
		if err != nil {
			t.Fatalf("surrounding: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected nothing strictly around 09:00, got %v", got)
		}

		got, err = p.Surrounding(ctx, at(10, 30), true)
		if err != nil {
			t.Fatalf("surrounding: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected nothing in the gap, got %v", got)
		}
	})
}

func TestGetAll(t *testing.T) {
	stores(t, func(t *testing.T, p Persistence) {
		ctx := context.Background()
		tests := []struct {
			name string
			q    fact.Query
			want []int64
		}{
			{"everything", fact.Query{}, []int64{1, 2, 3}},
			{"latest", fact.Query{Order: fact.Descending, Limit: 1}, []int64{3}},
			{"until", fact.Query{Order: fact.Descending, Limit: 1, Until: at(10, 30)}, []int64{2}},
			{"since", fact.Query{Order: fact.Ascending, Since: at(9, 30)}, []int64{2, 3}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				got, err := p.GetAll(ctx, tc.q)
				if err != nil {
					t.Fatalf("get all: %v", err)
				}
				if len(got) != len(tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
				for i, f := range got {
					if f.PK != tc.want[i] {
						t.Fatalf("expected %v, got %v", tc.want, got)
					}
				}
			})
		}
	})
}

func TestSave(t *testing.T) {
	stores(t, func(t *testing.T, p Persistence) {
		ctx := context.Background()

		moved := fact.New(3, at(11, 30), at(12, 0), "c")
		moved.Tags = []string{"late"}
		gone := fact.New(1, at(8, 0), at(9, 0), "a")
		gone.Deleted = true
		skipped := fact.New(-2, at(7, 0), at(8, 0), "")
		skipped.Deleted = true
		added := fact.New(-1, at(12, 0), at(13, 0), "d")
		added.AddReason(fact.ReasonUnsaved)

		saved, err := p.Save(ctx, []*fact.Fact{moved, gone, skipped, added})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if len(saved) != 2 {
			t.Fatalf("expected two facts written, got %v", saved)
		}
		if saved[1].PK != 4 {
			t.Fatalf("expected new fact to get pk 4, got %d", saved[1].PK)
		}
		if saved[1].Dirty() {
			t.Fatalf("expected saved fact to be clean")
		}

		if _, err := p.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected #1 erased, got %v", err)
		}
		got, err := p.Get(ctx, 3)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.Start.Equal(at(11, 30)) || len(got.Tags) != 1 {
			t.Fatalf("expected #3 updated, got %s", got)
		}
		all, err := p.GetAll(ctx, fact.Query{})
		if err != nil {
			t.Fatalf("get all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected three stored facts, got %v", all)
		}
	})
}

func TestKeyRoundTrip(t *testing.T) {
	f := fact.New(42, at(8, 0), at(9, 0), "a")
	key := toKey(f)
	if key != "fact-2024-03-04-42" {
		t.Fatalf("unexpected key %q", key)
	}
	if got := pathToKeyTransform(keyToPathTransform(key)); got != key {
		t.Fatalf("expected %q, got %q", key, got)
	}
	pk, err := pkFromKey(key)
	if err != nil || pk != 42 {
		t.Fatalf("expected pk 42, got %d (%v)", pk, err)
	}
}
