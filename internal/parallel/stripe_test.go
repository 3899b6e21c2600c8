package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		parts int
		want  []Stripe
	}{
		{"even", 16, 4, []Stripe{{0, 4}, {4, 8}, {8, 12}, {12, 16}}},
		{"remainder to last", 10, 3, []Stripe{{0, 3}, {3, 6}, {6, 10}}},
		{"single", 7, 1, []Stripe{{0, 7}}},
		{"more parts than rows", 2, 4, []Stripe{{0, 0}, {0, 0}, {0, 0}, {0, 2}}},
		{"zero parts", 5, 0, []Stripe{{0, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.n, tt.parts)
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%d, %d) = %v, want %v", tt.n, tt.parts, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stripe %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitCoversRange(t *testing.T) {
	for n := 0; n < 50; n++ {
		for parts := 1; parts < 9; parts++ {
			next := 0
			for _, s := range Split(n, parts) {
				if s.Len() == 0 {
					continue
				}
				if s.Start != next {
					t.Fatalf("Split(%d, %d): gap or overlap at %d", n, parts, s.Start)
				}
				next = s.End
			}
			if next != n {
				t.Fatalf("Split(%d, %d) covers [0, %d)", n, parts, next)
			}
		}
	}
}

func TestRunPassesBarrier(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const width, height = 30, 20
	var rowsDone atomic.Int64
	var violations atomic.Int64
	var mu sync.Mutex
	var cols []Stripe

	RunPasses(pool, 4, width, height,
		func(s Stripe) {
			rowsDone.Add(int64(s.Len()))
		},
		func(s Stripe) {
			if rowsDone.Load() != height {
				violations.Add(1)
			}
			mu.Lock()
			cols = append(cols, s)
			mu.Unlock()
		},
	)

	if violations.Load() != 0 {
		t.Errorf("%d column stripes started before every row stripe finished", violations.Load())
	}
	total := 0
	for _, s := range cols {
		total += s.Len()
	}
	if total != width {
		t.Errorf("column stripes cover %d columns, want %d", total, width)
	}
}

func TestRunPassesInline(t *testing.T) {
	var order []string
	RunPasses(nil, 2, 4, 4,
		func(Stripe) { order = append(order, "row") },
		func(Stripe) { order = append(order, "col") },
	)

	want := []string{"row", "row", "col", "col"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}
