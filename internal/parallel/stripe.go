package parallel

// Stripe is a contiguous range [Start, End) of rows or columns.
type Stripe struct {
	Start, End int
}

// Len returns the number of rows or columns in the stripe.
func (s Stripe) Len() int {
	return s.End - s.Start
}

// Split divides n rows or columns into parts stripes.
// The first parts-1 stripes get n/parts each and the last absorbs the
// remainder. Stripes are disjoint and cover [0, n). parts below 1 is
// treated as 1.
func Split(n, parts int) []Stripe {
	if parts < 1 {
		parts = 1
	}
	if n < 0 {
		n = 0
	}
	size := n / parts
	stripes := make([]Stripe, parts)
	for i := range stripes {
		stripes[i] = Stripe{Start: i * size, End: (i + 1) * size}
	}
	stripes[parts-1].End = n
	return stripes
}

// RunPasses runs rows over parts row stripes of height, waits for every
// one of them, then runs cols over parts column stripes of width.
// Empty stripes are skipped. A nil pool runs everything inline.
func RunPasses(pool *WorkerPool, parts, width, height int, rows, cols func(Stripe)) {
	runWave(pool, Split(height, parts), rows)
	runWave(pool, Split(width, parts), cols)
}

func runWave(pool *WorkerPool, stripes []Stripe, fn func(Stripe)) {
	work := make([]func(), 0, len(stripes))
	for _, s := range stripes {
		if s.Len() == 0 {
			continue
		}
		work = append(work, func() { fn(s) })
	}
	if pool == nil || len(work) == 1 {
		for _, w := range work {
			w()
		}
		return
	}
	pool.InvokeAll(work)
}
