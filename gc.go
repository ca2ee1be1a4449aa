package idio

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// The collector is a stop-the-world tri-colour mark/sweep over a flat
// cell arena.  Cells are recycled through per-generation free lists;
// the arena index of a cell is the payload of its pointer word, so
// dereferencing is one slice lookup.
//
// Generations are nested evaluation contexts: gen0 is process-lifetime
// and owns the auto roots; inner generations are transient.  A
// collection whitens every generation's lists and marks every
// generation's roots, then sweeps every generation, trimming the free
// list only of the generation it was asked for.

type colour uint8

const (
	colourWhite colour = iota
	colourLGrey        // on a grey list, children not yet traced
	colourBlack
)

type cellFlags uint8

const (
	cellFlagFree cellFlags = 1 << iota
	cellFlagSticky
	cellFlagFinalizer
)

// payload is the type-specific half of a heap cell.  children
// enumerates the IDIO slots the marker must trace; release is the
// type-specific tear-down run before the cell returns to the free
// list.
type payload interface {
	children(buf []IDIO) []IDIO
	release()
}

// cell is the heap value record: type discriminator, GC colour and
// flags, generation id, the used/free/weak chain and the grey chain,
// then the payload.
type cell struct {
	idx     int
	vtype   ValueType
	colour  colour
	flags   cellFlags
	tflags  uint8
	gen     uint8
	next    *cell
	grey    *cell
	payload payload
}

func (c *cell) word() IDIO {
	return pointerWord(c.idx)
}

const (
	gcAllocPoolSize = 1000
	// after this many allocations since the last collection the
	// allocator raises a collection request
	gcRequestThreshold = 500000
	// the free list is trimmed back to this during sweep
	gcFreeManyThreshold = 10 * gcAllocPoolSize
)

type gcRoot struct {
	object IDIO
	next   *gcRoot
}

type gcStats struct {
	allocs      [typeMaxValue]uint64
	frees       uint64
	collections uint64
	markTime    time.Duration
	sweepTime   time.Duration
}

// GC is one generation of the collector.
type GC struct {
	gen   uint8
	next  *GC // outer generation
	free  *cell
	used  *cell
	weak  *cell // weak-keyed hash tables live here, not on used
	grey  *cell
	roots *gcRoot
	autos *gcRoot

	freeCount int
	usedCount int
	weakCount int

	pauses    int
	requested bool
	allocs    int // since last collection

	stats gcStats
}

var (
	// the arena; index 0 is reserved so that a zero word is never a
	// valid heap pointer
	gcCells []*cell

	idioGC  *GC // innermost generation
	idioGC0 *GC // gen0

	gcFinalizers map[IDIO]func(IDIO)
)

func init() {
	gcCells = make([]*cell, 1, gcAllocPoolSize+1)
	gcFinalizers = make(map[IDIO]func(IDIO))
	idioGC0 = &GC{}
	idioGC = idioGC0
	initSymbols()
	initLexObj()
	initConfig()
}

// CurrentGC returns the innermost generation.
func CurrentGC() *GC {
	return idioGC
}

// NewGeneration pushes a nested generation and makes it current.
func NewGeneration() *GC {
	g := &GC{gen: idioGC.gen + 1, next: idioGC}
	idioGC = g
	return g
}

// PopGeneration retires the innermost generation: its roots are
// dropped, a collection reclaims what only they kept alive, and any
// survivors (reachable from outer roots) migrate to the outer
// generation along with the free list.  Popping gen0 is an invariant
// violation.
func PopGeneration() {
	g := idioGC
	outer := g.next
	if outer == nil {
		panic("gc: cannot pop generation 0")
	}
	g.roots = nil
	g.Collect("pop-generation")

	migrate := func(list *cell, n int, to **cell, count *int) {
		for c := list; c != nil; {
			next := c.next
			c.gen = outer.gen
			c.next = *to
			*to = c
			c = next
		}
		*count += n
	}
	migrate(g.used, g.usedCount, &outer.used, &outer.usedCount)
	migrate(g.weak, g.weakCount, &outer.weak, &outer.weakCount)
	migrate(g.free, g.freeCount, &outer.free, &outer.freeCount)

	idioGC = outer
}

func (g *GC) grow() {
	pool := make([]cell, gcAllocPoolSize)
	for i := range pool {
		c := &pool[i]
		c.idx = len(gcCells)
		c.flags = cellFlagFree
		gcCells = append(gcCells, c)
		c.next = g.free
		g.free = c
	}
	g.freeCount += gcAllocPoolSize
}

// get allocates a cell of type t.  Every record handed out is zeroed
// of per-cycle state: white, not free, not sticky, no finalizer.
func (g *GC) get(t ValueType, p payload) IDIO {
	g.allocs++
	if g.allocs >= gcRequestThreshold {
		g.requested = true
	}
	// collect only when the free list is dry and pauses permit;
	// callers constructing several linked values bracket with
	// Pause/Resume so their intermediates survive
	if g.free == nil && g.requested && g.pauses == 0 {
		g.Collect("allocation")
	}
	if g.free == nil {
		g.grow()
	}
	c := g.free
	g.free = c.next
	g.freeCount--

	c.vtype = t
	c.colour = colourWhite
	c.flags = 0
	c.tflags = 0
	c.gen = g.gen
	c.grey = nil
	c.payload = p

	c.next = g.used
	g.used = c
	g.usedCount++
	g.stats.allocs[t]++
	return c.word()
}

// alloc is the constructor entry point: allocate in the current
// generation.
func alloc(t ValueType, p payload) IDIO {
	return idioGC.get(t, p)
}

// statsInc counts an immediate construction; immediates never hit the
// allocator but the statistics still record them.
func statsInc(t ValueType) {
	idioGC.stats.allocs[t]++
}

// moveToWeak relocates a cell from the used list to the weak list.
// Hash tables call this when they are flagged weak-keyed.
func (g *GC) moveToWeak(c *cell) {
	prev := (*cell)(nil)
	for u := g.used; u != nil; u = u.next {
		if u == c {
			if prev == nil {
				g.used = u.next
			} else {
				prev.next = u.next
			}
			g.usedCount--
			c.next = g.weak
			g.weak = c
			g.weakCount++
			return
		}
		prev = u
	}
	panic("gc: weak candidate not on used list")
}

// ---- roots ----

// Protect adds o to the explicit root set.  Protecting the same
// object twice is a no-op.
func (g *GC) Protect(o IDIO) {
	if IsImmediate(o) {
		return
	}
	for r := g.roots; r != nil; r = r.next {
		if r.object == o {
			return
		}
	}
	g.roots = &gcRoot{object: o, next: g.roots}
}

// Expose removes o from the explicit root set.  Exposing an
// unprotected object is a fatal invariant violation.
func (g *GC) Expose(o IDIO) {
	if IsImmediate(o) {
		return
	}
	prev := (*gcRoot)(nil)
	for r := g.roots; r != nil; r = r.next {
		if r.object == o {
			if prev == nil {
				g.roots = r.next
			} else {
				prev.next = r.next
			}
			return
		}
		prev = r
	}
	panic(fmt.Sprintf("gc: expose: %#x is not protected", uintptr(o)))
}

// ProtectAuto protects o for the lifetime of the process.
func (g *GC) ProtectAuto(o IDIO) {
	if IsImmediate(o) {
		return
	}
	g.autos = &gcRoot{object: o, next: g.autos}
}

// Protect protects o in the current generation.
func Protect(o IDIO) { idioGC.Protect(o) }

// Expose removes the protection added by Protect.
func Expose(o IDIO) { idioGC.Expose(o) }

// ProtectAuto protects o for the lifetime of the process.
func ProtectAuto(o IDIO) { idioGC0.ProtectAuto(o) }

// SetSticky marks o as uncollectable irrespective of reachability.
func SetSticky(o IDIO) {
	if !IsImmediate(o) {
		deref(o).flags |= cellFlagSticky
	}
}

// ClearSticky undoes SetSticky.
func ClearSticky(o IDIO) {
	if !IsImmediate(o) {
		deref(o).flags &^= cellFlagSticky
	}
}

// ---- pause / resume ----

// Pause brackets a critical region that allocates several linked
// values.  Nesting is permitted.
func (g *GC) Pause() {
	g.pauses++
}

// Resume ends a Pause; a collection requested while paused fires on
// the final Resume.
func (g *GC) Resume() {
	g.pauses--
	if g.pauses < 0 {
		panic("gc: resume without pause")
	}
	if g.pauses == 0 && g.requested {
		g.Collect("resume")
	}
}

// Pause pauses the current generation's collector.
func Pause() { idioGC.Pause() }

// Resume resumes the current generation's collector.
func Resume() { idioGC.Resume() }

// ---- finalizers ----

// RegisterFinalizer arranges for fn to run before o's storage is
// released or when o loses as a weak key.
func RegisterFinalizer(o IDIO, fn func(IDIO)) {
	if IsImmediate(o) {
		return
	}
	c := deref(o)
	c.flags |= cellFlagFinalizer
	gcFinalizers[o] = fn
}

// DeregisterFinalizer removes any finalizer on o.
func DeregisterFinalizer(o IDIO) {
	if IsImmediate(o) {
		return
	}
	c := deref(o)
	c.flags &^= cellFlagFinalizer
	delete(gcFinalizers, o)
}

func runFinalizer(c *cell) {
	if c.flags&cellFlagFinalizer == 0 {
		return
	}
	o := c.word()
	if fn, ok := gcFinalizers[o]; ok {
		delete(gcFinalizers, o)
		c.flags &^= cellFlagFinalizer
		fn(o)
	}
}

// ---- marking ----

func (g *GC) mark(o IDIO, col colour) {
	if IsImmediate(o) || o == 0 {
		return
	}
	c := deref(o)
	switch col {
	case colourWhite:
		c.colour = colourWhite
	case colourBlack:
		if c.colour != colourWhite {
			return
		}
		// leaves go straight to black; composites go lazy-grey so
		// traversal is deferred and stack depth stays bounded
		if len(c.payload.children(nil)) == 0 {
			c.colour = colourBlack
		} else {
			c.colour = colourLGrey
			c.grey = g.grey
			g.grey = c
		}
	default:
		panic("gc: unexpected mark colour")
	}
}

// processGrey walks one grey record and marks everything it can reach
// in one hop, with grey promotion as needed.
func (g *GC) processGrey(buf []IDIO) []IDIO {
	c := g.grey
	if c == nil {
		return buf
	}
	g.grey = c.grey
	c.grey = nil
	c.colour = colourBlack
	buf = c.payload.children(buf[:0])
	for _, child := range buf {
		g.mark(child, colourBlack)
	}
	return buf
}

func (g *GC) drainGrey(buf []IDIO) []IDIO {
	for g.grey != nil {
		buf = g.processGrey(buf)
	}
	return buf
}

// marked reports whether a key has been reached this cycle; lazy-grey
// counts, it is black-pending.
func marked(o IDIO) bool {
	if IsImmediate(o) {
		return true
	}
	return deref(o).colour != colourWhite
}

// ---- collection ----

// Collect runs a full stop-the-world collection, sweeping every
// generation and trimming this generation's free list.  Collections
// triggered while paused are deferred.
func (g *GC) Collect(reason string) {
	if g.pauses > 0 {
		g.requested = true
		return
	}
	g.requested = false
	g.allocs = 0

	start := time.Now()

	// whiten everything, all generations
	for gen := idioGC; gen != nil; gen = gen.next {
		for c := gen.used; c != nil; c = c.next {
			c.colour = colourWhite
			c.grey = nil
		}
		for c := gen.weak; c != nil; c = c.next {
			c.colour = colourWhite
			c.grey = nil
		}
	}

	// mark every generation's roots and autos
	var buf []IDIO
	for gen := idioGC; gen != nil; gen = gen.next {
		for r := gen.roots; r != nil; r = r.next {
			g.mark(r.object, colourBlack)
		}
		for r := gen.autos; r != nil; r = r.next {
			g.mark(r.object, colourBlack)
		}
	}
	buf = g.drainGrey(buf)

	buf = g.weakPass(buf)

	g.stats.markTime += time.Since(start)
	start = time.Now()

	for gen := idioGC; gen != nil; gen = gen.next {
		gen.sweep(gen == g)
	}

	g.stats.sweepTime += time.Since(start)
	g.stats.collections++
}

// weakPass is the post-mark fixed point over weak-keyed tables.
func (g *GC) weakPass(buf []IDIO) []IDIO {
	// 1: values of reachable keys become reachable; values may be
	// weak keys elsewhere so repeat to a fixed point
	changed := true
	for changed {
		changed = false
		for gen := idioGC; gen != nil; gen = gen.next {
			for c := gen.weak; c != nil; c = c.next {
				if c.colour == colourWhite {
					continue
				}
				hp := c.payload.(*hashPayload)
				for _, e := range hp.entries() {
					if marked(e.key) && !marked(e.value) {
						g.mark(e.value, colourBlack)
						changed = true
					}
				}
			}
		}
		// 2: drain between rounds so newly grey values propagate
		buf = g.drainGrey(buf)
	}

	// 3: evict entries whose key is still white, firing the key's
	// finalizer
	for gen := idioGC; gen != nil; gen = gen.next {
		for c := gen.weak; c != nil; c = c.next {
			if c.colour == colourWhite {
				continue
			}
			hp := c.payload.(*hashPayload)
			for _, e := range hp.entries() {
				if !marked(e.key) {
					hp.delete(e.key)
					runFinalizer(deref(e.key))
				}
			}
		}
	}

	// 4: eviction may have run finalizer code; drain again
	buf = g.drainGrey(buf)

	if gcDebug {
		// 5: every surviving weak key must be reachable
		for gen := idioGC; gen != nil; gen = gen.next {
			for c := gen.weak; c != nil; c = c.next {
				if c.colour == colourWhite {
					continue
				}
				hp := c.payload.(*hashPayload)
				for _, e := range hp.entries() {
					if !marked(e.key) {
						panic("gc: weak key survived eviction unmarked")
					}
				}
			}
		}
	}
	return buf
}

func (g *GC) freeCell(c *cell) {
	runFinalizer(c)
	c.payload.release()
	c.vtype = TypeNone
	c.colour = colourWhite
	c.flags = cellFlagFree
	c.tflags = 0
	c.grey = nil
	c.payload = nil
	c.next = g.free
	g.free = c
	g.freeCount++
	g.stats.frees++
}

// sweep walks this generation's used and weak lists from the head,
// most recently allocated cell first; older allocations are not
// visited first.  Non-sticky white cells are finalized, torn down and
// pushed to the free list; sticky and black cells are kept.
func (g *GC) sweep(trim bool) {
	if trim {
		for g.freeCount > gcFreeManyThreshold {
			c := g.free
			g.free = c.next
			g.freeCount--
			// return the record to the process allocator
			gcCells[c.idx] = nil
		}
	}

	var kept *cell
	var keptTail *cell
	for c := g.used; c != nil; {
		next := c.next
		if c.colour == colourWhite && c.flags&cellFlagSticky == 0 {
			g.usedCount--
			g.freeCell(c)
		} else {
			c.next = nil
			if keptTail == nil {
				kept = c
			} else {
				keptTail.next = c
			}
			keptTail = c
		}
		c = next
	}
	g.used = kept

	kept, keptTail = nil, nil
	for c := g.weak; c != nil; {
		next := c.next
		if c.colour == colourWhite && c.flags&cellFlagSticky == 0 {
			g.weakCount--
			g.freeCell(c)
		} else {
			c.next = nil
			if keptTail == nil {
				kept = c
			} else {
				keptTail.next = c
			}
			keptTail = c
		}
		c = next
	}
	g.weak = kept
}

// Collect collects the current generation.
func Collect(reason string) { idioGC.Collect(reason) }

// ---- statistics ----

// Counts returns (free, used) cardinalities for the generation; the
// weak list counts as used.
func (g *GC) Counts() (free, used int) {
	return g.freeCount, g.usedCount + g.weakCount
}

// StatsString formats the per-generation statistics.
func (g *GC) StatsString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gc generation %d: %d collections, mark %v, sweep %v\n",
		g.gen, g.stats.collections, g.stats.markTime, g.stats.sweepTime)
	fmt.Fprintf(&b, "  free %d used %d weak %d frees %d\n",
		g.freeCount, g.usedCount, g.weakCount, g.stats.frees)
	type tc struct {
		t ValueType
		n uint64
	}
	var tcs []tc
	for t := ValueType(0); t < typeMaxValue; t++ {
		if n := g.stats.allocs[t]; n > 0 {
			tcs = append(tcs, tc{t, n})
		}
	}
	sort.Slice(tcs, func(i, j int) bool { return tcs[i].n > tcs[j].n })
	for _, e := range tcs {
		fmt.Fprintf(&b, "  %-16s %d\n", e.t, e.n)
	}
	return b.String()
}

// DumpStats appends every generation's statistics to the stats file
// (idio-gc-stats in the current directory unless overridden).
func DumpStats() error {
	f, err := os.OpenFile(gcStatsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	for gen := idioGC; gen != nil; gen = gen.next {
		if _, err := f.WriteString(gen.StatsString()); err != nil {
			return err
		}
	}
	return nil
}

// Final shuts the collector down: remaining finalizers run in map
// iteration order, which callers must not rely on.
func Final() {
	for o, fn := range gcFinalizers {
		delete(gcFinalizers, o)
		fn(o)
	}
	if gcStatsEnabled {
		_ = DumpStats()
	}
}
