package idio

import "fmt"

// Hash tables hash into buckets of (key, value) entries.  The default
// table uses equal? semantics; an eq?-keyed table compares words,
// which is what the weak source-property table wants.

type hashEntry struct {
	key   IDIO
	value IDIO
}

type hashPayload struct {
	weakKeys bool
	buckets  map[uint64][]hashEntry
	count    int
	hashFn   func(IDIO) uint64
	equalFn  func(a, b IDIO) bool
}

func (p *hashPayload) children(buf []IDIO) []IDIO {
	if p.weakKeys {
		// entries are traced by the collector's weak pass, not here
		return buf
	}
	for _, bucket := range p.buckets {
		for _, e := range bucket {
			buf = append(buf, e.key, e.value)
		}
	}
	return buf
}

func (p *hashPayload) release() {
	p.buckets = nil
	p.count = 0
}

func (p *hashPayload) entries() []hashEntry {
	es := make([]hashEntry, 0, p.count)
	for _, bucket := range p.buckets {
		es = append(es, bucket...)
	}
	return es
}

func (p *hashPayload) ref(k IDIO) (IDIO, bool) {
	h := p.hashFn(k)
	for _, e := range p.buckets[h] {
		if p.equalFn(e.key, k) {
			return e.value, true
		}
	}
	return Nil, false
}

func (p *hashPayload) set(k, v IDIO) {
	h := p.hashFn(k)
	bucket := p.buckets[h]
	for i, e := range bucket {
		if p.equalFn(e.key, k) {
			bucket[i].value = v
			return
		}
	}
	p.buckets[h] = append(bucket, hashEntry{key: k, value: v})
	p.count++
}

func (p *hashPayload) delete(k IDIO) bool {
	h := p.hashFn(k)
	bucket := p.buckets[h]
	for i, e := range bucket {
		if p.equalFn(e.key, k) {
			bucket[i] = bucket[len(bucket)-1]
			p.buckets[h] = bucket[:len(bucket)-1]
			p.count--
			return true
		}
	}
	return false
}

// Hash allocates an equal?-keyed hash table.  The size hint is
// advisory.
func Hash(size int) IDIO {
	return alloc(TypeHash, &hashPayload{
		buckets: make(map[uint64][]hashEntry, size),
		hashFn:  hashEqualP,
		equalFn: EqualP,
	})
}

// HashEqP allocates an eq?-keyed hash table: keys compare by word.
func HashEqP(size int) IDIO {
	return alloc(TypeHash, &hashPayload{
		buckets: make(map[uint64][]hashEntry, size),
		hashFn:  func(o IDIO) uint64 { return uint64(o) },
		equalFn: func(a, b IDIO) bool { return a == b },
	})
}

// IsHash reports whether o is a hash table.
func IsHash(o IDIO) bool {
	return Isa(o, TypeHash)
}

func hashOf(o IDIO) *hashPayload {
	c := deref(o)
	if c.vtype != TypeHash {
		panic(fmt.Sprintf("hash: not a hash: %s", c.vtype))
	}
	return c.payload.(*hashPayload)
}

// HashSetWeakKeys flags o weak-keyed and moves it onto the
// collector's weak list.  Must be done before the table is populated
// with collectable keys.
func HashSetWeakKeys(o IDIO) {
	c := deref(o)
	p := c.payload.(*hashPayload)
	if p.weakKeys {
		return
	}
	p.weakKeys = true
	idioGC.moveToWeak(c)
}

// HashRef looks k up, returning (value, true) or (Nil, false).
func HashRef(o, k IDIO) (IDIO, bool) {
	return hashOf(o).ref(k)
}

// HashSet inserts or updates k.
func HashSet(o, k, v IDIO) {
	hashOf(o).set(k, v)
}

// HashDelete removes k, reporting whether it was present.
func HashDelete(o, k IDIO) bool {
	return hashOf(o).delete(k)
}

// HashCount returns the number of live entries.
func HashCount(o IDIO) int {
	return hashOf(o).count
}

// HashKeys returns the keys, in no particular order.
func HashKeys(o IDIO) []IDIO {
	p := hashOf(o)
	ks := make([]IDIO, 0, p.count)
	for _, bucket := range p.buckets {
		for _, e := range bucket {
			ks = append(ks, e.key)
		}
	}
	return ks
}

// HashEntries returns (key, value) pairs, in no particular order.
func HashEntries(o IDIO) []hashEntry {
	return hashOf(o).entries()
}

// HashFromAlist builds an equal?-keyed hash from an association list
// of (key & value) pairs, the shape the #{ ... } reader form yields.
func HashFromAlist(alist IDIO) IDIO {
	h := Hash(ListLength(alist))
	Protect(h)
	defer Expose(h)
	for o := alist; IsPair(o); o = Tail(o) {
		p := Head(o)
		if !IsPair(p) {
			panic("hash: alist element is not a pair")
		}
		HashSet(h, Head(p), Tail(p))
	}
	return h
}

// hashEqualP hashes consistently with EqualP.
func hashEqualP(o IDIO) uint64 {
	switch TypeOf(o) {
	case TypeFixnum:
		return uint64(FixnumVal(o)) * 0x9e3779b97f4a7c15
	case TypeString, TypeSubstring:
		var h uint64 = 14695981039346656037
		for _, cp := range StringCodePoints(o) {
			h ^= uint64(cp)
			h *= 1099511628211
		}
		return h
	case TypeSymbol:
		return hashString(SymbolName(o))
	case TypeKeyword:
		return hashString(KeywordName(o)) ^ 0x5bd1e995
	case TypeBignum:
		// weak but consistent: all bignums collide with each other
		// only, and numeric equality is rare in key position
		return 0x2545f4914f6cdd1d
	default:
		return uint64(o)
	}
}

func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
