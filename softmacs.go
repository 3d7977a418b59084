// softmacs.go: the public surface of the softmacs runtime.
//
// Softmacs is a small Lisp-family runtime: a fixed-capacity arena heap
// with generational pointer safety and explicit mark/sweep collection, a
// reader that turns source text into heap-resident values, and a
// continuation-passing evaluator in which the delimited-continuation
// primitives shift and reset are ordinary procedures.
//
// Everything a driver or embedder needs is here:
//
//   - Dialect, the minimal capability set a pluggable dialect provides.
//   - Interp, the concrete dialect: value constructors (Unit, T, F, Pair,
//     Symbol, Abs, Native, App), Read, Show, Eval, checked dereference
//     (Get), environment construction (BaseEnv), and explicit collection
//     (Collect).
//
// An Interp exclusively owns its heap. All operations are single-threaded;
// nothing here locks. Collection is never triggered implicitly: the
// owner decides when to collect and which handles are roots, and every
// handle not reachable from those roots is dead afterwards (dereferencing
// it fails with a pointer error, never aliases a newer object).
//
// The evaluator's behavioral contract lives in interpreter_exec.go.
package softmacs

import "strings"

// Version of the runtime.
const Version = "0.2.0"

// Dialect is the capability surface a driver consumes: value construction,
// reading, printing and evaluation. Interp is the only implementation in
// this package; the interface exists so drivers and tests can be written
// against the contract alone.
type Dialect interface {
	Unit() (Gc, error)
	T() (Gc, error)
	F() (Gc, error)
	Pair(fst, snd Gc) (Gc, error)
	Symbol(name string) (Gc, error)
	Read(src string) ([]Gc, error)
	Show(ptr Gc, buf *strings.Builder) error
	Eval(expr, env Gc) (Gc, error)
}

// Interp is a softmacs instance: one heap and the evaluator over it.
type Interp struct {
	heap *Heap
}

var _ Dialect = (*Interp)(nil)

// New returns an interpreter owning a fresh heap with the given slot
// capacity. The heap never grows.
func New(capacity int) *Interp {
	return &Interp{heap: NewHeap(capacity)}
}

/* ===========================
   constructors
   =========================== */

// Unit allocates the empty-list value.
func (ip *Interp) Unit() (Gc, error) {
	return ip.heap.put(Object{Tag: TagUnit})
}

// T allocates the true literal.
func (ip *Interp) T() (Gc, error) {
	return ip.heap.put(Object{Tag: TagBool, Data: true})
}

// F allocates the false literal.
func (ip *Interp) F() (Gc, error) {
	return ip.heap.put(Object{Tag: TagBool, Data: false})
}

// Symbol allocates a symbol with the given name.
func (ip *Interp) Symbol(name string) (Gc, error) {
	return ip.heap.put(Object{Tag: TagSym, Data: name})
}

// Pair allocates a cons cell. The proper-list flag is computed here, from
// snd's tag, and never again: snd being unit or a proper-list pair makes
// the new pair a proper list. Reading snd may fail with a pointer error,
// which propagates.
func (ip *Interp) Pair(fst, snd Gc) (Gc, error) {
	obj, err := ip.heap.get(snd)
	if err != nil {
		return Gc{}, err
	}
	pair := Pair{Fst: fst, Snd: snd, IsList: obj.isList()}
	return ip.heap.put(Object{Tag: TagPair, Data: pair})
}

// Native allocates the built-in procedure named by nat.
func (ip *Interp) Native(nat Nat) (Gc, error) {
	return ip.heap.put(Object{Tag: TagProc, Data: Proc{Kind: ProcNat, Nat: nat}})
}

// App allocates a re-apply wrapper: applying the result applies inner.
func (ip *Interp) App(inner Gc) (Gc, error) {
	return ip.heap.put(Object{Tag: TagProc, Data: Proc{Kind: ProcApp, Inner: inner}})
}

// Abs allocates a user abstraction. Head is the parameter pattern, tail
// the body expression; lexical and dynamic are the binding chains
// captured at construction (the two halves of an environment value, not
// the environment pair itself). The native set has no abstraction
// constructor, so this is the one way closures come into existence.
func (ip *Interp) Abs(head, tail, lexical, dynamic Gc) (Gc, error) {
	abs := Abs{Head: head, Tail: tail, Lexical: lexical, Dynamic: dynamic}
	return ip.heap.put(Object{Tag: TagProc, Data: Proc{Kind: ProcAbs, Abs: abs}})
}

/* ===========================
   operations
   =========================== */

// Get dereferences ptr, failing with a pointer error if the slot is free
// or the stamp no longer matches.
func (ip *Interp) Get(ptr Gc) (Object, error) {
	return ip.heap.get(ptr)
}

// Read tokenizes and parses src, returning the top-level values in source
// order. It stops at the first read error; no partial results.
func (ip *Interp) Read(src string) ([]Gc, error) {
	return parse(tokenize(src), ip)
}

// Show renders ptr's external form into buf. See printer.go for the
// grammar.
func (ip *Interp) Show(ptr Gc, buf *strings.Builder) error {
	return ip.show(ptr, buf)
}

// Eval evaluates expr in env under the top-level continuation (the one
// that just hands the value back).
func (ip *Interp) Eval(expr, env Gc) (Gc, error) {
	return ip.evalK(expr, env, idK)
}

// BaseEnv allocates a fresh standard environment: every native bound
// under its name in the lexical chain, empty dynamic chain. This is also
// what the init native returns.
func (ip *Interp) BaseEnv() (Gc, error) {
	chain, err := ip.Unit()
	if err != nil {
		return Gc{}, err
	}
	for nat := NatPair; nat <= NatNot; nat++ {
		sym, err := ip.Symbol(nat.String())
		if err != nil {
			return Gc{}, err
		}
		proc, err := ip.Native(nat)
		if err != nil {
			return Gc{}, err
		}
		binding, err := ip.Pair(sym, proc)
		if err != nil {
			return Gc{}, err
		}
		chain, err = ip.Pair(binding, chain)
		if err != nil {
			return Gc{}, err
		}
	}
	empty, err := ip.Unit()
	if err != nil {
		return Gc{}, err
	}
	return ip.Pair(chain, empty)
}

// Collect runs a full mark/sweep cycle with the given roots and returns
// the number of slots reclaimed. Marking from a stale or freed handle is
// a pointer error and aborts the cycle before anything is swept; that
// always indicates a caller bug, not a runtime condition.
func (ip *Interp) Collect(roots ...Gc) (int, error) {
	if err := ip.heap.Mark(roots...); err != nil {
		return 0, err
	}
	return ip.heap.Sweep(), nil
}
