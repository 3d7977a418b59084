// object.go: the tagged value model stored in heap slots.
//
// Object is a closed tagged union: a Tag plus a payload in Data. Consumers
// (collector, printer, evaluator) dispatch with a switch on the tag; there
// is no behavior attached to the variants themselves. Values are immutable
// once constructed: in particular Pair.IsList is computed once, at
// construction, and stays valid forever because no pair is ever updated in
// place.
package softmacs

// Tag discriminates the Object union.
type Tag int

const (
	TagUnit Tag = iota // the empty list; no payload
	TagBool            // Data is bool
	TagSym             // Data is string (immutable, cheap to copy)
	TagPair            // Data is Pair
	TagProc            // Data is Proc
)

func (t Tag) String() string {
	switch t {
	case TagUnit:
		return "unit"
	case TagBool:
		return "bool"
	case TagSym:
		return "symbol"
	case TagPair:
		return "pair"
	case TagProc:
		return "procedure"
	}
	return "unknown"
}

// Object is one heap-resident value.
type Object struct {
	Tag  Tag
	Data any
}

// Pair is a cons cell. IsList caches "the Snd chain terminates in unit":
// true when Snd is unit or a pair whose own IsList is true. The printer
// and list iteration rely on this flag instead of re-scanning the tail.
type Pair struct {
	Fst    Gc
	Snd    Gc
	IsList bool
}

// ProcKind discriminates the Proc union.
type ProcKind int

const (
	ProcNat  ProcKind = iota // built-in primitive, identified by Nat
	ProcApp                  // opaque indirection: apply the wrapped value
	ProcAbs                  // user abstraction (operative closure)
	ProcCont                 // captured continuation
)

// Nat names the built-in primitives. The set is closed: there is no
// in-language way to define new natives, and no lambda native either;
// abstractions are built through the host facade.
type Nat int

const (
	NatPair Nat = iota
	NatFst
	NatSnd
	NatEval
	NatInit
	NatShift
	NatReset
	NatAnd
	NatOr
	NatNot
)

var natNames = map[Nat]string{
	NatPair:  "pair",
	NatFst:   "fst",
	NatSnd:   "snd",
	NatEval:  "eval",
	NatInit:  "init",
	NatShift: "shift",
	NatReset: "reset",
	NatAnd:   "and",
	NatOr:    "or",
	NatNot:   "not",
}

func (n Nat) String() string { return natNames[n] }

// Abs is a user-defined procedure: Head is the parameter pattern, Tail the
// body expression. Lexical and Dynamic are binding chains captured at
// construction; application extends Lexical with the matched pattern and
// pairs it with Dynamic to form the body's environment.
type Abs struct {
	Head    Gc
	Tail    Gc
	Lexical Gc
	Dynamic Gc
}

// Rest is the continuation threaded through every evaluation step: it
// consumes the step's result and carries the rest of the computation.
type Rest func(Gc) (Gc, error)

// Proc is the procedure union. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Proc struct {
	Kind   ProcKind
	Nat    Nat  // ProcNat
	Inner  Gc   // ProcApp
	Abs    Abs  // ProcAbs
	Resume Rest // ProcCont; not traced by the collector (a host closure)
}

func (o Object) isUnit() bool { return o.Tag == TagUnit }

// isList reports whether o begins a proper list: unit counts as the empty
// list, and a pair answers from its cached flag.
func (o Object) isList() bool {
	switch o.Tag {
	case TagUnit:
		return true
	case TagPair:
		return o.Data.(Pair).IsList
	}
	return false
}
