package softmacs

import (
	"strings"
	"testing"
)

/* ---------- shared helpers ---------- */

func newIP(t *testing.T) *Interp {
	t.Helper()
	return New(512)
}

// mustPtr adapts a constructor's (Gc, error) return into a bare handle,
// failing the test on error. Bind it once per test: must := mustPtr(t).
func mustPtr(t *testing.T) func(Gc, error) Gc {
	return func(ptr Gc, err error) Gc {
		t.Helper()
		if err != nil {
			t.Fatalf("allocation failed: %v", err)
		}
		return ptr
	}
}

func baseEnv(t *testing.T, ip *Interp) Gc {
	t.Helper()
	return mustPtr(t)(ip.BaseEnv())
}

// define returns a copy of env whose lexical chain starts with name→value.
func define(t *testing.T, ip *Interp, env Gc, name string, value Gc) Gc {
	t.Helper()
	must := mustPtr(t)
	obj, err := ip.Get(env)
	if err != nil {
		t.Fatalf("bad env: %v", err)
	}
	cell := obj.Data.(Pair)
	sym := must(ip.Symbol(name))
	binding := must(ip.Pair(sym, value))
	lexical := must(ip.Pair(binding, cell.Fst))
	return must(ip.Pair(lexical, cell.Snd))
}

func render(t *testing.T, ip *Interp, ptr Gc) string {
	t.Helper()
	var b strings.Builder
	if err := ip.Show(ptr, &b); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	return b.String()
}

func readOne(t *testing.T, ip *Interp, src string) Gc {
	t.Helper()
	vs, err := ip.Read(src)
	if err != nil {
		t.Fatalf("read %q failed: %v", src, err)
	}
	if len(vs) != 1 {
		t.Fatalf("read %q: want 1 value, got %d", src, len(vs))
	}
	return vs[0]
}

func evalSrc(t *testing.T, ip *Interp, env Gc, src string) Gc {
	t.Helper()
	v, err := ip.Eval(readOne(t, ip, src), env)
	if err != nil {
		t.Fatalf("eval %q failed: %v", src, err)
	}
	return v
}

func wantRender(t *testing.T, ip *Interp, ptr Gc, want string) {
	t.Helper()
	if got := render(t, ip, ptr); got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func wantEvalErr(t *testing.T, ip *Interp, env Gc, src string, kind ErrKind) {
	t.Helper()
	_, err := ip.Eval(readOne(t, ip, src), env)
	if err == nil {
		t.Fatalf("eval %q: want %s error, got none", src, kind)
	}
	if got, ok := KindOf(err); !ok || got != kind {
		t.Fatalf("eval %q: want %s error, got %v", src, kind, err)
	}
}

/* ---------- self-evaluation & lookup ---------- */

func Test_Eval_SelfEvaluating(t *testing.T) {
	ip := newIP(t)
	must := mustPtr(t)
	env := baseEnv(t, ip)

	unit := must(ip.Unit())
	v, err := ip.Eval(unit, env)
	if err != nil {
		t.Fatalf("eval unit: %v", err)
	}
	if v != unit {
		t.Fatalf("unit should resume with itself")
	}

	tv := must(ip.T())
	v, err = ip.Eval(tv, env)
	if err != nil || v != tv {
		t.Fatalf("bool should resume with itself: %v", err)
	}
}

func Test_Eval_SymbolLookup(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	v := evalSrc(t, ip, env, "pair")
	obj, err := ip.Get(v)
	if err != nil || obj.Tag != TagProc {
		t.Fatalf("pair should resolve to a procedure, got %v (%v)", obj.Tag, err)
	}

	wantEvalErr(t, ip, env, "zork", ErrLookup)
}

func Test_Eval_LexicalShadowsDynamic(t *testing.T) {
	ip := newIP(t)
	must := mustPtr(t)

	tv := must(ip.T())
	fv := must(ip.F())
	xsym := must(ip.Symbol("x"))
	ysym := must(ip.Symbol("y"))
	empty := must(ip.Unit())

	lexBind := must(ip.Pair(xsym, tv))
	lex := must(ip.Pair(lexBind, empty))
	dynBindX := must(ip.Pair(xsym, fv))
	dynBindY := must(ip.Pair(ysym, fv))
	dynTail := must(ip.Pair(dynBindY, empty))
	dyn := must(ip.Pair(dynBindX, dynTail))
	env := must(ip.Pair(lex, dyn))

	if got := evalSrc(t, ip, env, "x"); got != tv {
		t.Fatalf("lexical binding should shadow dynamic")
	}
	if got := evalSrc(t, ip, env, "y"); got != fv {
		t.Fatalf("dynamic chain should be searched after lexical")
	}
}

/* ---------- natives ---------- */

func Test_Natives_Structural(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	wantRender(t, ip, evalSrc(t, ip, env, "(pair #t #f)"), "(#t * #f)")
	wantRender(t, ip, evalSrc(t, ip, env, "(fst (pair #t #f))"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(snd (pair #t #f))"), "#f")
	wantRender(t, ip, evalSrc(t, ip, env, "(pair #t #)"), "(#t)")

	wantEvalErr(t, ip, env, "(fst #t)", ErrType)
	wantEvalErr(t, ip, env, "(pair #t)", ErrShape)
	wantEvalErr(t, ip, env, "(#t #f)", ErrType)
}

func Test_Natives_Boolean(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	wantRender(t, ip, evalSrc(t, ip, env, "(not #f)"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(not #t)"), "#f")
	wantEvalErr(t, ip, env, "(not #)", ErrType)

	wantRender(t, ip, evalSrc(t, ip, env, "(and)"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(or)"), "#f")
	wantRender(t, ip, evalSrc(t, ip, env, "(and #t #t)"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(and #t #f)"), "#f")
	wantRender(t, ip, evalSrc(t, ip, env, "(or #f #t)"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(or #f #f)"), "#f")

	// short-circuit: the form after the deciding value never evaluates,
	// so its unbound symbol cannot fail
	wantRender(t, ip, evalSrc(t, ip, env, "(and #f zork)"), "#f")
	wantRender(t, ip, evalSrc(t, ip, env, "(or #t zork)"), "#t")

	wantEvalErr(t, ip, env, "(and #t #)", ErrType)
}

func Test_Natives_EvalAndInit(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	wantRender(t, ip, evalSrc(t, ip, env, "(eval #t)"), "#t")
	wantRender(t, ip, evalSrc(t, ip, env, "(eval #t (init))"), "#t")
	wantEvalErr(t, ip, env, "(eval)", ErrShape)

	// (init) yields a usable environment: natives resolve through it
	fresh := evalSrc(t, ip, env, "(init)")
	v, err := ip.Eval(readOne(t, ip, "(not #f)"), fresh)
	if err != nil {
		t.Fatalf("eval in (init) env: %v", err)
	}
	wantRender(t, ip, v, "#t")
}

/* ---------- abstractions (operative) ---------- */

// absOf builds an abstraction over the given pattern/body, capturing
// env's lexical and dynamic chains.
func absOf(t *testing.T, ip *Interp, env, head, tail Gc) Gc {
	t.Helper()
	obj, err := ip.Get(env)
	if err != nil {
		t.Fatalf("bad env: %v", err)
	}
	cell := obj.Data.(Pair)
	return mustPtr(t)(ip.Abs(head, tail, cell.Fst, cell.Snd))
}

func Test_Abs_ReceivesOperandsUnevaluated(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// g = (x y) -> x: operands arrive as written, so (g foo bar) is the
	// symbol foo itself, not its (unbound) value
	head := readOne(t, ip, "(x y)")
	tail := readOne(t, ip, "x")
	env = define(t, ip, env, "g", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(g foo bar)"), "foo")
	wantEvalErr(t, ip, env, "(g foo)", ErrShape)
	wantEvalErr(t, ip, env, "(g foo bar baz)", ErrShape)
}

func Test_Abs_SymbolPatternBindsWholeList(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	head := readOne(t, ip, "args")
	tail := readOne(t, ip, "args")
	env = define(t, ip, env, "h", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(h a b c)"), "(a b c)")
	wantRender(t, ip, evalSrc(t, ip, env, "(h)"), "()")
}

func Test_Abs_BodySeesLexicalCapture(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// captured environment binds v; the body reads it through the
	// closure even when the call-site env does not bind v
	tv := mustPtr(t)(ip.T())
	captured := define(t, ip, env, "v", tv)
	head := readOne(t, ip, "()")
	tail := readOne(t, ip, "v")
	callEnv := define(t, ip, env, "f", absOf(t, ip, captured, head, tail))

	if got := evalSrc(t, ip, callEnv, "(f)"); got != tv {
		t.Fatalf("closure should read its captured lexical chain")
	}
}

func Test_App_ReappliesWrappedValue(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	not := evalSrc(t, ip, env, "not")
	wrapped := mustPtr(t)(ip.App(not))
	env = define(t, ip, env, "w", wrapped)

	wantRender(t, ip, evalSrc(t, ip, env, "(w #f)"), "#t")
}

/* ---------- shift / reset ---------- */

func Test_ShiftReset_NoCapture(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)
	wantRender(t, ip, evalSrc(t, ip, env, "(reset #t)"), "#t")
	wantEvalErr(t, ip, env, "(reset)", ErrShape)
}

func Test_ShiftReset_DiscardedContinuation(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// f ignores the captured continuation, so the surrounding (not _)
	// never runs: the reset answers #f directly
	head := readOne(t, ip, "(k)")
	tail := readOne(t, ip, "#f")
	env = define(t, ip, env, "f", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(reset (not (shift f)))"), "#f")
}

func Test_ShiftReset_InvokedOnce(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// f = (k) -> (k #f): resuming the continuation runs the delimited
	// (not _) around the shift, so the reset answers (not #f) = #t
	head := readOne(t, ip, "(k)")
	tail := readOne(t, ip, "(k #f)")
	env = define(t, ip, env, "f", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(reset (not (shift f)))"), "#t")
}

func Test_ShiftReset_InvokedTwice(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// (k v) = (not v). The or needs both invocations: (k #t) = #f keeps
	// going, (k #f) = #t decides
	head := readOne(t, ip, "(k)")
	tail := readOne(t, ip, "(or (k #t) (k #f))")
	env = define(t, ip, env, "f", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(reset (not (shift f)))"), "#t")
}

func Test_ShiftReset_ResultsCompose(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	// both resumptions run the delimited (not _), and their results pair
	// up: (k #f) = #t, (k #t) = #f
	head := readOne(t, ip, "(k)")
	tail := readOne(t, ip, "(pair (k #f) (k #t))")
	env = define(t, ip, env, "f", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(reset (not (shift f)))"), "(#t * #f)")
}

func Test_Shift_WithoutReset_CapturesTopLevel(t *testing.T) {
	ip := newIP(t)
	env := baseEnv(t, ip)

	head := readOne(t, ip, "(k)")
	tail := readOne(t, ip, "(k #t)")
	env = define(t, ip, env, "f", absOf(t, ip, env, head, tail))

	wantRender(t, ip, evalSrc(t, ip, env, "(not (shift f))"), "#f")
}

/* ---------- malformed applications ---------- */

func Test_Eval_DottedArgumentList(t *testing.T) {
	ip := newIP(t)
	must := mustPtr(t)
	env := baseEnv(t, ip)

	notSym := must(ip.Symbol("not"))
	fv := must(ip.F())
	tv := must(ip.T())
	dotted := must(ip.Pair(fv, tv)) // (f . t), not a proper list
	expr := must(ip.Pair(notSym, dotted))

	_, err := ip.Eval(expr, env)
	if err == nil {
		t.Fatalf("dotted argument list should be a type error")
	}
	if kind, ok := KindOf(err); !ok || kind != ErrType {
		t.Fatalf("want type error, got %v", err)
	}
}
