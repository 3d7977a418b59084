// interpreter_exec.go: the private evaluation engine.
//
// Every step here is written in continuation-passing style: eval, exec,
// evlis and apply take a Rest, the rest of the computation, and finish
// by invoking it with their result instead of returning it. The value a
// step returns to its Go caller is whatever the continuation chain
// ultimately produced, which is exactly what makes shift and reset work:
// reset delimits by evaluating its body under the identity continuation,
// and shift captures the Rest it was handed, hands it to user code as a
// first-class procedure, and answers the enclosing reset directly.
//
// Environments are heap values. An environment is a pair of chains,
// (lexical . dynamic); a chain is a proper list of (symbol . value)
// bindings. Symbol resolution scans the lexical chain first, then the
// dynamic one.
//
// Operand discipline: abstractions are operative: they receive their
// operand list unevaluated (through exec) in the vau style the captured
// dynamic environment exists for. Natives split by need: and, or and
// reset control evaluation of their own forms and are operative; the rest
// take evaluated arguments through evlis. Applying an abstraction passes
// the caller's continuation through unchanged, so chains of calls do not
// stack continuations.
package softmacs

// idK is the top-level continuation: hand the value back.
func idK(v Gc) (Gc, error) { return v, nil }

// operative reports whether proc receives its operand list unevaluated.
func operative(proc Proc) bool {
	if proc.Kind == ProcAbs {
		return true
	}
	if proc.Kind == ProcNat {
		switch proc.Nat {
		case NatAnd, NatOr, NatReset:
			return true
		}
	}
	return false
}

// evalK evaluates expr in env and feeds the result to k. Unit, booleans
// and procedures are self-evaluating; a symbol resumes with its bound
// value; a pair is an application.
func (ip *Interp) evalK(expr, env Gc, k Rest) (Gc, error) {
	obj, err := ip.heap.get(expr)
	if err != nil {
		return Gc{}, err
	}
	switch obj.Tag {
	case TagUnit, TagBool, TagProc:
		return k(expr)

	case TagSym:
		v, err := ip.lookup(obj.Data.(string), env)
		if err != nil {
			return Gc{}, err
		}
		return k(v)

	case TagPair:
		form := obj.Data.(Pair)
		return ip.evalK(form.Fst, env, func(target Gc) (Gc, error) {
			pobj, err := ip.heap.get(target)
			if err != nil {
				return Gc{}, err
			}
			if pobj.Tag != TagProc {
				return Gc{}, failType("cannot apply a %s", pobj.Tag)
			}
			if operative(pobj.Data.(Proc)) {
				return ip.execK(form.Snd, env, func(args Gc) (Gc, error) {
					return ip.applyK(target, args, env, k)
				})
			}
			return ip.evlisK(form.Snd, env, func(args Gc) (Gc, error) {
				return ip.applyK(target, args, env, k)
			})
		})
	}
	return Gc{}, failType("cannot evaluate a %s", obj.Tag)
}

// execK is the operative delivery path: the operand list goes to k as
// written, unevaluated. The only check is that it is a proper list.
func (ip *Interp) execK(form, env Gc, k Rest) (Gc, error) {
	obj, err := ip.heap.get(form)
	if err != nil {
		return Gc{}, err
	}
	if !obj.isList() {
		return Gc{}, failType("operand form is not a proper list")
	}
	return k(form)
}

// evlisK evaluates the elements of a proper list left to right, threading
// the continuation through each element so any of them may capture it,
// and resumes k with the list of results.
func (ip *Interp) evlisK(list, env Gc, k Rest) (Gc, error) {
	obj, err := ip.heap.get(list)
	if err != nil {
		return Gc{}, err
	}
	if obj.isUnit() {
		return k(list)
	}
	if !obj.isList() {
		return Gc{}, failType("argument forms are not a proper list")
	}
	cell := obj.Data.(Pair)
	return ip.evalK(cell.Fst, env, func(v Gc) (Gc, error) {
		return ip.evlisK(cell.Snd, env, func(vs Gc) (Gc, error) {
			out, err := ip.Pair(v, vs)
			if err != nil {
				return Gc{}, err
			}
			return k(out)
		})
	})
}

// applyK applies a procedure value to an argument list. For operatives
// args is the raw operand list; for applicatives it is the evlis result.
func (ip *Interp) applyK(target, args, env Gc, k Rest) (Gc, error) {
	pobj, err := ip.heap.get(target)
	if err != nil {
		return Gc{}, err
	}
	if pobj.Tag != TagProc {
		return Gc{}, failType("cannot apply a %s", pobj.Tag)
	}
	switch proc := pobj.Data.(Proc); proc.Kind {
	case ProcNat:
		return ip.applyNat(proc.Nat, args, env, k)

	case ProcApp:
		// Opaque indirection: re-enter apply on the wrapped value.
		return ip.applyK(proc.Inner, args, env, k)

	case ProcAbs:
		lexical, err := ip.match(proc.Abs.Head, args, proc.Abs.Lexical)
		if err != nil {
			return Gc{}, err
		}
		frame, err := ip.Pair(lexical, proc.Abs.Dynamic)
		if err != nil {
			return Gc{}, err
		}
		// Tail position: the caller's continuation flows into the body.
		return ip.evalK(proc.Abs.Tail, frame, k)

	case ProcCont:
		vs, err := ip.listArgs(args, 1)
		if err != nil {
			return Gc{}, err
		}
		// A captured continuation composes: resuming it yields the value
		// of the reset body it was captured under, which then continues
		// at the invocation site.
		v, err := proc.Resume(vs[0])
		if err != nil {
			return Gc{}, err
		}
		return k(v)
	}
	return Gc{}, failType("unknown procedure kind")
}

// applyNat dispatches the built-in primitives.
func (ip *Interp) applyNat(nat Nat, args, env Gc, k Rest) (Gc, error) {
	switch nat {
	case NatPair:
		vs, err := ip.listArgs(args, 2)
		if err != nil {
			return Gc{}, err
		}
		out, err := ip.Pair(vs[0], vs[1])
		if err != nil {
			return Gc{}, err
		}
		return k(out)

	case NatFst, NatSnd:
		vs, err := ip.listArgs(args, 1)
		if err != nil {
			return Gc{}, err
		}
		obj, err := ip.heap.get(vs[0])
		if err != nil {
			return Gc{}, err
		}
		if obj.Tag != TagPair {
			return Gc{}, failType("%s of a %s", nat, obj.Tag)
		}
		cell := obj.Data.(Pair)
		if nat == NatFst {
			return k(cell.Fst)
		}
		return k(cell.Snd)

	case NatNot:
		vs, err := ip.listArgs(args, 1)
		if err != nil {
			return Gc{}, err
		}
		b, err := ip.boolOf(vs[0])
		if err != nil {
			return Gc{}, err
		}
		out, err := ip.boolean(!b)
		if err != nil {
			return Gc{}, err
		}
		return k(out)

	case NatEval:
		// (eval expr) in the current environment, or (eval expr env).
		vs, err := ip.elements(args)
		if err != nil {
			return Gc{}, err
		}
		switch len(vs) {
		case 1:
			return ip.evalK(vs[0], env, k)
		case 2:
			return ip.evalK(vs[0], vs[1], k)
		}
		return Gc{}, failShape("eval takes 1 or 2 arguments, got %d", len(vs))

	case NatInit:
		if _, err := ip.listArgs(args, 0); err != nil {
			return Gc{}, err
		}
		base, err := ip.BaseEnv()
		if err != nil {
			return Gc{}, err
		}
		return k(base)

	case NatShift:
		vs, err := ip.listArgs(args, 1)
		if err != nil {
			return Gc{}, err
		}
		return ip.shift(vs[0], env, k)

	case NatReset:
		forms, err := ip.elements(args)
		if err != nil {
			return Gc{}, err
		}
		if len(forms) != 1 {
			return Gc{}, failShape("reset takes 1 form, got %d", len(forms))
		}
		// The identity continuation is the delimiter: nothing captured
		// inside the body extends past this point.
		v, err := ip.evalK(forms[0], env, idK)
		if err != nil {
			return Gc{}, err
		}
		return k(v)

	case NatAnd:
		return ip.foldBool(args, env, true, k)

	case NatOr:
		return ip.foldBool(args, env, false, k)
	}
	return Gc{}, failType("unknown native %d", int(nat))
}

// shift reifies the continuation up to the nearest reset and hands it to
// f as a first-class procedure. f's result answers the whole reset body:
// shift runs f under the identity continuation and never invokes k
// itself; k only runs again if f applies the reified value.
func (ip *Interp) shift(f, env Gc, k Rest) (Gc, error) {
	resume, err := ip.heap.put(Object{Tag: TagProc, Data: Proc{Kind: ProcCont, Resume: k}})
	if err != nil {
		return Gc{}, err
	}
	reified, err := ip.App(resume)
	if err != nil {
		return Gc{}, err
	}
	empty, err := ip.Unit()
	if err != nil {
		return Gc{}, err
	}
	argList, err := ip.Pair(reified, empty)
	if err != nil {
		return Gc{}, err
	}
	return ip.applyK(f, argList, env, idK)
}

// foldBool is the engine behind and/or. Forms evaluate left to right and
// must each yield a boolean; the first deciding value (false for and,
// true for or) short-circuits and is the result, otherwise the last value
// is. Empty forms yield the fold's identity.
func (ip *Interp) foldBool(forms, env Gc, conj bool, k Rest) (Gc, error) {
	obj, err := ip.heap.get(forms)
	if err != nil {
		return Gc{}, err
	}
	if obj.isUnit() {
		out, err := ip.boolean(conj)
		if err != nil {
			return Gc{}, err
		}
		return k(out)
	}
	if !obj.isList() {
		return Gc{}, failType("boolean forms are not a proper list")
	}
	cell := obj.Data.(Pair)
	return ip.evalK(cell.Fst, env, func(v Gc) (Gc, error) {
		b, err := ip.boolOf(v)
		if err != nil {
			return Gc{}, err
		}
		if b != conj {
			return k(v) // deciding value short-circuits
		}
		rest, err := ip.heap.get(cell.Snd)
		if err != nil {
			return Gc{}, err
		}
		if rest.isUnit() {
			return k(v)
		}
		return ip.foldBool(cell.Snd, env, conj, k)
	})
}

/* ===========================
   environments
   =========================== */

// lookup resolves name through env's lexical chain, then its dynamic one.
func (ip *Interp) lookup(name string, env Gc) (Gc, error) {
	obj, err := ip.heap.get(env)
	if err != nil {
		return Gc{}, err
	}
	if obj.Tag != TagPair {
		return Gc{}, failType("environment is a %s, not a pair of chains", obj.Tag)
	}
	cell := obj.Data.(Pair)
	for _, chain := range [2]Gc{cell.Fst, cell.Snd} {
		v, found, err := ip.scanChain(chain, name)
		if err != nil {
			return Gc{}, err
		}
		if found {
			return v, nil
		}
	}
	return Gc{}, failLookup(name)
}

// scanChain walks a binding chain looking for name.
func (ip *Interp) scanChain(chain Gc, name string) (Gc, bool, error) {
	for {
		obj, err := ip.heap.get(chain)
		if err != nil {
			return Gc{}, false, err
		}
		if obj.isUnit() {
			return Gc{}, false, nil
		}
		if obj.Tag != TagPair {
			return Gc{}, false, failType("environment chain is not a list")
		}
		cell := obj.Data.(Pair)
		bobj, err := ip.heap.get(cell.Fst)
		if err != nil {
			return Gc{}, false, err
		}
		if bobj.Tag != TagPair {
			return Gc{}, false, failType("environment binding is not a pair")
		}
		binding := bobj.Data.(Pair)
		sobj, err := ip.heap.get(binding.Fst)
		if err != nil {
			return Gc{}, false, err
		}
		if sobj.Tag == TagSym && sobj.Data.(string) == name {
			return binding.Snd, true, nil
		}
		chain = cell.Snd
	}
}

// match binds pattern against args on top of chain and returns the
// extended chain. A symbol pattern binds the whole of args; unit demands
// unit; a pair pattern destructures a pair. Anything else, or a
// structural mismatch, is a shape error.
func (ip *Interp) match(pattern, args, chain Gc) (Gc, error) {
	pobj, err := ip.heap.get(pattern)
	if err != nil {
		return Gc{}, err
	}
	switch pobj.Tag {
	case TagSym:
		binding, err := ip.Pair(pattern, args)
		if err != nil {
			return Gc{}, err
		}
		return ip.Pair(binding, chain)

	case TagUnit:
		aobj, err := ip.heap.get(args)
		if err != nil {
			return Gc{}, err
		}
		if !aobj.isUnit() {
			return Gc{}, failShape("too many arguments")
		}
		return chain, nil

	case TagPair:
		aobj, err := ip.heap.get(args)
		if err != nil {
			return Gc{}, err
		}
		if aobj.Tag != TagPair {
			return Gc{}, failShape("too few arguments")
		}
		pcell := pobj.Data.(Pair)
		acell := aobj.Data.(Pair)
		chain, err = ip.match(pcell.Fst, acell.Fst, chain)
		if err != nil {
			return Gc{}, err
		}
		return ip.match(pcell.Snd, acell.Snd, chain)
	}
	return Gc{}, failShape("unbindable pattern: %s", pobj.Tag)
}

/* ===========================
   small helpers
   =========================== */

// elements collects a proper list into a slice of handles.
func (ip *Interp) elements(list Gc) ([]Gc, error) {
	var out []Gc
	for {
		obj, err := ip.heap.get(list)
		if err != nil {
			return nil, err
		}
		if obj.isUnit() {
			return out, nil
		}
		if obj.Tag != TagPair {
			return nil, failType("argument list is not a proper list")
		}
		cell := obj.Data.(Pair)
		out = append(out, cell.Fst)
		list = cell.Snd
	}
}

// listArgs collects a proper list and insists on an exact length.
func (ip *Interp) listArgs(list Gc, want int) ([]Gc, error) {
	vs, err := ip.elements(list)
	if err != nil {
		return nil, err
	}
	if len(vs) != want {
		return nil, failShape("want %d arguments, got %d", want, len(vs))
	}
	return vs, nil
}

// boolOf dereferences a value that must be a boolean.
func (ip *Interp) boolOf(ptr Gc) (bool, error) {
	obj, err := ip.heap.get(ptr)
	if err != nil {
		return false, err
	}
	if obj.Tag != TagBool {
		return false, failType("want a bool, got a %s", obj.Tag)
	}
	return obj.Data.(bool), nil
}

// boolean allocates a boolean literal.
func (ip *Interp) boolean(b bool) (Gc, error) {
	if b {
		return ip.T()
	}
	return ip.F()
}
