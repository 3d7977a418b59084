// printer.go: value rendering.
//
// show writes a value's external form into a strings.Builder:
//
//	unit         ()
//	booleans     #t / #f
//	symbols      their name
//	proper list  (a b c)
//	dotted pair  (a * b)
//	procedures   <procedure>
//
// Proper lists are detected from the pair's cached IsList flag, so each
// cell costs O(1); a guard error fires if a cached list fails to end in
// unit, which would mean the constructor invariant was broken. Pointer
// errors from a stale graph propagate unchanged.
package softmacs

import "strings"

func (ip *Interp) show(ptr Gc, buf *strings.Builder) error {
	obj, err := ip.heap.get(ptr)
	if err != nil {
		return err
	}
	switch obj.Tag {
	case TagUnit:
		buf.WriteString("()")

	case TagBool:
		if obj.Data.(bool) {
			buf.WriteString("#t")
		} else {
			buf.WriteString("#f")
		}

	case TagSym:
		buf.WriteString(obj.Data.(string))

	case TagPair:
		pair := obj.Data.(Pair)
		if !pair.IsList {
			buf.WriteByte('(')
			if err := ip.show(pair.Fst, buf); err != nil {
				return err
			}
			buf.WriteString(" * ")
			if err := ip.show(pair.Snd, buf); err != nil {
				return err
			}
			buf.WriteByte(')')
			return nil
		}
		buf.WriteByte('(')
		xs := ptr
		for {
			obj, err := ip.heap.get(xs)
			if err != nil {
				return err
			}
			if obj.Tag != TagPair {
				if err := guard(obj.isUnit()); err != nil {
					return err
				}
				break
			}
			pair := obj.Data.(Pair)
			if err := ip.show(pair.Fst, buf); err != nil {
				return err
			}
			snd, err := ip.heap.get(pair.Snd)
			if err != nil {
				return err
			}
			if !snd.isUnit() {
				buf.WriteByte(' ')
			}
			xs = pair.Snd
		}
		buf.WriteByte(')')

	case TagProc:
		buf.WriteString("<procedure>")
	}
	return nil
}
