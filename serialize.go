package glreflect

import (
	"encoding/binary"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

// FormatVersion is the reflection blob format written by MarshalBinary.
// Unmarshal accepts no other version.
const FormatVersion uint32 = 2

// aggregateTag marks an aggregate member record. types.Invalid is never a
// valid uniform type, so the tag cannot clash with one.
const aggregateTag = uint32(types.Invalid)

// Blob layout, all integers little-endian u32. The core section is all a
// reader needs for attribute locations and block layouts; the extension
// section that follows it carries the rest of the reflection.
//
//	format_version
//	attribute_count  { name, type, location? }
//	block_count      { name, binding, size, record_count { record } }
//
//	extension:
//	block_count times  { set, stages, { record_ext } per record }
//	opaque_count     { uniform }
//	uniform_count    { uniform }
//
//	record     = name, type, offset, array_length
//	             one per block member, aggregates before their members;
//	             an aggregate has type 0 and array_length 1
//	record_ext = type == 0: size, member_count
//	             otherwise: stride, stages, block, location?, binding?, set?
//	uniform    = name, type, array_length, offset, stride, stages, block,
//	             location?, binding?, set?
//	name       = length, bytes
//	x?         = valid (0 or 1), value

// MarshalBinary encodes r as a reflection blob. The encoding depends only on
// the contents of r.
func (r *Reflection) MarshalBinary() ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, 256)}
	e.u32(FormatVersion)

	e.u32(uint32(len(r.attributes)))
	for _, a := range r.attributes {
		e.str(a.Name)
		e.u32(uint32(a.Type))
		e.opt(a.Location)
	}

	records := make([][]Member, len(r.blocks))
	e.u32(uint32(len(r.blocks)))
	for i := range r.blocks {
		b := &r.blocks[i]
		records[i] = preorder(b.Members, nil)
		e.str(b.Name)
		e.u32(b.Binding)
		e.u32(b.Size)
		e.u32(uint32(len(records[i])))
		for _, m := range records[i] {
			e.record(m)
		}
	}

	for i := range r.blocks {
		b := &r.blocks[i]
		e.u32(b.Set)
		e.u32(uint32(b.Stages))
		for _, m := range records[i] {
			e.recordExt(m)
		}
	}

	e.u32(uint32(len(r.opaque)))
	for i := range r.opaque {
		e.uniform(&r.opaque[i])
	}

	e.u32(uint32(len(r.uniforms)))
	for i := range r.uniforms {
		e.uniform(&r.uniforms[i])
	}
	return e.buf, nil
}

// preorder appends members and, after each aggregate, its members.
func preorder(members []Member, out []Member) []Member {
	for _, m := range members {
		out = append(out, m)
		if a, ok := m.(*Aggregate); ok {
			out = preorder(a.Members, out)
		}
	}
	return out
}

// Unmarshal decodes a reflection blob produced by MarshalBinary.
//
// A blob of another format version fails with ErrVersionMismatch; truncated
// or otherwise invalid data fails with ErrCorruptBlob.
func Unmarshal(data []byte) (*Reflection, error) {
	d := &decoder{buf: data}
	version := d.u32()
	if d.err != nil {
		return nil, d.err
	}
	if version != FormatVersion {
		return nil, newError(ErrVersionMismatch, "", "blob format version %d, supported %d", version, FormatVersion)
	}

	var attrs []Attribute
	for n := d.count(); n > 0 && d.err == nil; n-- {
		a := Attribute{Name: d.str(), Type: d.typ(), Location: d.opt()}
		attrs = append(attrs, a)
	}

	var blocks []UniformBlock
	var records [][]record
	for n := d.count(); n > 0 && d.err == nil; n-- {
		b := UniformBlock{
			Name:    d.str(),
			Binding: d.u32(),
			Size:    d.u32(),
		}
		var recs []record
		for m := d.count(); m > 0 && d.err == nil; m-- {
			recs = append(recs, record{name: d.str(), tag: d.u32(), offset: d.u32(), length: d.u32()})
		}
		blocks = append(blocks, b)
		records = append(records, recs)
	}

	for i := range blocks {
		if d.err != nil {
			break
		}
		b := &blocks[i]
		b.Set = d.u32()
		b.Stages = frontend.Stage(d.u32())
		if d.err == nil && len(records[i]) == 0 {
			d.fail("block %q has no members", b.Name)
			break
		}
		t := &tree{d: d, records: records[i]}
		b.Members = t.members(-1, 0)
	}

	var opaque []Uniform
	for n := d.count(); n > 0 && d.err == nil; n-- {
		opaque = append(opaque, d.uniform())
	}
	var raw []Uniform
	for n := d.count(); n > 0 && d.err == nil; n-- {
		raw = append(raw, d.uniform())
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.buf) != 0 {
		return nil, newError(ErrCorruptBlob, "", "%d trailing bytes", len(d.buf))
	}
	if err := checkNames(attrs, opaque, blocks, raw); err != nil {
		return nil, newError(ErrCorruptBlob, "", "%v", err)
	}
	r, err := newReflection(attrs, opaque, blocks, raw)
	if err != nil {
		return nil, newError(ErrCorruptBlob, "", "%v", err)
	}
	return r, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) opt(o frontend.Optional) {
	if o.Valid {
		e.u32(1)
	} else {
		e.u32(0)
	}
	e.u32(o.Value)
}

func (e *encoder) uniform(u *Uniform) {
	e.str(u.Name)
	e.u32(uint32(u.Type))
	e.u32(u.ArraySize)
	e.u32(u.Offset)
	e.u32(u.Stride)
	e.u32(uint32(u.Stages))
	e.str(u.Block)
	e.opt(u.Location)
	e.opt(u.Binding)
	e.opt(u.Set)
}

func (e *encoder) record(m Member) {
	switch m := m.(type) {
	case *Uniform:
		e.str(m.Name)
		e.u32(uint32(m.Type))
		e.u32(m.Offset)
		e.u32(m.ArraySize)
	case *Aggregate:
		e.str(m.Name)
		e.u32(aggregateTag)
		e.u32(m.Offset)
		e.u32(1)
	}
}

func (e *encoder) recordExt(m Member) {
	switch m := m.(type) {
	case *Uniform:
		e.u32(m.Stride)
		e.u32(uint32(m.Stages))
		e.str(m.Block)
		e.opt(m.Location)
		e.opt(m.Binding)
		e.opt(m.Set)
	case *Aggregate:
		e.u32(m.Size)
		e.u32(uint32(len(m.Members)))
	}
}

// maxDepth bounds aggregate nesting so a hostile blob cannot exhaust the stack.
const maxDepth = 64

// decoder reads a blob. The first failure sticks; later reads return zero
// values.
type decoder struct {
	buf []byte
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = newError(ErrCorruptBlob, "", format, args...)
	}
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	if len(d.buf) < 4 {
		d.fail("unexpected end of data")
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf)
	d.buf = d.buf[4:]
	return v
}

// count reads a list length, rejecting lengths the remaining data cannot hold.
func (d *decoder) count() uint32 {
	n := d.u32()
	if d.err == nil && uint64(n)*4 > uint64(len(d.buf)) {
		d.fail("count %d exceeds remaining data", n)
		return 0
	}
	return n
}

func (d *decoder) str() string {
	n := d.u32()
	if d.err != nil {
		return ""
	}
	if uint64(n) > uint64(len(d.buf)) {
		d.fail("string length %d exceeds remaining data", n)
		return ""
	}
	s := string(d.buf[:n])
	d.buf = d.buf[n:]
	return s
}

func (d *decoder) opt() frontend.Optional {
	valid := d.u32()
	value := d.u32()
	switch valid {
	case 0:
		if value != 0 {
			d.fail("absent optional carries value %d", value)
		}
		return frontend.None
	case 1:
		return frontend.Some(value)
	default:
		d.fail("invalid optional flag %d", valid)
		return frontend.None
	}
}

func (d *decoder) typ() types.Type {
	t := types.Type(d.u32())
	if d.err == nil && !t.Valid() {
		d.fail("unknown type tag 0x%X", uint32(t))
	}
	return t
}

func (d *decoder) uniform() Uniform {
	return Uniform{
		Name:      d.str(),
		Type:      d.typ(),
		ArraySize: d.u32(),
		Offset:    d.u32(),
		Stride:    d.u32(),
		Stages:    frontend.Stage(d.u32()),
		Block:     d.str(),
		Location:  d.opt(),
		Binding:   d.opt(),
		Set:       d.opt(),
	}
}

// record is the core part of a member record.
type record struct {
	name   string
	tag    uint32
	offset uint32
	length uint32
}

// tree rebuilds a block's member tree from its records, reading each
// record's extension in turn.
type tree struct {
	d       *decoder
	records []record
	next    int
}

// members reads n members, or all remaining records when n is negative.
func (t *tree) members(n int, depth int) []Member {
	d := t.d
	if depth > maxDepth {
		d.fail("aggregates nested deeper than %d", maxDepth)
		return nil
	}
	var members []Member
	for ; n != 0 && d.err == nil; n-- {
		if t.next == len(t.records) {
			if n > 0 {
				d.fail("aggregate has %d more members than records", n)
			}
			break
		}
		r := t.records[t.next]
		t.next++
		if r.tag == aggregateTag {
			if r.length != 1 {
				d.fail("aggregate %q with array length %d", r.name, r.length)
				break
			}
			agg := &Aggregate{Name: r.name, Offset: r.offset, Size: d.u32()}
			count := d.u32()
			if d.err != nil {
				break
			}
			if count == 0 || uint64(count) > uint64(len(t.records)-t.next) {
				d.fail("aggregate %q with %d members", r.name, count)
				break
			}
			agg.Members = t.members(int(count), depth+1)
			members = append(members, agg)
			continue
		}
		if !types.Type(r.tag).Valid() {
			d.fail("unknown type tag 0x%X", r.tag)
			break
		}
		members = append(members, &Uniform{
			Name:      r.name,
			Type:      types.Type(r.tag),
			Offset:    r.offset,
			ArraySize: r.length,
			Stride:    d.u32(),
			Stages:    frontend.Stage(d.u32()),
			Block:     d.str(),
			Location:  d.opt(),
			Binding:   d.opt(),
			Set:       d.opt(),
		})
	}
	return members
}
