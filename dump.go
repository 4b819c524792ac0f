package glreflect

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/internal/spvtext"
)

// ArtifactKind identifies a diagnostic artifact.
type ArtifactKind uint8

const (
	// ArtifactReflectionDump is a text listing of the built reflection.
	ArtifactReflectionDump ArtifactKind = iota + 1

	// ArtifactInputDump lists the attributes and uniforms as the front-end
	// reported them.
	ArtifactInputDump

	// ArtifactProcessedSource is a stage source after front-end processing.
	ArtifactProcessedSource

	// ArtifactSource is a stage source saved under its file name.
	ArtifactSource

	// ArtifactBlob is the reflection blob.
	ArtifactBlob

	// ArtifactBinary is a compiled stage binary.
	ArtifactBinary

	// ArtifactSPVText is readable SPIR-V text of a stage binary.
	ArtifactSPVText
)

// String returns the artifact kind name.
func (k ArtifactKind) String() string {
	switch k {
	case ArtifactReflectionDump:
		return "reflection"
	case ArtifactInputDump:
		return "input-reflection"
	case ArtifactProcessedSource:
		return "processed-source"
	case ArtifactSource:
		return "source"
	case ArtifactBlob:
		return "blob"
	case ArtifactBinary:
		return "binary"
	case ArtifactSPVText:
		return "spv-text"
	default:
		return "unknown"
	}
}

// Artifact is a diagnostic output. Name is a suggested file name; the
// caller decides where, and whether, to store it.
type Artifact struct {
	Kind ArtifactKind
	Name string
	Data []byte
}

// Artifacts returns the diagnostic outputs selected by opts.Debug, in a
// fixed order. Sources and binaries are included for the stages whose
// program implements frontend.SourceProvider or frontend.BinaryProvider.
// Nothing is written anywhere.
func Artifacts(r *Reflection, prog frontend.Program, opts Options) ([]Artifact, error) {
	dbg := opts.Debug
	var out []Artifact

	if dbg.DumpReflection {
		var buf bytes.Buffer
		if err := r.Dump(&buf); err != nil {
			return nil, err
		}
		out = append(out, Artifact{Kind: ArtifactReflectionDump, Name: "reflection.txt", Data: buf.Bytes()})
	}
	if dbg.DumpInputReflection {
		var buf bytes.Buffer
		if err := DumpInput(&buf, prog); err != nil {
			return nil, err
		}
		out = append(out, Artifact{Kind: ArtifactInputDump, Name: "reflection_input.txt", Data: buf.Bytes()})
	}

	if src, ok := prog.(frontend.SourceProvider); ok {
		for _, stage := range frontend.Stages {
			text, ok := src.Source(stage)
			if !ok {
				continue
			}
			if dbg.DumpProcessedSource {
				out = append(out, Artifact{Kind: ArtifactProcessedSource, Name: stage.String() + ".processed.txt", Data: []byte(text)})
			}
			if dbg.SaveSource {
				out = append(out, Artifact{Kind: ArtifactSource, Name: stage.String() + ".src", Data: []byte(text)})
			}
		}
	}

	if dbg.SaveBinary {
		blob, err := r.MarshalBinary()
		if err != nil {
			return nil, err
		}
		out = append(out, Artifact{Kind: ArtifactBlob, Name: "reflection.bin", Data: blob})
	}

	if bin, ok := prog.(frontend.BinaryProvider); ok && (dbg.SaveBinary || dbg.SaveSPVText) {
		for _, stage := range frontend.Stages {
			code, ok := bin.Binary(stage)
			if !ok {
				continue
			}
			if dbg.SaveBinary {
				out = append(out, Artifact{Kind: ArtifactBinary, Name: stage.String() + ".spv", Data: code})
			}
			if dbg.SaveSPVText {
				var buf bytes.Buffer
				if err := spvtext.Disassemble(&buf, code); err != nil {
					return nil, fmt.Errorf("disassemble %s binary: %w", stage, err)
				}
				out = append(out, Artifact{Kind: ArtifactSPVText, Name: stage.String() + ".spvasm", Data: buf.Bytes()})
			}
		}
	}

	Logger().Debug("glreflect: artifacts selected", "count", len(out))
	return out, nil
}

// Dump writes a text listing of the reflection:
//
//	attribute a_position vec3 location=0
//	opaque u_texture sampler2D binding=1 set=0 stages=fs
//	block uniforms binding=0 set=0 size=160 stages=vs|fs
//	  light +0 size=32
//	    color vec3 +0
//	    intensity float +16
//	  matrices mat4[2] +32 stride=64
func (r *Reflection) Dump(w io.Writer) error {
	p := &printer{w: w}
	for _, a := range r.attributes {
		p.printf("attribute %s %v location=%v\n", a.Name, a.Type, a.Location)
	}
	for _, u := range r.opaque {
		p.printf("opaque %s %s binding=%v set=%v stages=%v\n",
			u.Name, typeName(&u), u.Binding, u.Set, u.Stages)
	}
	for i := range r.blocks {
		b := &r.blocks[i]
		p.printf("block %s binding=%d set=%d size=%d stages=%v\n",
			b.Name, b.Binding, b.Set, b.Size, b.Stages)
		p.members(b.Members, 1)
	}
	return p.err
}

// DumpInput writes the attributes and uniforms of prog as the front-end
// reported them, before aggregate grouping and layout.
func DumpInput(w io.Writer, prog frontend.Program) error {
	p := &printer{w: w}
	for _, a := range prog.Attributes() {
		p.printf("attribute %s %v location=%v\n", a.Name, a.Type, a.Location)
	}
	for _, u := range prog.Uniforms() {
		p.printf("uniform %s %v size=%d stages=%v", u.Name, u.Type, u.ArraySize, u.Stages)
		if u.Block != "" {
			p.printf(" block=%s", u.Block)
		}
		p.printf(" location=%v binding=%v set=%v\n", u.Location, u.Binding, u.Set)
	}
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) members(members []Member, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, m := range members {
		switch m := m.(type) {
		case *Uniform:
			p.printf("%s%s %s +%d", indent, m.Name, typeName(m), m.Offset)
			if m.IsArray() {
				p.printf(" stride=%d", m.Stride)
			}
			p.printf("\n")
		case *Aggregate:
			p.printf("%s%s +%d size=%d\n", indent, m.Name, m.Offset, m.Size)
			p.members(m.Members, depth+1)
		}
	}
}

func typeName(u *Uniform) string {
	if u.IsArray() {
		return fmt.Sprintf("%v[%d]", u.Type, u.ArraySize)
	}
	return u.Type.String()
}
