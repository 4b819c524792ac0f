package glreflect

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glreflect/frontend"
	"github.com/gogpu/glreflect/types"
)

func TestDump(t *testing.T) {
	prog := sceneProgram().
		AddAttribute(frontend.Attribute{Name: "a_position", Type: types.FloatVec3, Location: frontend.Some(0)}).
		AddUniform(frontend.Uniform{Name: "u_texture", Type: types.Sampler2D, Stages: frontend.StageFragment})
	refl, err := Build(nil, prog, DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, refl.Dump(&buf))

	want := strings.Join([]string{
		"attribute a_position vec3 location=0",
		"opaque u_texture sampler2D binding=1 set=0 stages=fs",
		"block uniforms binding=0 set=0 size=160 stages=vs|fs",
		"  light +0 size=32",
		"    color vec3 +0",
		"    intensity float +16",
		"  matrices mat4[2] +32 stride=64",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestDumpInput(t *testing.T) {
	prog := (&frontend.Static{}).
		AddAttribute(frontend.Attribute{Name: "a_uv", Type: types.FloatVec2}).
		AddUniform(frontend.Uniform{Name: "cam.view", Type: types.FloatMat4, Block: "Camera", Binding: frontend.Some(2)})

	var buf bytes.Buffer
	require.NoError(t, DumpInput(&buf, prog))
	assert.Equal(t,
		"attribute a_uv vec2 location=-\n"+
			"uniform cam.view mat4 size=0 stages=none block=Camera location=- binding=2 set=-\n",
		buf.String())
}

func spirvHeader() []byte {
	var b []byte
	for _, w := range []uint32{0x07230203, 0x00010300, 0, 1, 0} {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func TestArtifacts(t *testing.T) {
	prog := sceneProgram()
	prog.Sources = map[frontend.Stage]string{frontend.StageVertex: "void main() {}"}
	prog.Binaries = map[frontend.Stage][]byte{frontend.StageFragment: spirvHeader()}

	refl, err := Build(nil, prog, DefaultOptions())
	require.NoError(t, err)

	t.Run("none selected", func(t *testing.T) {
		arts, err := Artifacts(refl, prog, DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, arts)
	})

	t.Run("all selected", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Debug = DebugOptions{
			DumpReflection:      true,
			DumpInputReflection: true,
			DumpProcessedSource: true,
			SaveBinary:          true,
			SaveSource:          true,
			SaveSPVText:         true,
		}
		arts, err := Artifacts(refl, prog, opts)
		require.NoError(t, err)

		var names []string
		byKind := make(map[ArtifactKind]Artifact)
		for _, a := range arts {
			names = append(names, a.Name)
			byKind[a.Kind] = a
		}
		assert.Equal(t, []string{
			"reflection.txt",
			"reflection_input.txt",
			"vs.processed.txt",
			"vs.src",
			"reflection.bin",
			"fs.spv",
			"fs.spvasm",
		}, names)

		back, err := Unmarshal(byKind[ArtifactBlob].Data)
		require.NoError(t, err)
		assert.Equal(t, refl, back)
		assert.Equal(t, "void main() {}", string(byKind[ArtifactSource].Data))
		assert.Contains(t, string(byKind[ArtifactSPVText].Data), "; SPIR-V")
	})

	t.Run("bad binary", func(t *testing.T) {
		bad := sceneProgram()
		bad.Binaries = map[frontend.Stage][]byte{frontend.StageVertex: {1, 2, 3, 4}}
		opts := DefaultOptions()
		opts.Debug.SaveSPVText = true
		_, err := Artifacts(refl, bad, opts)
		assert.Error(t, err)
	})
}

func TestArtifactKindString(t *testing.T) {
	assert.Equal(t, "spv-text", ArtifactSPVText.String())
	assert.Equal(t, "blob", ArtifactBlob.String())
	assert.Equal(t, "unknown", ArtifactKind(0).String())
}
