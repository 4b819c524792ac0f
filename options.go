package glreflect

import (
	"sync"

	"github.com/gogpu/glreflect/frontend"
)

// BlockPolicy decides which uniform block a uniform without an explicit
// block association goes to.
type BlockPolicy uint8

const (
	// PolicySingleDefault places every such uniform in one default block.
	PolicySingleDefault BlockPolicy = iota

	// PolicyPerStage splits the default block per stage: uniforms the vertex
	// stage references go to "<name>_vs", fragment-only uniforms to "<name>_fs".
	PolicyPerStage
)

// String returns the policy name.
func (p BlockPolicy) String() string {
	switch p {
	case PolicySingleDefault:
		return "single-default"
	case PolicyPerStage:
		return "per-stage"
	default:
		return "unknown"
	}
}

// DebugOptions select additional artifacts for the surrounding I/O layer.
// The engine only decides what to emit; see Artifacts.
type DebugOptions struct {
	// DumpReflection emits a text listing of the built reflection.
	DumpReflection bool

	// DumpInputReflection emits the raw attribute/uniform list reported by
	// the front-end, before grouping and layout.
	DumpInputReflection bool

	// DumpProcessedSource emits the stage sources after front-end processing.
	DumpProcessedSource bool

	// SaveBinary emits the reflection blob and the stage binaries.
	SaveBinary bool

	// SaveSource emits the stage sources under their file names.
	SaveSource bool

	// SaveSPVText emits readable SPIR-V text for every stage binary.
	SaveSPVText bool
}

// Options configures a reflection build.
type Options struct {
	// BlockPolicy selects how default-block uniforms are grouped.
	BlockPolicy BlockPolicy

	// DefaultBlockName names the default uniform block (default: "uniforms").
	DefaultBlockName string

	// DefaultSet is the descriptor set of blocks and opaque uniforms the
	// front-end did not assign one (default: 0).
	DefaultSet uint32

	// AssignOpaqueBindings allocates bindings for opaque uniforms the
	// front-end left unbound. When false they stay absent for a
	// downstream binder.
	AssignOpaqueBindings bool

	// Debug selects diagnostic artifacts.
	Debug DebugOptions
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		BlockPolicy:          PolicySingleDefault,
		DefaultBlockName:     "uniforms",
		DefaultSet:           0,
		AssignOpaqueBindings: true,
	}
}

func (o Options) defaultBlockName() string {
	if o.DefaultBlockName == "" {
		return "uniforms"
	}
	return o.DefaultBlockName
}

// Environment owns the front-end resource table shared by every build.
// Create one per process (or per device) and pass it to Build; the table is
// initialised once, on first use, and is read-only afterwards.
//
// An Environment is safe for concurrent use by multiple builds.
type Environment struct {
	once sync.Once
	load func() frontend.Resources
	res  frontend.Resources
}

// NewEnvironment returns an environment whose resource table is produced by
// load on first use. A nil load selects frontend.DefaultResources.
func NewEnvironment(load func() frontend.Resources) *Environment {
	if load == nil {
		load = frontend.DefaultResources
	}
	return &Environment{load: load}
}

// Resources returns a copy of the resource table, initialising it exactly once.
func (e *Environment) Resources() frontend.Resources {
	e.once.Do(func() {
		if e.load == nil {
			e.load = frontend.DefaultResources
		}
		e.res = e.load()
		Logger().Debug("glreflect: resource table initialised",
			"maxVertexAttribs", e.res.MaxVertexAttribs,
			"maxUniformBlockSize", e.res.MaxUniformBlockSize)
	})
	return e.res
}
