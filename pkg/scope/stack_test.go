package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
)

func TestBuildFQN_NestsUnderCurrentScope(t *testing.T) {
	s := New("pkg.mod", "module:1")
	assert.Equal(t, "pkg.mod.Foo", s.BuildFQN("Foo"))

	s.Push(ir.KindClass, "Foo", s.BuildFQN("Foo"), "class:1")
	assert.Equal(t, "pkg.mod.Foo.bar", s.BuildFQN("bar"))
}

func TestPush_Pop_RestoresOuterScope(t *testing.T) {
	s := New("pkg.mod", "module:1")
	require.Equal(t, "pkg.mod", s.CurrentFQN())

	s.Push(ir.KindClass, "Foo", "pkg.mod.Foo", "class:1")
	require.Equal(t, "pkg.mod.Foo", s.CurrentFQN())

	s.Pop()
	assert.Equal(t, "pkg.mod", s.CurrentFQN())
}

func TestPop_OnModuleFrame_IsNoOp(t *testing.T) {
	s := New("pkg.mod", "module:1")
	s.Pop()
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, "pkg.mod", s.CurrentFQN())
}

func TestRegisterSymbol_DetectsShadowingOfEnclosingScope(t *testing.T) {
	s := New("pkg.mod", "module:1")
	s.RegisterSymbol("x", "variable", "var:outer", ir.Span{StartLine: 1})

	s.Push(ir.KindFunction, "f", "pkg.mod.f", "func:1")
	s.RegisterSymbol("x", "parameter", "var:inner", ir.Span{StartLine: 2})

	shadows := s.Shadowings()
	require.Len(t, shadows, 1)
	assert.Equal(t, "var:inner", shadows[0].InnerNodeID)
	assert.Equal(t, "var:outer", shadows[0].OuterNodeID)
}

func TestRegisterSymbol_NoShadowAcrossSiblingScopes(t *testing.T) {
	s := New("pkg.mod", "module:1")

	s.Push(ir.KindFunction, "f1", "pkg.mod.f1", "func:1")
	s.RegisterSymbol("x", "variable", "var:f1", ir.Span{StartLine: 1})
	s.Pop()

	s.Push(ir.KindFunction, "f2", "pkg.mod.f2", "func:2")
	s.RegisterSymbol("x", "variable", "var:f2", ir.Span{StartLine: 5})

	assert.Empty(t, s.Shadowings())
}

func TestRegisterSymbol_ShadowPicksNearestEnclosingDeclaration(t *testing.T) {
	s := New("pkg.mod", "module:1")
	s.RegisterSymbol("x", "variable", "var:module", ir.Span{StartLine: 1})

	s.Push(ir.KindClass, "C", "pkg.mod.C", "class:1")
	s.RegisterSymbol("x", "field", "var:class", ir.Span{StartLine: 2})

	s.Push(ir.KindMethod, "m", "pkg.mod.C.m", "method:1")
	s.RegisterSymbol("x", "parameter", "var:method", ir.Span{StartLine: 3})

	shadows := s.Shadowings()
	require.Len(t, shadows, 1)
	assert.Equal(t, "var:class", shadows[0].OuterNodeID, "nearest-enclosing declaration shadows, not the module-level one")
}

func TestLookupSymbol_FindsOuterScopeWhenNotShadowed(t *testing.T) {
	s := New("pkg.mod", "module:1")
	s.RegisterSymbol("y", "variable", "var:outer", ir.Span{})

	s.Push(ir.KindFunction, "f", "pkg.mod.f", "func:1")
	nodeID, ok := s.LookupSymbol("y")
	require.True(t, ok)
	assert.Equal(t, "var:outer", nodeID)
}

func TestLookupSymbol_Unknown(t *testing.T) {
	s := New("pkg.mod", "module:1")
	_, ok := s.LookupSymbol("missing")
	assert.False(t, ok)
}

func TestImportAlias_RegisterAndResolve(t *testing.T) {
	s := New("pkg.mod", "module:1")
	s.RegisterImport("np", "numpy")

	full, ok := s.ResolveImportAlias("np")
	require.True(t, ok)
	assert.Equal(t, "numpy", full)

	_, ok = s.ResolveImportAlias("pd")
	assert.False(t, ok)
}
