package typeresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irengine/pkg/ir"
)

func TestResolve_Builtin(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("int")
	assert.Equal(t, ir.FlavorBuiltin, entity.Flavor)
	assert.Equal(t, ir.ResolutionBuiltin, entity.ResolutionLevel)
}

func TestResolve_LocalClass(t *testing.T) {
	r := New("repo")
	r.RegisterLocalClass("Widget", "class:1")

	entity := r.Resolve("Widget")
	assert.Equal(t, ir.FlavorUser, entity.Flavor)
	assert.Equal(t, ir.ResolutionLocal, entity.ResolutionLevel)
	assert.Equal(t, "class:1", entity.ResolvedTarget)
}

func TestResolve_DispatchOrder_LocalBeatsModuleAndProject(t *testing.T) {
	r := New("repo")
	r.RegisterProjectType("pkg.Widget", "class:project")
	r.RegisterModuleType("Widget", "class:module")
	r.RegisterLocalClass("Widget", "class:local")

	entity := r.Resolve("Widget")
	assert.Equal(t, ir.ResolutionLocal, entity.ResolutionLevel)
	assert.Equal(t, "class:local", entity.ResolvedTarget)
}

func TestResolve_ModuleBeatsProject(t *testing.T) {
	r := New("repo")
	r.RegisterProjectType("pkg.Widget", "class:project")
	r.RegisterModuleType("Widget", "class:module")

	entity := r.Resolve("Widget")
	assert.Equal(t, ir.ResolutionModule, entity.ResolutionLevel)
	assert.Equal(t, "class:module", entity.ResolvedTarget)
}

func TestResolve_ProjectBySimpleName(t *testing.T) {
	r := New("repo")
	r.RegisterProjectType("src.retriever.models.SearchHit", "class:hit")

	entity := r.Resolve("SearchHit")
	assert.Equal(t, ir.ResolutionProject, entity.ResolutionLevel)
	assert.Equal(t, "class:hit", entity.ResolvedTarget)
}

func TestResolve_ProjectByQualifiedSuffix(t *testing.T) {
	r := New("repo")
	r.RegisterProjectType("src.retriever.models.SearchHit", "class:hit")

	entity := r.Resolve("models.SearchHit")
	assert.Equal(t, ir.ResolutionProject, entity.ResolutionLevel)
	assert.Equal(t, "class:hit", entity.ResolvedTarget)
}

func TestResolve_Stdlib(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("Path")
	assert.Equal(t, ir.FlavorExternal, entity.Flavor)
	assert.Equal(t, ir.ResolutionExternal, entity.ResolutionLevel)
}

func TestResolve_UnknownExternal_FallsBackToRaw(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("SomeThirdPartyThing")
	assert.Equal(t, ir.FlavorExternal, entity.Flavor)
	assert.Equal(t, ir.ResolutionRaw, entity.ResolutionLevel)
}

func TestResolve_ImportAliasSubstitution(t *testing.T) {
	r := New("repo")
	r.RegisterLocalClass("Widget", "class:local")
	r.RegisterImportAlias("W", "Widget")

	entity := r.Resolve("W")
	assert.Equal(t, ir.ResolutionLocal, entity.ResolutionLevel)
	assert.Equal(t, "class:local", entity.ResolvedTarget)
}

func TestResolve_Nullability(t *testing.T) {
	r := New("repo")
	assert.True(t, r.Resolve("Optional[int]").IsNullable)
	assert.True(t, r.Resolve("int | None").IsNullable)
	assert.True(t, r.Resolve("None | int").IsNullable)
	assert.False(t, r.Resolve("int").IsNullable)
}

func TestResolve_GenericParams_SingleLevel(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("List[str]")
	require.Len(t, entity.GenericParamIDs, 1)
	assert.Equal(t, ir.TypeID("str", "repo"), entity.GenericParamIDs[0])
}

func TestResolve_GenericParams_MultipleTopLevel(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("Dict[str, int]")
	require.Len(t, entity.GenericParamIDs, 2)
	assert.Equal(t, ir.TypeID("str", "repo"), entity.GenericParamIDs[0])
	assert.Equal(t, ir.TypeID("int", "repo"), entity.GenericParamIDs[1])
}

func TestResolve_GenericParams_NestedBracketsNotSplit(t *testing.T) {
	r := New("repo")
	entity := r.Resolve("Dict[str, List[int]]")
	require.Len(t, entity.GenericParamIDs, 2)
	assert.Equal(t, ir.TypeID("str", "repo"), entity.GenericParamIDs[0])
	assert.Equal(t, ir.TypeID("List[int]", "repo"), entity.GenericParamIDs[1])
}

func TestSplitTopLevelCommas_RespectsAllBracketKinds(t *testing.T) {
	parts := SplitTopLevelCommas("Map<String, List<Integer>>, int")
	require.Len(t, parts, 2)
	assert.Equal(t, "Map<String, List<Integer>>", parts[0])
	assert.Equal(t, "int", parts[1])
}

func TestBuildIndexFromIR_RegistersProjectAndModuleTypes(t *testing.T) {
	doc := &ir.IRDocument{
		Nodes: []ir.Node{
			{ID: "class:a", Kind: ir.KindClass, FQN: "pkg.a.Foo", FilePath: "pkg/a/foo.py"},
			{ID: "file:b", Kind: ir.KindFile, FilePath: "pkg/b/bar.py"},
		},
		Edges: []ir.Edge{
			{Kind: ir.EdgeImports, SourceID: "file:b", TargetID: "class:a"},
		},
	}
	// same-package import requires source/target under the same directory;
	// here they differ (pkg/a vs pkg/b), so only PROJECT registration applies.
	r := New("repo")
	r.BuildIndexFromIR(doc)

	entity := r.Resolve("Foo")
	assert.Equal(t, ir.ResolutionProject, entity.ResolutionLevel)
	assert.Equal(t, "class:a", entity.ResolvedTarget)
}
