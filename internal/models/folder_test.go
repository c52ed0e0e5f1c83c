package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestClassifyFolderStructure_Tree(t *testing.T) {
	v := decode(t, `[{"name":"src","type":"folder","children":[
		{"name":"App.jsx","type":"file"},
		{"name":"lib","type":"folder"}
	]},{"name":"README.md","type":"file","children":[{"name":"ignored"}]}]`)

	fs, err := ClassifyFolderStructure(v)
	require.NoError(t, err)
	require.Equal(t, KindTree, fs.Kind)
	require.Len(t, fs.Nodes, 2)

	src := fs.Nodes[0]
	assert.Equal(t, "src", src.Name)
	assert.True(t, src.IsFolder())
	require.Len(t, src.Children, 2)
	assert.Equal(t, FolderNode{Name: "App.jsx", Type: NodeFile}, src.Children[0])
	assert.Equal(t, FolderNode{Name: "lib", Type: NodeFolder, Children: []FolderNode{}}, src.Children[1])

	// file children are dropped
	assert.Nil(t, fs.Nodes[1].Children)
}

func TestClassifyFolderStructure_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind StructureKind
	}{
		{"string", `"src/\n  main.go"`, KindText},
		{"object", `{"src":["main.go"]}`, KindUnknown},
		{"number", `42`, KindUnknown},
		{"array of strings", `["src","main.go"]`, KindUnknown},
		{"node without name", `[{"type":"folder"}]`, KindUnknown},
		{"bad children", `[{"name":"a","type":"folder","children":"x"}]`, KindUnknown},
		{"empty array", `[]`, KindTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := ClassifyFolderStructure(decode(t, tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, fs.Kind)
		})
	}
}

func TestClassifyFolderStructure_Null(t *testing.T) {
	_, err := ClassifyFolderStructure(nil)
	assert.ErrorIs(t, err, ErrNullStructure)
}

func TestClassifyFolderStructure_UntypedNodeIsFile(t *testing.T) {
	fs, err := ClassifyFolderStructure(decode(t, `[{"name":"x","type":"directory","children":[]}]`))
	require.NoError(t, err)
	assert.Equal(t, NodeFile, fs.Nodes[0].Type)
	assert.Nil(t, fs.Nodes[0].Children)
}

func nestedFolders(depth int) string {
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(`[{"name":"d","type":"folder","children":`)
	}
	b.WriteString(`[]`)
	for i := 0; i < depth; i++ {
		b.WriteString(`}]`)
	}
	return b.String()
}

func treeDepth(nodes []FolderNode) int {
	depth := 0
	for len(nodes) > 0 {
		depth++
		nodes = nodes[0].Children
	}
	return depth
}

func TestClassifyFolderStructure_DepthBudget(t *testing.T) {
	fs, err := ClassifyFolderStructure(decode(t, nestedFolders(MaxTreeDepth)))
	require.NoError(t, err)
	assert.Equal(t, KindTree, fs.Kind)
	assert.False(t, fs.Truncated)
	assert.Equal(t, MaxTreeDepth, treeDepth(fs.Nodes))

	fs, err = ClassifyFolderStructure(decode(t, nestedFolders(4000)))
	require.NoError(t, err)
	assert.Equal(t, KindTree, fs.Kind)
	assert.True(t, fs.Truncated)
	assert.Equal(t, MaxTreeDepth, treeDepth(fs.Nodes))
}

func TestClassifyFolderStructure_NodeBudgetKeepsShallowNodes(t *testing.T) {
	var b strings.Builder
	b.WriteString(`[{"name":"big","type":"folder","children":[`)
	for i := 0; i < MaxTreeNodes; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"name":"f","type":"file"}`)
	}
	b.WriteString(`]},{"name":"README.md","type":"file"}]`)

	fs, err := ClassifyFolderStructure(decode(t, b.String()))
	require.NoError(t, err)
	require.Equal(t, KindTree, fs.Kind)
	assert.True(t, fs.Truncated)
	require.Len(t, fs.Nodes, 2)
	assert.Equal(t, "README.md", fs.Nodes[1].Name)
	assert.Len(t, fs.Nodes[0].Children, MaxTreeNodes-2)
}

func TestClassifyFolderStructure_UnknownValueIsCapped(t *testing.T) {
	const depth = 4000
	in := strings.Repeat(`{"a":`, depth) + `1` + strings.Repeat(`}`, depth)
	fs, err := ClassifyFolderStructure(decode(t, in))
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, fs.Kind)
	assert.True(t, fs.Truncated)
	assert.Contains(t, string(fs.Raw), `"…"`)
	assert.LessOrEqual(t, strings.Count(string(fs.Raw), "{"), MaxTreeDepth)

	long := "[" + strings.Repeat(`1,`, 2*MaxTreeNodes) + "1]"
	fs, err = ClassifyFolderStructure(decode(t, `{"x":`+long+`}`))
	require.NoError(t, err)
	assert.True(t, fs.Truncated)
	assert.Less(t, len(fs.Raw), 3*MaxTreeNodes)
}

func TestFolderStructure_CappedValueSurvivesNesting(t *testing.T) {
	fs, err := ClassifyFolderStructure(decode(t, nestedFolders(4990)))
	require.NoError(t, err)

	// A stored document wraps the structure in several more levels.
	wrapped := []any{map[string]any{"data": map[string]any{"folderStructure": fs}}}
	data, err := json.Marshal(wrapped)
	require.NoError(t, err)

	var back []struct {
		Data struct {
			FolderStructure FolderStructure `json:"folderStructure"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MaxTreeDepth, treeDepth(back[0].Data.FolderStructure.Nodes))
}

func TestFolderStructure_JSONRoundTrip(t *testing.T) {
	for _, in := range []string{
		`[{"name":"src","type":"folder","children":[{"name":"a.go","type":"file"}]}]`,
		`"plain text tree"`,
		`{"weird":true}`,
	} {
		var fs FolderStructure
		require.NoError(t, json.Unmarshal([]byte(in), &fs))
		out, err := json.Marshal(fs)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	}
}

func TestHistoryEntryTitle(t *testing.T) {
	assert.Equal(t, "Untitled Architecture", HistoryEntry{}.Title())
	assert.Equal(t, "blog", HistoryEntry{Prompt: "blog"}.Title())
}
