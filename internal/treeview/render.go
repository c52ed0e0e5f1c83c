// Package treeview renders a document's folder structure as rows with
// expand/collapse state. Rendering never fails: oversized trees are truncated
// and non-tree structures are shown as inert text.
package treeview

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/starford/devarchitect/internal/models"
)

const (
	DefaultMaxDepth = models.MaxTreeDepth
	DefaultMaxNodes = models.MaxTreeNodes
)

// ExpandState records collapsed folders by row path. The zero value shows
// every folder expanded.
type ExpandState map[string]bool

// Expanded reports whether the folder at path is expanded.
func (s ExpandState) Expanded(path string) bool {
	return !s[path]
}

// Toggle flips the folder at path between expanded and collapsed.
func (s ExpandState) Toggle(path string) {
	if s[path] {
		delete(s, path)
		return
	}
	s[path] = true
}

// ParseCollapsed builds an ExpandState from a comma-separated list of row paths.
func ParseCollapsed(list string) ExpandState {
	s := ExpandState{}
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			s[p] = true
		}
	}
	return s
}

// Options bounds a render. Zero limits fall back to the defaults.
type Options struct {
	MaxDepth int
	MaxNodes int
	Expand   ExpandState
}

// Row is one visible node.
type Row struct {
	Depth    int    `json:"depth"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Icon     Icon   `json:"icon"`
	IsFolder bool   `json:"isFolder"`
	Expanded bool   `json:"expanded,omitempty"`
}

// View is the rendered structure. Inert views carry Text instead of Rows.
type View struct {
	Rows      []Row  `json:"rows,omitempty"`
	Inert     bool   `json:"inert"`
	Text      string `json:"text,omitempty"`
	Truncated bool   `json:"truncated"`
}

type frame struct {
	nodes  []models.FolderNode
	next   int
	depth  int
	prefix string
}

// Render produces the visible rows of fs in pre-order.
func Render(fs models.FolderStructure, opts Options) View {
	switch fs.Kind {
	case models.KindTree:
	case models.KindText:
		return View{Inert: true, Text: fs.Text}
	default:
		return View{Inert: true, Text: indentRaw(fs.Raw), Truncated: fs.Truncated}
	}

	maxDepth, maxNodes := opts.MaxDepth, opts.MaxNodes
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}

	v := View{Rows: []Row{}, Truncated: fs.Truncated}
	stack := []frame{{nodes: fs.Nodes}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next >= len(f.nodes) {
			stack = stack[:len(stack)-1]
			continue
		}
		if len(v.Rows) >= maxNodes {
			v.Truncated = true
			break
		}
		i := f.next
		f.next++
		n := f.nodes[i]
		path := f.prefix + strconv.Itoa(i)
		depth := f.depth

		row := Row{Depth: depth, Name: n.Name, Path: path, IsFolder: n.IsFolder()}
		if row.IsFolder {
			row.Expanded = opts.Expand.Expanded(path)
		}
		row.Icon = IconFor(n.Name, row.IsFolder, row.Expanded)
		v.Rows = append(v.Rows, row)

		if !row.Expanded || len(n.Children) == 0 {
			continue
		}
		if depth+1 >= maxDepth {
			v.Truncated = true
			continue
		}
		stack = append(stack, frame{nodes: n.Children, depth: depth + 1, prefix: path + "/"})
	}
	return v
}

func indentRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// String draws the view as indented text.
func (v View) String() string {
	if v.Inert {
		return v.Text
	}
	var b strings.Builder
	for _, r := range v.Rows {
		b.WriteString(strings.Repeat("  ", r.Depth))
		switch {
		case r.IsFolder && r.Expanded:
			b.WriteString("▾ " + r.Name + "/")
		case r.IsFolder:
			b.WriteString("▸ " + r.Name + "/")
		default:
			b.WriteString("  " + r.Name)
		}
		b.WriteByte('\n')
	}
	if v.Truncated {
		b.WriteString("… (truncated)\n")
	}
	return b.String()
}
