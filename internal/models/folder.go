package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// marshal encodes v without escaping <, >, and & so prompts and names keep
// their literal text.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// NodeType distinguishes folders from files in a FolderNode tree.
type NodeType string

const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

// FolderNode is one entry of a generated folder tree.
// Children is only meaningful for folders and is always nil for files.
type FolderNode struct {
	Name     string
	Type     NodeType
	Children []FolderNode
}

// IsFolder reports whether the node is a folder.
func (n FolderNode) IsFolder() bool { return n.Type == NodeFolder }

type folderJSON struct {
	Name     string       `json:"name"`
	Type     NodeType     `json:"type"`
	Children []FolderNode `json:"children"`
}

type fileJSON struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`
}

// MarshalJSON writes folders with a (possibly empty) children array and files without one.
func (n FolderNode) MarshalJSON() ([]byte, error) {
	if n.IsFolder() {
		children := n.Children
		if children == nil {
			children = []FolderNode{}
		}
		return marshal(folderJSON{Name: n.Name, Type: n.Type, Children: children})
	}
	return marshal(fileJSON{Name: n.Name, Type: NodeFile})
}

// StructureKind tags which shape a FolderStructure holds.
type StructureKind string

const (
	// KindTree is a parsed sequence of FolderNode.
	KindTree StructureKind = "tree"
	// KindText is a free-text tree the service returned as a string.
	KindText StructureKind = "text"
	// KindUnknown is any other JSON value, kept verbatim.
	KindUnknown StructureKind = "unknown"
)

// Budget applied when a folder structure is classified. Deeper levels and
// nodes past the count are dropped, so a stored document never nests deeper
// than MaxTreeDepth folder levels.
const (
	MaxTreeDepth = 64
	MaxTreeNodes = 5000
)

// truncatedMarker replaces values of an unknown structure cut by the budget.
const truncatedMarker = "…"

// FolderStructure is the folder tree of a document, classified once at the
// boundary so that consumers switch on Kind instead of probing the shape.
// Truncated is set when the input exceeded the depth or node budget.
type FolderStructure struct {
	Kind      StructureKind
	Nodes     []FolderNode
	Text      string
	Raw       json.RawMessage
	Truncated bool
}

// TreeStructure wraps already-built nodes.
func TreeStructure(nodes ...FolderNode) FolderStructure {
	if nodes == nil {
		nodes = []FolderNode{}
	}
	return FolderStructure{Kind: KindTree, Nodes: nodes}
}

// TextStructure wraps a free-text tree.
func TextStructure(text string) FolderStructure {
	return FolderStructure{Kind: KindText, Text: text}
}

// ErrNullStructure is returned when the folder structure is absent or JSON null.
var ErrNullStructure = errors.New("folderStructure is null")

// ClassifyFolderStructure turns a generically decoded JSON value into a FolderStructure.
// An array whose elements are all node-shaped becomes a tree, a string becomes text,
// and every other non-null value is kept as unknown. Trees and unknown values are
// cut to MaxTreeDepth and MaxTreeNodes; exceeding the budget is not an error.
func ClassifyFolderStructure(v any) (FolderStructure, error) {
	switch x := v.(type) {
	case nil:
		return FolderStructure{}, ErrNullStructure
	case string:
		return TextStructure(x), nil
	case []any:
		if nodes, truncated, ok := buildTree(x); ok {
			return FolderStructure{Kind: KindTree, Nodes: nodes, Truncated: truncated}, nil
		}
	}
	budget := MaxTreeNodes
	capped, truncated := capValue(v, 0, &budget)
	raw, err := marshal(capped)
	if err != nil {
		return FolderStructure{}, fmt.Errorf("folderStructure: %w", err)
	}
	return FolderStructure{Kind: KindUnknown, Raw: raw, Truncated: truncated}, nil
}

type buildFrame struct {
	src   []any
	dst   *[]FolderNode
	depth int
}

// buildTree converts decoded JSON into nodes level by level with an explicit
// queue, so shallow nodes win when the node budget runs out. Elements past
// the budget are not inspected.
func buildTree(root []any) (out []FolderNode, truncated, ok bool) {
	queue := []buildFrame{{src: root, dst: &out}}
	count := 0
	for head := 0; head < len(queue); head++ {
		f := queue[head]
		n := len(f.src)
		if remaining := MaxTreeNodes - count; n > remaining {
			n = remaining
			truncated = true
		}
		nodes := make([]FolderNode, n)
		for i, el := range f.src[:n] {
			obj, isObj := el.(map[string]any)
			if !isObj {
				return nil, false, false
			}
			name, isStr := obj["name"].(string)
			if !isStr {
				return nil, false, false
			}
			node := &nodes[i]
			node.Name = name
			node.Type = NodeFile
			if t, _ := obj["type"].(string); NodeType(t) != NodeFolder {
				continue
			}
			node.Type = NodeFolder
			node.Children = []FolderNode{}
			switch ch := obj["children"].(type) {
			case nil:
			case []any:
				if len(ch) == 0 {
					continue
				}
				if f.depth+1 >= MaxTreeDepth {
					truncated = true
					continue
				}
				queue = append(queue, buildFrame{src: ch, dst: &node.Children, depth: f.depth + 1})
			default:
				return nil, false, false
			}
		}
		count += n
		*f.dst = nodes
	}
	return out, truncated, true
}

// capValue copies a decoded JSON value, replacing containers deeper than
// MaxTreeDepth with truncatedMarker and dropping values past the budget. Recursion is
// bounded by MaxTreeDepth.
func capValue(v any, depth int, budget *int) (any, bool) {
	if *budget <= 0 {
		return truncatedMarker, true
	}
	*budget--
	switch x := v.(type) {
	case map[string]any:
		if depth >= MaxTreeDepth {
			return truncatedMarker, true
		}
		out := make(map[string]any, min(len(x), *budget))
		cut := false
		for _, k := range slices.Sorted(maps.Keys(x)) {
			if *budget <= 0 {
				cut = true
				break
			}
			c, t := capValue(x[k], depth+1, budget)
			out[k] = c
			cut = cut || t
		}
		return out, cut
	case []any:
		if depth >= MaxTreeDepth {
			return truncatedMarker, true
		}
		out := make([]any, 0, min(len(x), *budget+1))
		cut := false
		for _, el := range x {
			if *budget <= 0 {
				out = append(out, truncatedMarker)
				cut = true
				break
			}
			c, t := capValue(el, depth+1, budget)
			out = append(out, c)
			cut = cut || t
		}
		return out, cut
	default:
		return v, false
	}
}

// MarshalJSON reproduces the wire shape the structure was classified from.
func (s FolderStructure) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindTree:
		nodes := s.Nodes
		if nodes == nil {
			nodes = []FolderNode{}
		}
		return marshal(nodes)
	case KindText:
		return marshal(s.Text)
	case KindUnknown:
		if len(s.Raw) == 0 {
			return []byte("null"), nil
		}
		return s.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON classifies persisted data the same way validation does.
func (s *FolderStructure) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	fs, err := ClassifyFolderStructure(v)
	if err != nil {
		return err
	}
	*s = fs
	return nil
}
