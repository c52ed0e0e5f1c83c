package treeview

import "strings"

// Icon names the glyph a presentation layer draws next to a row.
type Icon string

const (
	IconFolder     Icon = "folder"
	IconFolderOpen Icon = "folder-open"
	IconCode       Icon = "code"
	IconJSON       Icon = "json"
	IconStyle      Icon = "style"
	IconText       Icon = "text"
)

// IconFor picks an icon from the node kind and the file name suffix.
func IconFor(name string, isFolder, expanded bool) Icon {
	if isFolder {
		if expanded {
			return IconFolderOpen
		}
		return IconFolder
	}
	switch {
	case strings.HasSuffix(name, ".jsx"), strings.HasSuffix(name, ".tsx"), strings.HasSuffix(name, ".js"):
		return IconCode
	case strings.HasSuffix(name, ".json"):
		return IconJSON
	case strings.HasSuffix(name, ".css"):
		return IconStyle
	default:
		return IconText
	}
}
