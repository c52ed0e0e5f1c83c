// Package models defines the domain types for Dev Architect.
package models

// TechStackEntry is one recommended technology and why it was picked.
type TechStackEntry struct {
	Name          string `json:"name"`
	Justification string `json:"justification"`
}

// RoadmapStep is one implementation phase. Slice order is execution order.
type RoadmapStep struct {
	Phase string `json:"phase"`
	Desc  string `json:"desc"`
}

// ArchitectureDocument is the structured result of one generation.
// Documents are never edited after validation; a new generation yields a new value.
type ArchitectureDocument struct {
	TechStack       []TechStackEntry `json:"techStack"`
	FolderStructure FolderStructure  `json:"folderStructure"`
	Roadmap         []RoadmapStep    `json:"roadmap"`
}

// HistoryEntry is one persisted generation.
type HistoryEntry struct {
	ID        string               `json:"id"`
	Timestamp string               `json:"timestamp"`
	Prompt    string               `json:"prompt"`
	Data      ArchitectureDocument `json:"data"`
}

// Title returns the prompt, or a placeholder for entries saved without one.
func (e HistoryEntry) Title() string {
	if e.Prompt == "" {
		return "Untitled Architecture"
	}
	return e.Prompt
}
