package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/devarchitect/internal/models"
)

// DefaultOfflineDelay mimics the latency of a real call.
const DefaultOfflineDelay = 1500 * time.Millisecond

// Offline returns a fixed placeholder document after a delay. It is used
// when no API key is configured.
type Offline struct {
	Delay time.Duration
}

// NewOffline returns an Offline service with the given delay.
func NewOffline(delay time.Duration) *Offline {
	return &Offline{Delay: delay}
}

// Generate waits for the delay, or for ctx, and returns the placeholder document.
func (o *Offline) Generate(ctx context.Context, _ Request) (string, error) {
	if o.Delay > 0 {
		t := time.NewTimer(o.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	data, err := json.Marshal(PlaceholderDocument())
	if err != nil {
		return "", fmt.Errorf("generator: encode placeholder: %w", err)
	}
	return string(data), nil
}

// PlaceholderDocument is the sample architecture served in offline mode.
func PlaceholderDocument() models.ArchitectureDocument {
	folder := func(name string, children ...models.FolderNode) models.FolderNode {
		if children == nil {
			children = []models.FolderNode{}
		}
		return models.FolderNode{Name: name, Type: models.NodeFolder, Children: children}
	}
	file := func(name string) models.FolderNode {
		return models.FolderNode{Name: name, Type: models.NodeFile}
	}

	return models.ArchitectureDocument{
		TechStack: []models.TechStackEntry{
			{Name: "React + Vite", Justification: "Lightning fast HMR and optimized builds for modern frontend."},
			{Name: "Tailwind CSS v4", Justification: "Zero-config, lightning fast CSS engine for modern UIs."},
			{Name: "Framer Motion", Justification: "Fluid and declarative animations to elevate UX."},
		},
		FolderStructure: models.TreeStructure(
			folder("src",
				folder("assets"),
				folder("components",
					file("Footer.jsx"),
					file("TechStackGenerator.jsx"),
					file("InteractiveFolderTree.jsx"),
				),
				file("App.jsx"),
				file("main.jsx"),
			),
		),
		Roadmap: []models.RoadmapStep{
			{Phase: "Phase 1: Foundation", Desc: "Initialize Vite app, setup Tailwind, and create base structure."},
			{Phase: "Phase 2: Core Logic", Desc: "Implement API handling and avoid stream reading crashes."},
			{Phase: "Phase 3: UI Polish", Desc: "Add animations, shadows, rounded corners, and hero elements."},
		},
	}
}
