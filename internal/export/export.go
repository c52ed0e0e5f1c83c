// Package export renders documents as Markdown files and clipboard text.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/devarchitect/internal/models"
)

// Section names accepted by ToClipboardText.
const (
	SectionTech   = "tech"
	SectionFolder = "folder"
	SectionRoad   = "road"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FileName derives the download name from the prompt.
func FileName(prompt string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(prompt, "-")) + "-architecture.md"
}

// Checksum is the hex SHA-256 of an exported document, used as its ETag.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func indentJSON(v any) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// ToDocumentText renders doc as a Markdown architecture document.
func ToDocumentText(prompt string, doc models.ArchitectureDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Architecture Document: %s\n\n", prompt)
	b.WriteString("## Tech Stack\n")
	for _, t := range doc.TechStack {
		fmt.Fprintf(&b, "- **%s**: %s\n", t.Name, t.Justification)
	}
	fmt.Fprintf(&b, "\n## Folder Structure\n```json\n%s\n```\n", indentJSON(doc.FolderStructure))
	b.WriteString("\n## Roadmap\n")
	for _, r := range doc.Roadmap {
		fmt.Fprintf(&b, "- **%s**: %s\n", r.Phase, r.Desc)
	}
	return b.String()
}

// ToClipboardText returns one section of doc as indented JSON.
func ToClipboardText(section string, doc models.ArchitectureDocument) (string, error) {
	switch section {
	case SectionTech:
		return indentJSON(doc.TechStack), nil
	case SectionFolder:
		return indentJSON(doc.FolderStructure), nil
	case SectionRoad:
		return indentJSON(doc.Roadmap), nil
	default:
		return "", fmt.Errorf("export: unknown section %q", section)
	}
}

type frontMatter struct {
	ID        string `yaml:"id"`
	Timestamp string `yaml:"timestamp"`
	Prompt    string `yaml:"prompt"`
}

// EntryDocument renders a history entry with YAML front matter.
func EntryDocument(e models.HistoryEntry) (string, error) {
	fm, err := yaml.Marshal(frontMatter{ID: e.ID, Timestamp: e.Timestamp, Prompt: e.Prompt})
	if err != nil {
		return "", fmt.Errorf("export: front matter: %w", err)
	}
	return "---\n" + string(fm) + "---\n\n" + ToDocumentText(e.Prompt, e.Data), nil
}
