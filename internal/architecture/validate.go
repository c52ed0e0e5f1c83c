// Package architecture turns generation-service output into validated
// ArchitectureDocuments. Validation is all-or-nothing.
package architecture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/devarchitect/internal/apperr"
	"github.com/starford/devarchitect/internal/models"
)

var (
	leadingFenceRe  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFenceRe = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// StripFences removes a Markdown code fence wrapped around the payload.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	s = leadingFenceRe.ReplaceAllString(s, "")
	s = trailingFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Parse strips fences from text, decodes it as a JSON object, and validates it.
func Parse(text string) (*models.ArchitectureDocument, error) {
	body := StripFences(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", apperr.ErrMalformedResponse)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", apperr.ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", apperr.ErrMalformedResponse)
	}
	return Validate(raw)
}

var (
	techStackEntryRule = validation.Map(
		validation.Key("name", validation.By(isString)),
		validation.Key("justification", validation.By(isString)),
	).AllowExtraKeys()

	roadmapStepRule = validation.Map(
		validation.Key("phase", validation.By(isString)),
		validation.Key("desc", validation.By(isString)),
	).AllowExtraKeys()

	documentRule = validation.Map(
		validation.Key("techStack", validation.By(isArray), validation.Each(techStackEntryRule)),
		validation.Key("folderStructure", validation.NotNil),
		validation.Key("roadmap", validation.By(isArray), validation.Each(roadmapStepRule)),
	).AllowExtraKeys()
)

func isString(v any) error {
	if _, ok := v.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

func isArray(v any) error {
	if _, ok := v.([]any); !ok {
		return errors.New("must be an array")
	}
	return nil
}

// Validate checks a generically decoded JSON value against the document shape
// and builds the document. Unknown keys are ignored.
func Validate(raw any) (*models.ArchitectureDocument, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: response is not a JSON object", apperr.ErrMalformedResponse)
	}
	if err := validation.Validate(obj, documentRule); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
	}

	fs, err := models.ClassifyFolderStructure(obj["folderStructure"])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedResponse, err)
	}

	doc := &models.ArchitectureDocument{
		TechStack:       []models.TechStackEntry{},
		FolderStructure: fs,
		Roadmap:         []models.RoadmapStep{},
	}
	for _, item := range obj["techStack"].([]any) {
		m := item.(map[string]any)
		doc.TechStack = append(doc.TechStack, models.TechStackEntry{
			Name:          m["name"].(string),
			Justification: m["justification"].(string),
		})
	}
	for _, item := range obj["roadmap"].([]any) {
		m := item.(map[string]any)
		doc.Roadmap = append(doc.Roadmap, models.RoadmapStep{
			Phase: m["phase"].(string),
			Desc:  m["desc"].(string),
		})
	}
	return doc, nil
}
