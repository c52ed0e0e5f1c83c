package generation

import "fmt"

// Instruction is the system instruction sent with every generation.
const Instruction = `You are an expert Software Architect.
Generate a technical architecture for the application idea you are given.
Return ONLY a JSON object exactly matching this schema:
{
  "techStack": [{"name": "string", "justification": "string"}],
  "folderStructure": [{"name": "string", "type": "folder|file", "children": [...]}],
  "roadmap": [{"phase": "string", "desc": "string"}]
}
"children" is recursive and only present on folders. Roadmap phases are listed in execution order.
Absolutely no markdown formatting outside of the JSON. Do not wrap in ` + "```json" + `. Just pure JSON.`

// UserPrompt wraps the idea into the user turn.
func UserPrompt(idea string) string {
	return fmt.Sprintf("Generate a technical architecture for this application idea: %q.", idea)
}
