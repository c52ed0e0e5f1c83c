package mcpserver

// DocumentFormatContract describes the architecture document shape that
// generate_architecture returns and history entries store.
const DocumentFormatContract = `# Dev Architect Document Format

Every generated architecture is a single JSON object with exactly three parts.

## Structure

` + "```" + `json
{
  "techStack": [
    {"name": "Next.js", "justification": "Server rendering for SEO."}
  ],
  "folderStructure": [
    {"name": "app", "type": "folder", "children": [
      {"name": "page.tsx", "type": "file"}
    ]}
  ],
  "roadmap": [
    {"phase": "Phase 1: Setup", "desc": "Scaffold the app and database."}
  ]
}
` + "```" + `

## Rules

1. **techStack** is an array of objects with string ` + "`" + `name` + "`" + ` and string ` + "`" + `justification` + "`" + `.
2. **folderStructure** is usually a recursive array of nodes. ` + "`" + `type` + "`" + ` is ` + "`" + `folder` + "`" + ` or ` + "`" + `file` + "`" + `;
   only folders carry ` + "`" + `children` + "`" + `. A plain string (a text tree) is also accepted and shown verbatim.
3. **roadmap** is an array of objects with string ` + "`" + `phase` + "`" + ` and string ` + "`" + `desc` + "`" + `, in execution order.
4. Unknown keys are ignored. A missing or mistyped section rejects the whole document.

## History

- Each successful generation is saved with an ` + "`" + `id` + "`" + ` (time-ordered UUID), an ISO-8601 UTC
  ` + "`" + `timestamp` + "`" + `, the original ` + "`" + `prompt` + "`" + `, and the document as ` + "`" + `data` + "`" + `.
- Only the 50 most recent entries are kept, newest first.
- Entries are read-only. The only destructive operation is clearing the whole history.

## Export

` + "`" + `export_markdown` + "`" + ` returns a Markdown file named ` + "`" + `<prompt-with-dashes>-architecture.md` + "`" + ` with a
Tech Stack list, the folder structure as an indented JSON block, and the Roadmap list.
`
