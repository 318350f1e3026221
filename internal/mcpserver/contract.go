package mcpserver

// PageFormatContract describes the Markdown page format and link syntax
// that LLM consumers should follow when creating or saving pages.
const PageFormatContract = `# Bidinote Page Format

Pages are Markdown. Every top-level paragraph, heading, list item and code
block becomes a block with a stable identifier; links are tracked per block.

## Frontmatter (optional)

` + "```" + `markdown
---
id: 0192f7b4-...          # OPTIONAL – keeps the page identity across imports
title: Human-readable title
aliases:                  # OPTIONAL – other names the page is found by
  - alt name
tags:                     # OPTIONAL – used by tag="..." queries
  - project-x
---
` + "```" + `

When saving through the tools, send only the body; title, aliases and tags
are passed as separate arguments.

## Links

| Syntax | Meaning |
|--------|---------|
| ` + "`[[Page]]`" + ` | link to the page titled or aliased "Page" |
| ` + "`[[Page|label]]`" + ` | same target, different display text |
| ` + "`[[Page#Heading]]`" + ` | link to a heading block of the page |
| ` + "`[[Page^block-id]]`" + ` | link to a block carrying the ` + "`^block-id`" + ` anchor |
| ` + "`![[Page]]`" + ` | embed (transclude) the page |

Targets are matched case-insensitively against titles and aliases. When two
pages share a title the oldest one wins. Links to unknown pages are kept in
the text but produce no edge.

## Block anchors

End a block with ` + "`^anchor-name`" + ` (letters, digits, dash, underscore) to
give it a stable anchor others can link to.

## Unlinked mentions

After a save, plain-text occurrences of other page titles or aliases
(between 2 and 20 characters) are reported as unlinked mentions. Wrap them
in ` + "`[[...]]`" + ` to turn them into edges.

## Example

` + "```" + `markdown
# Weekly standup

Attendees: Alice, Bob.

- Review the [[Design Doc#Risks]] section ^review
- Budget numbers are in ![[Budget 2025]]
- Follow up on [[Roadmap|the roadmap]]
` + "```" + `
`
