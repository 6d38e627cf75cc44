package unwatch

import (
	"regexp"
	"strings"
)

// BlockKind discriminates the typed blocks a parsed document consists of.
type BlockKind int

// Block kinds, in classification precedence order.
const (
	BlockImage BlockKind = iota
	BlockHeading
	BlockRule
	BlockBullet
	BlockParagraph
)

// Run is a span of paragraph or bullet text with a single style.
type Run struct {
	Text string
	Bold bool
}

// Block is one typed element of a parsed markdown document.
// Level is set for headings (1-3); URL for images; Runs for paragraphs and
// bullets.
type Block struct {
	Kind  BlockKind
	Level int
	URL   string
	Runs  []Run
}

// Text joins the block's runs, discarding style. Convenience for tests and
// plain-text consumers.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Inline markdown patterns.
var (
	imageLineRe = regexp.MustCompile(`^!\[[^\]]*\]\(([^)\s]+)\)\s*$`)
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	boldRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// ParseBlocks interprets the constrained markdown dialect produced by the
// pipeline into an ordered block sequence. Each line is classified by a
// fixed precedence: image syntax, heading prefix (levels 1-3), horizontal
// rule, bullet item, blank, plain paragraph. Blank lines emit no block.
// Block order equals source line order.
func ParseBlocks(markdown string) []Block {
	var blocks []Block

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case imageLineRe.MatchString(trimmed):
			m := imageLineRe.FindStringSubmatch(trimmed)
			blocks = append(blocks, Block{Kind: BlockImage, URL: m[1]})

		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, heading(3, strings.TrimPrefix(trimmed, "### ")))

		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, heading(2, strings.TrimPrefix(trimmed, "## ")))

		case strings.HasPrefix(trimmed, "# "):
			blocks = append(blocks, heading(1, strings.TrimPrefix(trimmed, "# ")))

		case isRuleLine(trimmed):
			blocks = append(blocks, Block{Kind: BlockRule})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			blocks = append(blocks, Block{Kind: BlockBullet, Runs: parseRuns(trimmed[2:])})

		case trimmed == "":
			// Blank lines contribute vertical spacing during layout, not blocks.

		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Runs: parseRuns(trimmed)})
		}
	}

	return blocks
}

// heading builds a heading block. Heading text keeps bold markers stripped
// rather than styled: headings are already painted bold.
func heading(level int, text string) Block {
	text = linkRe.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	return Block{Kind: BlockHeading, Level: level, Runs: []Run{{Text: strings.TrimSpace(text)}}}
}

// isRuleLine reports whether the line is a horizontal rule marker.
func isRuleLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, marker := range []rune{'-', '*', '_'} {
		if strings.Trim(line, string(marker)) == "" {
			return true
		}
	}
	return false
}

// parseRuns splits inline text into styled runs. Link syntax is rewritten to
// its display text (target discarded); **bold** spans become bold runs.
func parseRuns(text string) []Run {
	text = linkRe.ReplaceAllString(text, "$1")

	var runs []Run
	last := 0
	for _, m := range boldRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			runs = append(runs, Run{Text: text[last:m[0]]})
		}
		runs = append(runs, Run{Text: text[m[2]:m[3]], Bold: true})
		last = m[1]
	}
	if last < len(text) {
		runs = append(runs, Run{Text: text[last:]})
	}
	if runs == nil {
		runs = []Run{{Text: ""}}
	}
	return runs
}
