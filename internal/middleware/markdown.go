package middleware

import (
	"regexp"

	"github.com/synctree/synctree/internal/snapshot"
	"github.com/synctree/synctree/internal/value"
	"github.com/synctree/synctree/internal/vfs"
)

// markdown->rich-text substitution rules: Markdown files produce a
// StringValue whose content uses the engine's rich-text tag syntax rather
// than HTML. No generic Markdown-to-HTML library fits here, since the
// output dialect is Roblox's RichText tag set, not HTML, so each rule
// below is a direct regex substitution rather than an AST-based render.
var (
	mdHeading = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	mdBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdItalic  = regexp.MustCompile(`(^|[^*])\*([^*]+)\*`)
	mdLink    = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	mdCode    = regexp.MustCompile("`([^`]+)`")
)

// toRichText applies the substitution rules in an order that avoids a bold
// match consuming an italic delimiter: headings and code spans first, bold
// before italic, links last.
func toRichText(md string) string {
	out := vfs.NormalizeNewlines(md)
	out = mdHeading.ReplaceAllString(out, `<b><u>$2</u></b>`)
	out = mdCode.ReplaceAllString(out, `<font face="RobotoMono">$1</font>`)
	out = mdBold.ReplaceAllString(out, `<b>$1</b>`)
	out = mdItalic.ReplaceAllString(out, `$1<i>$2</i>`)
	out = mdLink.ReplaceAllString(out, `<a href="$2">$1</a>`)
	return out
}

// readMarkdown builds a StringValue snapshot whose Value is the rich-text
// rendering of the source Markdown.
func (d *Dispatcher) readMarkdown(p string, backend vfs.Backend) (snapshot.Snapshot, error) {
	text, err := backend.ReadToString(p)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := snapshot.New()
	snap.SetClass("StringValue")
	snap.Properties["Value"] = value.String(toRichText(text))
	return snap, nil
}
