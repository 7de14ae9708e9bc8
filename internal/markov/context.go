package markov

import (
	"fmt"
	"html"
	"strings"
)

// RenderContext renders the provenance of a generation run as HTML: for
// each consumed gram, up to window words of surrounding line context with
// the matched span in bold and ellipses where the window was cut off,
// followed by the per-step probability. A trailing line carries the product
// of the probabilities and the mean gram length of the run.
func RenderContext(ngrams []NGram, window int) string {
	var b strings.Builder
	b.WriteString("<div>")

	p := 1.0
	totalLen := 0
	for _, g := range ngrams {
		p *= g.Count
		totalLen += len(g.Words)
		fmt.Fprintf(&b, "%s\tp=%.3g<br/>\n", g.renderContext(window), g.Count)
	}

	mean := 0.0
	if len(ngrams) > 0 {
		mean = float64(totalLen) / float64(len(ngrams))
	}
	fmt.Fprintf(&b, "p=%.3g, average n=%.2g", p, mean)

	b.WriteString("</div>")
	return b.String()
}

func (g NGram) renderContext(window int) string {
	line := g.Loc.line
	start := g.Loc.Index
	end := start + len(g.Words)
	if end > len(line) {
		// the trailing End sentinel has no text of its own
		end = len(line)
	}
	lo := start - window
	if lo < 0 {
		lo = 0
	}
	hi := end + window
	if hi > len(line) {
		hi = len(line)
	}

	parts := make([]string, 0, 3)
	if before := strings.Join(line[lo:start], " "); before != "" {
		parts = append(parts, html.EscapeString(before))
	}
	parts = append(parts, "<b>"+html.EscapeString(strings.Join(line[start:end], " "))+"</b>")
	if after := strings.Join(line[end:hi], " "); after != "" {
		parts = append(parts, html.EscapeString(after))
	}

	out := strings.Join(parts, " ")
	if start > window {
		out = "…" + out
	}
	if end+window < len(line) {
		out += "…"
	}
	return out
}
