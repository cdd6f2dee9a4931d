// Package extract turns free-form assistant text into an ordered list of
// tool invocations. Only lines that begin with the tool sigil qualify;
// fenced blocks, inline code spans, and explanatory phrasing suppress a
// match. Suppressed matches are retained with their classification so the
// caller can explain why a line was not executed.
package extract

import (
	"sort"
	"strings"
)

// Sigil is the marker character that starts a tool request line.
const Sigil = '@'

// DefaultDenyPhrases signal hypothetical or instructional framing. A
// qualifying line containing any of these (case-insensitive) is suppressed.
// The table is a heuristic baseline, extendable via the policy overlay.
var DefaultDenyPhrases = []string{
	"you can use",
	"you could",
	"for example",
	"for instance",
	"try using",
	"might try",
	"would be",
	"consider using",
	"such as",
	"e.g.",
}

// defaultAliases maps recognized keywords to canonical tool names. Every
// canonical name maps to itself; the shorthand forms exist because models
// reliably produce them whether or not the prompt teaches them.
var defaultAliases = map[string]string{
	"run_command": "run_command",
	"bash":        "run_command",
	"exec":        "run_command",
	"run":         "run_command",
	"web_search":  "web_search",
	"web":         "web_search",
	"search":      "web_search",
	"fetch_url":   "fetch_url",
	"curl":        "fetch_url",
	"request":     "fetch_url",
	"fetch":       "fetch_url",
	"read_file":   "read_file",
	"read":        "read_file",
	"write_file":  "write_file",
	"write":       "write_file",
	"edit_file":   "edit_file",
	"edit":        "edit_file",
	"find_file":   "find_file",
	"glob":        "find_file",
	"find":        "find_file",
	"search_text": "search_text",
	"grep":        "search_text",
}

// Extractor scans assistant responses for tool invocations.
// It is stateless between calls; the same input always yields the same
// ordered output.
type Extractor struct {
	denyPhrases []string
	aliases     map[string]string
}

// New creates an Extractor. Extra deny phrases extend the default table.
func New(extraDenyPhrases []string) *Extractor {
	phrases := make([]string, 0, len(DefaultDenyPhrases)+len(extraDenyPhrases))
	for _, p := range DefaultDenyPhrases {
		phrases = append(phrases, strings.ToLower(p))
	}
	for _, p := range extraDenyPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return &Extractor{
		denyPhrases: phrases,
		aliases:     defaultAliases,
	}
}

// Extract returns the standalone invocations in order of first appearance.
// Duplicates are preserved: repeated identical requests reflect repeated
// intent and the caller decides how to handle them.
func (e *Extractor) Extract(response string) []Invocation {
	standalone, _ := e.Classify(response)
	return standalone
}

// Classify returns standalone invocations plus the suppressed matches,
// both in order of first appearance. Suppressed entries carry the origin
// explaining the suppression.
func (e *Extractor) Classify(response string) (standalone, suppressed []Invocation) {
	insideFence := false

	for i, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)

		// A fence delimiter flips the in-block flag. The delimiter line
		// itself is never executable.
		if strings.Contains(trimmed, "```") {
			insideFence = !insideFence
			if inv, ok := e.parseCandidate(stripFence(trimmed), i); ok {
				inv.Origin = OriginSuppressedCodeblock
				suppressed = append(suppressed, inv)
			}
			continue
		}

		if insideFence {
			if inv, ok := e.parseCandidate(trimmed, i); ok {
				inv.Origin = OriginSuppressedCodeblock
				suppressed = append(suppressed, inv)
			}
			continue
		}

		// Inline code spans are inherently illustrative: a line whose
		// sigil sits inside backticks is suppressed even if the stripped
		// text would qualify.
		if strings.HasPrefix(trimmed, "`") {
			if inv, ok := e.parseCandidate(strings.Trim(trimmed, "`"), i); ok {
				inv.Origin = OriginSuppressedCodeblock
				suppressed = append(suppressed, inv)
			}
			continue
		}

		inv, ok := e.parseCandidate(trimmed, i)
		if !ok {
			// Mid-line mentions never qualify; plain prose is not recorded.
			continue
		}

		if phrase := e.matchDenyPhrase(trimmed); phrase != "" {
			inv.Origin = OriginSuppressedExplanatory
			suppressed = append(suppressed, inv)
			continue
		}

		inv.Origin = OriginStandalone
		standalone = append(standalone, inv)
	}

	return standalone, suppressed
}

// Explain reports the origin of every tool-like line in the response,
// standalone and suppressed alike, ordered by line. It backs the
// "why was this not executed" diagnostics surface.
func (e *Extractor) Explain(response string) []Invocation {
	standalone, suppressed := e.Classify(response)
	all := make([]Invocation, 0, len(standalone)+len(suppressed))
	all = append(all, standalone...)
	all = append(all, suppressed...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Line < all[j].Line })
	return all
}

// parseCandidate checks whether a trimmed line is a syntactic tool request:
// sigil, recognized keyword, whitespace separator, non-empty argument.
// The returned Invocation has no Origin set; the caller classifies it.
func (e *Extractor) parseCandidate(trimmed string, lineIdx int) (Invocation, bool) {
	if len(trimmed) < 2 || trimmed[0] != Sigil {
		return Invocation{}, false
	}

	rest := trimmed[1:]
	sep := strings.IndexAny(rest, " \t")
	if sep <= 0 {
		return Invocation{}, false
	}

	keyword := strings.ToLower(rest[:sep])
	canonical, ok := e.aliases[keyword]
	if !ok {
		return Invocation{}, false
	}

	args := strings.TrimSpace(rest[sep+1:])
	if args == "" {
		return Invocation{}, false
	}

	return Invocation{Tool: canonical, Args: args, Line: lineIdx}, true
}

// matchDenyPhrase returns the first deny phrase contained in the line, or
// "" when none match. Matching is case-insensitive over the whole line.
func (e *Extractor) matchDenyPhrase(line string) string {
	lower := strings.ToLower(line)
	for _, phrase := range e.denyPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

// stripFence removes fence delimiters so a command pasted on the same line
// as the fence is still classified (as suppressed) rather than ignored.
func stripFence(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, "```", ""))
}
