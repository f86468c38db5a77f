package curator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/nguyentantai21042004/storycut/internal/models"
)

const maxDerivedTags = 5

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true, "you": true,
	"all": true, "any": true, "can": true, "had": true, "her": true, "was": true, "one": true,
	"our": true, "out": true, "has": true, "have": true, "this": true, "that": true, "with": true,
	"they": true, "them": true, "then": true, "there": true, "what": true, "when": true, "where": true,
	"which": true, "will": true, "would": true, "about": true, "just": true, "like": true, "really": true,
	"your": true, "from": true, "into": true, "some": true, "been": true, "were": true, "because": true,
	"going": true, "gonna": true, "know": true, "yeah": true, "okay": true, "very": true, "also": true,
	"here": true, "their": true, "these": true, "those": true, "than": true, "it's": true, "i'm": true,
	"don't": true, "did": true, "does": true, "how": true, "who": true, "why": true, "get": true,
}

// NormalizeTag lowercases a tag and strips surrounding punctuation.
func NormalizeTag(s string) string {
	return strings.TrimFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// deriveTags picks the most frequent content words spoken in a segment.
func deriveTags(tokens []models.TranscriptToken, seg models.NarrativeSegment) []string {
	counts := make(map[string]int)
	for _, tok := range tokens {
		if tok.End <= seg.Start || tok.Start >= seg.End {
			continue
		}
		w := NormalizeTag(tok.Text)
		if len([]rune(w)) < 3 || stopWords[w] {
			continue
		}
		counts[w]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > maxDerivedTags {
		words = words[:maxDerivedTags]
	}
	return words
}

// spokenText joins the words inside a segment.
func spokenText(tokens []models.TranscriptToken, seg models.NarrativeSegment) string {
	var words []string
	for _, tok := range tokens {
		if tok.End <= seg.Start || tok.Start >= seg.End {
			continue
		}
		words = append(words, tok.Text)
	}
	return strings.Join(words, " ")
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
