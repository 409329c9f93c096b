// Package content provides plain-text utilities over rich text fragments:
// tag stripping and teaser summary suggestion for pages and posts.
package content

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SummaryLimit is the teaser budget in runes. Card layouts and social
// preview descriptions are sized around it.
const SummaryLimit = 220

// blockTags contribute a word boundary when stripped, so adjacent
// paragraphs do not fuse.
var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "section": true, "article": true, "tr": true,
}

// StripTags extracts the text content of an HTML fragment. Entities are
// decoded, block-level boundaries become spaces, and whitespace runs
// collapse to single spaces.
func StripTags(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	sb.Grow(len(fragment))
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				sb.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// Segmenter splits plain text into sentences for summary building.
// A nil Segmenter is valid and degrades to whole-text "sentences".
type Segmenter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSegmenter loads the English sentence tokenizer model. On failure it
// returns nil and summaries fall back to hard truncation.
func NewSegmenter(log *zap.Logger) *Segmenter {
	if log == nil {
		log = zap.NewNop()
	}
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentence tokenizer model, summaries fall back to hard truncation", zap.Error(err))
		return nil
	}
	return &Segmenter{tokenizer}
}

// Sentences returns the sentences of already-plain text.
func (s *Segmenter) Sentences(in string) []string {
	if s == nil {
		return []string{in}
	}
	var out []string
	for _, sentence := range s.Tokenize(in) {
		out = append(out, sentence.Text)
	}
	return out
}

// Suggest builds a teaser from a rich text fragment: tags stripped, whole
// sentences accumulated while they fit the summary budget. When even the
// first sentence is too long the text is cut on a word boundary instead.
func (s *Segmenter) Suggest(fragment string) string {
	text := StripTags(fragment)
	if utf8.RuneCountInString(text) <= SummaryLimit {
		return text
	}

	var (
		sb    strings.Builder
		count int
	)
	for _, sentence := range s.Sentences(text) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		n := utf8.RuneCountInString(sentence)
		if count == 0 {
			if n > SummaryLimit {
				return truncate(text, SummaryLimit)
			}
		} else if count+1+n > SummaryLimit {
			break
		}
		if count > 0 {
			sb.WriteByte(' ')
			count++
		}
		sb.WriteString(sentence)
		count += n
	}
	return sb.String()
}

// truncate cuts text to at most limit runes, stepping back to the last word
// boundary and marking the cut with an ellipsis.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}

var defaultSegmenter = sync.OnceValue(func() *Segmenter {
	return NewSegmenter(nil)
})

// SuggestSummary is Suggest on a lazily created shared Segmenter.
func SuggestSummary(fragment string) string {
	return defaultSegmenter().Suggest(fragment)
}
