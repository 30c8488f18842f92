package retrieval

import "strings"

// Tokenize lowercases, strips non-alphanumerics and splits on whitespace.
// It keeps stopwords: the local corpus provider scores raw tokens.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// stopwords removed by the live-platform tokenizer. The local corpus
// tokenizer intentionally keeps them; the asymmetry is a scoring
// characteristic of each provider, not an accident to unify.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "do": {}, "does": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "i": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "me": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "please": {}, "should": {}, "so": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "us": {}, "was": {},
	"we": {}, "what": {}, "when": {}, "which": {}, "who": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {},
}

// TokenizeQuery tokenizes like Tokenize but removes stopwords. Used by the
// live-platform provider where course titles are short and stopword noise
// dominates plain token counting.
func TokenizeQuery(s string) []string {
	raw := Tokenize(s)
	out := make([]string, 0, len(raw))
	for _, token := range raw {
		if _, skip := stopwords[token]; skip {
			continue
		}
		out = append(out, token)
	}
	return out
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// lexicalScore counts query tokens (duplicates included) found in the
// haystack's token set.
func lexicalScore(queryTokens []string, haystack string) int {
	if len(queryTokens) == 0 || haystack == "" {
		return 0
	}
	set := tokenSet(Tokenize(haystack))
	score := 0
	for _, token := range queryTokens {
		if _, ok := set[token]; ok {
			score++
		}
	}
	return score
}
