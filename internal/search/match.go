package search

import (
	"regexp"
	"strings"

	"github.com/renqii/watchnest/internal/provider"
)

var (
	whitespacePattern  = regexp.MustCompile(`\s+`)
	punctuationPattern = regexp.MustCompile(`[。、，！？：；“”‘’「」『』【】（）\[\]().,!?:;'"－—·～~]`)
	// Everything that is not a word character, CJK ideograph, or kana.
	nonTitlePattern = regexp.MustCompile(`[^\w\x{4e00}-\x{9fa5}\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`)
)

// normalizeTitle reduces a title to its comparable core: lowercase, no
// whitespace, no full- or half-width punctuation, only word characters and
// CJK/kana. "哈利·波特" and "哈利波特" normalize identically.
func normalizeTitle(title string) string {
	if title == "" {
		return ""
	}
	t := strings.ToLower(title)
	t = whitespacePattern.ReplaceAllString(t, "")
	t = punctuationPattern.ReplaceAllString(t, "")
	t = nonTitlePattern.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// titlesEqual requires exact equality after normalization. No substring or
// fuzzy matching: "盗梦空间2" must not fold into "盗梦空间".
func titlesEqual(a, b string) bool {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// yearsCompatible treats an unknown year as matching anything; known years
// must be exactly equal. The persistence path is more lenient (±1) — see
// media.Resolver — but at merge time a one-year gap usually means a remake
// or re-release, not the same record from a laggy provider.
func yearsCompatible(a, b string) bool {
	if a == "" || b == "" || a == provider.UnknownYear || b == provider.UnknownYear {
		return true
	}
	return a == b
}

// sameMedia reports whether two candidates denote the same real-world
// title. Reflexive and symmetric; not guaranteed transitive, which is
// acceptable because clustering compares against merged representatives
// only (first match wins).
//
// Media kind is deliberately not a blocking criterion: providers disagree
// on anime vs tv for the same show, and title+year already discriminate.
func sameMedia(a, b provider.CandidateItem) bool {
	if a.SourceType == b.SourceType && a.SourceID == b.SourceID {
		return true
	}
	if !titlesEqual(a.TitleZh, b.TitleZh) {
		return false
	}
	return yearsCompatible(a.Year, b.Year)
}
