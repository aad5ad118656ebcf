package usecase

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatcherConfig tunes the fuzzy identity matcher. Weights are relative;
// MinScore is the acceptance threshold below which a pairing is discarded.
type MatcherConfig struct {
	NameWeight float64
	DateWeight float64
	MinScore   float64
}

func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		NameWeight: 0.6,
		DateWeight: 0.4,
		MinScore:   0.75,
	}
}

func (c MatcherConfig) normalize() MatcherConfig {
	out := c
	def := DefaultMatcherConfig()
	if out.NameWeight <= 0 {
		out.NameWeight = def.NameWeight
	}
	if out.DateWeight < 0 {
		out.DateWeight = def.DateWeight
	}
	if total := out.NameWeight + out.DateWeight; total > 0 {
		out.NameWeight /= total
		out.DateWeight /= total
	}
	if out.MinScore <= 0 || out.MinScore > 1 {
		out.MinScore = def.MinScore
	}
	return out
}

// MatchParty is one side of an identity comparison, stripped down to the
// fields the matcher scores.
type MatchParty struct {
	ID          int64
	Name        string
	DateOfBirth string
}

// MatchResult pairs a source party with its assigned target.
type MatchResult struct {
	SourceID  int64
	TargetID  int64
	Score     float64
	NameScore float64
	DateScore float64
}

// Matcher correlates admission candidates with transcript students without
// a shared key, using name and date-of-birth similarity.
type Matcher struct {
	cfg MatcherConfig
}

func NewMatcher(cfg MatcherConfig) *Matcher {
	return &Matcher{cfg: cfg.normalize()}
}

// FindBestMatches scores every (source, target) pair and assigns pairs
// greedily by descending combined score, removing both sides once claimed.
// A target is therefore claimed by at most one source. Pairs scoring below
// MinScore are discarded.
func (m *Matcher) FindBestMatches(sources, targets []MatchParty) []MatchResult {
	type scoredPair struct {
		sourceIdx int
		targetIdx int
		result    MatchResult
	}

	pairs := make([]scoredPair, 0, len(sources)*len(targets))
	for si, source := range sources {
		for ti, target := range targets {
			nameScore := nameSimilarity(source.Name, target.Name)
			dateScore := dateSimilarity(source.DateOfBirth, target.DateOfBirth)
			combined := m.cfg.NameWeight*nameScore + m.cfg.DateWeight*dateScore
			if combined < m.cfg.MinScore {
				continue
			}
			pairs = append(pairs, scoredPair{
				sourceIdx: si,
				targetIdx: ti,
				result: MatchResult{
					SourceID:  source.ID,
					TargetID:  target.ID,
					Score:     combined,
					NameScore: nameScore,
					DateScore: dateScore,
				},
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].result.Score != pairs[j].result.Score {
			return pairs[i].result.Score > pairs[j].result.Score
		}
		if pairs[i].sourceIdx != pairs[j].sourceIdx {
			return pairs[i].sourceIdx < pairs[j].sourceIdx
		}
		return pairs[i].targetIdx < pairs[j].targetIdx
	})

	usedSources := make(map[int]bool, len(sources))
	usedTargets := make(map[int]bool, len(targets))
	out := make([]MatchResult, 0, len(sources))
	for _, pair := range pairs {
		if usedSources[pair.sourceIdx] || usedTargets[pair.targetIdx] {
			continue
		}
		usedSources[pair.sourceIdx] = true
		usedTargets[pair.targetIdx] = true
		out = append(out, pair.result)
	}
	return out
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases, strips diacritics, and collapses whitespace so
// "DUPONT  Élodie" and "dupont elodie" compare equal.
func normalizeName(s string) string {
	lowered := strings.ToLower(strings.TrimSpace(s))
	stripped, _, _ := transform.String(stripAccents, lowered)
	return strings.Join(strings.Fields(stripped), " ")
}

func nameSimilarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" && nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	distance := levenshtein(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(distance)/float64(maxLen)
}

// dateSimilarity is exact-or-nothing: dates are not fuzzy-comparable the
// way names are.
func dateSimilarity(a, b string) float64 {
	da, db := digitsOnly(a), digitsOnly(b)
	if da == "" || db == "" {
		return 0
	}
	if da == db {
		return 1
	}
	return 0
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	len1, len2 := len(r1), len(r2)

	row := make([]int, len2+1)
	for i := 0; i <= len2; i++ {
		row[i] = i
	}

	for i := 1; i <= len1; i++ {
		prev := i
		for j := 1; j <= len2; j++ {
			val := row[j]
			if r1[i-1] == r2[j-1] {
				val = row[j-1]
			} else {
				val = minInt(minInt(row[j-1]+1, prev+1), row[j]+1)
			}
			row[j-1] = prev
			prev = val
		}
		row[len2] = prev
	}
	return row[len2]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
