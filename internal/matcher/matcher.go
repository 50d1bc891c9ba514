package matcher

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/desertthunder/s2yt/internal/models"
)

const (
	// DefaultDurationTolerance is the largest duration gap, in seconds, the approximate pass accepts.
	DefaultDurationTolerance = 10
	// DefaultSimilarity is the Levenshtein similarity at which two titles count as near-equal.
	DefaultSimilarity = 0.9
)

var (
	ErrNoCandidates       = fmt.Errorf("no candidates")
	ErrMalformedCandidate = fmt.Errorf("malformed candidate")
	ErrAmbiguousSource    = fmt.Errorf("ambiguous source track")
	ErrUnknownStrategy    = fmt.Errorf("unknown matching strategy")
)

// Opts configures a [Matcher]. Zero values select the defaults.
type Opts struct {
	DurationTolerance int     // Seconds; negative disables the duration check
	Similarity        float64 // Levenshtein similarity threshold in (0, 1]
}

// Matcher holds matching options only; it keeps no state between calls and is safe to share.
type Matcher struct {
	tolerance  int
	similarity float64
}

// New creates a [Matcher] from opts.
func New(opts Opts) *Matcher {
	if opts.DurationTolerance == 0 {
		opts.DurationTolerance = DefaultDurationTolerance
	}
	if opts.Similarity <= 0 || opts.Similarity > 1 {
		opts.Similarity = DefaultSimilarity
	}
	return &Matcher{tolerance: opts.DurationTolerance, similarity: opts.Similarity}
}

var defaultMatcher = New(Opts{})

// Match runs the default [Matcher].
func Match(source models.SourceTrack, candidates []models.CandidateTrack, strategy Strategy) models.MatchResult {
	return defaultMatcher.Match(source, candidates, strategy)
}

// query is the normalized form of a source track.
type query struct {
	title  string
	tokens string
	artist string
	album  string
	dur    int
}

// view is the normalized form of a candidate.
type view struct {
	raw      models.CandidateTrack
	title    string
	tokens   string
	artist   string
	album    string
	segments []string
}

type pass struct {
	tier       models.ConfidenceTier
	needsAlbum bool
	accept     func(q query, c view) bool
}

func newQuery(s models.SourceTrack) query {
	title := NormalizeTitle(s.Title)
	return query{
		title:  title,
		tokens: sortedTokens(title),
		artist: PrimaryArtist(s.Artist),
		album:  Normalize(s.Album),
		dur:    s.Duration,
	}
}

func newView(c models.CandidateTrack) view {
	title := NormalizeTitle(c.Title)
	return view{
		raw:      c,
		title:    title,
		tokens:   sortedTokens(title),
		artist:   PrimaryArtist(c.Artist),
		album:    Normalize(c.Album),
		segments: segments(c.Title),
	}
}

// Match selects at most one candidate for source using strategy.
//
// Candidates with a blank TargetID are skipped. The returned TargetID, when set, is always
// copied from one of the candidates.
func (m *Matcher) Match(source models.SourceTrack, candidates []models.CandidateTrack, strategy Strategy) models.MatchResult {
	if !strategy.Valid() {
		return models.NoMatch(fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy)))
	}
	if len(candidates) == 0 {
		return models.NoMatch(ErrNoCandidates)
	}

	q := newQuery(source)
	var issues []error
	if q.title == "" {
		return models.NoMatch(fmt.Errorf("%w: missing title", ErrAmbiguousSource))
	}
	if q.artist == "" {
		issues = append(issues, fmt.Errorf("%w: missing artist, comparing titles only", ErrAmbiguousSource))
	}

	views := make([]view, 0, len(candidates))
	for i, c := range candidates {
		if strings.TrimSpace(c.TargetID) == "" {
			issues = append(issues, fmt.Errorf("%w: result %d (%q) has no target id", ErrMalformedCandidate, i+1, c.Title))
			continue
		}
		views = append(views, newView(c))
	}

	for _, p := range m.passes(strategy) {
		if p.needsAlbum && q.album == "" {
			if q.artist != "" {
				issues = append(issues, fmt.Errorf("%w: missing album, skipping album pass", ErrAmbiguousSource))
			}
			continue
		}
		for _, v := range views {
			if p.accept(q, v) {
				accepted := v.raw
				return models.MatchResult{
					Matched:   true,
					TargetID:  accepted.TargetID,
					Tier:      p.tier,
					Candidate: &accepted,
					Issues:    issues,
				}
			}
		}
	}

	return models.NoMatch(issues...)
}

func (m *Matcher) passes(s Strategy) []pass {
	exact := pass{tier: models.TierExact, accept: acceptExact}
	album := pass{tier: models.TierExtended, needsAlbum: true, accept: acceptAlbum}
	approx := pass{tier: models.TierApproximate, accept: m.acceptApproximate}

	switch s {
	case Extended:
		return []pass{exact, album}
	case Approximate:
		return []pass{exact, album, approx}
	default:
		return []pass{exact}
	}
}

// acceptExact compares title and primary artist, or title alone when the source has no artist.
func acceptExact(q query, c view) bool {
	if c.title != q.title {
		return false
	}
	return q.artist == "" || c.artist == q.artist
}

func acceptAlbum(q query, c view) bool {
	return c.title == q.title && c.album != "" && c.album == q.album
}

func (m *Matcher) acceptApproximate(q query, c view) bool {
	if !m.titleClose(q, c) {
		return false
	}
	return m.durationClose(q.dur, c.raw.Duration)
}

func (m *Matcher) titleClose(q query, c view) bool {
	if c.title == "" {
		return false
	}
	if c.title == q.title || containsWords(c.title, q.title) || c.tokens == q.tokens {
		return true
	}
	for _, seg := range c.segments {
		if seg == q.title {
			return true
		}
	}
	return levenshtein.Similarity(q.title, c.title, nil) >= m.similarity
}

func (m *Matcher) durationClose(src, cand int) bool {
	if m.tolerance < 0 || src <= 0 || cand <= 0 {
		return true
	}
	diff := src - cand
	if diff < 0 {
		diff = -diff
	}
	return diff <= m.tolerance
}
