// Package matcher picks the YouTube Music equivalent of a Spotify track from a list of search results.
//
// # Strategies
//
// Three strategies of increasing permissiveness are available, selected with [Strategy]:
//
//  1. [Exact] : normalized title and normalized primary artist must both be equal
//  2. [Extended] : runs the exact pass, then accepts a title match whose album also matches
//  3. [Approximate] : runs both passes above, then accepts a candidate whose title contains the
//     source title, shares its tokens, or is near-equal, rejecting candidates whose duration is
//     more than [DefaultDurationTolerance] seconds away when both durations are known
//
// Each strategy runs the passes of the stricter ones first, so anything accepted by [Exact] is
// accepted by [Extended] and [Approximate] as well. The [models.MatchResult] tier names the pass
// that accepted.
//
// # Ranking
//
// Candidates arrive ranked by the search endpoint. The matcher never reorders them: within a
// pass the first candidate satisfying the predicate wins.
//
// # Failure policy
//
// [Matcher.Match] never fails. An empty list, a candidate without a target ID, or a source track
// missing its artist or album are recorded in [models.MatchResult.Issues] as [ErrNoCandidates],
// [ErrMalformedCandidate] and [ErrAmbiguousSource] respectively.
package matcher
