package enrich

import (
	"sort"

	"panoram/internal/models"
)

// TopCastSize is how many billed actors are kept per movie.
const TopCastSize = 5

// Credits is what the job writes back to a movie.
type Credits struct {
	Director string
	Actors   []string
}

// ExtractCredits picks the first crew member credited as Director and the
// first TopCastSize actors by billing order.
func ExtractCredits(resp *CreditsResponse) Credits {
	out := Credits{Director: models.DirectorUnavailable, Actors: []string{}}
	if resp == nil {
		return out
	}

	for _, member := range resp.Crew {
		if member.Job == "Director" {
			out.Director = member.Name
			break
		}
	}

	cast := make([]CastMember, len(resp.Cast))
	copy(cast, resp.Cast)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	if len(cast) > TopCastSize {
		cast = cast[:TopCastSize]
	}
	for _, member := range cast {
		out.Actors = append(out.Actors, member.Name)
	}
	return out
}
