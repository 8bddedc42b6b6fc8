package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"tabrefresh/lib/tableau"

	"github.com/antzucaro/matchr"
)

// names closer than this to the one asked for are suggested
const suggestionThreshold = 0.85

type ProjectNotFoundError struct {
	Name  string
	Known []string
	// Suggestion is the closest known name, if any is close enough.
	Suggestion string
}

func (e *ProjectNotFoundError) Error() string {
	quoted := make([]string, len(e.Known))
	for i, name := range e.Known {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}
	msg := fmt.Sprintf(
		"project named '%s' not found on the server. available projects: [%s]",
		e.Name, strings.Join(quoted, ", "),
	)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

func suggest(name string, known []string) string {
	var best string
	var bestScore float64
	for _, candidate := range known {
		score := matchr.JaroWinkler(name, candidate, false)
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	if bestScore < suggestionThreshold {
		return ""
	}
	return best
}

// FindProject returns the first project called exactly `name`.
func FindProject(projects []tableau.Project, name string) (tableau.Project, error) {
	var matches []tableau.Project
	for _, p := range projects {
		if p.Name == name {
			matches = append(matches, p)
		}
	}

	if len(matches) == 0 {
		known := make([]string, len(projects))
		for i, p := range projects {
			known[i] = p.Name
		}
		return tableau.Project{}, &ProjectNotFoundError{
			Name:       name,
			Known:      known,
			Suggestion: suggest(name, known),
		}
	}

	if len(matches) > 1 {
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = p.ID
		}
		slog.Warn("several projects share the name, using the first", "name", name, "ids", ids)
	}
	return matches[0], nil
}

// ListProjects lists the site's projects through the paginated helper and
// falls back to reading a single raw listing when the server's answer
// cannot be paged through.
func ListProjects(ctx context.Context, api API, session tableau.Session) ([]tableau.Project, error) {
	projects, err := api.QueryAllProjects(ctx, session)
	if err == nil {
		return projects, nil
	}
	if !errors.Is(err, tableau.ErrPagination) {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	slog.DebugContext(ctx, "project listing is not paginated, reading it directly", "err", err)

	body, err := api.QueryProjects(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	listing := tableau.ParseProjectListing(body)
	switch listing.Kind {
	case tableau.ListingStructured, tableau.ListingMarkup:
		slog.DebugContext(ctx, "parsed project listing", "kind", listing.Kind.String(), "projects", len(listing.Projects))
		return listing.Projects, nil
	default:
		return nil, listing.Err(body)
	}
}

// ResolveProjectID lists the projects and returns the id of the one called
// `name`.
func ResolveProjectID(ctx context.Context, api API, session tableau.Session, name string) (string, error) {
	projects, err := ListProjects(ctx, api, session)
	if err != nil {
		return "", err
	}
	project, err := FindProject(projects, name)
	if err != nil {
		return "", err
	}
	return project.ID, nil
}
