package engine

import (
	"sort"

	"github.com/buildsock/buildsock/internal/issue"
)

// pathToIssues correlates every project's issues by absolute file path.
// Projects are walked in sorted order so the per-path issue lists come out
// deterministic.
func (p *processor) pathToIssues() map[string][]*issue.Issue {
	paths := make([]string, 0, len(p.projects))
	for path := range p.projects {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	byPath := make(map[string][]*issue.Issue)
	for _, projectPath := range paths {
		for _, is := range p.projects[projectPath].Issues {
			if is.Path == nil {
				continue
			}
			byPath[*is.Path] = append(byPath[*is.Path], is)
		}
	}
	return byPath
}

// updateAllViews re-associates every attached view with the issues matching
// its file path. This is the only place the two collections are correlated.
func (p *processor) updateAllViews() {
	ids := make([]string, 0, len(p.views))
	for id := range p.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p.syncViews(ids, p.pathToIssues())
}

// updateViews re-associates only the named views.
func (p *processor) updateViews(ids []string) {
	p.syncViews(ids, p.pathToIssues())
}

func (p *processor) syncViews(ids []string, byPath map[string][]*issue.Issue) {
	for _, id := range ids {
		vs, ok := p.views[id]
		if !ok {
			continue
		}

		matched := byPath[vs.path]

		// A view only gets a manager once something matches it; until then
		// there is nothing to clear either.
		if vs.manager == nil {
			if len(matched) == 0 {
				continue
			}
			vs.manager = p.viewFactory(id, vs.path)
		}

		// Pushing a set equal by value to the last push would only trigger
		// redundant re-render work.
		if vs.pushed && issue.SetEqual(vs.lastIssues, matched) {
			continue
		}

		vs.lastIssues = matched
		vs.pushed = true
		vs.manager.SetIssues(matched)
	}
}
