package git

import (
	"log/slog"

	gogit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docgraph/internal/logfields"
)

// HeadRevision returns the HEAD commit hash of the repository containing dir.
// The repository root may be dir itself or any of its parents.
func HeadRevision(dir string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", classify(err, "open", dir)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", classify(err, "head", dir)
	}

	slog.Debug("Resolved source revision", logfields.Path(dir), logfields.Revision(ref.Hash().String()))
	return ref.Hash().String(), nil
}
