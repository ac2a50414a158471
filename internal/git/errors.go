package git

import (
	stderrors "errors"

	gogit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/docgraph/internal/foundation/errors"
)

// classify translates go-git errors into ClassifiedErrors.
func classify(err error, op, path string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	category := errors.CategoryGit
	if stderrors.Is(err, gogit.ErrRepositoryNotExists) {
		category = errors.CategoryNotFound
	}
	return errors.WrapError(err, category, "git operation failed").
		WithContext("op", op).
		WithContext("path", path).
		Build()
}
