package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/imamik/mreks/internal/pipeline"
)

// GitSource resolves the revision of a local git checkout.
type GitSource struct {
	// Path is the repository root or any directory below it.
	Path string
	// Branch is resolved instead of HEAD when set.
	Branch string
}

var _ pipeline.Action = GitSource{}

// Run implements pipeline.Action.
func (s GitSource) Run(ctx context.Context, _ pipeline.ActionInput) (pipeline.ActionOutput, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.ActionOutput{}, err
	}

	repo, err := git.PlainOpenWithOptions(s.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return pipeline.ActionOutput{}, fmt.Errorf("failed to open repository at %s: %w", s.Path, err)
	}

	ref, err := s.resolve(repo)
	if err != nil {
		return pipeline.ActionOutput{}, err
	}

	hash := ref.Hash().String()
	return pipeline.ActionOutput{
		Revision: hash,
		Message:  fmt.Sprintf("%s@%s", ref.Name().Short(), hash[:7]),
	}, nil
}

func (s GitSource) resolve(repo *git.Repository) (*plumbing.Reference, error) {
	if s.Branch == "" {
		ref, err := repo.Head()
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("repository at %s has no commits", s.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
		}
		return ref, nil
	}

	ref, err := repo.Reference(plumbing.NewBranchReferenceName(s.Branch), true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch %s: %w", s.Branch, err)
	}
	return ref, nil
}
