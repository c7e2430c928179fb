package gitrepo

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"

	"github.com/xcelera-dev/cli/internal/failure"
)

const currentDirectoryConstant = "."

// LibraryInferrer reads the source context through go-git without spawning processes.
type LibraryInferrer struct {
	workingDirectory string
}

// NewLibraryInferrer constructs a LibraryInferrer rooted at workingDirectory, searching parent
// directories for the repository.
func NewLibraryInferrer(workingDirectory string) *LibraryInferrer {
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		workingDirectory = currentDirectoryConstant
	}
	return &LibraryInferrer{workingDirectory: workingDirectory}
}

// Infer opens the repository, resolves the origin remote and reads HEAD.
func (inferrer *LibraryInferrer) Infer(executionContext context.Context) (SourceContext, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return SourceContext{}, contextError
	}

	repository, openError := git.PlainOpenWithOptions(inferrer.workingDirectory, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return SourceContext{}, failure.Wrap(failure.KindNoRepository, openError, noRepositoryMessageConstant)
	}

	originRemote, remoteError := repository.Remote(originRemoteNameConstant)
	if remoteError != nil {
		return SourceContext{}, failure.Wrap(failure.KindNoRemote, remoteError, noRemoteMessageConstant)
	}
	remoteURLs := originRemote.Config().URLs
	if len(remoteURLs) == 0 || len(strings.TrimSpace(remoteURLs[0])) == 0 {
		return SourceContext{}, failure.New(failure.KindNoRemote, noRemoteMessageConstant)
	}

	owner, repositoryName, parseError := ParseGitHubRemote(remoteURLs[0])
	if parseError != nil {
		return SourceContext{}, parseError
	}

	headReference, headError := repository.Head()
	if headError != nil {
		return SourceContext{}, failure.Wrapf(failure.KindNoCommit, headError, noCommitTemplateConstant, headReferenceConstant)
	}
	headCommit, commitError := repository.CommitObject(headReference.Hash())
	if commitError != nil {
		return SourceContext{}, failure.Wrapf(failure.KindNoCommit, errors.Wrap(commitError, headReference.Hash().String()), noCommitTemplateConstant, headReferenceConstant)
	}

	branchName := ""
	if headReference.Name().IsBranch() {
		branchName = headReference.Name().Short()
	}

	return SourceContext{
		Owner:  owner,
		Repo:   StripOwnerPrefix(owner, repositoryName),
		Branch: branchName,
		Commit: CommitInfo{
			Hash:    headCommit.Hash.String(),
			Message: commitSubject(headCommit.Message),
			Author:  resolveAuthor(headCommit.Author.Name),
			Date:    formatCommitDate(headCommit.Author.When),
		},
	}, nil
}
