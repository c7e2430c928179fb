package gitrepo

import (
	"context"
	"strings"

	"github.com/xcelera-dev/cli/internal/execshell"
	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	revParseSubcommandConstant = "rev-parse"
	workTreeFlagConstant       = "--is-inside-work-tree"
	remoteSubcommandConstant   = "remote"
	remoteGetURLSubcommand     = "get-url"
	showSubcommandConstant     = "show"
)

// GitExecutor runs git subcommands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandInferrer reads the source context by invoking the git executable.
type CommandInferrer struct {
	executor         GitExecutor
	workingDirectory string
}

// NewCommandInferrer constructs a CommandInferrer. An empty working directory means the process directory.
func NewCommandInferrer(executor GitExecutor, workingDirectory string) *CommandInferrer {
	return &CommandInferrer{executor: executor, workingDirectory: workingDirectory}
}

// Infer verifies the working tree, resolves the origin remote and reads HEAD.
func (inferrer *CommandInferrer) Infer(executionContext context.Context) (SourceContext, error) {
	workTreeResult, workTreeError := inferrer.run(executionContext, revParseSubcommandConstant, workTreeFlagConstant)
	if workTreeError != nil {
		return SourceContext{}, failure.Wrap(failure.KindNoRepository, workTreeError, noRepositoryMessageConstant)
	}
	if strings.TrimSpace(workTreeResult.StandardOutput) != workTreeConfirmationConstant {
		return SourceContext{}, failure.New(failure.KindNoRepository, noRepositoryMessageConstant)
	}

	remoteResult, remoteError := inferrer.run(executionContext, remoteSubcommandConstant, remoteGetURLSubcommand, originRemoteNameConstant)
	if remoteError != nil {
		return SourceContext{}, failure.Wrap(failure.KindNoRemote, remoteError, noRemoteMessageConstant)
	}
	remoteURL := strings.TrimSpace(remoteResult.StandardOutput)
	if len(remoteURL) == 0 {
		return SourceContext{}, failure.New(failure.KindNoRemote, noRemoteMessageConstant)
	}

	owner, repository, parseError := ParseGitHubRemote(remoteURL)
	if parseError != nil {
		return SourceContext{}, parseError
	}

	commit, commitError := inferrer.readCommit(executionContext, headReferenceConstant)
	if commitError != nil {
		return SourceContext{}, commitError
	}

	return SourceContext{
		Owner:  owner,
		Repo:   StripOwnerPrefix(owner, repository),
		Branch: inferrer.readBranch(executionContext),
		Commit: commit,
	}, nil
}

func (inferrer *CommandInferrer) readCommit(executionContext context.Context, reference string) (CommitInfo, error) {
	showResult, showError := inferrer.run(executionContext, showSubcommandConstant, reference, noPatchArgumentConstant, commitFormatArgumentConstant)
	if showError != nil {
		return CommitInfo{}, failure.Wrapf(failure.KindNoCommit, showError, noCommitTemplateConstant, reference)
	}

	fields := strings.SplitN(strings.TrimSpace(showResult.StandardOutput), commitFieldDelimiterConstant, commitFieldCountConstant)
	hash := strings.TrimSpace(fields[commitHashFieldIndexConstant])
	if len(hash) == 0 {
		return CommitInfo{}, failure.Newf(failure.KindNoCommit, noCommitTemplateConstant, reference)
	}
	for len(fields) < commitFieldCountConstant {
		fields = append(fields, "")
	}

	return CommitInfo{
		Hash:    hash,
		Message: fields[commitSubjectFieldIndex],
		Author:  resolveAuthor(fields[commitAuthorFieldIndex]),
		Date:    normalizeCommitDate(fields[commitDateFieldIndexConstant]),
	}, nil
}

// readBranch reports the checked out branch, or an empty string when HEAD is detached or unreadable.
func (inferrer *CommandInferrer) readBranch(executionContext context.Context) string {
	branchResult, branchError := inferrer.run(executionContext, revParseSubcommandConstant, abbreviatedRefArgumentConstant, headReferenceConstant)
	if branchError != nil {
		return ""
	}
	branchName := strings.TrimSpace(branchResult.StandardOutput)
	if branchName == headReferenceConstant {
		return ""
	}
	return branchName
}

func (inferrer *CommandInferrer) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return inferrer.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: inferrer.workingDirectory,
	})
}
