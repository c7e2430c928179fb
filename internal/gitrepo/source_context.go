package gitrepo

import (
	"context"
	"strings"
	"time"
)

const (
	noRepositoryMessageConstant = "No git repository detected."
	noRemoteMessageConstant     = "Could not determine git remote URL. Please ensure you have an origin remote configured."
	noCommitTemplateConstant    = "No commit found for %s"
	unknownAuthorConstant       = "Unknown Author"
	originRemoteNameConstant    = "origin"
	headReferenceConstant       = "HEAD"
	commitDateLayoutConstant    = "2006-01-02T15:04:05.000Z"
	gitHumanDateLayoutConstant  = "2006-01-02 15:04:05 -0700"
)

const (
	commitFieldDelimiterConstant   = "\x00"
	commitFieldCountConstant       = 4
	commitHashFieldIndexConstant   = 0
	commitSubjectFieldIndex        = 1
	commitAuthorFieldIndex         = 2
	commitDateFieldIndexConstant   = 3
	subjectLineSeparatorConstant   = "\n"
	workTreeConfirmationConstant   = "true"
	commitFormatArgumentConstant   = "--format=%H%x00%s%x00%an%x00%aI"
	noPatchArgumentConstant        = "--no-patch"
	abbreviatedRefArgumentConstant = "--abbrev-ref"
)

// CommitInfo describes the commit checked out in the working copy.
type CommitInfo struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// SourceContext identifies the repository and commit an audit was scheduled from.
type SourceContext struct {
	Owner  string     `json:"owner"`
	Repo   string     `json:"repo"`
	Branch string     `json:"branch,omitempty"`
	Commit CommitInfo `json:"commit"`
}

// Inferrer resolves the source context of the current working copy.
type Inferrer interface {
	Infer(executionContext context.Context) (SourceContext, error)
}

// Backend selects how git metadata is read.
type Backend string

// Supported backends.
const (
	BackendGitCommand Backend = "git"
	BackendLibrary    Backend = "library"
)

// normalizeCommitDate renders a git author date as ISO-8601 UTC with millisecond precision.
// Unrecognized input is returned unchanged.
func normalizeCommitDate(rawDate string) string {
	trimmedDate := strings.TrimSpace(rawDate)
	for _, layout := range []string{time.RFC3339, gitHumanDateLayoutConstant} {
		parsedDate, parseError := time.Parse(layout, trimmedDate)
		if parseError == nil {
			return formatCommitDate(parsedDate)
		}
	}
	return trimmedDate
}

func formatCommitDate(moment time.Time) string {
	return moment.UTC().Format(commitDateLayoutConstant)
}

func resolveAuthor(author string) string {
	trimmedAuthor := strings.TrimSpace(author)
	if len(trimmedAuthor) == 0 {
		return unknownAuthorConstant
	}
	return trimmedAuthor
}

func commitSubject(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), subjectLineSeparatorConstant)
	return strings.TrimSpace(subject)
}
