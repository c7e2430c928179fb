package gitrepo

import (
	"fmt"
	"strings"

	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	gitUserPrefixConstant               = "git@"
	userInfoDelimiterConstant           = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	gitHubHostConstant                  = "github.com"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "remote url is required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	unsupportedHostMessageConstant      = "remote host is not github.com"
	unparsableRemoteTemplateConstant    = "Could not parse GitHub URL: %s. Expected format: https://github.com/owner/repo or git@github.com:owner/repo"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// Accepted shapes are https://host/owner/repo, git@host:owner/repo and ssh://git@host/owner/repo,
// each with an optional .git suffix.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant), RemoteProtocolSSH)
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSCPRemote(remote, strings.TrimPrefix(trimmedRemote, gitUserPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHierarchicalRemote(remote, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant), RemoteProtocolHTTPS)
	default:
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

// ParseGitHubRemote extracts the owner and bare repository name from a github.com remote.
func ParseGitHubRemote(remote string) (string, string, error) {
	remoteURL, parseError := ParseRemoteURL(remote)
	if parseError == nil && !strings.EqualFold(remoteURL.Host, gitHubHostConstant) {
		parseError = RemoteURLParseError{Input: remote, Message: unsupportedHostMessageConstant}
	}
	if parseError != nil {
		return "", "", failure.Wrapf(failure.KindUnparsableRemote, parseError, unparsableRemoteTemplateConstant, strings.TrimSpace(remote))
	}
	return remoteURL.Owner, remoteURL.Repository, nil
}

func parseSCPRemote(input string, hostAndPath string) (RemoteURL, error) {
	pathSplitIndex := strings.Index(hostAndPath, scpPathDelimiterConstant)
	if pathSplitIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	host := hostAndPath[:pathSplitIndex]
	owner, repository, splitError := splitOwnerAndRepository(input, hostAndPath[pathSplitIndex+1:])
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHierarchicalRemote(input string, authorityAndPath string, protocol RemoteProtocol) (RemoteURL, error) {
	slashIndex := strings.Index(authorityAndPath, pathSeparatorConstant)
	if slashIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	authority := authorityAndPath[:slashIndex]
	if userInfoIndex := strings.LastIndex(authority, userInfoDelimiterConstant); userInfoIndex >= 0 {
		authority = authority[userInfoIndex+1:]
	}
	host := authority
	if portIndex := strings.Index(host, scpPathDelimiterConstant); portIndex >= 0 {
		host = host[:portIndex]
	}
	owner, repository, splitError := splitOwnerAndRepository(input, authorityAndPath[slashIndex+1:])
	if splitError != nil {
		return RemoteURL{}, splitError
	}
	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(input string, path string) (string, string, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) < 2 || len(segments[0]) == 0 {
		return "", "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	owner := segments[0]
	repository, normalizeError := normalizeRepositoryName(input, segments[1])
	if normalizeError != nil {
		return "", "", normalizeError
	}
	return owner, repository, nil
}

func normalizeRepositoryName(input string, repository string) (string, error) {
	trimmed := strings.TrimSuffix(repository, gitSuffixConstant)
	if len(trimmed) == 0 {
		return "", RemoteURLParseError{Input: input, Message: invalidRemoteURLMessageConstant}
	}
	return trimmed, nil
}

// StripOwnerPrefix returns repository without a leading owner/ segment.
func StripOwnerPrefix(owner string, repository string) string {
	return strings.TrimPrefix(repository, owner+pathSeparatorConstant)
}
