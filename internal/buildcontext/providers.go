package buildcontext

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Service identifiers reported for each detected CI provider.
const (
	ServiceUnknown   = "unknown"
	ServiceGitHub    = "github"
	ServiceGitLab    = "gitlab"
	ServiceCircleCI  = "circleci"
	ServiceBuildkite = "buildkite"
	ServiceTravis    = "travis"
	ServiceJenkins   = "jenkins"
	ServiceBitbucket = "bitbucket"
	ServiceGeneric   = "generic"
)

const (
	trueValueConstant           = "true"
	falseValueConstant          = "false"
	pullRequestRefPrefix        = "refs/pull/"
	branchRefPrefix             = "refs/heads/"
	defaultGitHubServerURL      = "https://github.com"
	bitbucketPipelineURLPrefix  = "https://bitbucket.org/"
	bitbucketPipelineURLSegment = "/addon/pipelines/home#!/results/"
	pathSeparatorConstant       = "/"
)

// EnvironmentLookup reads one environment variable.
type EnvironmentLookup func(key string) (string, bool)

// CIEnvironment is the CI metadata exposed by a provider.
type CIEnvironment struct {
	Service     string
	Branch      string
	PRBranch    string
	PRNumber    string
	BuildNumber string
	BuildURL    string
}

// ResolvedBranch prefers the pull request head branch over the plain branch.
func (environment CIEnvironment) ResolvedBranch() string {
	return lo.CoalesceOrEmpty(environment.PRBranch, environment.Branch)
}

// Provider detects one CI platform and reads its metadata.
type Provider struct {
	Service string
	Detect  func(environment Environment) bool
	Read    func(environment Environment) CIEnvironment
}

// Environment reads trimmed CI variables through an EnvironmentLookup.
type Environment struct {
	lookup EnvironmentLookup
}

// NewEnvironment wraps lookup. A nil lookup reads nothing.
func NewEnvironment(lookup EnvironmentLookup) Environment {
	return Environment{lookup: lookup}
}

// Get returns the trimmed value of key, or an empty string when unset.
func (reader Environment) Get(key string) string {
	if reader.lookup == nil {
		return ""
	}
	value, _ := reader.lookup(key)
	return strings.TrimSpace(value)
}

// IsSet reports whether key holds a non-blank value.
func (reader Environment) IsSet(key string) bool {
	return len(reader.Get(key)) > 0
}

// IsTrue reports whether key equals "true" case-insensitively.
func (reader Environment) IsTrue(key string) bool {
	return strings.EqualFold(reader.Get(key), trueValueConstant)
}

// nonFalse returns the value unless it is empty or the literal "false" some providers use for non-PR builds.
func nonFalse(value string) string {
	if strings.EqualFold(value, falseValueConstant) {
		return ""
	}
	return value
}

func lastPathSegment(value string) string {
	trimmed := strings.TrimRight(value, pathSeparatorConstant)
	if separatorIndex := strings.LastIndex(trimmed, pathSeparatorConstant); separatorIndex >= 0 {
		return trimmed[separatorIndex+1:]
	}
	return trimmed
}

// DefaultProviders lists the supported CI providers in detection order. The generic CI=true
// provider is last so that specific providers win.
func DefaultProviders() []Provider {
	return []Provider{
		gitHubActionsProvider(),
		gitLabProvider(),
		circleCIProvider(),
		buildkiteProvider(),
		travisProvider(),
		jenkinsProvider(),
		bitbucketProvider(),
		genericProvider(),
	}
}

func gitHubActionsProvider() Provider {
	return Provider{
		Service: ServiceGitHub,
		Detect:  func(environment Environment) bool { return environment.IsTrue("GITHUB_ACTIONS") },
		Read: func(environment Environment) CIEnvironment {
			reference := environment.Get("GITHUB_REF")
			pushedBranch := ""
			if strings.HasPrefix(reference, branchRefPrefix) {
				pushedBranch = strings.TrimPrefix(reference, branchRefPrefix)
			}
			branch := lo.CoalesceOrEmpty(environment.Get("GITHUB_BASE_REF"), pushedBranch, environment.Get("GITHUB_REF_NAME"))

			runID := environment.Get("GITHUB_RUN_ID")
			buildURL := ""
			if repository := environment.Get("GITHUB_REPOSITORY"); len(repository) > 0 && len(runID) > 0 {
				serverURL := lo.CoalesceOrEmpty(environment.Get("GITHUB_SERVER_URL"), defaultGitHubServerURL)
				buildURL = strings.Join([]string{serverURL, repository, "actions", "runs", runID}, pathSeparatorConstant)
			}

			return CIEnvironment{
				Service:     ServiceGitHub,
				Branch:      branch,
				PRBranch:    environment.Get("GITHUB_HEAD_REF"),
				PRNumber:    parseGitHubPullRequestNumber(reference),
				BuildNumber: runID,
				BuildURL:    buildURL,
			}
		},
	}
}

// parseGitHubPullRequestNumber extracts N from refs/pull/N/merge.
func parseGitHubPullRequestNumber(reference string) string {
	if !strings.HasPrefix(reference, pullRequestRefPrefix) {
		return ""
	}
	segments := strings.Split(strings.TrimPrefix(reference, pullRequestRefPrefix), pathSeparatorConstant)
	if _, parseError := strconv.Atoi(segments[0]); parseError != nil {
		return ""
	}
	return segments[0]
}

func gitLabProvider() Provider {
	return Provider{
		Service: ServiceGitLab,
		Detect:  func(environment Environment) bool { return environment.IsSet("GITLAB_CI") },
		Read: func(environment Environment) CIEnvironment {
			return CIEnvironment{
				Service:     ServiceGitLab,
				Branch:      lo.CoalesceOrEmpty(environment.Get("CI_MERGE_REQUEST_TARGET_BRANCH_NAME"), environment.Get("CI_COMMIT_REF_NAME")),
				PRBranch:    environment.Get("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME"),
				PRNumber:    environment.Get("CI_MERGE_REQUEST_IID"),
				BuildNumber: environment.Get("CI_PIPELINE_ID"),
				BuildURL:    environment.Get("CI_PIPELINE_URL"),
			}
		},
	}
}

func circleCIProvider() Provider {
	return Provider{
		Service: ServiceCircleCI,
		Detect:  func(environment Environment) bool { return environment.IsSet("CIRCLECI") },
		Read: func(environment Environment) CIEnvironment {
			return CIEnvironment{
				Service:     ServiceCircleCI,
				Branch:      environment.Get("CIRCLE_BRANCH"),
				PRNumber:    lo.CoalesceOrEmpty(environment.Get("CIRCLE_PR_NUMBER"), lastPathSegment(environment.Get("CIRCLE_PULL_REQUEST"))),
				BuildNumber: environment.Get("CIRCLE_BUILD_NUM"),
				BuildURL:    environment.Get("CIRCLE_BUILD_URL"),
			}
		},
	}
}

func buildkiteProvider() Provider {
	return Provider{
		Service: ServiceBuildkite,
		Detect:  func(environment Environment) bool { return environment.IsSet("BUILDKITE") },
		Read: func(environment Environment) CIEnvironment {
			ciEnvironment := CIEnvironment{
				Service:     ServiceBuildkite,
				Branch:      environment.Get("BUILDKITE_BRANCH"),
				PRNumber:    nonFalse(environment.Get("BUILDKITE_PULL_REQUEST")),
				BuildNumber: environment.Get("BUILDKITE_BUILD_NUMBER"),
				BuildURL:    environment.Get("BUILDKITE_BUILD_URL"),
			}
			if len(ciEnvironment.PRNumber) > 0 {
				ciEnvironment.PRBranch = ciEnvironment.Branch
				ciEnvironment.Branch = environment.Get("BUILDKITE_PULL_REQUEST_BASE_BRANCH")
			}
			return ciEnvironment
		},
	}
}

func travisProvider() Provider {
	return Provider{
		Service: ServiceTravis,
		Detect:  func(environment Environment) bool { return environment.IsSet("TRAVIS") },
		Read: func(environment Environment) CIEnvironment {
			return CIEnvironment{
				Service:     ServiceTravis,
				Branch:      environment.Get("TRAVIS_BRANCH"),
				PRBranch:    environment.Get("TRAVIS_PULL_REQUEST_BRANCH"),
				PRNumber:    nonFalse(environment.Get("TRAVIS_PULL_REQUEST")),
				BuildNumber: environment.Get("TRAVIS_BUILD_NUMBER"),
				BuildURL:    environment.Get("TRAVIS_BUILD_WEB_URL"),
			}
		},
	}
}

func jenkinsProvider() Provider {
	return Provider{
		Service: ServiceJenkins,
		Detect: func(environment Environment) bool {
			return environment.IsSet("JENKINS_URL") && environment.IsSet("BUILD_ID")
		},
		Read: func(environment Environment) CIEnvironment {
			return CIEnvironment{
				Service:     ServiceJenkins,
				Branch:      lo.CoalesceOrEmpty(environment.Get("CHANGE_TARGET"), environment.Get("GIT_LOCAL_BRANCH"), environment.Get("GIT_BRANCH"), environment.Get("BRANCH_NAME")),
				PRBranch:    environment.Get("CHANGE_BRANCH"),
				PRNumber:    environment.Get("CHANGE_ID"),
				BuildNumber: environment.Get("BUILD_NUMBER"),
				BuildURL:    environment.Get("BUILD_URL"),
			}
		},
	}
}

func bitbucketProvider() Provider {
	return Provider{
		Service: ServiceBitbucket,
		Detect:  func(environment Environment) bool { return environment.IsSet("BITBUCKET_BUILD_NUMBER") },
		Read: func(environment Environment) CIEnvironment {
			buildNumber := environment.Get("BITBUCKET_BUILD_NUMBER")
			buildURL := ""
			if repository := environment.Get("BITBUCKET_REPO_FULL_NAME"); len(repository) > 0 {
				buildURL = bitbucketPipelineURLPrefix + repository + bitbucketPipelineURLSegment + buildNumber
			}
			return CIEnvironment{
				Service:     ServiceBitbucket,
				Branch:      environment.Get("BITBUCKET_BRANCH"),
				PRNumber:    environment.Get("BITBUCKET_PR_ID"),
				BuildNumber: buildNumber,
				BuildURL:    buildURL,
			}
		},
	}
}

func genericProvider() Provider {
	return Provider{
		Service: ServiceGeneric,
		Detect:  func(environment Environment) bool { return environment.IsTrue("CI") },
		Read: func(environment Environment) CIEnvironment {
			return CIEnvironment{Service: ServiceGeneric}
		},
	}
}
