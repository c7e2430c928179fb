package auditapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	gitHubIntegrationKeyConstant         = "github"
	jsonNullLiteralConstant              = "null"
	unknownIntegrationStatusTemplate     = "Unknown GitHub integration status: %q"
	invalidIntegrationTemplateConstant   = "Invalid GitHub integration payload: %s"
	invalidIntegrationIDTemplateConstant = "Invalid integration identifier: %s"
	invalidIntegrationsTemplateConstant  = "Invalid integrations payload: %s"
	jsonStringDelimiterConstant          = '"'
)

// IntegrationStatus is the tag of a GitHub integration outcome.
type IntegrationStatus string

// Integration statuses reported by the audit service.
const (
	IntegrationStatusSuccess       IntegrationStatus = "success"
	IntegrationStatusSkipped       IntegrationStatus = "skipped"
	IntegrationStatusMisconfigured IntegrationStatus = "misconfigured"
	IntegrationStatusError         IntegrationStatus = "error"
)

// SkipReason explains a skipped integration.
type SkipReason string

// Skip reasons.
const (
	SkipReasonNoGitContext   SkipReason = "no_git_context"
	SkipReasonNoInstallation SkipReason = "no_installation"
)

// MisconfigurationReason explains a misconfigured integration.
type MisconfigurationReason string

// MisconfigurationReasonNoRepoAccess means the app is installed without access to the repository.
const MisconfigurationReasonNoRepoAccess MisconfigurationReason = "no_repo_access"

// IntegrationID is an identifier the service may send as a JSON number or string.
type IntegrationID string

// UnmarshalJSON accepts numbers, strings, and null.
func (identifier *IntegrationID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if string(trimmed) == jsonNullLiteralConstant {
		*identifier = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == jsonStringDelimiterConstant {
		var text string
		if decodeError := json.Unmarshal(trimmed, &text); decodeError != nil {
			return failure.Wrapf(failure.KindUnexpectedServer, decodeError, invalidIntegrationIDTemplateConstant, trimmed)
		}
		*identifier = IntegrationID(text)
		return nil
	}
	var number json.Number
	if decodeError := json.Unmarshal(trimmed, &number); decodeError != nil {
		return failure.Wrapf(failure.KindUnexpectedServer, decodeError, invalidIntegrationIDTemplateConstant, trimmed)
	}
	*identifier = IntegrationID(number.String())
	return nil
}

// GitHubIntegration is the sealed set of GitHub integration outcomes. The variants are
// GitHubIntegrationSucceeded, GitHubIntegrationSkipped, GitHubIntegrationMisconfigured,
// GitHubIntegrationFailed, and GitHubIntegrationUnrecognized.
type GitHubIntegration interface {
	Status() IntegrationStatus
	isGitHubIntegration()
}

// GitHubIntegrationSucceeded reports a created or updated check run.
type GitHubIntegrationSucceeded struct {
	InstallationID IntegrationID `json:"installationId"`
	CheckRunID     IntegrationID `json:"checkRunId"`
}

// GitHubIntegrationSkipped reports that the service did not attempt the integration.
type GitHubIntegrationSkipped struct {
	Reason SkipReason `json:"reason"`
}

// GitHubIntegrationMisconfigured reports an installation that cannot serve the repository.
type GitHubIntegrationMisconfigured struct {
	Reason         MisconfigurationReason `json:"reason"`
	InstallationID IntegrationID          `json:"installationId"`
}

// GitHubIntegrationFailed reports that the check run could not be created or updated.
type GitHubIntegrationFailed struct{}

// GitHubIntegrationUnrecognized carries an entry this client cannot interpret: an unknown
// status tag or a payload that does not match its tag.
type GitHubIntegrationUnrecognized struct {
	ReportedStatus IntegrationStatus
	Problem        string
}

// Status returns IntegrationStatusSuccess.
func (GitHubIntegrationSucceeded) Status() IntegrationStatus { return IntegrationStatusSuccess }

// Status returns IntegrationStatusSkipped.
func (GitHubIntegrationSkipped) Status() IntegrationStatus { return IntegrationStatusSkipped }

// Status returns IntegrationStatusMisconfigured.
func (GitHubIntegrationMisconfigured) Status() IntegrationStatus {
	return IntegrationStatusMisconfigured
}

// Status returns IntegrationStatusError.
func (GitHubIntegrationFailed) Status() IntegrationStatus { return IntegrationStatusError }

func (GitHubIntegrationSucceeded) isGitHubIntegration()     {}
func (GitHubIntegrationSkipped) isGitHubIntegration()       {}
func (GitHubIntegrationMisconfigured) isGitHubIntegration() {}
func (GitHubIntegrationFailed) isGitHubIntegration()        {}

// Status returns the tag the service sent.
func (unrecognized GitHubIntegrationUnrecognized) Status() IntegrationStatus {
	return unrecognized.ReportedStatus
}

func (GitHubIntegrationUnrecognized) isGitHubIntegration() {}

// DecodeGitHubIntegration decodes one integration payload by its status tag.
// Payloads that cannot be interpreted decode to GitHubIntegrationUnrecognized.
func DecodeGitHubIntegration(data []byte) GitHubIntegration {
	var envelope struct {
		Status IntegrationStatus `json:"status"`
	}
	if decodeError := json.Unmarshal(data, &envelope); decodeError != nil {
		return GitHubIntegrationUnrecognized{Problem: fmt.Sprintf(invalidIntegrationTemplateConstant, decodeError.Error())}
	}

	var integration GitHubIntegration
	var decodeError error
	switch envelope.Status {
	case IntegrationStatusSuccess:
		var succeeded GitHubIntegrationSucceeded
		decodeError = json.Unmarshal(data, &succeeded)
		integration = succeeded
	case IntegrationStatusSkipped:
		var skipped GitHubIntegrationSkipped
		decodeError = json.Unmarshal(data, &skipped)
		integration = skipped
	case IntegrationStatusMisconfigured:
		var misconfigured GitHubIntegrationMisconfigured
		decodeError = json.Unmarshal(data, &misconfigured)
		integration = misconfigured
	case IntegrationStatusError:
		integration = GitHubIntegrationFailed{}
	default:
		return GitHubIntegrationUnrecognized{
			ReportedStatus: envelope.Status,
			Problem:        fmt.Sprintf(unknownIntegrationStatusTemplate, string(envelope.Status)),
		}
	}
	if decodeError != nil {
		return GitHubIntegrationUnrecognized{
			ReportedStatus: envelope.Status,
			Problem:        fmt.Sprintf(invalidIntegrationTemplateConstant, decodeError.Error()),
		}
	}
	return integration
}

// Integrations lists the integration outcomes of a scheduled audit.
type Integrations struct {
	GitHub GitHubIntegration
	names  []string
}

// IsEmpty reports whether the service returned no integration entries at all.
func (integrations Integrations) IsEmpty() bool {
	return len(integrations.names) == 0
}

// UnmarshalJSON decodes the integrations object, keeping track of every entry name.
func (integrations *Integrations) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == jsonNullLiteralConstant {
		*integrations = Integrations{}
		return nil
	}
	var entries map[string]json.RawMessage
	if decodeError := json.Unmarshal(data, &entries); decodeError != nil {
		return failure.Wrapf(failure.KindUnexpectedServer, decodeError, invalidIntegrationsTemplateConstant, decodeError.Error())
	}

	decoded := Integrations{names: lo.Keys(entries)}
	if rawGitHub, found := entries[gitHubIntegrationKeyConstant]; found && string(bytes.TrimSpace(rawGitHub)) != jsonNullLiteralConstant {
		decoded.GitHub = DecodeGitHubIntegration(rawGitHub)
	}
	*integrations = decoded
	return nil
}

// AuditData is the payload of a scheduled audit.
type AuditData struct {
	AuditID      string       `json:"auditId"`
	Status       string       `json:"status"`
	Integrations Integrations `json:"integrations"`
}

// AuditError is the failure envelope reported by the service. Details may be any JSON value.
type AuditError struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// DetailsText renders Details for display: strings verbatim, other values as compact JSON.
func (auditError AuditError) DetailsText() string {
	trimmed := bytes.TrimSpace(auditError.Details)
	if len(trimmed) == 0 || string(trimmed) == jsonNullLiteralConstant {
		return ""
	}
	var text string
	if json.Unmarshal(trimmed, &text) == nil {
		return text
	}
	var compacted bytes.Buffer
	if json.Compact(&compacted, trimmed) != nil {
		return string(trimmed)
	}
	return compacted.String()
}

// AuditResponse is tagged by Success: Data is set on success, Error otherwise.
type AuditResponse struct {
	Success bool        `json:"success"`
	Data    *AuditData  `json:"data,omitempty"`
	Error   *AuditError `json:"error,omitempty"`
}

func newStringDetails(details string) json.RawMessage {
	encoded, _ := json.Marshal(details)
	return encoded
}
