package action

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/samber/lo"

	"github.com/xcelera-dev/cli/internal/audit"
	"github.com/xcelera-dev/cli/internal/credentials"
	"github.com/xcelera-dev/cli/internal/gitrepo"
)

const (
	inputEnvironmentPrefixConstant = "INPUT_"
	environmentSeparatorConstant   = "="
	inputLineSeparatorConstant     = "\n"
	inputCarriageReturnConstant    = "\r"
)

// Inputs mirrors the inputs declared in action.yml.
type Inputs struct {
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	Cookie     string `mapstructure:"cookie"`
	Header     string `mapstructure:"header"`
	CookieFile string `mapstructure:"cookie-file"`
	Auth       string `mapstructure:"auth"`
	Verbose    bool   `mapstructure:"verbose"`
}

// ReadInputs decodes the INPUT_* variables of environ. Names are matched case-insensitively.
func ReadInputs(environ []string) (Inputs, error) {
	rawInputs := make(map[string]any)
	for _, entry := range environ {
		name, value, found := strings.Cut(entry, environmentSeparatorConstant)
		if !found || !strings.HasPrefix(name, inputEnvironmentPrefixConstant) {
			continue
		}
		inputName := strings.ToLower(strings.TrimPrefix(name, inputEnvironmentPrefixConstant))
		rawInputs[inputName] = value
	}

	var inputs Inputs
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &inputs,
	})
	if decoderError != nil {
		return Inputs{}, decoderError
	}
	if decodeError := decoder.Decode(rawInputs); decodeError != nil {
		return Inputs{}, decodeError
	}
	return inputs, nil
}

// SplitLines turns a multi-line input into its trimmed, non-empty lines.
func SplitLines(value string) []string {
	normalized := strings.ReplaceAll(value, inputCarriageReturnConstant, "")
	trimmedLines := lo.Map(strings.Split(normalized, inputLineSeparatorConstant), func(line string, _ int) string {
		return strings.TrimSpace(line)
	})
	return lo.Compact(trimmedLines)
}

// Invocation converts the inputs into an audit invocation.
//
// The action reads git metadata with go-git. The container runs as root against a
// workspace owned by the runner user, and the git binary refuses such repositories
// unless they are listed in safe.directory.
func (inputs Inputs) Invocation() audit.Invocation {
	return audit.Invocation{
		Ref:           strings.TrimSpace(inputs.URL),
		Token:         strings.TrimSpace(inputs.Token),
		SourceBackend: string(gitrepo.BackendLibrary),
		Verbose:       inputs.Verbose,
		Credentials: credentials.Options{
			AuthDocument: inputs.Auth,
			CookieFile:   strings.TrimSpace(inputs.CookieFile),
			Cookies:      SplitLines(inputs.Cookie),
			Headers:      SplitLines(inputs.Header),
		},
	}
}
