package credentials

import (
	"strings"
	"time"

	"github.com/xcelera-dev/cli/internal/cookies"
	"github.com/xcelera-dev/cli/internal/failure"
	pathutils "github.com/xcelera-dev/cli/internal/utils/path"
)

const (
	cookieSeparatorConstant       = "="
	headerSeparatorConstant       = ":"
	invalidCookieTemplateConstant = "Invalid cookie format: %q. Expected \"name=value\""
	invalidHeaderTemplateConstant = "Invalid header format: %q. Expected \"Name: Value\""
)

// Cookie is a credential cookie sent with the audit request.
type Cookie = cookies.Cookie

// AuthCredentials is the authentication block of an audit request.
type AuthCredentials struct {
	Cookies []Cookie          `json:"cookies,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Options lists the credential sources supplied for one invocation.
type Options struct {
	AuthDocument string
	CookieFile   string
	Cookies      []string
	Headers      []string
}

// Assembly is the outcome of credential assembly. Auth is nil when no source supplied anything.
type Assembly struct {
	Auth     *AuthCredentials
	Warnings []string
}

// Clock supplies the current time used to discard expired cookies.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Assembler merges the credential sources into one authentication block.
type Assembler struct {
	clock        Clock
	homeExpander *pathutils.HomeExpander
}

// NewAssembler constructs an Assembler. Nil collaborators fall back to the system clock and home directory.
func NewAssembler(clock Clock, homeExpander *pathutils.HomeExpander) *Assembler {
	if clock == nil {
		clock = systemClock{}
	}
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}
	return &Assembler{clock: clock, homeExpander: homeExpander}
}

// Assemble composes the auth document, the cookie file and inline cookies in that order, then the
// auth document headers followed by inline headers. Later headers replace earlier ones of the same name.
func (assembler *Assembler) Assemble(options Options) (Assembly, error) {
	collectedCookies := make([]Cookie, 0)
	collectedHeaders := make(map[string]string)
	warnings := make([]string, 0)

	if len(strings.TrimSpace(options.AuthDocument)) > 0 {
		blob, blobError := parseAuthBlob(options.AuthDocument)
		if blobError != nil {
			return Assembly{}, blobError
		}
		collectedCookies = append(collectedCookies, blob.Cookies...)
		for headerName, headerValue := range blob.Headers {
			collectedHeaders[headerName] = headerValue
		}
	}

	if len(strings.TrimSpace(options.CookieFile)) > 0 {
		cookieFilePath := assembler.homeExpander.Expand(strings.TrimSpace(options.CookieFile))
		parseResult, readError := cookies.ReadFile(cookieFilePath, assembler.clock.Now())
		if readError != nil {
			return Assembly{}, readError
		}
		collectedCookies = append(collectedCookies, parseResult.Cookies...)
		warnings = append(warnings, parseResult.Warnings...)
	}

	for _, cookieFlag := range options.Cookies {
		cookie, cookieError := ParseCookieFlag(cookieFlag)
		if cookieError != nil {
			return Assembly{}, cookieError
		}
		collectedCookies = append(collectedCookies, cookie)
	}

	for _, headerFlag := range options.Headers {
		headerName, headerValue, headerError := ParseHeaderFlag(headerFlag)
		if headerError != nil {
			return Assembly{}, headerError
		}
		collectedHeaders[headerName] = headerValue
	}

	if len(collectedCookies) == 0 && len(collectedHeaders) == 0 {
		return Assembly{Warnings: warnings}, nil
	}

	auth := &AuthCredentials{}
	if len(collectedCookies) > 0 {
		auth.Cookies = collectedCookies
	}
	if len(collectedHeaders) > 0 {
		auth.Headers = collectedHeaders
	}
	return Assembly{Auth: auth, Warnings: warnings}, nil
}

// ParseCookieFlag splits a name=value flag at the first equals sign.
func ParseCookieFlag(cookieFlag string) (Cookie, error) {
	name, value, found := strings.Cut(cookieFlag, cookieSeparatorConstant)
	if !found {
		return Cookie{}, failure.Newf(failure.KindInvalidCookieFormat, invalidCookieTemplateConstant, cookieFlag)
	}
	return Cookie{Name: name, Value: value}, nil
}

// ParseHeaderFlag splits a "Name: Value" flag at the first colon and trims both parts.
func ParseHeaderFlag(headerFlag string) (string, string, error) {
	name, value, found := strings.Cut(headerFlag, headerSeparatorConstant)
	if !found {
		return "", "", failure.Newf(failure.KindInvalidHeaderFormat, invalidHeaderTemplateConstant, headerFlag)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}
