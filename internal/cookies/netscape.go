package cookies

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/xcelera-dev/cli/internal/failure"
)

const (
	commentPrefixConstant          = "#"
	httpOnlyPrefixConstant         = "#HttpOnly_"
	fieldSeparatorConstant         = "\t"
	secureFlagValueConstant        = "TRUE"
	expectedFieldCountConstant     = 7
	expiredPreviewLimitConstant    = 5
	expiredPreviewSeparator        = ", "
	expiredPreviewEllipsisConstant = ", …"

	fieldCountErrorTemplateConstant = "Invalid Netscape cookie line %d in %s: expected 7 tab-separated fields"
	expiryErrorTemplateConstant     = "Invalid expiration epoch seconds at line %d in %s"
	expiredWarningTemplateConstant  = "⚠️ Dropped %d expired cookie(s) from %s: %s%s"
	readErrorTemplateConstant       = "Unable to read cookie file %q: %s"
)

const (
	domainFieldIndex = iota
	includeSubdomainsFieldIndex
	pathFieldIndex
	secureFieldIndex
	expiryFieldIndex
	nameFieldIndex
	valueFieldIndex
)

// Cookie is a single credential cookie attached to an audit request.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
}

// ParseResult holds the retained cookies and the advisory warnings produced while parsing.
type ParseResult struct {
	Cookies  []Cookie
	Warnings []string
}

// Parse reads Netscape cookie jar contents. Cookies whose expiry precedes now are dropped and
// reported through a single aggregated warning; an expiry of zero marks a session cookie.
func Parse(contents string, sourceLabel string, now time.Time) (ParseResult, error) {
	nowEpochSeconds := now.Unix()
	retainedCookies := make([]Cookie, 0)
	expiredCookieNames := make([]string, 0)

	for lineIndex, rawLine := range splitLines(contents) {
		lineNumber := lineIndex + 1
		line := strings.Trim(rawLine, " ")
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if strings.HasPrefix(line, commentPrefixConstant) && !strings.HasPrefix(line, httpOnlyPrefixConstant) {
			continue
		}

		fields := strings.Split(line, fieldSeparatorConstant)
		if len(fields) != expectedFieldCountConstant {
			return ParseResult{}, failure.Newf(failure.KindCookieFileFormat, fieldCountErrorTemplateConstant, lineNumber, sourceLabel)
		}

		expiryEpochSeconds, parseError := strconv.ParseInt(strings.TrimSpace(fields[expiryFieldIndex]), 10, 64)
		if parseError != nil {
			return ParseResult{}, failure.Wrapf(failure.KindCookieFileFormat, parseError, expiryErrorTemplateConstant, lineNumber, sourceLabel)
		}

		cookie := Cookie{
			Name:   fields[nameFieldIndex],
			Value:  fields[valueFieldIndex],
			Domain: fields[domainFieldIndex],
			Path:   fields[pathFieldIndex],
			Secure: strings.EqualFold(strings.TrimSpace(fields[secureFieldIndex]), secureFlagValueConstant),
		}
		if strings.HasPrefix(cookie.Domain, httpOnlyPrefixConstant) {
			cookie.HTTPOnly = true
			cookie.Domain = strings.TrimPrefix(cookie.Domain, httpOnlyPrefixConstant)
		}

		if expiryEpochSeconds > 0 && expiryEpochSeconds < nowEpochSeconds {
			expiredCookieNames = append(expiredCookieNames, cookie.Name)
			continue
		}

		retainedCookies = append(retainedCookies, cookie)
	}

	warnings := make([]string, 0, 1)
	if len(expiredCookieNames) > 0 {
		warnings = append(warnings, formatExpiredWarning(expiredCookieNames, sourceLabel))
	}

	return ParseResult{Cookies: retainedCookies, Warnings: warnings}, nil
}

// ReadFile loads and parses the cookie file at filePath, using the path as the source label.
func ReadFile(filePath string, now time.Time) (ParseResult, error) {
	contents, readError := os.ReadFile(filePath)
	if readError != nil {
		return ParseResult{}, failure.Wrapf(failure.KindCookieFileRead, readError, readErrorTemplateConstant, filePath, readError.Error())
	}
	return Parse(string(contents), filePath, now)
}

func splitLines(contents string) []string {
	lines := strings.Split(contents, "\n")
	return lo.Map(lines, func(line string, _ int) string {
		return strings.TrimSuffix(line, "\r")
	})
}

func formatExpiredWarning(expiredCookieNames []string, sourceLabel string) string {
	preview := strings.Join(lo.Subset(expiredCookieNames, 0, expiredPreviewLimitConstant), expiredPreviewSeparator)
	suffix := ""
	if len(expiredCookieNames) > expiredPreviewLimitConstant {
		suffix = expiredPreviewEllipsisConstant
	}
	return fmt.Sprintf(expiredWarningTemplateConstant, len(expiredCookieNames), sourceLabel, preview, suffix)
}
