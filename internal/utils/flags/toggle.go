package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

const (
	toggleTrueValueConstant       = "true"
	toggleFalseValueConstant      = "false"
	toggleTypeNameConstant        = "bool"
	toggleParseErrorTemplate      = "invalid toggle value %q"
	toggleDefaultTruePlaceholder  = "<YES|no>"
	toggleDefaultFalsePlaceholder = "<yes|NO>"
	toggleUsageTemplateConstant   = "`%s` %s"
	toggleBareUsageTemplate       = "`%s`"
	longFlagPrefixConstant        = "--"
	shortFlagPrefixConstant       = "-"
	flagValueSeparatorConstant    = "="
	argumentTerminatorConstant    = "--"
)

var (
	trueToggleLiterals  = []string{toggleTrueValueConstant, "yes", "on", "1", "t", "y"}
	falseToggleLiterals = []string{toggleFalseValueConstant, "no", "off", "0", "f", "n"}

	toggleRegistryMutex sync.RWMutex
	toggleNames = map[string]struct{}{}
)

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off, and 1/0 values,
// written either as --flag=value or, after NormalizeToggleArguments, as --flag value.
// target may be nil when the value is read back through the flag set.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.VarP(newToggleValue(defaultValue, target), name, shorthand, usage)
	flag := flagSet.Lookup(name)
	flag.NoOptDefVal = toggleTrueValueConstant
	flag.Usage = toggleUsage(usage, defaultValue)

	toggleRegistryMutex.Lock()
	defer toggleRegistryMutex.Unlock()
	toggleNames[longFlagPrefixConstant+name] = struct{}{}
	if len(shorthand) > 0 {
		toggleNames[shortFlagPrefixConstant+shorthand] = struct{}{}
	}
}

// NormalizeToggleArguments joins a registered toggle with the value that follows it, so that
// "--verbose no" parses as "--verbose=no". Arguments after "--" are left alone.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}
		if isRegisteredToggle(current) && index+1 < len(arguments) && !strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func isRegisteredToggle(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	toggleRegistryMutex.RLock()
	defer toggleRegistryMutex.RUnlock()
	_, registered := toggleNames[argument]
	return registered
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDefaultFalsePlaceholder
	if defaultValue {
		placeholder = toggleDefaultTruePlaceholder
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleBareUsageTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplateConstant, placeholder, trimmedDescription)
}

type toggleValue struct {
	value  bool
	target *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{value: defaultValue, target: target}
}

func (toggle *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	toggle.value = parsedValue
	if toggle.target != nil {
		*toggle.target = parsedValue
	}
	return nil
}

func (toggle *toggleValue) String() string {
	if toggle == nil || !toggle.value {
		return toggleFalseValueConstant
	}
	return toggleTrueValueConstant
}

func (toggle *toggleValue) Type() string {
	return toggleTypeNameConstant
}

func parseToggle(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	switch {
	case len(normalizedValue) == 0, lo.Contains(trueToggleLiterals, normalizedValue):
		return true, nil
	case lo.Contains(falseToggleLiterals, normalizedValue):
		return false, nil
	default:
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
}
