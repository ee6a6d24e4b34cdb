package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue   = "true"
	toggleFalseCanonicalValue  = "false"
	toggleTypeNameConstant     = "bool"
	toggleParseErrorTemplate   = "invalid toggle value %q (expected yes/no, on/off, true/false, 1/0)"
	toggleYesLiteralConstant   = "yes"
	toggleNoLiteralConstant    = "no"
	longFlagPrefixConstant     = "--"
	shortFlagPrefixConstant    = "-"
	flagValueSeparatorConstant = "="
)

var toggleLiterals = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

// toggleRegistry remembers which flag names accept a separate yes/no argument.
type toggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleRegistry{names: map[string]struct{}{}, shorthands: map[string]struct{}{}}

func (registry *toggleRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

func (registry *toggleRegistry) contains(name string, long bool) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	if long {
		_, exists := registry.names[name]
		return exists
	}
	_, exists := registry.shorthands[name]
	return exists
}

// AddToggleFlag registers a boolean flag that accepts "--name", "--name=no" and "--name no".
// The value can be read back with FlagSet.GetBool; target may be nil.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleFlagValue{currentValue: defaultValue, target: target}
	if target != nil {
		*target = defaultValue
	}
	flag := flagSet.VarPF(value, name, shorthand, usage)
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	registeredToggles.register(name, shorthand)
}

func formatToggleUsage(description string, defaultValue bool) string {
	defaultChoice := toggleNoLiteralConstant
	if defaultValue {
		defaultChoice = toggleYesLiteralConstant
	}
	return FormatChoiceUsage(defaultChoice, []string{toggleYesLiteralConstant, toggleNoLiteralConstant}, description)
}

// NormalizeToggleArguments joins "--toggle value" into "--toggle=value" for registered toggles so pflag parses the value.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if index+1 < len(arguments) && isBareToggle(current) && !strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

// isBareToggle reports whether argument names a registered toggle without an inline value.
func isBareToggle(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}
	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		return registeredToggles.contains(strings.TrimPrefix(argument, longFlagPrefixConstant), true)
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		return len(shorthand) == 1 && registeredToggles.contains(shorthand, false)
	}
	return false
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func (value *toggleFlagValue) Set(rawValue string) error {
	trimmedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(trimmedValue) == 0 {
		trimmedValue = toggleTrueCanonicalValue
	}
	parsedValue, known := toggleLiterals[trimmedValue]
	if !known {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleTypeNameConstant
}
