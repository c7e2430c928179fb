package utils

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	pathutils "github.com/xcelera-dev/cli/internal/utils/path"
)

const (
	configurationKeySeparatorConstant      = "."
	environmentKeySeparatorConstant        = "_"
	configurationReadErrorMessage          = "failed to read configuration"
	configurationUnmarshalErrorMessage     = "failed to parse configuration"
	embeddedConfigurationMergeErrorMessage = "failed to merge embedded configuration"
)

// ConfigurationLoader layers embedded defaults, a configuration file, and environment variables
// through viper. Later layers win: defaults, embedded, file, then PREFIX_SECTION_KEY variables.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	homeExpander              *pathutils.HomeExpander
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration reports which file, if any, supplied configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader searching searchPaths, which may start with ~.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
		homeExpander:      pathutils.NewHomeExpander(),
	}
}

// SetHomeExpander replaces the expander used for ~ in search paths.
func (loader *ConfigurationLoader) SetHomeExpander(homeExpander *pathutils.HomeExpander) {
	if loader == nil || homeExpander == nil {
		return
	}
	loader.homeExpander = homeExpander
}

// SetEmbeddedConfiguration stores configuration merged beneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
}

// LoadConfiguration decodes the layered configuration into targetConfiguration. An explicit
// configurationFilePath must exist; a file missing from the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.configurationName)

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		viperInstance.SetConfigType(loader.embeddedType())
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, errors.Wrap(mergeError, embeddedConfigurationMergeErrorMessage)
		}
	}
	viperInstance.SetConfigType(loader.configurationType)

	for _, searchPath := range loader.homeExpander.ExpandAll(loader.searchPaths) {
		viperInstance.AddConfigPath(searchPath)
	}
	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(loader.homeExpander.Expand(configurationFilePath))
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeySeparatorConstant, environmentKeySeparatorConstant))
	viperInstance.AutomaticEnv()

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, errors.Wrap(readError, configurationReadErrorMessage)
		}
	}

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, errors.Wrap(unmarshalError, configurationUnmarshalErrorMessage)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) embeddedType() string {
	if len(loader.embeddedConfigurationType) > 0 {
		return loader.embeddedConfigurationType
	}
	return loader.configurationType
}
