package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xcelera-dev/cli/cmd/cli"
)

const (
	readmeFileNameConstant     = "README.md"
	yamlFenceStartConstant     = "```yaml"
	yamlFenceEndConstant       = "```"
	configHeaderMarkerConstant = "# config.yaml"
)

func extractConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	contentBytes, readError := os.ReadFile(filepath.Join("..", readmeFileNameConstant))
	require.NoError(testInstance, readError)
	contentText := string(contentBytes)

	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, "README example missing config header marker")
	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, "README example missing yaml fence start")
	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, "README example missing yaml fence end")

	return contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex]
}

func TestReadmeConfigurationMatchesEmbeddedDefaults(testInstance *testing.T) {
	var documented map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(extractConfigurationSnippet(testInstance)), &documented))

	embeddedContent, _ := cli.EmbeddedDefaultConfiguration()
	var embedded map[string]any
	require.NoError(testInstance, yaml.Unmarshal(embeddedContent, &embedded))

	require.Equal(testInstance, embedded, documented)
}
