package gitrepo

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xcelera-dev/cli/internal/execshell"
)

const unsupportedBackendTemplateConstant = "unsupported source backend %q (expected git or library)"

// UnsupportedBackendError reports an unknown source backend name.
type UnsupportedBackendError struct {
	Backend string
}

// Error describes the unsupported backend.
func (backendError UnsupportedBackendError) Error() string {
	return fmt.Sprintf(unsupportedBackendTemplateConstant, backendError.Backend)
}

// ParseBackend normalizes a backend name. An empty name selects the git command backend.
func ParseBackend(backendName string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(backendName))) {
	case "", BackendGitCommand:
		return BackendGitCommand, nil
	case BackendLibrary:
		return BackendLibrary, nil
	default:
		return "", UnsupportedBackendError{Backend: backendName}
	}
}

// NewInferrer builds the inferrer for the selected backend.
func NewInferrer(backend Backend, logger *zap.Logger, workingDirectory string) (Inferrer, error) {
	switch backend {
	case BackendLibrary:
		return NewLibraryInferrer(workingDirectory), nil
	case BackendGitCommand, "":
		if logger == nil {
			logger = zap.NewNop()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
		if executorError != nil {
			return nil, executorError
		}
		return NewCommandInferrer(shellExecutor, workingDirectory), nil
	default:
		return nil, UnsupportedBackendError{Backend: string(backend)}
	}
}
