package transcript

import (
	"path/filepath"
	"strings"
)

// EncodeProjectPath maps a canonical project path to the directory
// basename the runtime stores its transcripts under. The encoding is
// bit-exact with the runtime's own scheme: resolve symlinks, then
// replace every "/" and "_" with "-".
func EncodeProjectPath(canonicalPath string) string {
	replaced := strings.ReplaceAll(canonicalPath, "/", "-")
	replaced = strings.ReplaceAll(replaced, "_", "-")
	return replaced
}

// SessionPath returns the on-disk path of one session's transcript:
// <runtimeRoot>/projects/<encoded-project-path>/<session-id>.jsonl.
func SessionPath(runtimeRoot, encodedProjectPath, sessionID string) string {
	return filepath.Join(runtimeRoot, "projects", encodedProjectPath, sessionID+".jsonl")
}
