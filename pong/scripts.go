package pong

import (
	"embed"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

// ScriptDir is searched before the embedded scripts, so a running host picks
// up edits without a rebuild.
var ScriptDir = filepath.Join("pong", "scripts")

// DefaultScript is the CPU paddle used when a host asks for a scripted side
// without naming a script.
const DefaultScript = "cpu"

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(filepath.Join(ScriptDir, filepath.FromSlash(clean))); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(path.Join("scripts", clean))
}

func cleanScriptPath(name string) string {
	s := filepath.ToSlash(name)
	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}
	if path.Ext(s) != ".tengo" {
		s += ".tengo"
	}
	return s
}

// ScriptName maps a changed path back to the name LoadScript accepts, or ""
// when the file is not a script.
func ScriptName(p string) string {
	base := filepath.Base(p)
	if !strings.EqualFold(filepath.Ext(base), ".tengo") {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
