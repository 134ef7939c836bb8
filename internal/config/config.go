// Package config loads and merges the project configuration file: a single
// keyword-map written in the same symbolic-expression dialect as the wire
// protocol (see internal/wire).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adamchandra/ensime/internal/wire"
)

// Config is the immutable, fully-merged project configuration.
type Config struct {
	RootDir               string
	Name                  string
	Package               string
	Version               string
	CompileDeps           []string
	CompileJars           []string
	RuntimeDeps           []string
	RuntimeJars           []string
	TestDeps              []string
	SourceRoots           []string
	ReferenceSourceRoots  []string
	Target                string
	TestTarget            string
	CompilerArgs          []string
	BuilderArgs           []string
	JavaCompilerArgs      []string
	JavaCompilerVersion   string

	OnlyIncludeInIndex []*regexp.Regexp
	ExcludeFromIndex   []*regexp.Regexp

	DisableIndexOnStartup       bool
	DisableSourceLoadOnStartup  bool
	DisableScalaJarsOnClasspath bool

	FormattingPrefs map[string]interface{}
}

// DefaultConfig returns a zero-value configuration anchored at rootDir, for
// use when no config file exists. Load does not start from it: a loaded
// config carries only what the file sets.
func DefaultConfig(rootDir string) *Config {
	return &Config{
		RootDir: rootDir,
		Target:  filepath.Join(rootDir, "target"),
	}
}

// Load reads and parses the config file at path, then resolves
// :active-subproject against :subprojects if present.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	v, err := wire.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	top, ok := v.(wire.List)
	if !ok {
		return nil, fmt.Errorf("config %s: expected a keyword map", path)
	}
	m := wire.KeywordMap(top)

	merged, err := resolveSubproject(m)
	if err != nil {
		return nil, err
	}

	return build(merged)
}

// resolveSubproject merges :active-subproject's entry from :subprojects into
// the top-level map: list-valued keys concatenate, scalar keys are
// overridden by the subproject, and :depends-on-modules is merged
// transitively.
func resolveSubproject(m map[string]interface{}) (map[string]interface{}, error) {
	active, ok := m["active-subproject"].(string)
	if !ok || active == "" {
		return m, nil
	}
	subs, ok := m["subprojects"].(wire.List)
	if !ok {
		return m, nil
	}

	var subMap map[string]interface{}
	for _, raw := range subs {
		sl, ok := raw.(wire.List)
		if !ok {
			continue
		}
		sm := wire.KeywordMap(sl)
		if name, _ := sm["module-name"].(string); name == active {
			subMap = sm
			break
		}
	}
	if subMap == nil {
		return nil, fmt.Errorf("config: active-subproject %q not found in subprojects", active)
	}

	merged := make(map[string]interface{}, len(m))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range subMap {
		if existing, ok := merged[k]; ok {
			if el, ok1 := existing.(wire.List); ok1 {
				if vl, ok2 := v.(wire.List); ok2 {
					merged[k] = append(append(wire.List{}, el...), vl...)
					continue
				}
			}
		}
		merged[k] = v
	}

	// Transitively merge dependency module declarations named by
	// :depends-on-modules, concatenating their list-valued keys too.
	if deps, ok := merged["depends-on-modules"].(wire.List); ok {
		queue := append(wire.List{}, deps...)
		visited := map[string]bool{active: true}
		for len(queue) > 0 {
			depName, ok := queue[0].(string)
			queue = queue[1:]
			if !ok || visited[depName] {
				continue
			}
			visited[depName] = true
			for _, raw := range subs {
				sl, ok := raw.(wire.List)
				if !ok {
					continue
				}
				sm := wire.KeywordMap(sl)
				if name, _ := sm["module-name"].(string); name == depName {
					if next, ok := sm["depends-on-modules"].(wire.List); ok {
						queue = append(queue, next...)
					}
					for k, v := range sm {
						if vl, ok := v.(wire.List); ok {
							if existing, ok := merged[k].(wire.List); ok {
								merged[k] = append(append(wire.List{}, existing...), vl...)
							}
						}
					}
				}
			}
		}
	}

	return merged, nil
}

func build(m map[string]interface{}) (*Config, error) {
	c := &Config{}

	c.RootDir = str(m, "root-dir")
	c.Name = strOr(m, "name", strOr(m, "project-name", ""))
	c.Package = strOr(m, "package", strOr(m, "project-package", ""))
	c.Version = str(m, "version")
	c.Target = str(m, "target")
	c.TestTarget = str(m, "test-target")
	c.JavaCompilerVersion = str(m, "java-compiler-version")

	c.CompileDeps = strList(m, "compile-deps")
	c.CompileJars = strList(m, "compile-jars")
	c.RuntimeDeps = strList(m, "runtime-deps")
	c.RuntimeJars = strList(m, "runtime-jars")
	c.TestDeps = strList(m, "test-deps")
	c.SourceRoots = strListOr(m, "source-roots", strList(m, "sources"))
	c.ReferenceSourceRoots = strList(m, "reference-source-roots")
	c.CompilerArgs = strList(m, "compiler-args")
	c.BuilderArgs = strList(m, "builder-args")
	c.JavaCompilerArgs = strList(m, "java-compiler-args")

	c.DisableIndexOnStartup = boolFlag(m, "disable-index-on-startup")
	c.DisableSourceLoadOnStartup = boolFlag(m, "disable-source-load-on-startup")
	c.DisableScalaJarsOnClasspath = boolFlag(m, "disable-scala-jars-on-classpath")

	var err error
	if c.OnlyIncludeInIndex, err = regexList(m, "only-include-in-index"); err != nil {
		return nil, err
	}
	if c.ExcludeFromIndex, err = regexList(m, "exclude-from-index"); err != nil {
		return nil, err
	}

	if fp, ok := m["formatting-prefs"].(wire.List); ok {
		c.FormattingPrefs = wire.KeywordMap(fp)
	}

	if c.RootDir == "" {
		return nil, fmt.Errorf("config: :root-dir is required")
	}
	return c, nil
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func strOr(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func strList(m map[string]interface{}, key string) []string {
	l, ok := m[key].(wire.List)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func strListOr(m map[string]interface{}, key string, fallback []string) []string {
	if l := strList(m, key); len(l) > 0 {
		return l
	}
	return fallback
}

func boolFlag(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

func regexList(m map[string]interface{}, key string) ([]*regexp.Regexp, error) {
	l, ok := m[key].(wire.List)
	if !ok {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(l))
	for _, v := range l {
		s, ok := v.(string)
		if !ok {
			continue
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("config: bad regexp in %s: %w", key, err)
		}
		out = append(out, re)
	}
	return out, nil
}
