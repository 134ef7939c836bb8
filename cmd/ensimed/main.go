// ensimed is the project daemon: it loads a project's configuration, builds
// its on-disk symbol index, and serves the swank-rpc wire protocol over a
// TCP connection whose port is advertised via a port-file on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/adamchandra/ensime/internal/analyzer"
	"github.com/adamchandra/ensime/internal/analyzer/simulated"
	"github.com/adamchandra/ensime/internal/config"
	"github.com/adamchandra/ensime/internal/debug"
	"github.com/adamchandra/ensime/internal/debug/jdi"
	"github.com/adamchandra/ensime/internal/index"
	"github.com/adamchandra/ensime/internal/project"
	"github.com/adamchandra/ensime/internal/registry"
)

func main() {
	rootDir := flag.String("root", ".", "project root directory")
	configPath := flag.String("config", "", "path to the project config file (default: <root>/.ensime)")
	compilerBackend := flag.String("compiler-backend", "simulated", "presentation/java compiler backend: simulated")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	absRoot, err := filepath.Abs(*rootDir)
	if err != nil {
		log.Fatalf("resolve root dir: %v", err)
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(absRoot, ".ensime")
	}
	cfg, err := loadConfig(cfgPath, absRoot)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	cacheDir := resolveCacheDir(absRoot)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Fatalf("create cache dir: %v", err)
	}
	log.Printf("ensimed starting for %s (cache: %s)", cfg.Name, cacheDir)

	setupLogRotation(cacheDir)

	reg, err := registry.Open(filepath.Join(cacheDir, "ensimed.db"))
	if err != nil {
		log.Fatalf("open registry: %v", err)
	}
	defer reg.Close()

	idx := index.NewIndexer(filepath.Join(cacheDir, "index"))
	classpath := append(append([]string{}, cfg.CompileJars...), cfg.RuntimeJars...)
	if !cfg.DisableIndexOnStartup {
		if err := idx.Initialize(classpath, cfg.OnlyIncludeInIndex, cfg.ExcludeFromIndex, map[string]string{}); err != nil {
			log.Fatalf("initialize index: %v", err)
		}
	}

	pc, jc, err := newCompilerBackend(*compilerBackend)
	if err != nil {
		log.Fatal(err)
	}
	az := analyzer.New(pc, jc, idx)
	az.Start(context.Background())

	// The target VM backend is always the in-process simulated VM: there is
	// no Go implementation of the Java Debug Interface wire protocol in this
	// tree.
	dbg := debug.New(jdi.NewFake(nil))

	router := project.New(az, idx, dbg, reg)
	if err := router.RestoreBreakpoints(); err != nil {
		log.Printf("restore breakpoints: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	portFilePath := filepath.Join(cacheDir, "port")
	if err := os.WriteFile(portFilePath, []byte(fmt.Sprintf("%d", port)), 0600); err != nil {
		log.Fatalf("write port file: %v", err)
	}
	defer os.Remove(portFilePath)

	pidPath := filepath.Join(cacheDir, "ensimed.pid")
	os.WriteFile(pidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0600)
	defer os.Remove(pidPath)

	log.Printf("ensimed ready (pid %d, port %d, port-file %s)", os.Getpid(), port, portFilePath)

	go acceptLoop(ln, router)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Printf("received %v, shutting down", sig)

	ln.Close()
}

// loadConfig reads the project config file at path, falling back to a bare
// default configuration anchored at rootDir if no config file exists yet —
// a freshly created project has nothing to load until the client issues
// init-project.
func loadConfig(path, rootDir string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(rootDir), nil
	}
	return config.Load(path)
}

// acceptLoop hands each accepted connection to the same router instance:
// the router's write lock already serializes replies and events onto
// whichever conn is current, and a project daemon is expected to serve one
// editor client at a time.
func acceptLoop(ln net.Listener, router *project.Router) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		if err := router.Serve(conn); err != nil {
			log.Printf("ensimed: connection closed: %v", err)
		}
	}
}

// newCompilerBackend selects the PresentationCompiler/JavaCompiler pair the
// analyzer is built on. "simulated" is the only backend implemented today;
// any other name fails fast rather than silently falling back.
func newCompilerBackend(name string) (analyzer.PresentationCompiler, analyzer.JavaCompiler, error) {
	switch name {
	case "simulated":
		return simulated.PresentationCompiler{}, simulated.JavaCompiler{}, nil
	default:
		return nil, nil, fmt.Errorf("compiler backend %q not yet implemented", name)
	}
}

// resolveCacheDir honors ENSIMED_CACHE_DIR if set, otherwise anchors the
// cache under the project root's .ensime_cache. This is the one environment
// variable ensimed recognizes; the bleve index lives under its index/
// subfolder in place of the Lucene index directory an IDE client might
// otherwise expect.
func resolveCacheDir(rootDir string) string {
	if dir := os.Getenv("ENSIMED_CACHE_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(rootDir, ".ensime_cache")
}

// setupLogRotation redirects the standard logger through a rotating file
// under cacheDir, so a long-running daemon doesn't grow an unbounded log.
func setupLogRotation(cacheDir string) {
	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(cacheDir, "ensimed.log"),
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
}
