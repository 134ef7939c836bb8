package index

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adamchandra/ensime/internal/index/classfile"
)

// ClassEvent is enqueued on the writer actor's mailbox for every accepted
// class or method discovered during a classpath walk.
type ClassEvent struct {
	Result Result
}

// StopEvent marks the end of a classpath walk; the writer actor acknowledges
// it on Done after draining everything enqueued before it.
type StopEvent struct {
	Done chan struct{}
}

// WalkOptions filters which classes the walker hands to the writer.
type WalkOptions struct {
	OnlyInclude []*regexp.Regexp
	Exclude     []*regexp.Regexp
}

func (o WalkOptions) accepts(path string) bool {
	for _, re := range o.Exclude {
		if re.MatchString(path) {
			return false
		}
	}
	if len(o.OnlyInclude) == 0 {
		return true
	}
	for _, re := range o.OnlyInclude {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Walk descends every classpath entry (directories and jar/zip archives),
// parsing each class file's symbolic header and enqueuing an event on
// mailbox for every accepted (public, valid, include/exclude-passing) class
// and method. The walker is the producer half of the writer pipeline: it
// blocks only on reading class files and on the mailbox send itself, and
// the writer actor on the other end drains sequentially.
//
// Walk blocks until every classpath entry has been scanned, then sends a
// StopEvent and waits for the writer's acknowledgment before returning.
func Walk(classpath []string, opts WalkOptions, mailbox chan<- interface{}) error {
	for _, entry := range classpath {
		info, err := os.Stat(entry)
		if err != nil {
			log.Printf("index: classpath entry %s: %v", entry, err)
			continue
		}
		if info.IsDir() {
			if err := walkDir(entry, opts, mailbox); err != nil {
				return fmt.Errorf("index: walk dir %s: %w", entry, err)
			}
		} else if strings.HasSuffix(entry, ".jar") || strings.HasSuffix(entry, ".zip") {
			if err := walkArchive(entry, opts, mailbox); err != nil {
				return fmt.Errorf("index: walk archive %s: %w", entry, err)
			}
		}
	}

	done := make(chan struct{})
	mailbox <- StopEvent{Done: done}
	<-done
	return nil
}

func walkDir(root string, opts WalkOptions, mailbox chan<- interface{}) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".class") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			log.Printf("index: open %s: %v", path, err)
			return nil
		}
		defer f.Close()
		emitClassFile(f, path, opts, mailbox)
		return nil
	})
}

func walkArchive(path string, opts WalkOptions, mailbox chan<- interface{}) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.HasSuffix(zf.Name, ".class") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			log.Printf("index: open %s!%s: %v", path, zf.Name, err)
			continue
		}
		emitClassFile(rc, path+"!"+zf.Name, opts, mailbox)
		rc.Close()
	}
	return nil
}

func emitClassFile(r io.Reader, sourcePath string, opts WalkOptions, mailbox chan<- interface{}) {
	if !opts.accepts(sourcePath) {
		return
	}

	cf, err := classfile.Parse(r)
	if err != nil {
		log.Printf("index: parse %s: %v", sourcePath, err)
		return
	}

	typeName := strings.ReplaceAll(cf.ThisClass, "/", ".")
	localName := typeName
	if idx := strings.LastIndexByte(typeName, '.'); idx >= 0 {
		localName = typeName[idx+1:]
	}

	if cf.IsPublic() && validType(localName) {
		mailbox <- ClassEvent{Result: Result{
			Name:       typeName,
			LocalName:  localName,
			DeclaredAs: declaredAsFor(localName, cf.IsInterface()),
			Pos:        &Position{File: sourcePath, Offset: 0},
		}}
	}

	for _, m := range cf.Methods {
		if !m.IsPublic() || !validMethod(m.Name) {
			continue
		}
		mailbox <- ClassEvent{Result: Result{
			Name:       typeName + "." + m.Name,
			LocalName:  m.Name,
			DeclaredAs: DeclaredMethod,
			Owner:      typeName,
			Pos:        &Position{File: sourcePath, Offset: 0},
		}}
	}
}
