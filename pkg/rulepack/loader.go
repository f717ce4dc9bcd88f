package rulepack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Loader reads rule packs from the file system.
// It supports single files and directory trees.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a new loader with the given configuration.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// Config returns the loader configuration.
func (l *Loader) Config() *LoaderConfig {
	return l.config
}

// Load reads path, which may be a file or a directory.
func (l *Loader) Load(path string) ([]*Pack, error) {
	isDir, err := l.IsDirectory(path)
	if err != nil {
		return nil, err
	}
	if isDir {
		return l.LoadDirectory(path)
	}
	pack, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*Pack{pack}, nil
}

// LoadPaths reads every path in order. Packs that loaded are returned along
// with an ErrorList describing the ones that did not.
func (l *Loader) LoadPaths(paths []string) ([]*Pack, error) {
	var packs []*Pack
	errList := &ErrorList{}

	for _, p := range paths {
		loaded, err := l.Load(p)
		packs = append(packs, loaded...)
		errList.Add(err)
	}

	return packs, errList.ToError()
}

// LoadFile loads a single pack file.
// It performs file size validation, UTF-8 validation, and YAML parsing.
func (l *Loader) LoadFile(path string) (*Pack, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{FilePath: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	pack, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	if pack.Language == "" {
		pack.Language = l.config.Language
	}
	return pack, nil
}

// LoadDirectory loads all pack files from dir recursively, in lexical order.
// It returns the packs that loaded and any errors encountered.
func (l *Loader) LoadDirectory(dir string) ([]*Pack, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.collectPackFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "directory holds no pack files", Cause: ErrNoPacks}
	}

	var packs []*Pack
	errList := &ErrorList{}

	for _, filePath := range files {
		pack, err := l.LoadFile(filePath)
		if err != nil {
			errList.Add(err)
			continue
		}
		packs = append(packs, pack)
	}

	if len(packs) == 0 && errList.HasErrors() {
		return nil, errList
	}
	if errList.HasErrors() {
		return packs, errList
	}
	return packs, nil
}

// collectPackFiles collects all pack file paths under dir.
func (l *Loader) collectPackFiles(dir string) ([]string, error) {
	var files []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && isHidden(d.Name()) && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{FilePath: path, Message: "failed to resolve symlink", Cause: err}
			}
			if visited[realPath] {
				return &LoadError{FilePath: path, Message: "symlink loop detected"}
			}
			visited[realPath] = true

			if !hasExtension(realPath, l.config.AllowedExtensions) {
				return nil
			}
			files = append(files, path)
			return nil
		}

		if !hasExtension(path, l.config.AllowedExtensions) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	return files, nil
}

// IsDirectory checks if the given path is a directory.
func (l *Loader) IsDirectory(path string) (bool, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &LoadError{FilePath: path, Message: "path does not exist", Cause: err}
		}
		return false, &LoadError{FilePath: path, Message: "failed to access path", Cause: err}
	}
	return fileInfo.IsDir(), nil
}

// Parse decodes a pack document. source names the document in errors.
func Parse(data []byte, source string) (*Pack, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(source, err)
	}
	if len(doc.Content) == 0 {
		return nil, &ParseError{FilePath: source, Message: "empty document"}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{FilePath: source, Line: root.Line, Message: "pack must be a mapping"}
	}

	pack := &Pack{}
	if err := root.Decode(pack); err != nil {
		return nil, parseError(source, err)
	}
	pack.Source = source

	if pack.Version == 0 {
		pack.Version = CurrentVersion
	}
	if pack.Version != CurrentVersion {
		return nil, &PackError{
			Source:  source,
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d", pack.Version),
		}
	}

	annotateLines(root, pack)
	return pack, nil
}

// annotateLines copies each rule's source line from the node tree.
func annotateLines(root *yaml.Node, pack *Pack) {
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "rules" {
			continue
		}
		seq := root.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return
		}
		for j, item := range seq.Content {
			if j < len(pack.Rules) {
				pack.Rules[j].Line = item.Line
			}
		}
		return
	}
}

var lineRe = regexp.MustCompile(`line (\d+)`)

func parseError(source string, err error) *ParseError {
	pe := &ParseError{FilePath: source, Message: "YAML parsing failed", Cause: err}
	if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		pe.Message = strings.TrimPrefix(err.Error(), "yaml: ")
	}
	return pe
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range exts {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
