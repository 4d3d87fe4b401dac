package treesitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"github.com/ebitengine/purego"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

var validGrammarName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Grammar shared objects must expose a language built against a
// compatible tree-sitter ABI.
const (
	minSupportedABI = 13
	maxSupportedABI = 15
)

type GrammarHandle struct {
	libHandle uintptr
	langPtr   unsafe.Pointer
	name      string
	checksum  string
}

// GrammarLoader resolves grammar names to shared libraries found in
// trusted directories and memoizes both successes and failures. A
// grammar that fails once stays failed for the process lifetime.
type GrammarLoader struct {
	grammars       map[string]*GrammarHandle
	failedGrammars map[string]struct{}
	trustedDirs    []string
	checksums      map[string]string
	requireVerify  bool
	mu             sync.RWMutex
}

type LoaderOption func(*GrammarLoader)

// WithTrustedDir prepends a directory to the library search path.
func WithTrustedDir(dir string) LoaderOption {
	return func(gl *GrammarLoader) {
		if abs, err := filepath.Abs(dir); err == nil {
			gl.trustedDirs = append([]string{abs}, gl.trustedDirs...)
		}
	}
}

func WithChecksum(name, sha256sum string) LoaderOption {
	return func(gl *GrammarLoader) {
		gl.checksums[name] = sha256sum
	}
}

func WithRequireVerification(require bool) LoaderOption {
	return func(gl *GrammarLoader) {
		gl.requireVerify = require
	}
}

func NewGrammarLoader(opts ...LoaderOption) *GrammarLoader {
	gl := &GrammarLoader{
		grammars:       make(map[string]*GrammarHandle),
		failedGrammars: make(map[string]struct{}),
		trustedDirs:    defaultTrustedDirs(),
		checksums:      make(map[string]string),
		requireVerify:  false,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

var globalLoader = NewGrammarLoader()

func defaultTrustedDirs() []string {
	dirs := []string{}

	if dataDir := weftDataDir(); dataDir != "" {
		grammarDir := filepath.Join(dataDir, "grammars")
		if abs, err := filepath.Abs(grammarDir); err == nil {
			dirs = append(dirs, abs)
		}
	}

	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs, "/opt/homebrew/lib", "/usr/local/lib")
	case "linux":
		dirs = append(dirs, "/usr/lib", "/usr/local/lib")
	}

	return dirs
}

func weftDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "weft")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "weft")
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "weft")
		}
		return filepath.Join(home, "AppData", "Roaming", "weft")
	default:
		return filepath.Join(home, ".local", "share", "weft")
	}
}

// Load resolves a grammar to a usable language, loading its shared
// library on first use.
func (gl *GrammarLoader) Load(name string) (*sitter.Language, error) {
	if err := validateGrammarName(name); err != nil {
		return nil, err
	}

	gl.mu.RLock()
	if h, ok := gl.grammars[name]; ok {
		gl.mu.RUnlock()
		return sitter.NewLanguage(h.langPtr), nil
	}
	if _, failed := gl.failedGrammars[name]; failed {
		gl.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q previously failed to load", ErrGrammarUnavailable, name)
	}
	gl.mu.RUnlock()

	gl.mu.Lock()
	defer gl.mu.Unlock()

	if h, ok := gl.grammars[name]; ok {
		return sitter.NewLanguage(h.langPtr), nil
	}
	if _, failed := gl.failedGrammars[name]; failed {
		return nil, fmt.Errorf("%w: %q previously failed to load", ErrGrammarUnavailable, name)
	}

	handle, err := gl.loadLibrarySafe(name)
	if err != nil {
		gl.failedGrammars[name] = struct{}{}
		return nil, err
	}

	gl.grammars[name] = handle
	return sitter.NewLanguage(handle.langPtr), nil
}

func validateGrammarName(name string) error {
	if !validGrammarName.MatchString(name) {
		return fmt.Errorf("%w: %q must be 1-64 lowercase alphanumeric chars", ErrInvalidGrammarName, name)
	}
	return nil
}

func (gl *GrammarLoader) loadLibrarySafe(name string) (*GrammarHandle, error) {
	libPath, err := gl.findAndValidateLibrary(name)
	if err != nil {
		return nil, err
	}

	checksum, err := gl.verifyLibrary(name, libPath)
	if err != nil {
		return nil, err
	}

	lib, err := purego.Dlopen(libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", libPath, err)
	}

	var langFunc func() unsafe.Pointer
	purego.RegisterLibFunc(&langFunc, lib, "tree_sitter_"+name)

	ptr := langFunc()
	if ptr == nil {
		purego.Dlclose(lib)
		return nil, fmt.Errorf("tree_sitter_%s returned null", name)
	}

	if err := validateABIVersion(ptr); err != nil {
		purego.Dlclose(lib)
		return nil, err
	}

	return &GrammarHandle{
		libHandle: lib,
		langPtr:   ptr,
		name:      name,
		checksum:  checksum,
	}, nil
}

func validateABIVersion(langPtr unsafe.Pointer) error {
	version := sitter.NewLanguage(langPtr).AbiVersion()
	if version < minSupportedABI || version > maxSupportedABI {
		return fmt.Errorf("%w: version %d", ErrIncompatibleABI, version)
	}
	return nil
}

func (gl *GrammarLoader) findAndValidateLibrary(name string) (string, error) {
	libName := grammarLibName(name)

	for _, dir := range gl.trustedDirs {
		if err := validateDirectory(dir); err != nil {
			continue
		}

		path := filepath.Join(dir, libName)
		if err := validateLibraryFile(path, dir); err != nil {
			continue
		}

		return path, nil
	}

	return "", fmt.Errorf("%w: %q not in any trusted directory", ErrGrammarNotFound, name)
}

func validateDirectory(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return err
	}

	info, err := os.Stat(realDir)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	if isWorldWritable(info) {
		return fmt.Errorf("world-writable directory rejected: %s", dir)
	}

	return nil
}

func validateLibraryFile(path, trustedDir string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return err
	}

	absTrusted, _ := filepath.Abs(trustedDir)
	realTrusted, _ := filepath.EvalSymlinks(absTrusted)

	if !isSubpath(realPath, realTrusted) {
		return fmt.Errorf("path escapes trusted directory: %s", path)
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("expected file, got directory: %s", path)
	}

	if isWorldWritable(info) {
		return fmt.Errorf("world-writable file rejected: %s", path)
	}

	return nil
}

func isSubpath(child, parent string) bool {
	absChild, err := filepath.Abs(child)
	if err != nil {
		return false
	}
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return false
	}

	absChild = filepath.Clean(absChild)
	absParent = filepath.Clean(absParent)

	if absChild == absParent {
		return true
	}

	parentWithSep := absParent
	if !strings.HasSuffix(parentWithSep, string(filepath.Separator)) {
		parentWithSep += string(filepath.Separator)
	}

	return strings.HasPrefix(absChild, parentWithSep)
}

func isWorldWritable(info os.FileInfo) bool {
	if runtime.GOOS == "windows" {
		return false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return stat.Mode&0002 != 0
}

func (gl *GrammarLoader) verifyLibrary(name, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read library: %w", err)
	}

	hash := sha256.Sum256(data)
	checksum := hex.EncodeToString(hash[:])

	if expected, ok := gl.checksums[name]; ok {
		if checksum != expected {
			return "", fmt.Errorf("%w: %s expected %s, got %s", ErrChecksumMismatch, name, expected, checksum)
		}
	} else if gl.requireVerify {
		return "", fmt.Errorf("%w: no checksum registered for %s", ErrChecksumMismatch, name)
	}

	return checksum, nil
}

func grammarLibName(name string) string {
	switch runtime.GOOS {
	case "darwin":
		return "libtree-sitter-" + name + ".dylib"
	case "windows":
		return "tree-sitter-" + name + ".dll"
	default:
		return "libtree-sitter-" + name + ".so"
	}
}

func (gl *GrammarLoader) Unload(name string) error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	h, ok := gl.grammars[name]
	if !ok {
		return nil
	}

	if h.libHandle != 0 {
		purego.Dlclose(h.libHandle)
	}
	delete(gl.grammars, name)
	return nil
}

func (gl *GrammarLoader) RegisterChecksum(name, sha256sum string) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.checksums[name] = sha256sum
}

func (gl *GrammarLoader) AddTrustedDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	if err := validateDirectory(abs); err != nil {
		return fmt.Errorf("directory validation failed: %w", err)
	}

	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.trustedDirs = append([]string{abs}, gl.trustedDirs...)
	return nil
}

// Available reports whether a grammar library can be located without
// loading it.
func (gl *GrammarLoader) Available(name string) bool {
	if err := validateGrammarName(name); err != nil {
		return false
	}

	gl.mu.RLock()
	defer gl.mu.RUnlock()

	if _, ok := gl.grammars[name]; ok {
		return true
	}
	if _, failed := gl.failedGrammars[name]; failed {
		return false
	}

	_, err := gl.findAndValidateLibrary(name)
	return err == nil
}

// LoadedGrammars returns the checksum of every loaded grammar by name.
func (gl *GrammarLoader) LoadedGrammars() map[string]string {
	gl.mu.RLock()
	defer gl.mu.RUnlock()
	result := make(map[string]string, len(gl.grammars))
	for name, h := range gl.grammars {
		result[name] = h.checksum
	}
	return result
}

func LoadGrammar(name string) (*sitter.Language, error) {
	return globalLoader.Load(name)
}

func RegisterGrammarChecksum(name, sha256sum string) {
	globalLoader.RegisterChecksum(name, sha256sum)
}

func AddTrustedGrammarDir(dir string) error {
	return globalLoader.AddTrustedDir(dir)
}

func IsGrammarAvailable(name string) bool {
	return globalLoader.Available(name)
}
