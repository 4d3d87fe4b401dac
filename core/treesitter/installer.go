package treesitter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adalundhe/weft/core/detect"
)

// Installer places grammar shared libraries into a single trusted
// directory, preferring prebuilt release artifacts and falling back to
// compiling the grammar's generated C sources.
type Installer struct {
	destDir   string
	client    *http.Client
	compilers []string
}

// InstallSource tags the provenance of an installed library.
type InstallSource string

const (
	SourceCached   InstallSource = "cached"
	SourcePrebuilt InstallSource = "prebuilt"
	SourceCompiled InstallSource = "compiled"
)

// InstallResult describes one completed installation.
type InstallResult struct {
	Name     string
	LibPath  string
	Source   InstallSource
	Duration time.Duration
}

// NewInstaller targets destDir, or the user-level grammar directory
// when destDir is empty.
func NewInstaller(destDir string) *Installer {
	if destDir == "" {
		if dataDir := weftDataDir(); dataDir != "" {
			destDir = filepath.Join(dataDir, "grammars")
		}
	}
	return &Installer{
		destDir:   destDir,
		client:    &http.Client{Timeout: 60 * time.Second},
		compilers: []string{"cc", "clang", "gcc"},
	}
}

// DestDir returns the install directory.
func (in *Installer) DestDir() string {
	return in.destDir
}

// Install ensures the named grammar's shared library is present in the
// install directory and reports where it came from.
func (in *Installer) Install(ctx context.Context, name string) (*InstallResult, error) {
	start := time.Now()

	if err := validateGrammarName(name); err != nil {
		return nil, err
	}
	info, ok := GetGrammarInfo(name)
	if !ok {
		return nil, fmt.Errorf("%w: no repository registered for %q", ErrGrammarUnavailable, name)
	}
	if in.destDir == "" {
		return nil, ErrNoInstallDir
	}

	libPath := filepath.Join(in.destDir, grammarLibName(name))
	if fileExists(libPath) {
		return installResult(name, libPath, SourceCached, start), nil
	}

	if err := os.MkdirAll(in.destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create install directory: %w", err)
	}

	if err := in.fetchPrebuilt(ctx, info, libPath); err == nil {
		return installResult(name, libPath, SourcePrebuilt, start), nil
	}

	if err := in.compileFromSource(ctx, info, libPath); err != nil {
		return nil, err
	}
	return installResult(name, libPath, SourceCompiled, start), nil
}

func installResult(name, libPath string, source InstallSource, start time.Time) *InstallResult {
	return &InstallResult{
		Name:     name,
		LibPath:  libPath,
		Source:   source,
		Duration: time.Since(start),
	}
}

// Installed reports whether the grammar's library already exists in
// the install directory.
func (in *Installer) Installed(name string) bool {
	if in.destDir == "" {
		return false
	}
	return fileExists(filepath.Join(in.destDir, grammarLibName(name)))
}

// Remove deletes the grammar's library from the install directory.
// Removing a grammar that is not installed is not an error.
func (in *Installer) Remove(name string) error {
	if err := validateGrammarName(name); err != nil {
		return err
	}
	if in.destDir == "" {
		return ErrNoInstallDir
	}
	err := os.Remove(filepath.Join(in.destDir, grammarLibName(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (in *Installer) fetchPrebuilt(ctx context.Context, info GrammarInfo, libPath string) error {
	for _, url := range prebuiltURLs(info) {
		if err := in.downloadTo(ctx, url, libPath); err == nil {
			return nil
		}
	}
	return ErrPrebuiltUnavailable
}

// prebuiltURLs lists release asset locations in preference order. Both
// layouts appear across grammar repositories.
func prebuiltURLs(info GrammarInfo) []string {
	asset := fmt.Sprintf("libtree-sitter-%s-%s-%s%s",
		info.Name, runtime.GOOS, runtime.GOARCH, grammarLibExt())
	return []string{
		fmt.Sprintf("https://%s/releases/latest/download/%s", info.Repository, asset),
		fmt.Sprintf("https://%s/releases/download/latest/%s", info.Repository, asset),
	}
}

func grammarLibExt() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

func (in *Installer) downloadTo(ctx context.Context, url, libPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := in.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d fetching %s", resp.StatusCode, url)
	}

	return writeLibrary(libPath, resp.Body)
}

// writeLibrary lands the library through a temp file so a failed
// download never looks like an installed grammar.
func writeLibrary(libPath string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(libPath), ".weft-grammar-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), libPath)
}

func (in *Installer) compileFromSource(ctx context.Context, info GrammarInfo, libPath string) error {
	compiler := in.findCompiler()
	if compiler == "" {
		return ErrCompilerNotFound
	}
	if detect.Which("git") == "" {
		return ErrGitNotFound
	}

	repoDir, err := cloneGrammarRepo(ctx, info.Repository)
	if err != nil {
		return err
	}
	defer os.RemoveAll(repoDir)

	srcDir, err := parserSourceDir(repoDir, info.Subdir)
	if err != nil {
		return err
	}

	return compileGrammar(ctx, compiler, srcDir, libPath)
}

func (in *Installer) findCompiler() string {
	for _, name := range in.compilers {
		if path := detect.Which(name); path != "" {
			return path
		}
	}
	return ""
}

func cloneGrammarRepo(ctx context.Context, repo string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "weft-grammar-*")
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", repoCloneURL(repo), tmpDir)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone %s: %s: %w", repo, strings.TrimSpace(string(out)), err)
	}
	return tmpDir, nil
}

func repoCloneURL(repo string) string {
	if strings.HasPrefix(repo, "https://") {
		return repo
	}
	return "https://" + repo + ".git"
}

// parserSourceDir locates the directory holding the generated parser.
// Multi-grammar repositories keep each grammar under its own subdir.
func parserSourceDir(repoDir, subdir string) (string, error) {
	var candidates []string
	if subdir != "" {
		candidates = append(candidates, filepath.Join(repoDir, subdir, "src"))
	}
	candidates = append(candidates, filepath.Join(repoDir, "src"), repoDir)

	for _, dir := range candidates {
		if fileExists(filepath.Join(dir, "parser.c")) {
			return dir, nil
		}
	}
	return "", ErrParserSourceMissing
}

func compileGrammar(ctx context.Context, compiler, srcDir, libPath string) error {
	args := []string{
		"-shared", "-fPIC", "-O2",
		"-I" + srcDir,
		"-o", libPath,
		filepath.Join(srcDir, "parser.c"),
	}
	if scanner := filepath.Join(srcDir, "scanner.c"); fileExists(scanner) {
		args = append(args, scanner)
	}

	cmd := exec.CommandContext(ctx, compiler, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compile grammar: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
