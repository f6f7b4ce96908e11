//go:build ignore

// build.go - Digital Transformation Index build system
// Usage: go run build.go [-target=TARGET]
// Targets: all, web, cli, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const module = "dtindex"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Race    bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// Executable names (key = source dir name under cmd/, value = output name)
	executables = map[string]string{
		"web":     "dtindex-web",
		"dtindex": "dtindex",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); os.IsNotExist(err) {
		panic(fmt.Sprintf("go.mod not found in %s. Run the build from the repository root.", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	race := flag.Bool("race", false, "Run tests with the race detector")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		Race:    *race,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web":
		buildExecutable("web", ctx)
	case "cli":
		buildExecutable("dtindex", ctx)
	case "clean":
		clean()
	case "test":
		runTests(ctx)
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "==========================================" + colorReset)
	fmt.Println(colorCyan + "  Digital Transformation Index - Build    " + colorReset)
	fmt.Println(colorCyan + "==========================================" + colorReset)
}

func printInfo(msg string) {
	fmt.Println(colorBlue + "[INFO] " + colorReset + msg)
}

func printSuccess(msg string) {
	fmt.Println(colorGreen + "[OK] " + colorReset + msg)
}

func printError(msg string) {
	fmt.Println(colorRed + "[ERROR] " + colorReset + msg)
}

func printWarning(msg string) {
	fmt.Println(colorYellow + "[WARN] " + colorReset + msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")

	if err := checkPrerequisites(); err != nil {
		printError(fmt.Sprintf("Prerequisites check failed: %v", err))
		os.Exit(1)
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	for name := range executables {
		buildExecutable(name, ctx)
	}
	copyConfigFiles()

	printSuccess("All components built successfully!")
}

// buildExecutable compiles ./cmd/<name> into dist/ with version information stamped in
func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s (%s/%s)...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, sizeMB))
	}
}

// gitCommit returns the short HEAD hash, or "unknown" outside a git checkout
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil && !os.IsNotExist(err) {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(ctx *BuildContext) {
	printInfo("Running Go tests...")
	args := []string{"test"}
	if ctx.Race {
		args = append(args, "-race")
	}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// buildRelease builds every binary for the common desktop and server targets
func buildRelease(ctx *BuildContext) {
	printInfo("Building release binaries...")
	runTests(ctx)

	platforms := [][2]string{
		{"linux", "amd64"},
		{"linux", "arm64"},
		{"darwin", "arm64"},
		{"windows", "amd64"},
	}
	for _, p := range platforms {
		release := *ctx
		release.GOOS, release.GOARCH = p[0], p[1]
		saved := distDir
		distDir = filepath.Join(saved, p[0]+"-"+p[1])
		if err := os.MkdirAll(distDir, 0o755); err != nil {
			printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
			os.Exit(1)
		}
		for name := range executables {
			buildExecutable(name, &release)
		}
		copyConfigFiles()
		distDir = saved
	}
	printSuccess("Release binaries written to " + distDir)
}

func checkPrerequisites() error {
	if _, err := exec.LookPath("go"); err != nil {
		return fmt.Errorf("go toolchain not found in PATH")
	}
	return nil
}

// copyConfigFiles places the sample configuration next to the binaries
func copyConfigFiles() {
	src := filepath.Join(rootDir, "config.example.yaml")
	data, err := os.ReadFile(src)
	if err != nil {
		printWarning("No config.example.yaml to copy")
		return
	}
	if err := os.WriteFile(filepath.Join(distDir, "config.yaml"), data, 0o644); err != nil {
		printWarning(fmt.Sprintf("Failed to copy config: %v", err))
	}
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-race] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all      Build the web server and the CLI into dist/")
	fmt.Println("  web      Build the web server (cmd/web)")
	fmt.Println("  cli      Build the command line report (cmd/dtindex)")
	fmt.Println("  clean    Remove dist/")
	fmt.Println("  test     Run the Go tests")
	fmt.Println("  release  Cross-compile every binary")
}
