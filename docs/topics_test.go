package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced code block info strings executed by TestCodeBlocks.
const (
	bashSetup    = "bash setup"    // starts a new shop in a new directory
	bashRun      = "bash run"      // output is compared to the next console check
	consoleCheck = "console check" // expected output of the previous run
	bashCheck    = "bash check"    // must succeed
)

// TestTopics checks that readme.md lists every topic and only topics.
func TestTopics(t *testing.T) {
	f, err := os.Open(Index + ".md")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	item := regexp.MustCompile(`^\*\s+([^:]+):`)
	var listed []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if m := item.FindStringSubmatch(scanner.Text()); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}

	for _, name := range listed {
		if _, err := Topic(name); err != nil {
			t.Errorf("listed topic %q: %v", name, err)
		}
	}

	topics, err := Topics()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range topics {
		if !slices.Contains(listed, name) {
			t.Errorf("topic %q is not listed in %s.md", name, Index)
		}
	}
}

func TestTopic(t *testing.T) {
	all, err := Topic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, heading := range []string{"# Selling", "# Catalog", "# Reports", "# Configuration", "# Storage"} {
		if !strings.Contains(all, heading) {
			t.Errorf("Topic(*) does not contain %q", heading)
		}
	}
	if strings.Contains(all, "`ksr` is the point of sale") {
		t.Error("Topic(*) contains the index")
	}
	if _, err := Topic("nope"); err == nil {
		t.Error("Topic(nope) want error")
	}
}

func TestCodeBlocks(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs ksr")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	bin := buildKsr(t)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			runBlocks(t, bin, file)
		})
	}
}

// block is an executable fenced code block.
type block struct {
	kind    string
	content string
	file    string
	line    int
}

func (b *block) String() string { return fmt.Sprintf("%s:%d: %s", b.file, b.line, b.kind) }

// buildKsr builds the ksr command and returns the directory holding it.
func buildKsr(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := exec.Command("go", "build", "-o", filepath.Join(dir, "ksr"), "../ksr/").CombinedOutput()
	if err != nil {
		t.Fatalf("cannot build ksr: %v\n%s", err, out)
	}
	return dir
}

// parseBlocks returns the executable blocks of a markdown file.
func parseBlocks(t *testing.T, file string) []*block {
	t.Helper()
	src, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var blocks []*block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(src))
		switch kind {
		case bashSetup, bashRun, consoleCheck, bashCheck:
		default:
			return ast.WalkContinue, nil
		}
		var content bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(src))
		}
		blocks = append(blocks, &block{
			kind:    kind,
			content: content.String(),
			file:    file,
			line:    bytes.Count(src[:fcb.Info.Segment.Start], []byte("\n")) + 1,
		})
		return ast.WalkContinue, nil
	})
	return blocks
}

// runner executes the blocks of a file in order.
type runner struct {
	env  []string
	dir  string
	last string // output of the last run
}

// environ returns the environment without KASIR_ variables, with bin first in
// the PATH and no network access for the weather.
func environ(bin string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "KASIR_") || strings.HasPrefix(kv, "PATH=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env,
		"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
		"KASIR_WEATHER_ENABLED=false",
	)
}

func (r *runner) run(t *testing.T, b *block) {
	t.Helper()
	if b.kind == consoleCheck {
		got := strings.TrimSpace(strings.ReplaceAll(r.last, "\t", "        "))
		if want := strings.TrimSpace(b.content); got != want {
			t.Errorf("%v: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q", b, got, want, got, want)
		}
		return
	}
	if b.kind == bashSetup {
		r.dir = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+b.content)
	cmd.Dir = r.dir
	cmd.Env = r.env
	out, err := cmd.CombinedOutput()
	if b.kind == bashRun {
		r.last = string(out)
	}
	if err == nil {
		return
	}
	if b.kind == bashCheck {
		t.Errorf("%v failed: %v\n%s", b, err, out)
		return
	}
	t.Fatalf("%v failed: %v\n%s", b, err, out)
}

func runBlocks(t *testing.T, bin, file string) {
	t.Helper()
	blocks := parseBlocks(t, file)
	if len(blocks) == 0 {
		return
	}
	r := runner{env: environ(bin), dir: t.TempDir()}
	for _, b := range blocks {
		r.run(t, b)
	}
}
