package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/linkverify"
	"git.home.luguber.info/inful/mdxsite/internal/manifest"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
	"git.home.luguber.info/inful/mdxsite/internal/page"
	"git.home.luguber.info/inful/mdxsite/internal/render"
	"git.home.luguber.info/inful/mdxsite/internal/site"
	"git.home.luguber.info/inful/mdxsite/internal/testutil/testutils"
)

const (
	indexDoc = `%{"type": "index"}%`

	helloDoc = `%{"type": "article", "title": "Hello World", "date": "Jan 05, 2024"}%
# Introduction

Text with a ` + "`@note first note`" + ` and ` + "`code`" + `.

` + "```@main.go\nfmt.Println(\"hi\")\n```"

	partOneDoc = `%{"type": "article-series", "title": "Build A Compiler", "date": "Feb 01, 2024",
  "series": {"series_name": "Compilers", "article_name": "Lexing", "number": 1}}%
Tokens ` + "`@note second note`" + `.`

	partTwoDoc = `%{"type": "article-series", "title": "Build A Compiler", "date": "Feb 08, 2024",
  "series": {"series_name": "Compilers", "article_name": "Parsing", "number": 2}}%
Back to <a href="/articles/build-a-compiler-1-02-01-24.html">part one</a>.`
)

const (
	helloLink   = "/articles/hello-world-01-05-24.html"
	partOneLink = "/articles/build-a-compiler-1-02-01-24.html"
	partTwoLink = "/articles/build-a-compiler-2-02-08-24.html"
)

func validSite() map[string]string {
	return map[string]string{
		"index.mdx":               indexDoc,
		"posts/hello.mdx":         helloDoc,
		"posts/compiler/1.mdx":    partOneDoc,
		"posts/compiler/2.mdx":    partTwoDoc,
		"style.css":               "body { margin: 0; }",
		"favicon.png":             "\x89PNG",
		"posts/compiler/diag.svg": "<svg/>",
	}
}

func testConfig(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.Directory = testutils.WriteTree(t, files)
	cfg.Output.Directory = filepath.Join(t.TempDir(), "public")
	return cfg
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	return testutils.NewFileAssertions(t, cfg.Output.Directory).Read(rel)
}

type fakeRecorder struct {
	stages   map[string]metrics.ResultLabel
	outcomes []metrics.BuildOutcomeLabel
	pages    map[string]int
	notes    int
	assets   int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{stages: map[string]metrics.ResultLabel{}, pages: map[string]int{}}
}

func (f *fakeRecorder) ObserveStageDuration(string, time.Duration) {}
func (f *fakeRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	f.stages[stage] = result
}
func (f *fakeRecorder) ObserveBuildDuration(time.Duration) {}
func (f *fakeRecorder) IncBuildOutcome(outcome metrics.BuildOutcomeLabel) {
	f.outcomes = append(f.outcomes, outcome)
}
func (f *fakeRecorder) AddPages(kind string, n int) { f.pages[kind] += n }
func (f *fakeRecorder) AddNotes(n int)              { f.notes += n }
func (f *fakeRecorder) AddAssets(n int)             { f.assets += n }

func TestRun_BuildsSite(t *testing.T) {
	cfg := testConfig(t, validSite())
	rec := newFakeRecorder()

	res, err := NewService().WithRecorder(rec).Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Status.IsSuccess())
	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, 4, res.Documents)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, map[page.Kind]int{page.KindIndex: 1, page.KindArticle: 3}, res.PagesByKind)
	assert.Equal(t, 3, res.Assets)
	assert.Equal(t, 2, res.Notes)

	var stages []string
	for _, st := range res.Stages {
		stages = append(stages, st.Name)
	}
	assert.Equal(t, []string{StageDiscover, StageCollect, StageRender, StageAssets, StageVerify, StageManifest, StageFinalize}, stages)

	index := readOutput(t, cfg, page.IndexLink)
	assert.Contains(t, index, `href="`+helloLink+`"`)
	assert.Contains(t, index, "Build A Compiler / Part 2 – Parsing")
	// Newest first.
	assert.Less(t, strings.Index(index, partTwoLink), strings.Index(index, helloLink))

	// Pages render in source path order, so part one numbers the first note.
	hello := readOutput(t, cfg, helloLink)
	assert.Contains(t, hello, `id="article-note-2"`)
	assert.Contains(t, hello, "in main.go")
	assert.Contains(t, hello, "fmt.Println(&#34;hi&#34;)")

	partOne := readOutput(t, cfg, partOneLink)
	assert.Contains(t, partOne, `id="article-note-1"`)
	assert.Contains(t, partOne, "left-bar-item-current")

	assert.Equal(t, "<svg/>", readOutput(t, cfg, "posts/compiler/diag.svg"))

	m, err := manifest.FromJSON([]byte(readOutput(t, cfg, manifest.FileName)))
	require.NoError(t, err)
	assert.Equal(t, res.BuildID, m.BuildID)
	require.Len(t, m.Pages, 4)
	assert.Equal(t, partOneLink, m.Pages[0].Link)
	assert.Equal(t, "posts/compiler/1.mdx", m.Pages[0].Source)
	assert.Equal(t, manifest.Hash([]byte(partOne)), m.Pages[0].Hash)
	require.Len(t, m.Assets, 3)
	assert.Equal(t, "favicon.png", m.Assets[0].Path)

	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, rec.outcomes)
	assert.Equal(t, map[string]int{"index": 1, "article": 3}, rec.pages)
	assert.Equal(t, 2, rec.notes)
	assert.Equal(t, 3, rec.assets)
	assert.Equal(t, metrics.ResultSuccess, rec.stages[StageFinalize])

	assert.Contains(t, res.Summary(), "built 4 page(s) (3 article, 1 index), 3 asset(s), 2 note(s)")
}

func TestRun_ReplacesOutputAndKeepsPreservedEntries(t *testing.T) {
	cfg := testConfig(t, validSite())
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Output.Directory, ".git"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, ".git", "HEAD"), []byte("ref"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, "stale.html"), []byte("old"), 0o600))

	_, err := NewService().Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, "ref", readOutput(t, cfg, ".git/HEAD"))
	testutils.NewFileAssertions(t, cfg.Output.Directory).
		AssertFileNotExists("stale.html").
		AssertFileExists("index.html")
	assertNoStagingLeft(t, cfg)
}

func TestRun_DryRunLeavesOutputUntouched(t *testing.T) {
	cfg := testConfig(t, validSite())
	require.NoError(t, os.MkdirAll(cfg.Output.Directory, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, "old.html"), []byte("old"), 0o600))

	res, err := NewService().Run(context.Background(), Request{Config: cfg, Options: Options{DryRun: true}})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, "old", readOutput(t, cfg, "old.html"))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "index.html"))
	assert.True(t, strings.HasPrefix(res.Summary(), "checked 4 page(s)"))
}

func TestRun_DisabledManifest(t *testing.T) {
	cfg := testConfig(t, validSite())
	cfg.Output.Manifest = false

	_, err := NewService().Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, manifest.FileName))
}

func assertNoStagingLeft(t *testing.T, cfg *config.Config) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(cfg.Output.Directory))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".staging-")
		assert.NotContains(t, e.Name(), ".prev")
	}
}

func withDoc(rel, content string) map[string]string {
	files := validSite()
	files[rel] = content
	return files
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		tweak    func(*config.Config)
		category dberrors.ErrorCategory
		document string
		target   any
	}{
		{
			name:     "malformed body",
			files:    withDoc("bad.mdx", `%{"type": "article", "title": "Bad", "date": "Jan 1, 2024"}%`+"\n```@x\nnever closed"),
			category: dberrors.CategoryParse,
			document: "bad.mdx",
			target:   new(*mdx.MalformedBlockError),
		},
		{
			name:     "missing field",
			files:    withDoc("bad.mdx", `%{"type": "article", "date": "Jan 1, 2024"}%`),
			category: dberrors.CategoryMetadata,
			document: "bad.mdx",
			target:   new(*page.MissingFieldError),
		},
		{
			name:     "unknown type",
			files:    withDoc("bad.mdx", `%{"type": "gallery"}%`),
			category: dberrors.CategoryMetadata,
			document: "bad.mdx",
			target:   new(*page.UnknownPageTypeError),
		},
		{
			name:     "missing header",
			files:    withDoc("bad.mdx", "# Just a heading"),
			category: dberrors.CategoryMetadata,
			document: "bad.mdx",
		},
		{
			name:     "link collision",
			files:    withDoc("copy.mdx", `%{"type": "article", "title": "Hello World", "date": "Jan 5, 2024"}%`),
			category: dberrors.CategoryIntegrity,
			document: "posts/hello.mdx",
			target:   new(*site.LinkCollisionError),
		},
		{
			name:     "code block without label",
			files:    withDoc("bad.mdx", `%{"type": "article", "title": "Bad", "date": "Jan 1, 2024"}%`+"\n```\ncode\n```"),
			category: dberrors.CategoryRender,
			document: "bad.mdx",
			target:   new(*render.MissingSourceLabelError),
		},
		{
			name:     "broken link",
			files:    withDoc("bad.mdx", `%{"type": "article", "title": "Bad", "date": "Jan 1, 2024"}%`+"\nSee <a href=\"/nowhere.html\">this</a>."),
			category: dberrors.CategoryIntegrity,
			target:   new(*linkverify.BrokenLinksError),
		},
		{
			name:     "missing stylesheet asset",
			files:    validSite(),
			tweak:    func(c *config.Config) { c.Site.Stylesheet = "/theme.css" },
			category: dberrors.CategoryIntegrity,
			target:   new(*linkverify.BrokenLinksError),
		},
		{
			name:     "asset shadows page",
			files:    withDoc("index.html", "<html></html>"),
			category: dberrors.CategoryIntegrity,
			document: "index.html",
			target:   new(*site.LinkCollisionError),
		},
		{
			name:     "no documents",
			files:    map[string]string{"style.css": ""},
			category: dberrors.CategoryConfig,
		},
		{
			name:     "missing source",
			files:    validSite(),
			tweak:    func(c *config.Config) { c.Source.Directory = filepath.Join(c.Source.Directory, "missing") },
			category: dberrors.CategoryConfig,
		},
		{
			name:     "bad theme",
			files:    validSite(),
			tweak:    func(c *config.Config) { c.Theme.Directory = filepath.Join(c.Source.Directory, "no-theme") },
			category: dberrors.CategoryConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.files)
			if tt.tweak != nil {
				tt.tweak(cfg)
			}
			require.NoError(t, os.MkdirAll(cfg.Output.Directory, 0o750))
			require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, "old.html"), []byte("old"), 0o600))

			res, err := NewService().Run(context.Background(), Request{Config: cfg})
			require.Error(t, err)

			assert.Equal(t, StatusFailed, res.Status)
			assert.Equal(t, tt.category, dberrors.GetCategory(err), err.Error())
			if tt.document != "" {
				ce, ok := dberrors.AsClassified(err)
				require.True(t, ok)
				doc, _ := ce.Context().GetString("document")
				assert.Equal(t, tt.document, doc)
			}
			if tt.target != nil {
				assert.ErrorAs(t, err, tt.target)
			}

			assert.Equal(t, "old", readOutput(t, cfg, "old.html"))
			assertNoStagingLeft(t, cfg)
		})
	}
}

func TestRun_LinkVerificationCanBeDisabled(t *testing.T) {
	cfg := testConfig(t, withDoc("bad.mdx", `%{"type": "article", "title": "Bad", "date": "Jan 1, 2024"}%`+"\n<a href=\"/nowhere.html\">x</a>"))
	cfg.Build.VerifyLinks = false

	res, err := NewService().Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Pages)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t, validSite())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := newFakeRecorder()

	res, err := NewService().WithRecorder(rec).Run(ctx, Request{Config: cfg})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Status)
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeCanceled}, rec.outcomes)
	assert.NoDirExists(t, cfg.Output.Directory)
}

func TestRun_NilConfig(t *testing.T) {
	res, err := NewService().Run(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
	assert.True(t, dberrors.HasCategory(err, dberrors.CategoryConfig))
}

func TestRun_UsesClock(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(2 * time.Second)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}

	cfg := testConfig(t, validSite())
	res, err := NewService().WithClock(clock).Run(context.Background(), Request{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, res.Duration)

	m, err := manifest.FromJSON([]byte(readOutput(t, cfg, manifest.FileName)))
	require.NoError(t, err)
	assert.True(t, m.Generated.Equal(start))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(StageCollect, nil, "", ""))
	assert.Equal(t, context.Canceled, Classify(StageCollect, context.Canceled, "", ""))

	already := dberrors.RenderError("x").Build()
	assert.Same(t, already, Classify(StageCollect, already, "doc.mdx", ""))

	err := Classify(StageFinalize, errors.New("rename failed"), "", "")
	assert.Equal(t, dberrors.CategoryFileSystem, dberrors.GetCategory(err))

	err = Classify(StageCollect, site.ErrRegistrySealed, "", "")
	assert.Equal(t, dberrors.CategoryInternal, dberrors.GetCategory(err))
}
