package build

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/docs"
	derrors "git.home.luguber.info/inful/mdxsite/internal/docs/errors"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/linkverify"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/manifest"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
	"git.home.luguber.info/inful/mdxsite/internal/observability"
	"git.home.luguber.info/inful/mdxsite/internal/page"
	"git.home.luguber.info/inful/mdxsite/internal/render"
	"git.home.luguber.info/inful/mdxsite/internal/site"
	"git.home.luguber.info/inful/mdxsite/internal/workspace"
)

// Service is the standard build implementation.
type Service struct {
	recorder metrics.Recorder
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service that records no metrics.
func NewService() *Service {
	return &Service{
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithClock replaces the clock used for timestamps (for testing).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// run holds the state handed from stage to stage.
type run struct {
	cfg      *config.Config
	result   *Result
	registry *site.Registry
	staging  *workspace.Staging

	documents []docs.DocFile
	assets    []docs.DocFile

	// rendered maps page links to their HTML for link verification.
	rendered map[string][]byte
	manifest *manifest.Manifest
}

// Run executes the complete build pipeline.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := s.now()
	result := &Result{
		BuildID:     s.newID(),
		StartTime:   startTime,
		DryRun:      req.Options.DryRun,
		PagesByKind: make(map[page.Kind]int),
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	if req.Config == nil {
		return s.finish(ctx, result, dberrors.ConfigError("config required").Build())
	}
	result.OutputPath = req.Config.Output.Directory

	r := &run{
		cfg:      req.Config,
		result:   result,
		registry: site.NewRegistry(),
		rendered: make(map[string][]byte),
		manifest: manifest.New(result.BuildID, startTime),
	}
	defer func() {
		if r.staging != nil {
			r.staging.Abort()
		}
	}()

	observability.InfoContext(ctx, "Starting build",
		logfields.Path(req.Config.Source.Directory),
		slog.String("output", req.Config.Output.Directory),
		slog.Bool("dry_run", req.Options.DryRun))

	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{StageDiscover, s.discover},
		{StageCollect, s.collect},
		{StageRender, s.render},
		{StageAssets, s.copyAssets},
		{StageVerify, s.verify},
		{StageManifest, s.writeManifest},
		{StageFinalize, s.finalize},
	}
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return s.finish(ctx, result, err)
		}
		if err := s.runStage(ctx, r, st.name, st.fn); err != nil {
			return s.finish(ctx, result, err)
		}
	}
	return s.finish(ctx, result, nil)
}

// runStage times one stage and records its result.
func (s *Service) runStage(ctx context.Context, r *run, name string, fn func(context.Context, *run) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	observability.DebugContext(ctx, "Stage started")

	err := fn(ctx, r)

	elapsed := time.Since(start)
	s.recorder.ObserveStageDuration(name, elapsed)
	r.result.Stages = append(r.result.Stages, StageTiming{Name: name, Duration: elapsed})

	switch {
	case err == nil:
		s.recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage completed", logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	case isCanceled(err):
		s.recorder.IncStageResult(name, metrics.ResultCanceled)
	default:
		s.recorder.IncStageResult(name, metrics.ResultFatal)
	}
	return err
}

// finish stamps timings and the final status on result.
func (s *Service) finish(ctx context.Context, result *Result, err error) (*Result, error) {
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		result.Status = StatusSuccess
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		observability.InfoContext(ctx, "Build completed",
			logfields.Count(result.Pages),
			slog.Int("assets", result.Assets),
			slog.Int("notes", result.Notes),
			logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	case isCanceled(err):
		result.Status = StatusCancelled
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		observability.WarnContext(ctx, "Build cancelled", logfields.Error(err))
	default:
		result.Status = StatusFailed
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	}
	return result, err
}

func (s *Service) discover(_ context.Context, r *run) error {
	files, err := docs.Discover(r.cfg.Source.Directory, r.cfg.Source.Extension)
	if err != nil {
		return Classify(StageDiscover, err, "", "")
	}
	r.documents, r.assets = docs.Split(files)
	if len(r.documents) == 0 {
		err := fmt.Errorf("%w: no %s files under %s", derrors.ErrNoDocsFound, r.cfg.Source.Extension, r.cfg.Source.Directory)
		return Classify(StageDiscover, err, "", "")
	}
	r.result.Documents = len(r.documents)
	return nil
}

// collect parses every document in discovery order and registers its page.
func (s *Service) collect(ctx context.Context, r *run) error {
	for _, doc := range r.documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := loadPage(doc)
		if err != nil {
			return Classify(StageCollect, err, doc.RelativePath, "")
		}
		if err := r.registry.AddPage(p); err != nil {
			return Classify(StageCollect, err, doc.RelativePath, p.Link())
		}
		observability.DebugContext(observability.WithDocument(ctx, doc.RelativePath), "Page collected",
			logfields.Link(p.Link()),
			logfields.Kind(string(p.Kind)))
	}
	r.registry.Seal()
	return nil
}

// loadPage reads one document and builds its page.
func loadPage(doc docs.DocFile) (*page.Page, error) {
	content, err := doc.Load()
	if err != nil {
		return nil, err
	}
	header, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}
	meta, err := frontmatter.ParseJSON(header)
	if err != nil {
		return nil, err
	}
	return page.FromMetadata(meta, string(body), doc.RelativePath)
}

func (s *Service) render(ctx context.Context, r *run) error {
	renderer, err := render.NewHTMLRenderer(render.SiteInfo{
		Title:      r.cfg.Site.Title,
		BaseURL:    r.cfg.Site.BaseURL,
		Stylesheet: r.cfg.Site.Stylesheet,
		Favicon:    r.cfg.Site.Favicon,
	}, r.cfg.Theme.Directory)
	if err != nil {
		return dberrors.WrapError(err, dberrors.CategoryConfig, "load theme").
			WithContext(logfields.KeyPath, r.cfg.Theme.Directory).
			Build()
	}

	if r.result.DryRun {
		r.staging, err = workspace.BeginTemp()
	} else {
		r.staging, err = workspace.Begin(r.cfg.Output.Directory)
	}
	if err != nil {
		return Classify(StageRender, err, "", "")
	}

	pages := r.registry.Pages()
	visited := 0
	err = r.registry.RenderAll(renderer, func(p *page.Page, html template.HTML) error {
		visited++
		if err := ctx.Err(); err != nil {
			return err
		}
		data := []byte(html)
		if err := r.staging.WriteFile(p.Link(), data); err != nil {
			return dberrors.WrapError(err, dberrors.CategoryFileSystem, "write page").
				WithContext(logfields.KeyDocument, p.Source).
				WithContext(logfields.KeyLink, p.Link()).
				Build()
		}
		r.rendered[p.Link()] = data
		r.manifest.AddPage(p.Link(), string(p.Kind), p.Source, data)
		r.result.PagesByKind[p.Kind]++
		return nil
	})
	if err != nil {
		// RenderAll renders in registration order, so the failing page is
		// the one after the last visited.
		var failed *page.Page
		if visited < len(pages) && !dberrors.IsClassified(err) {
			failed = pages[visited]
		}
		if failed != nil {
			return Classify(StageRender, err, failed.Source, failed.Link())
		}
		return Classify(StageRender, err, "", "")
	}

	r.result.Pages = len(r.rendered)
	r.result.Notes = r.registry.NotesIssued()
	for _, kind := range slices.Sorted(maps.Keys(r.result.PagesByKind)) {
		s.recorder.AddPages(string(kind), r.result.PagesByKind[kind])
	}
	s.recorder.AddNotes(r.result.Notes)
	observability.InfoContext(ctx, "Pages rendered",
		logfields.Count(r.result.Pages),
		slog.Int("notes", r.result.Notes))
	return nil
}

// copyAssets copies every non-document file into staging, bounded by
// build.asset_workers. An asset may not overwrite a rendered page.
func (s *Service) copyAssets(ctx context.Context, r *run) error {
	for _, asset := range r.assets {
		link := "/" + asset.RelativePath
		if _, ok := r.rendered[link]; ok {
			source := ""
			for _, p := range r.registry.Pages() {
				if p.Link() == link {
					source = p.Source
					break
				}
			}
			err := &site.LinkCollisionError{Link: link, Existing: source, Incoming: asset.RelativePath}
			return Classify(StageAssets, err, asset.RelativePath, link)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Build.AssetWorkers))
	for _, asset := range r.assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := asset.Load()
			if err != nil {
				return Classify(StageAssets, err, asset.RelativePath, "")
			}
			if err := r.staging.WriteFile(asset.RelativePath, data); err != nil {
				return Classify(StageAssets, err, asset.RelativePath, "")
			}
			mu.Lock()
			r.manifest.AddAsset(asset.RelativePath, data)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	r.result.Assets = len(r.assets)
	s.recorder.AddAssets(r.result.Assets)
	if r.result.Assets > 0 {
		observability.InfoContext(ctx, "Assets copied", logfields.Count(r.result.Assets))
	}
	return nil
}

func (s *Service) verify(ctx context.Context, r *run) error {
	if !r.cfg.Build.VerifyLinks {
		observability.DebugContext(ctx, "Link verification disabled")
		return nil
	}
	v, err := linkverify.NewVerifier(r.cfg.Site.BaseURL)
	if err != nil {
		return dberrors.WrapError(err, dberrors.CategoryConfig, "invalid site base URL").Build()
	}
	for link := range r.rendered {
		v.Add(link)
	}
	for _, asset := range r.assets {
		v.Add(asset.RelativePath)
	}

	if err := v.Verify(r.rendered); err != nil {
		var broken *linkverify.BrokenLinksError
		if errors.As(err, &broken) {
			for _, l := range broken.Links {
				observability.WarnContext(ctx, "Broken link",
					logfields.Link(l.Page),
					slog.String("target", l.Target),
					slog.String("tag", l.Tag))
			}
			return Classify(StageVerify, err, "", broken.Links[0].Page)
		}
		return Classify(StageVerify, err, "", "")
	}
	return nil
}

func (s *Service) writeManifest(ctx context.Context, r *run) error {
	if !r.cfg.Output.Manifest {
		return nil
	}
	data, err := r.manifest.ToJSON()
	if err != nil {
		return Classify(StageManifest, err, "", "")
	}
	if err := r.staging.WriteFile(manifest.FileName, data); err != nil {
		return Classify(StageManifest, err, "", "")
	}
	observability.DebugContext(ctx, "Manifest written", logfields.Path(manifest.FileName))
	return nil
}

func (s *Service) finalize(ctx context.Context, r *run) error {
	if r.result.DryRun {
		observability.InfoContext(ctx, "Dry run: discarding staged output",
			slog.String("staging", r.staging.Dir()))
		r.staging.Abort()
		return nil
	}
	if err := r.staging.Finalize(); err != nil {
		return Classify(StageFinalize, err, "", "")
	}
	return nil
}

// Summary renders a one-line description of a finished build.
func (r *Result) Summary() string {
	var kinds []string
	for _, kind := range slices.Sorted(maps.Keys(r.PagesByKind)) {
		kinds = append(kinds, fmt.Sprintf("%d %s", r.PagesByKind[kind], kind))
	}
	verb := "built"
	if r.DryRun {
		verb = "checked"
	}
	return fmt.Sprintf("%s %d page(s) (%s), %d asset(s), %d note(s) in %s",
		verb, r.Pages, strings.Join(kinds, ", "), r.Assets, r.Notes, r.Duration.Round(time.Millisecond))
}
