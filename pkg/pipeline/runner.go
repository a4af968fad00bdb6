package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/artifact"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/cost"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/errors"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/layout"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/observability"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/render/dxf"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/report"
)

// Runner executes pipeline invocations.
//
// The Runner holds no per-invocation state: every call to Execute gets its
// own artifact batch, so multiple goroutines can safely share one Runner.
type Runner struct {
	store     *artifact.Store
	synth     Synthesizer
	retriever Retriever
	pricing   cost.Pricing
	topK      int
	financial string
	logger    *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithRetriever sets the context source. Without one, prompts are sent
// with empty context.
func WithRetriever(r Retriever) Option {
	return func(rn *Runner) { rn.retriever = r }
}

// WithPricing sets the unit prices used for estimates.
func WithPricing(p cost.Pricing) Option {
	return func(rn *Runner) { rn.pricing = p }
}

// WithTopK sets the number of context snippets per prompt.
func WithTopK(k int) Option {
	return func(rn *Runner) {
		if k > 0 {
			rn.topK = k
		}
	}
}

// WithFinancialFormat selects the financial report format ([FormatPDF] or
// [FormatXLSX]). Unknown formats are ignored.
func WithFinancialFormat(format string) Option {
	return func(rn *Runner) {
		if ValidateFinancialFormat(format) == nil {
			rn.financial = format
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(rn *Runner) {
		if l != nil {
			rn.logger = l
		}
	}
}

// NewRunner creates a runner writing artifacts to store and obtaining
// layouts from synth.
func NewRunner(store *artifact.Store, synth Synthesizer, opts ...Option) *Runner {
	r := &Runner{
		store:     store,
		synth:     synth,
		pricing:   cost.DefaultPricing(),
		topK:      DefaultTopK,
		financial: DefaultFinancialFormat,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs one invocation. It never returns a Go error: failures are
// reported in the Result envelope.
func (r *Runner) Execute(ctx context.Context, req Request) Result {
	start := time.Now()
	batch := r.store.NewBatch()

	res, err := r.execute(ctx, req, batch)
	if err != nil {
		batch.Discard()
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInternal, err, "pipeline failed")
		}
		res = fail(err, res.Stats)
		r.logger.Error("pipeline failed",
			"stage", res.Stage,
			"err", err,
			"duration", time.Since(start))
	} else {
		r.logger.Info("pipeline complete",
			"rooms", len(res.Layout.Rooms),
			"sprinklers", len(res.Layout.Sprinklers),
			"duration", time.Since(start))
	}

	observability.Pipeline().OnInvocationComplete(ctx, res.Status, time.Since(start))
	return res
}

func (r *Runner) execute(ctx context.Context, req Request, batch *artifact.Batch) (Result, error) {
	var res Result
	source := req.Source()
	res.Stats.Source = source

	// Stage 1-4: obtain the canonical layout
	var l layout.Layout
	var err error
	switch source {
	case "upload":
		l, err = r.parse(ctx, req.Upload, &res.Stats)
	case "layout_json":
		l, err = r.parse(ctx, []byte(req.LayoutJSON), &res.Stats)
	case "prompt":
		l, err = r.synthesize(ctx, req.Prompt, &res)
	default:
		err = errors.New(errors.ErrCodeBadRequest, "no prompt or layout provided")
	}
	if err != nil {
		return res, err
	}

	// Stage 5: artifacts
	files, paths, summary, err := r.artifacts(ctx, l, batch, &res.Stats)
	if err != nil {
		return res, err
	}

	res.Status = StatusSuccess
	res.Layout = &l
	res.Files = files
	res.Paths = paths
	res.Cost = &summary
	return res, nil
}

// =============================================================================
// Layout stages
// =============================================================================

func (r *Runner) parse(ctx context.Context, data []byte, stats *Stats) (layout.Layout, error) {
	var l layout.Layout
	err := r.stage(ctx, string(errors.StageValidate), &stats.ValidateTime, func() error {
		var err error
		l, stats.Repairs, err = layout.ParseReport(data)
		return err
	})
	return l, err
}

func (r *Runner) synthesize(ctx context.Context, prompt string, res *Result) (layout.Layout, error) {
	retrieved := r.retrieve(ctx, prompt, res)

	var reply string
	err := r.stage(ctx, string(errors.StageSynthesize), &res.Stats.SynthesizeTime, func() error {
		if r.synth == nil {
			return errors.New(errors.ErrCodeModelUnavailable, "no model configured")
		}
		var err error
		reply, err = r.synth.Synthesize(ctx, prompt, retrieved)
		return err
	})
	if err != nil {
		return layout.Layout{}, err
	}

	var l layout.Layout
	err = r.stage(ctx, string(errors.StageValidate), &res.Stats.ValidateTime, func() error {
		var err error
		l, res.Stats.Repairs, err = layout.NormalizeReport(reply)
		return err
	})
	if err != nil {
		return layout.Layout{}, err
	}
	if res.Stats.Repairs.Any() {
		r.logger.Warn("model layout repaired",
			"defaulted_fields", res.Stats.Repairs.DefaultedFields,
			"dropped_rooms", res.Stats.Repairs.DroppedRooms,
			"dropped_sprinklers", res.Stats.Repairs.DroppedSprinklers)
	}
	return l, nil
}

// retrieve collects context for prompt. Problems are recorded as warnings.
func (r *Runner) retrieve(ctx context.Context, prompt string, res *Result) string {
	if r.retriever == nil {
		return ""
	}
	var snippets []string
	_ = r.stage(ctx, string(errors.StageRetrieve), &res.Stats.RetrieveTime, func() error {
		snippets = r.retriever.Retrieve(prompt, r.topK)
		return nil
	})
	res.Stats.Snippets = len(snippets)

	if err := r.retriever.Degraded(); err != nil {
		res.Warnings = append(res.Warnings, errors.UserMessage(err))
		r.logger.Warn("retrieval degraded", "err", errors.UserMessage(err))
	}
	return strings.Join(snippets, "\n\n")
}

// =============================================================================
// Artifact stages
// =============================================================================

// artifacts runs the geometry branch and the cost then report branch
// concurrently over l.
func (r *Runner) artifacts(ctx context.Context, l layout.Layout, batch *artifact.Batch, stats *Stats) (*Files, map[string]string, cost.Summary, error) {
	var (
		files    Files
		summary  cost.Summary
		geoPath  string
		techPath string
		finPath  string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.stage(gctx, string(errors.StageRender), &stats.RenderTime, func() error {
			f, err := r.write(batch, artifact.KindDesign, "dxf", func(w io.Writer) error {
				data, st := dxf.Render(l)
				if st.SkippedLabels > 0 {
					r.logger.Warn("room labels skipped", "count", st.SkippedLabels)
				}
				_, err := w.Write(data)
				return err
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailure, err, "write geometry")
			}
			files.Geometry, geoPath = f.URL, f.Path
			return nil
		})
	})

	g.Go(func() error {
		summary = r.pricing.Estimate(l)
		return r.stage(gctx, string(errors.StageReport), &stats.ReportTime, func() error {
			tech, err := r.write(batch, artifact.KindTechnicalReport, FormatPDF, func(w io.Writer) error {
				return report.ComposeTechnical(l, w)
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeReportFailure, err, "compose technical report")
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			fin, err := r.write(batch, artifact.KindFinancialReport, r.financial, func(w io.Writer) error {
				if r.financial == FormatXLSX {
					return report.ComposeFinancialWorkbook(l, summary, w)
				}
				return report.ComposeFinancial(l, summary, w)
			})
			if err != nil {
				return errors.Wrap(errors.ErrCodeReportFailure, err, "compose financial report")
			}
			files.TechnicalReport, techPath = tech.URL, tech.Path
			files.FinancialReport, finPath = fin.URL, fin.Path
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, nil, cost.Summary{}, err
	}
	paths := map[string]string{
		artifact.KindDesign:          geoPath,
		artifact.KindTechnicalReport: techPath,
		artifact.KindFinancialReport: finPath,
	}
	return &files, paths, summary, nil
}

// write creates a batch file and fills it with compose.
func (r *Runner) write(batch *artifact.Batch, kind, ext string, compose func(io.Writer) error) (*artifact.File, error) {
	f, err := batch.Create(kind, ext)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f.F)
	if err := compose(w); err != nil {
		f.F.Close()
		return nil, err
	}
	if err := w.Flush(); err != nil {
		f.F.Close()
		return nil, fmt.Errorf("flush %s: %w", f.Name, err)
	}
	if err := f.F.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", f.Name, err)
	}
	r.logger.Debug("wrote artifact", "kind", kind, "path", f.Path)
	return f, nil
}

// stage runs fn as a named stage, reporting it to the pipeline hooks.
func (r *Runner) stage(ctx context.Context, name string, elapsed *time.Duration, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	r.logger.Debug("stage started", "stage", name)

	start := time.Now()
	err := fn()
	*elapsed = time.Since(start)

	hooks.OnStageComplete(ctx, name, *elapsed, err)
	if err == nil {
		r.logger.Info("stage complete", "stage", name, "duration", *elapsed)
	}
	return err
}
