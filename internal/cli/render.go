package cli

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/cobra"

	"github.com/gogpu/typewriter/atlas"
	"github.com/gogpu/typewriter/effect"
	"github.com/gogpu/typewriter/grain"
	"github.com/gogpu/typewriter/page"
)

const (
	defaultCols   = 72
	defaultRows   = 54
	defaultSize   = 14
	defaultScale  = 2
	defaultMargin = 48
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	out       string
	config    string
	fontPath  string
	size      float64
	scale     float64
	zoom      float64
	ink       string
	paper     string
	cols      int
	rows      int
	variants  int
	noEffects bool
	noGrain   bool
	prewarm   bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		out:      ".",
		size:     defaultSize,
		scale:    defaultScale,
		zoom:     1,
		ink:      "black",
		paper:    "#fbf8f1",
		cols:     defaultCols,
		rows:     defaultRows,
		variants: page.DefaultVariants,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Typeset a text file into PNG pages",
		Long: `Typeset a text file into PNG pages named page-001.png, page-002.png and so
on. Backspace characters overstrike, form feeds start a new page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.out, "out", "o", opts.out, "output directory")
	f.StringVarP(&opts.config, "config", "c", "", "effect config TOML file")
	f.StringVar(&opts.fontPath, "font", "", "TrueType/OpenType font file (default Go Mono)")
	f.Float64Var(&opts.size, "size", opts.size, "font size in CSS px")
	f.Float64Var(&opts.scale, "scale", opts.scale, "device pixels per CSS pixel")
	f.Float64Var(&opts.zoom, "zoom", opts.zoom, "zoom factor")
	f.StringVar(&opts.ink, "ink", opts.ink, "ink name or hex colour")
	f.StringVar(&opts.paper, "paper", opts.paper, "paper hex colour")
	f.IntVar(&opts.cols, "cols", opts.cols, "columns per line")
	f.IntVar(&opts.rows, "rows", opts.rows, "lines per page")
	f.IntVar(&opts.variants, "variants", opts.variants, "overstrike variants per glyph")
	f.BoolVar(&opts.noEffects, "no-effects", false, "disable ink effects")
	f.BoolVar(&opts.noGrain, "no-grain", false, "disable paper grain")
	f.BoolVar(&opts.prewarm, "prewarm", true, "build all glyph atlases in parallel before typing")
	return cmd
}

func runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	text, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	ink, err := page.ParseInk(opts.ink)
	if err != nil {
		return err
	}
	paper, err := page.ParseInk(opts.paper)
	if err != nil {
		return err
	}

	cfg := effect.DefaultConfig()
	if opts.config != "" {
		if cfg, err = effect.Load(opts.config); err != nil {
			return err
		}
	}
	params := effect.Resolve(cfg)

	font := atlas.DefaultFont(opts.size)
	if opts.fontPath != "" {
		if font, err = atlas.LoadFont(opts.fontPath, opts.size); err != nil {
			return err
		}
	}
	if err := font.Probe(); err != nil {
		return err
	}

	metrics := page.MetricsFor(font, opts.scale)
	metrics.ZoomFactor = opts.zoom
	builder := atlas.NewBuilder(font,
		atlas.WithRenderScale(metrics.RenderScale()*metrics.Zoom()),
		atlas.WithSupersample(2, 3))
	atlases := atlas.NewCache(builder, atlas.WithParams(params))

	if opts.prewarm && !opts.noEffects {
		p := newProgress(logger)
		if err := atlases.Prewarm(ctx, []color.RGBA{ink}, opts.variants); err != nil {
			return fmt.Errorf("prewarm atlases: %w", err)
		}
		p.done(fmt.Sprintf("Built %d atlases", atlases.Stats().Atlases))
	}

	rOpts := []page.RendererOption{
		page.WithBackground(paper),
		page.WithVariants(opts.variants),
		page.WithSeed(params.Noise.Seed),
		page.WithEffects(!opts.noEffects),
	}
	if !opts.noGrain {
		rOpts = append(rOpts, page.WithGrain(grain.NewOverlay()))
	}
	loop := page.NewManualLoop()
	r := page.NewRenderer(metrics, atlases, loop, rOpts...)

	layout := page.Layout{
		Width:      2*defaultMargin + float64(opts.cols)*metrics.CharWidth(),
		Height:     2*defaultMargin + float64(opts.rows)*metrics.LineHeight(),
		MarginTop:  defaultMargin,
		MarginLeft: defaultMargin,
	}

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pages := layoutText(string(text), opts.cols, opts.rows)
	p := newProgress(logger)
	for i, strikes := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		pg := r.NewPage(i, layout)
		r.Activate(pg)
		r.BeginBatch()
		for _, s := range strikes {
			r.Type(pg, s.row, s.col, s.ch, ink)
		}
		r.EndBatch()
		loop.Flush()
		if pg.IsDirty() {
			return fmt.Errorf("page %d was not painted", i+1)
		}

		name := filepath.Join(opts.out, fmt.Sprintf("page-%03d.png", i+1))
		if err := imgio.Save(name, pg.Canvas(), imgio.PNGEncoder()); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		r.Deactivate(pg)
		logger.Debug("wrote page", "file", name, "strikes", len(strikes))
	}

	s := atlases.Stats()
	p.done(fmt.Sprintf("Rendered %d pages", len(pages)))
	logger.Debug("atlas cache", "atlases", s.Atlases, "builds", s.Builds, "hits", s.Hits, "misses", s.Misses)
	return nil
}
