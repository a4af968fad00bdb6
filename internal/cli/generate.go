package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AmineJanedi/RAG-AI-Project/pkg/artifact"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/observability"
	"github.com/AmineJanedi/RAG-AI-Project/pkg/pipeline"
)

// generateOpts holds the flags of the generate command.
type generateOpts struct {
	prompt    string
	layout    string
	upload    string
	outputDir string
	format    string
	json      bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Produce a DXF drawing and reports from a prompt or a layout",
		Long: `Generate runs the full pipeline: retrieve context, synthesize a layout
with the model (unless a layout is given), then write the DXF drawing,
the technical report and the financial report.

A layout file (--upload or --layout) takes precedence over a prompt.`,
		Example: `  fireai generate "two offices of 5x3 m with a sprinkler each"
  fireai generate --layout plan.json --format xlsx
  fireai generate --upload plan.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prompt == "" {
				opts.prompt = strings.Join(args, " ")
			}
			return c.runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.prompt, "prompt", "p", "", "design request")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout JSON file used as inline layout")
	cmd.Flags().StringVar(&opts.upload, "upload", "", "layout JSON file used as an upload")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "artifact directory (overrides config)")
	cmd.Flags().StringVar(&opts.format, "format", "", "financial report format: pdf or xlsx (overrides config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result envelope as JSON")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, opts generateOpts) error {
	req, err := opts.request()
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.format != "" {
		if err := pipeline.ValidateFinancialFormat(opts.format); err != nil {
			return err
		}
		cfg.Output.FinancialFormat = opts.format
	}

	comp, err := c.newComponents(cfg)
	if err != nil {
		return err
	}
	defer comp.Close()

	if opts.json {
		res := comp.runner.Execute(cmd.Context(), req)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("%s: %s", res.Stage, res.Message)
		}
		return nil
	}

	spinner := newSpinnerWithContext(cmd.Context(), "Starting...")
	observability.SetPipelineHooks(spinner)
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})

	spinner.Start()
	res := comp.runner.Execute(cmd.Context(), req)
	if !res.OK() {
		spinner.StopWithError(fmt.Sprintf("%s stage failed", res.Stage))
		if res.Detail != "" {
			printDetail("Model output: %s", res.Detail)
		}
		return fmt.Errorf("%s", res.Message)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Generated %d rooms, %d sprinklers", len(res.Layout.Rooms), len(res.Layout.Sprinklers)))

	printResult(res)
	return nil
}

// request builds the pipeline request from the flags.
func (o generateOpts) request() (pipeline.Request, error) {
	req := pipeline.Request{Prompt: o.prompt}
	if o.layout != "" {
		data, err := os.ReadFile(o.layout)
		if err != nil {
			return req, fmt.Errorf("read layout: %w", err)
		}
		req.LayoutJSON = string(data)
	}
	if o.upload != "" {
		data, err := os.ReadFile(o.upload)
		if err != nil {
			return req, fmt.Errorf("read upload: %w", err)
		}
		req.Upload = data
	}
	if req.Source() == "" {
		return req, fmt.Errorf("a prompt, --layout or --upload is required")
	}
	return req, nil
}

func printResult(res pipeline.Result) {
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}

	fmt.Println()
	printFile("Drawing", res.Paths[artifact.KindDesign])
	printFile("Technical report", res.Paths[artifact.KindTechnicalReport])
	printFile("Financial report", res.Paths[artifact.KindFinancialReport])
	fmt.Println()

	if len(res.Layout.Rooms) > 0 {
		fmt.Println(roomsTable(*res.Layout))
	}
	if res.Cost != nil {
		fmt.Println(costTable(*res.Cost))
	}

	printDetail("source %s, synthesize %s, render %s, report %s",
		res.Stats.Source,
		res.Stats.SynthesizeTime.Round(time.Millisecond),
		res.Stats.RenderTime.Round(time.Millisecond),
		res.Stats.ReportTime.Round(time.Millisecond))
}
