package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scandocs/scandoc/internal/document"
	"github.com/scandocs/scandoc/internal/layout"
	"github.com/scandocs/scandoc/internal/pipeline"
	"github.com/scandocs/scandoc/internal/utils"
)

const (
	outputFormatDocx = "docx"
	outputFormatJSON = "json"
	outputFormatYAML = "yaml"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// convertCmd represents the convert command.
var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert images into Word documents or structured output",
	Long: `Process one or more image files: extract text, reconstruct paragraphs and
tables from the fragment positions, and write the result.

Supported input formats: PNG, JPEG, BMP, TIFF, WebP (up to 10 MB per file).

The default output is a Word document named after the source image
(extracted_document_<name>.docx). Other formats emit the raw processing
result instead.

Examples:
  scandoc convert photo.jpg
  scandoc convert *.png --format json
  scandoc convert notes.jpg --engine handwriting
  scandoc convert scan.png --no-tables --output-dir out/`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		validFormats := []string{outputFormatDocx, outputFormatJSON, outputFormatYAML, outputFormatCSV, outputFormatText}
		valid := false
		for _, f := range validFormats {
			if format == f {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
		}

		outputDir := cfg.Output.Dir
		if cmd.Flags().Changed("output-dir") {
			outputDir, _ = cmd.Flags().GetString("output-dir")
		}
		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}
		if outputFile != "" && len(args) > 1 {
			return errors.New("--output can only be used with a single input file")
		}

		pCfg := cfg.ToPipelineConfig()
		if cmd.Flags().Changed("engine") {
			pCfg.Engine, _ = cmd.Flags().GetString("engine")
		}
		if cmd.Flags().Changed("no-enhance") {
			noEnhance, _ := cmd.Flags().GetBool("no-enhance")
			pCfg.Enhance = !noEnhance
		}
		if cmd.Flags().Changed("no-tables") {
			noTables, _ := cmd.Flags().GetBool("no-tables")
			pCfg.DetectTables = !noTables
		}
		if cmd.Flags().Changed("max-dimension") {
			pCfg.MaxDimension, _ = cmd.Flags().GetInt("max-dimension")
		}
		if cmd.Flags().Changed("paragraph-gap") {
			gap, _ := cmd.Flags().GetFloat64("paragraph-gap")
			pCfg.Layout.ParagraphGap = gap
		}
		if cmd.Flags().Changed("row-tolerance") {
			tol, _ := cmd.Flags().GetFloat64("row-tolerance")
			pCfg.Layout.RowTolerance = tol
		}

		pl, err := pipeline.NewBuilder().WithConfig(pCfg).Build()
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}
		defer func() { _ = pl.Close() }()

		docOpts := document.RenderOptions{
			Title:             cfg.Document.Title,
			IncludeImage:      cfg.Document.IncludeImage,
			IncludeConfidence: cfg.Document.IncludeConfidence,
		}
		if cmd.Flags().Changed("title") {
			docOpts.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("no-image") {
			noImage, _ := cmd.Flags().GetBool("no-image")
			docOpts.IncludeImage = !noImage
		}
		if cmd.Flags().Changed("no-confidence") {
			noConf, _ := cmd.Flags().GetBool("no-confidence")
			docOpts.IncludeConfidence = !noConf
		}

		var failures int
		for _, path := range args {
			if err := convertOne(cmd, pl, path, format, outputDir, outputFile, docOpts); err != nil {
				failures++
				fmt.Fprintf(cmd.ErrOrStderr(), "Error processing %s: %v\n", path, err)
			}
		}
		if failures == len(args) {
			return fmt.Errorf("all %d file(s) failed", failures)
		}
		return nil
	},
}

// convertOne processes a single image and writes the result. An image with
// no recognizable text is reported as a warning, not a hard failure.
func convertOne(
	cmd *cobra.Command,
	pl *pipeline.Pipeline,
	path, format, outputDir, outputFile string,
	docOpts document.RenderOptions,
) error {
	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return err
	}

	res, err := pl.Process(img)
	if err != nil {
		return err
	}
	if !res.Success {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s: %s\n", path, res.Error)
		if format == outputFormatDocx {
			// Nothing to render into a document.
			return nil
		}
	}

	var out string
	switch format {
	case outputFormatDocx:
		data, err := document.NewGenerator().Generate(res, img, docOpts)
		if err != nil {
			return err
		}
		target := outputFile
		if target == "" {
			target = filepath.Join(outputDir, document.ArtifactName(path))
		}
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d fragments, %.0f%% confidence)\n",
			meta.Path, target, res.Confidence.Count, res.Confidence.Mean*100)
		return nil
	case outputFormatJSON:
		out, err = res.ToJSON()
	case outputFormatYAML:
		out, err = res.ToYAML()
	case outputFormatCSV:
		out, err = res.ToCSV()
	case outputFormatText:
		out = res.ToPlainText()
	}
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("format", "f", "docx", "output format (docx, json, yaml, csv, text)")
	convertCmd.Flags().StringP("output", "o", "", "output file path (single input only)")
	convertCmd.Flags().String("output-dir", ".", "directory for generated documents")
	convertCmd.Flags().StringP("engine", "e", "", "OCR engine (tesseract, tesseract-sparse, handwriting); default is best available")
	convertCmd.Flags().Bool("no-enhance", false, "skip the image quality enhancement step")
	convertCmd.Flags().Bool("no-tables", false, "skip table reconstruction")
	convertCmd.Flags().Int("max-dimension", utils.DefaultMaxDimension, "longest image side in pixels after enhancement")
	convertCmd.Flags().Float64("paragraph-gap", layout.DefaultConfig().ParagraphGap, "vertical gap in pixels that starts a new paragraph")
	convertCmd.Flags().Float64("row-tolerance", layout.DefaultConfig().RowTolerance, "vertical tolerance in pixels for grouping fragments into a table row")
	convertCmd.Flags().String("title", "", "document title")
	convertCmd.Flags().Bool("no-image", false, "do not embed the original image in the document")
	convertCmd.Flags().Bool("no-confidence", false, "omit the confidence report from the document")
}
