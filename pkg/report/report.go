// Package report renders the final counting totals for human or machine
// consumption. The counting core has no dependency on this package.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/src-d/enry/v2"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/locfang/pkg/tally"
)

const percent = 100

// Options controls rendering.
type Options struct {
	// Format is one of text, json, yaml.
	Format string

	// Color enables ANSI styling in text format.
	Color bool
}

// Row is the per-extension slice of the totals, ordered by descending line
// count in rendered output.
type Row struct {
	Ext      string  `json:"ext" yaml:"ext"`
	Language string  `json:"language,omitempty" yaml:"language,omitempty"`
	Lines    int64   `json:"lines" yaml:"lines"`
	Files    int64   `json:"files" yaml:"files"`
	Percent  float64 `json:"percent" yaml:"percent"`
	AvgLines float64 `json:"avg_lines" yaml:"avg_lines"`
}

// Document is the serializable form of an Aggregate used by the json and
// yaml formats.
type Document struct {
	Root           string  `json:"root" yaml:"root"`
	TotalLines     int64   `json:"total_lines" yaml:"total_lines"`
	TotalFiles     int64   `json:"total_files" yaml:"total_files"`
	Batches        int     `json:"batches" yaml:"batches"`
	FailedBatches  int     `json:"failed_batches,omitempty" yaml:"failed_batches,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Extensions     []Row   `json:"extensions" yaml:"extensions"`
}

// Render writes the totals to w in the requested format.
func Render(w io.Writer, agg *tally.Aggregate, opts Options) error {
	switch opts.Format {
	case "json":
		return renderJSON(w, agg)
	case "yaml":
		return renderYAML(w, agg)
	default:
		return renderText(w, agg, opts.Color)
	}
}

// BuildDocument flattens an Aggregate into its serializable form.
func BuildDocument(agg *tally.Aggregate) Document {
	doc := Document{
		Root:           agg.Root,
		TotalLines:     agg.Lines,
		TotalFiles:     agg.TotalFiles(),
		Batches:        agg.Batches,
		FailedBatches:  agg.FailedBatches,
		ElapsedSeconds: agg.Elapsed.Seconds(),
		Extensions:     make([]Row, 0, len(agg.LinesByExt)),
	}

	for ext, lines := range agg.LinesByExt {
		files := agg.FilesByExt[ext]

		row := Row{
			Ext:      ext,
			Language: languageFor(ext),
			Lines:    lines,
			Files:    files,
		}

		if agg.Lines > 0 {
			row.Percent = float64(lines) / float64(agg.Lines) * percent
		}

		if files > 0 {
			row.AvgLines = float64(lines) / float64(files)
		}

		doc.Extensions = append(doc.Extensions, row)
	}

	sort.Slice(doc.Extensions, func(i, j int) bool {
		left, right := doc.Extensions[i], doc.Extensions[j]
		if left.Lines != right.Lines {
			return left.Lines > right.Lines
		}

		return left.Ext < right.Ext
	})

	return doc
}

func renderJSON(w io.Writer, agg *tally.Aggregate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(BuildDocument(agg)); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

func renderYAML(w io.Writer, agg *tally.Aggregate) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()

	if err := enc.Encode(BuildDocument(agg)); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	return nil
}

func renderText(w io.Writer, agg *tally.Aggregate, colored bool) error {
	doc := BuildDocument(agg)

	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	if !colored {
		heading.DisableColor()
		warn.DisableColor()
	}

	heading.Fprintln(w, "Code Lines Statistics")
	fmt.Fprintf(w, "Directory: %s\n", doc.Root)
	fmt.Fprintf(w, "Total Lines: %s\n", humanize.Comma(doc.TotalLines))
	fmt.Fprintf(w, "Total Files: %s\n", humanize.Comma(doc.TotalFiles))
	fmt.Fprintf(w, "Analysis Time: %.3fs\n", doc.ElapsedSeconds)

	if agg.Elapsed > 0 && doc.TotalFiles > 0 {
		perSec := float64(time.Second) / float64(agg.Elapsed)
		fmt.Fprintf(w, "Performance: %s files/sec, %s lines/sec\n",
			humanize.CommafWithDigits(float64(doc.TotalFiles)*perSec, 0),
			humanize.CommafWithDigits(float64(doc.TotalLines)*perSec, 0))
	}

	if doc.FailedBatches > 0 {
		warn.Fprintf(w, "Warning: %d of %d batches failed and were skipped\n",
			doc.FailedBatches, doc.Batches+doc.FailedBatches)
	}

	if len(doc.Extensions) == 0 {
		fmt.Fprintln(w, "No supported code files found.")

		return nil
	}

	fmt.Fprintln(w)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Ext", "Language", "Lines", "Files", "%", "Avg"})

	for _, row := range doc.Extensions {
		tbl.AppendRow(table.Row{
			row.Ext,
			row.Language,
			humanize.Comma(row.Lines),
			humanize.Comma(row.Files),
			fmt.Sprintf("%.1f", row.Percent),
			fmt.Sprintf("%.1f", row.AvgLines),
		})
	}

	tbl.AppendFooter(table.Row{
		"total", "", humanize.Comma(doc.TotalLines), humanize.Comma(doc.TotalFiles), "100.0", "",
	})
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	tbl.Render()

	return nil
}

// languageFor maps an extension to a language label. Empty when the
// extension is not tied to a single well-known language.
func languageFor(ext string) string {
	langs := enry.GetLanguagesByExtension("file"+strings.ToLower(ext), nil, nil)
	if len(langs) == 0 {
		return ""
	}

	return langs[0]
}
