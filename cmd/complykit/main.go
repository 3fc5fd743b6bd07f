// Command complykit is the CLI for the complykit engine. It exposes the
// engine's transformations — convert, split, merge, resolve, validate —
// over files on disk. All file I/O lives here; the core packages only
// ever see bytes and documents.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/complykit/complykit/core/codec"
	"github.com/complykit/complykit/core/doc"
	"github.com/complykit/complykit/core/merge"
	"github.com/complykit/complykit/core/profile"
	"github.com/complykit/complykit/core/split"
	"github.com/complykit/complykit/core/validate"
	"github.com/complykit/complykit/internal/fileio"
)

const version = "0.2.0"

// CLI defines the command-line interface for complykit.
var CLI struct {
	Convert  ConvertCmd  `cmd:"" help:"Convert a document between formats"`
	Split    SplitCmd    `cmd:"" help:"Partition a document by a named strategy"`
	Merge    MergeCmd    `cmd:"" help:"Recompose same-kind documents into one"`
	Resolve  ResolveCmd  `cmd:"" help:"Resolve a profile against a catalog"`
	Validate ValidateCmd `cmd:"" help:"Check structural and referential integrity"`
	Formats  FormatsCmd  `cmd:"" help:"List codec availability"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("complykit"),
		kong.Description("Compliance-document transformation and validation engine"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// loadDocument reads and parses one input file. The format comes from
// --format when given, otherwise from the file extension.
func loadDocument(path, format string, kind string) (*doc.Document, string, error) {
	if format == "" {
		format = fileio.GuessFormat(path)
		if format == "" {
			return nil, "", fmt.Errorf("cannot guess format of %s; use --format", path)
		}
	}
	data, err := fileio.Read(path)
	if err != nil {
		return nil, "", err
	}
	d, err := codec.Parse(data, format, doc.Kind(kind))
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return d, format, nil
}

// emitDocument serializes a document and writes it to the output path,
// or to stdout when out is empty.
func emitDocument(d *doc.Document, format, out string) error {
	data, err := codec.Serialize(d, format)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := fileio.Write(out, data); err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", out)
	return nil
}

// printFingerprint reports a document's content digests the way every
// transformation output is labeled.
func printFingerprint(d *doc.Document) {
	hashes := doc.Hashes(d)
	fmt.Printf("  Kind: %s\n", d.Kind)
	fmt.Printf("  BLAKE3: %s\n", hashes.BLAKE3)
	fmt.Printf("  SHA-256: %s\n", hashes.SHA256)
}

// ConvertCmd converts a document between serialization formats.
type ConvertCmd struct {
	Path   string `arg:"" help:"Input document" type:"existingfile"`
	To     string `required:"" help:"Target format (json|yaml|xml)"`
	Format string `help:"Input format; guessed from extension when omitted"`
	Kind   string `help:"Document kind when not inferable from content"`
	Out    string `short:"o" help:"Output path; stdout when omitted" type:"path"`
}

func (c *ConvertCmd) Run() error {
	d, from, err := loadDocument(c.Path, c.Format, c.Kind)
	if err != nil {
		return err
	}
	if err := emitDocument(d, c.To, c.Out); err != nil {
		return err
	}
	if c.Out != "" {
		fmt.Printf("Converted %s -> %s\n", from, c.To)
		printFingerprint(d)
	}
	return nil
}

// SplitCmd partitions a document into sub-documents.
type SplitCmd struct {
	Path     string `arg:"" help:"Input document" type:"existingfile"`
	Strategy string `required:"" help:"Strategy: by-group, by-control, by-control-family, by-component"`
	Format   string `help:"Input format; guessed from extension when omitted"`
	Kind     string `help:"Document kind when not inferable from content"`
	OutDir   string `name:"out-dir" default:"." help:"Output directory" type:"path"`
}

func (c *SplitCmd) Run() error {
	d, format, err := loadDocument(c.Path, c.Format, c.Kind)
	if err != nil {
		return err
	}
	parts, err := split.Split(d, split.Strategy(c.Strategy))
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		fmt.Println("Strategy matched nothing; no output written")
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
	for i, part := range parts {
		out := filepath.Join(c.OutDir,
			fmt.Sprintf("%s-%03d.%s", base, i+1, format))
		if err := emitDocument(part, format, out); err != nil {
			return err
		}
	}
	fmt.Printf("Split into %d documents\n", len(parts))
	return nil
}

// MergeCmd recomposes same-kind documents into one.
type MergeCmd struct {
	Paths  []string `arg:"" help:"Input documents" type:"existingfile"`
	Format string   `help:"Input format; guessed from extension when omitted"`
	Kind   string   `help:"Document kind when not inferable from content"`
	Out    string   `short:"o" help:"Output path; stdout when omitted" type:"path"`
}

func (c *MergeCmd) Run() error {
	var docs []*doc.Document
	var format string
	for _, path := range c.Paths {
		d, f, err := loadDocument(path, c.Format, c.Kind)
		if err != nil {
			return err
		}
		if format == "" {
			format = f
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no input documents")
	}

	kind := doc.Kind(c.Kind)
	if kind == "" {
		kind = docs[0].Kind
	}
	merged, err := merge.Merge(docs, kind)
	if err != nil {
		return err
	}
	if err := emitDocument(merged, format, c.Out); err != nil {
		return err
	}
	if c.Out != "" {
		fmt.Printf("Merged %d documents\n", len(docs))
		printFingerprint(merged)
	}
	return nil
}

// ResolveCmd resolves a profile's tailoring against a catalog.
type ResolveCmd struct {
	Profile string `arg:"" help:"Profile document" type:"existingfile"`
	Catalog string `arg:"" help:"Catalog document" type:"existingfile"`
	Format  string `help:"Input format; guessed from extension when omitted"`
	Out     string `short:"o" help:"Output path; stdout when omitted" type:"path"`
}

func (c *ResolveCmd) Run() error {
	p, format, err := loadDocument(c.Profile, c.Format, string(doc.Profile))
	if err != nil {
		return err
	}
	cat, _, err := loadDocument(c.Catalog, c.Format, string(doc.Catalog))
	if err != nil {
		return err
	}

	result, err := profile.Resolve(p, cat)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}

	resolved := result.Catalog(p)
	if err := emitDocument(resolved, format, c.Out); err != nil {
		return err
	}
	if c.Out != "" {
		fmt.Printf("Resolved %d controls (%d warnings)\n",
			len(result.Controls), len(result.Warnings))
		printFingerprint(resolved)
	}
	return nil
}

// ValidateCmd checks structural and referential integrity.
type ValidateCmd struct {
	Path   string `arg:"" help:"Input document" type:"existingfile"`
	Format string `help:"Input format; guessed from extension when omitted"`
	Kind   string `help:"Document kind when not inferable from content"`
}

func (c *ValidateCmd) Run() error {
	d, _, err := loadDocument(c.Path, c.Format, c.Kind)
	if err != nil {
		return err
	}
	result := validate.Validate(d)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %v\n", w)
	}
	if !result.Valid() {
		return fmt.Errorf("validation failed: %d errors, %d warnings",
			len(result.Errors), len(result.Warnings))
	}
	fmt.Printf("Valid (%d warnings)\n", len(result.Warnings))
	return nil
}

// FormatsCmd lists codec availability for this process.
type FormatsCmd struct{}

func (c *FormatsCmd) Run() error {
	available := make(map[string]bool)
	for _, name := range codec.Formats() {
		available[name] = true
	}
	for _, name := range []string{"json", "yaml", "xml"} {
		status := "unavailable"
		if available[name] {
			status = "available"
		}
		fmt.Printf("%-6s %s\n", name, status)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("complykit %s\n", version)
	return nil
}
