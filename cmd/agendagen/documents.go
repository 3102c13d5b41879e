package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/export"
	"github.com/dgallion1/agendagen/internal/outline"
	"github.com/dgallion1/agendagen/internal/parser"
	"github.com/dgallion1/agendagen/internal/printengine"
	"github.com/dgallion1/agendagen/internal/render"
	"github.com/dgallion1/agendagen/internal/schema"
	"github.com/dgallion1/agendagen/internal/seed"
)

// readDocument parses any supported file into a document.
func readDocument(path string) (*doctree.Document, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Parse(f, filepath.Base(path))
}

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Print the markup of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		markup, err := render.Convert(doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
		return err
	},
}

var pageTitle string

var pageCmd = &cobra.Command{
	Use:   "page FILE",
	Short: "Print a document as a standalone HTML page with the print stylesheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		markup, err := render.Convert(doc)
		if err != nil {
			return err
		}
		page, err := render.Page(markup, render.PageOptions{Title: pageTitle})
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), page)
		return err
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Print the JSON document tree of a markup or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		return doc.Encode(cmd.OutOrStdout())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a document against the node type registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if err := schema.Default().ValidateDocument(doc, false); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		nodes := 0
		doctree.Walk(doc.Root, func(*doctree.Node, []int) bool {
			nodes++
			return true
		})
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d blocks, %d nodes)\n", args[0], len(doc.Blocks()), nodes)
		return err
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Print the node tree of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), doctree.Dump(doc.Root))
		return err
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline FILE",
	Short: "Print the sections of a document with their word counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		sections := outline.Build(schema.Default(), doc)
		for _, s := range sections {
			title := strings.Join(s.Breadcrumb, " > ")
			if title == "" {
				title = "(untitled)"
			}
			if _, err := fmt.Fprintf(out, "%d. %s (%d words)\n", s.Index+1, title, s.Words); err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(out, "%d sections, %d words\n", len(sections), outline.Words(sections))
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [NAME]",
	Short: "Print a seed document, or list the seeds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range seed.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}
		b, err := seed.Raw(args[0])
		if err != nil {
			return err
		}
		_, err = out.Write(b)
		return err
	},
}

var (
	exportFormat  string
	exportOut     string
	exportEngine  string
	exportTitle   string
	exportTimeout time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export a document as html, pdf, docx or md",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}

		var engine export.Engine
		if exportEngine != "" {
			client := printengine.NewClient(exportEngine, exportTimeout)
			defer client.Close()
			engine = client
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
		defer cancel()

		base := filepath.Base(args[0])
		base = base[:len(base)-len(filepath.Ext(base))]
		art, err := export.New(nil, engine).Export(ctx, doc, format, export.Options{Title: exportTitle, Basename: base})
		if err != nil {
			return err
		}

		if exportOut == "-" {
			_, err = cmd.OutOrStdout().Write(art.Body)
			return err
		}
		dest := exportOut
		if dest == "" {
			dest = art.Filename
		}
		if err := os.WriteFile(dest, art.Body, 0o644); err != nil {
			return err
		}
		msg := fmt.Sprintf("wrote %s (%d bytes", dest, art.Size())
		if art.Pages > 0 {
			msg += fmt.Sprintf(", %d pages", art.Pages)
		}
		_, err = fmt.Fprintln(cmd.ErrOrStderr(), msg+")")
		return err
	},
}

func init() {
	pageCmd.Flags().StringVar(&pageTitle, "title", "", "page title")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "html", "output format (html, pdf, docx, md)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", `output file, "-" for stdout (default: derived from FILE)`)
	exportCmd.Flags().StringVar(&exportEngine, "engine", os.Getenv("PRINT_ENGINE_URL"), "print engine base URL, required for pdf")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "document title")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 2*time.Minute, "export timeout")

	rootCmd.AddCommand(convertCmd, pageCmd, parseCmd, validateCmd, treeCmd, outlineCmd, seedCmd, exportCmd)
}
