package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/nao1215/drawtopia/internal/model"
	"github.com/nao1215/drawtopia/internal/pdfdoc"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <pdf>...",
		Short: "Show page count, page sizes and metadata of PDF files",
		Long: `Info reads each PDF and prints its fingerprint, PDF version, page
count, the size of every page and the document information dictionary.

Examples:
  # Show page sizes in points
  drawtopia info plan.pdf

  # Show page sizes in millimetres
  drawtopia info --unit mm plan.pdf

  # Machine-readable output
  drawtopia info --json a.pdf b.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInfoCmd,
	}

	cmd.Flags().StringP("unit", "u", "pt", "Unit for page sizes: pt, in, mm or cm")
	cmd.Flags().StringP("password", "p", "", "Password for encrypted PDFs")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// documentInfo is the info command's view of one PDF.
type documentInfo struct {
	File        string      `json:"file"`
	Fingerprint string      `json:"fingerprint"`
	Version     string      `json:"version,omitempty"`
	PageCount   int         `json:"page_count"`
	Unit        string      `json:"unit"`
	Pages       []pageInfo  `json:"pages"`
	Info        pdfdoc.Info `json:"info"`
	Error       string      `json:"error,omitempty"`
}

type pageInfo struct {
	Number   int     `json:"number"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation int     `json:"rotation"`
}

func runInfoCmd(cmd *cobra.Command, args []string) error {
	unitName, err := cmd.Flags().GetString("unit")
	if err != nil {
		return err
	}
	unit, err := model.ParseUnit(unitName)
	if err != nil {
		return err
	}
	password, err := cmd.Flags().GetString("password")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	infos := make([]documentInfo, 0, len(args))
	var errs []error
	for _, path := range args {
		info, err := readInfo(path, unit, password)
		if err != nil {
			errs = append(errs, err)
			info.Error = err.Error()
		}
		infos = append(infos, info)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return err
		}
	} else {
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printInfo(out, info)
		}
	}

	return errors.Join(errs...)
}

func readInfo(path string, unit model.Unit, password string) (documentInfo, error) {
	info := documentInfo{
		File: filepath.Base(path),
		Unit: unit.Name,
	}

	doc, err := pdfdoc.ReadFile(path, pdfdoc.WithPassword(password))
	if err != nil {
		return info, fmt.Errorf("%s: %w", path, err)
	}

	info.Fingerprint = doc.Fingerprint
	info.Version = doc.Version
	info.PageCount = doc.PageCount()
	info.Info = doc.Info
	for _, p := range doc.Pages {
		info.Pages = append(info.Pages, pageInfo{
			Number:   p.Number,
			Width:    unit.Length(p.Width()),
			Height:   unit.Length(p.Height()),
			Rotation: p.Rotation,
		})
	}
	return info, nil
}

func printInfo(out io.Writer, info documentInfo) {
	fmt.Fprintf(out, "%s\n", info.File)
	if info.Error != "" {
		fmt.Fprintf(out, "  Error:       %s\n", info.Error)
		return
	}

	fmt.Fprintf(out, "  Fingerprint: %s\n", info.Fingerprint)
	if info.Version != "" {
		fmt.Fprintf(out, "  Version:     %s\n", info.Version)
	}
	fmt.Fprintf(out, "  Pages:       %d\n", info.PageCount)
	for _, field := range []struct{ name, value string }{
		{"Title", info.Info.Title},
		{"Author", info.Info.Author},
		{"Subject", info.Info.Subject},
		{"Creator", info.Info.Creator},
		{"Producer", info.Info.Producer},
	} {
		if field.value != "" {
			fmt.Fprintf(out, "  %-12s %s\n", field.name+":", field.value)
		}
	}

	fmt.Fprintf(out, "\n  %-6s  %10s  %10s  %s\n", "Page", "Width", "Height", "Rotation")
	for _, p := range info.Pages {
		fmt.Fprintf(out, "  %-6d  %10.2f  %10.2f  %d\n", p.Number, p.Width, p.Height, p.Rotation)
	}
	fmt.Fprintf(out, "  (sizes in %s)\n", info.Unit)
}
