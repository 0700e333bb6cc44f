package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ing-bank/zkflow-sub006/circuitgen"
	"github.com/ing-bank/zkflow-sub006/circuitgen/printer"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	Out    string
	OutDir string
}

var generateCmd = &cobra.Command{
	Use:   "generate [layout]",
	Short: "Generate the circuit types of a layout",
	Long: `Generate prints the Go source with the circuit types of a layout.
Without a layout, every layout of the catalog is written to its own package
under --out-dir.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			l, err := catalog.Layout(args[0])
			if err != nil {
				return err
			}
			src, err := printer.Layout(l)
			if err != nil {
				return err
			}
			out, err := output(generateFlags.Out)
			if err != nil {
				return err
			}
			if _, err := out.Write(src); err != nil {
				out.Close()
				return err
			}
			return out.Close()
		}
		if generateFlags.OutDir == "" {
			return fmt.Errorf("either a layout or --out-dir is required")
		}
		// render every layout before writing so a failing one leaves no
		// packages behind
		type pkgSource struct {
			layout, path string
			src          []byte
		}
		var pkgs []pkgSource
		for _, name := range catalog.Names() {
			l, err := catalog.Layout(name)
			if err != nil {
				return err
			}
			src, err := printer.Layout(l)
			if err != nil {
				return fmt.Errorf("layout %s: %w", name, err)
			}
			pkg := circuitgen.PackageName(name)
			pkgs = append(pkgs, pkgSource{
				layout: name,
				path:   filepath.Join(generateFlags.OutDir, pkg, pkg+".go"),
				src:    src,
			})
		}
		for _, p := range pkgs {
			if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(p.path, p.src, 0o644); err != nil {
				return err
			}
			log.Infow("circuit types generated", "layout", p.layout, "path", p.path)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.Out, "out", "o", "", "output file (default stdout)")
	generateCmd.Flags().StringVar(&generateFlags.OutDir, "out-dir", "", "directory for the packages of all layouts")
}
