package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ing-bank/zkflow-sub006/config"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/witness"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	Config   string
	Layouts  string
	LogLevel string
}

var (
	flags globalFlags
	conf  *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "zkflow",
	Short:         "Transaction witness and circuit tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if conf, err = config.Load(flags.Config); err != nil {
			return err
		}
		if flags.Layouts != "" {
			conf.Layouts = flags.Layouts
		}
		if flags.LogLevel != "" {
			conf.Log.Level = flags.LogLevel
		}
		log.Init(conf.Log.Level, conf.Log.Output, nil)
		return nil
	},
}

// Execute runs the root command and exits with a non zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "config file (default $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVarP(&flags.Layouts, "layouts", "l", "", "layout catalog file, overrides the config")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug|info|warn|error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(witnessCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadCatalog() (*witness.Catalog, error) {
	if conf.Layouts == "" {
		return nil, fmt.Errorf("no layout catalog, set --layouts or the layouts config entry")
	}
	data, err := os.ReadFile(conf.Layouts)
	if err != nil {
		return nil, fmt.Errorf("could not read layout catalog: %w", err)
	}
	return witness.LoadCatalog(data, nil, conf.Mode())
}

func loadLayout(name string) (*witness.Layout, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return catalog.Layout(name)
}

// output returns the file named path, or stdout when path is empty or "-".
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(path string, v any) error {
	out, err := output(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("could not decode %s: %w", path, err)
	}
	return nil
}
