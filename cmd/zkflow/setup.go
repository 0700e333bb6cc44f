package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ing-bank/zkflow-sub006/circuits"
	"github.com/ing-bank/zkflow-sub006/circuits/txwitness"
	"github.com/ing-bank/zkflow-sub006/config"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var setupFlags struct {
	Export string
}

var setupCmd = &cobra.Command{
	Use:   "setup <layout>",
	Short: "Compile the witness circuit of a layout and generate its keys",
	Long: `Setup compiles the circuit checking witnesses of a layout, runs the
groth16 setup and stores the artifacts in the local cache. It prints the
artifacts entry to add to the config file.
With --export the artifacts are also written under readable names, ready
to be uploaded where the url entries point to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		if err := txwitness.CheckDigest(conf.Witness.Digest); err != nil {
			log.Warnw("witnesses built with the configured digest cannot be proven", "error", err)
		}
		keys, err := txwitness.Setup(l)
		if err != nil {
			return err
		}
		ca, err := keys.Store()
		if err != nil {
			return err
		}
		if setupFlags.Export != "" {
			for name, obj := range map[string]io.WriterTo{
				l.Name + ".ccs": keys.CS,
				l.Name + ".pk":  keys.PK,
				l.Name + ".vk":  keys.VK,
			} {
				if err := circuits.WriteFile(filepath.Join(setupFlags.Export, name), obj); err != nil {
					return err
				}
			}
		}
		hashes := ca.Hashes()
		entry := map[string]map[string]config.ArtifactsConfig{
			"artifacts": {
				l.Name: {
					Circuit:      config.ArtifactConfig{Hash: hex.EncodeToString(hashes[0])},
					ProvingKey:   config.ArtifactConfig{Hash: hex.EncodeToString(hashes[1])},
					VerifyingKey: config.ArtifactConfig{Hash: hex.EncodeToString(hashes[2])},
				},
			},
		}
		out, err := yaml.Marshal(entry)
		if err != nil {
			return err
		}
		fmt.Printf("# stored in %s\n%s", circuits.BaseDir, out)
		return nil
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupFlags.Export, "export", "", "also write the artifacts to this directory, to publish them")
}
