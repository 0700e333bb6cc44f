package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ing-bank/zkflow-sub006/circuits/txwitness"
	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/spf13/cobra"
)

var proveFlags struct {
	Out     string
	Timeout time.Duration
}

var proveCmd = &cobra.Command{
	Use:   "prove <witness.json>",
	Short: "Prove that a witness hashes to its transaction id",
	Long: `Prove loads the circuit artifacts configured for the layout of a witness
file, generates a groth16 proof of the witness and checks it against the
public input. The circuit hashes with MiMC: witness files built with any
other digest are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var wf witnessFile
		if err := readJSON(args[0], &wf); err != nil {
			return err
		}
		if wf.Witness == nil {
			return fmt.Errorf("%s holds no witness", args[0])
		}
		if err := txwitness.CheckDigest(wf.Digest); err != nil {
			return err
		}
		d, err := digest.ByName(wf.Digest)
		if err != nil {
			return err
		}
		ac, ok := conf.Artifacts[wf.Layout]
		if !ok {
			return fmt.Errorf("no artifacts configured for layout %q, run setup first", wf.Layout)
		}
		ca, err := ac.CircuitArtifacts()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), proveFlags.Timeout)
		defer cancel()
		keys, err := txwitness.LoadKeys(ctx, ca)
		if err != nil {
			return err
		}
		start := time.Now()
		proof, pub, err := keys.Prove(d, wf.Witness)
		if err != nil {
			return err
		}
		log.Infow("proof generated", "layout", wf.Layout, "took", time.Since(start).String())
		if err := txwitness.VerifyProof(keys.VK, proof, pub); err != nil {
			return err
		}
		out, err := output(proveFlags.Out)
		if err != nil {
			return err
		}
		if _, err := proof.WriteTo(out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	},
}

func init() {
	proveCmd.Flags().StringVarP(&proveFlags.Out, "out", "o", "", "proof output file (default stdout)")
	proveCmd.Flags().DurationVar(&proveFlags.Timeout, "timeout", 5*time.Minute, "artifact download timeout")
}
