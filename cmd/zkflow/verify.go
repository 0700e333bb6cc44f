package main

import (
	"fmt"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/spf13/cobra"
)

var verifyFlags struct {
	PublicInput string
}

var verifyCmd = &cobra.Command{
	Use:   "verify <witness.json>",
	Short: "Check a witness against its public input",
	Long: `Verify recomputes the transaction id and UTXO hashes of a witness file
and compares them with its public input, or with the one given by
--public-input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var wf witnessFile
		if err := readJSON(args[0], &wf); err != nil {
			return err
		}
		if wf.Witness == nil {
			return fmt.Errorf("%s holds no witness", args[0])
		}
		pub := wf.PublicInput
		if verifyFlags.PublicInput != "" {
			pub = &merkle.PublicInput{}
			if err := readJSON(verifyFlags.PublicInput, pub); err != nil {
				return err
			}
		}
		if pub == nil {
			return fmt.Errorf("no public input to verify against")
		}
		d, err := digest.ByName(wf.Digest)
		if err != nil {
			return err
		}
		res, err := merkle.Verify(d, wf.Witness, pub)
		if err != nil {
			return err
		}
		if err := writeJSON("", res); err != nil {
			return err
		}
		if !res.Valid {
			return fmt.Errorf("witness does not match its public input")
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyFlags.PublicInput, "public-input", "p", "", "public input file")
}
