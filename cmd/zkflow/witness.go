package main

import (
	"fmt"
	"os"

	"github.com/ing-bank/zkflow-sub006/crypto/digest"
	"github.com/ing-bank/zkflow-sub006/log"
	"github.com/ing-bank/zkflow-sub006/merkle"
	"github.com/ing-bank/zkflow-sub006/util"
	"github.com/ing-bank/zkflow-sub006/witness"
	"github.com/spf13/cobra"
)

// witnessFile is the document written by the witness command and read by
// verify and prove.
type witnessFile struct {
	Layout      string              `json:"layout"`
	Digest      string              `json:"digest"`
	Witness     *witness.Witness    `json:"witness"`
	PublicInput *merkle.PublicInput `json:"publicInput"`
}

var witnessFlags struct {
	Out        string
	Digest     string
	RandomSalt bool
}

var witnessCmd = &cobra.Command{
	Use:   "witness <layout> <transaction.json>",
	Short: "Build the witness and public input of a transaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := loadLayout(args[0])
		if err != nil {
			return err
		}
		d, err := commandDigest(witnessFlags.Digest)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		tx, err := witness.ParseTransaction(data)
		if err != nil {
			return err
		}
		if len(tx.PrivacySalt) == 0 && witnessFlags.RandomSalt {
			tx.PrivacySalt = util.RandomBytes(digest.Size)
		}
		w, err := witness.FromValues(l, tx)
		if err != nil {
			return err
		}
		pub, err := merkle.NewPublicInput(d, w)
		if err != nil {
			return err
		}
		log.Infow("witness built", "layout", l.Name, "digest", d.Name(), "txid", fmt.Sprintf("%x", []byte(pub.TransactionID)))
		return writeJSON(witnessFlags.Out, &witnessFile{
			Layout:      l.Name,
			Digest:      d.Name(),
			Witness:     w,
			PublicInput: pub,
		})
	},
}

// commandDigest returns the digest named by a command flag, or the one of
// the config when the flag is empty.
func commandDigest(name string) (digest.Digest, error) {
	if name == "" {
		return conf.Digest()
	}
	return digest.ByName(name)
}

func init() {
	witnessCmd.Flags().StringVarP(&witnessFlags.Out, "out", "o", "", "output file (default stdout)")
	witnessCmd.Flags().StringVar(&witnessFlags.Digest, "digest", "", "digest overriding the config")
	witnessCmd.Flags().BoolVar(&witnessFlags.RandomSalt, "random-salt", false, "draw the privacy salt when the transaction has none")
}
