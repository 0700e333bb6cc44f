package service

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/ing-bank/zkflow-sub006/circuits"
)

func TestLoadArtifacts(t *testing.T) {
	c := qt.New(t)
	circuits.BaseDir = t.TempDir()

	stored, err := circuits.StoreArtifact([]byte("verifying key"))
	c.Assert(err, qt.IsNil)
	ca := circuits.NewCircuitArtifacts(nil, nil, &circuits.Artifact{Hash: stored.Hash})
	c.Assert(LoadArtifacts(time.Second, map[string]*circuits.CircuitArtifacts{"move": ca}), qt.IsNil)
	c.Assert([]byte(ca.VerifyingKey()), qt.DeepEquals, []byte("verifying key"))

	missing := circuits.NewCircuitArtifacts(&circuits.Artifact{Hash: make([]byte, 32)}, nil, nil)
	err = LoadArtifacts(time.Second, map[string]*circuits.CircuitArtifacts{"issue": missing})
	c.Assert(err, qt.ErrorMatches, `layout issue: error loading circuit definition: .*`)
}
