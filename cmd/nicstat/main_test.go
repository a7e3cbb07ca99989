package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/nicstat/pkg/ethtool"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"run", "ethtool", "tc"}, names)
}

func TestEthtoolRequiresInterface(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"ethtool"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, root.Execute())
}

func TestRunRejectsArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"run", "extra"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, root.Execute())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	v := uint64(7)
	stats := &ethtool.Stats{NIC: map[string]*ethtool.NicStats{"eth0": {TxTimeout: &v}}}

	require.NoError(t, writeJSON(&buf, stats))
	assert.JSONEq(t, `{"nic":{"eth0":{"tx_timeout":7}}}`, buf.String())
}
