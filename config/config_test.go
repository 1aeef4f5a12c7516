package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/urfave/cli.v1"
)

func TestFromCLIContext_ReadsFlags(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.Int(ClientPortFlag.Name, 0, "")
	set.Int(ServerPortFlag.Name, 0, "")
	set.String(ServerNameFlag.Name, "", "")
	set.String(NetworkNameFlag.Name, "", "")
	set.String(ServerTokenFlag.Name, "", "")
	require := func(args ...string) {
		if err := set.Parse(args); err != nil {
			t.Fatalf("parsing flags: %v", err)
		}
	}
	require(
		"-"+ClientPortFlag.Name, "6667",
		"-"+ServerPortFlag.Name, "4400",
		"-"+ServerNameFlag.Name, "irc.example",
		"-"+NetworkNameFlag.Name, "ExampleNet",
		"-"+ServerTokenFlag.Name, "Z",
	)

	ctx := cli.NewContext(nil, set, nil)
	cfg := FromCLIContext(ctx)

	assert.Equal(t, 6667, cfg.ClientPort)
	assert.Equal(t, 4400, cfg.ServerPort)
	assert.Equal(t, "irc.example", cfg.ServerName)
	assert.Equal(t, "ExampleNet", cfg.NetworkName)
	assert.Equal(t, byte('Z'), cfg.ServerToken)
}
