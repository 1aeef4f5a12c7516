// Package config holds the in-memory configuration of spec.md §6: listener
// ports, display/network names, and configured remote-server records. There
// is deliberately no file or database backing — persistent configuration
// storage is an explicit Non-goal. CLI flags follow teacher's convention in
// pkgs/trace/service.go (a package-level cli.Flag var per option, parsed by
// the cmd entrypoint into a plain struct).
package config

import "gopkg.in/urfave/cli.v1"

var (
	ClientPortFlag = cli.IntFlag{
		Name:  "clientport",
		Value: 6667,
		Usage: "TCP port clients connect to",
	}
	ServerPortFlag = cli.IntFlag{
		Name:  "serverport",
		Value: 4400,
		Usage: "TCP port peer servers connect to",
	}
	ServerNameFlag = cli.StringFlag{
		Name:  "servername",
		Value: "irc.local",
		Usage: "this server's display name",
	}
	NetworkNameFlag = cli.StringFlag{
		Name:  "networkname",
		Value: "DevNet",
		Usage: "the network's display name",
	}
	ServerTokenFlag = cli.StringFlag{
		Name:  "servertoken",
		Value: "A",
		Usage: "this server's one-character routing token",
	}
)

// RemoteServer is a configured peer this server may link to, per spec.md
// §3 "Remote-server record".
type RemoteServer struct {
	Name    string
	Secret  string
	Addr    string
	Port    int
}

// Config is the façade's full configuration, assembled in-memory by
// cmd/ircd/main.go from CLI flags plus any programmatically-added remote
// servers (there is no config file to load them from).
type Config struct {
	ClientPort    int
	ServerPort    int
	ServerName    string
	NetworkName   string
	ServerToken   byte
	RemoteServers []RemoteServer
	// MOTD supplies the message-of-the-day lines; the provider itself is
	// an external collaborator per spec.md §1.
	MOTD func() []string
}

// FromCLIContext builds a Config from parsed flags. Remote servers are not
// flag-driven (there is no natural repeated-flag shape for triples); callers
// append to RemoteServers after construction.
func FromCLIContext(c *cli.Context) *Config {
	token := c.String(ServerTokenFlag.Name)
	var tok byte = 'A'
	if len(token) > 0 {
		tok = token[0]
	}
	return &Config{
		ClientPort:  c.Int(ClientPortFlag.Name),
		ServerPort:  c.Int(ServerPortFlag.Name),
		ServerName:  c.String(ServerNameFlag.Name),
		NetworkName: c.String(NetworkNameFlag.Name),
		ServerToken: tok,
		MOTD:        func() []string { return nil },
	}
}
