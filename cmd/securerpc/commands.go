// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/securerpc"
)

// flags holds the persistent command line options. Flags that are set win over
// the config file and the environment.
type flags struct {
	ConfigFile string
	Timeout    time.Duration
	Proxy      string
	Transport  string
	LogLevel   string
	Verbose    bool
}

type app struct {
	flags flags
	logs  *securerpc.LogBuffer
}

func newApp() *app {
	return &app{logs: securerpc.NewLogBuffer(securerpc.DefaultLogLines)}
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "securerpc",
		Short: "Encrypted JSON-RPC client",
		Long: `Talks to a server that accepts ECDH-sealed JSON-RPC calls.

Addresses pin the server key by fingerprint: http://<fingerprint>@host:port.
The fingerprint is the SHA-256 of the server's raw public key, as printed by
the discover and fingerprint commands.`,
		Example: `  # Learn a server's fingerprint before pinning it
  securerpc discover http://127.0.0.1:8080

  # Check that a pinned server is new enough
  securerpc check http://<fingerprint>@127.0.0.1:8080

  # Send a call with positional parameters
  securerpc call http://<fingerprint>@127.0.0.1:8080 deployment_cost '["program a.aleo;", null]'`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.ConfigFile, "config", "c", "", "TOML configuration file")
	pf.DurationVarP(&a.flags.Timeout, "timeout", "t", 0, "timeout for each HTTP exchange")
	pf.StringVar(&a.flags.Proxy, "proxy", "", "http, https or socks5 proxy URL")
	pf.StringVar(&a.flags.Transport, "transport", "", "call transport ("+strings.Join(securerpc.AvailableTransports(), ", ")+")")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "logging level (debug, info, warn, error)")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "print the client log after the command")

	cmd.AddCommand(
		a.discoverCommand(),
		a.fingerprintCommand(),
		a.checkCommand(),
		a.callCommand(),
		a.proxyTestCommand(),
	)
	return cmd
}

// config merges the config file, the environment and the flags, in that order.
func (a *app) config(cmd *cobra.Command) (*securerpc.Config, error) {
	cfg := new(securerpc.Config)
	if a.flags.ConfigFile != "" {
		var err error
		if cfg, err = securerpc.LoadFile(a.flags.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("timeout") {
		cfg.Timeout = a.flags.Timeout
	}
	if f.Changed("proxy") {
		cfg.Proxy = a.flags.Proxy
	}
	if f.Changed("transport") {
		cfg.Transport = a.flags.Transport
	}
	if f.Changed("log-level") {
		cfg.LogLevel = a.flags.LogLevel
	}
	return cfg, cfg.Validate()
}

func (a *app) logger(cfg *securerpc.Config) (*slog.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(a.logs.Handler(&slog.HandlerOptions{Level: lvl})), nil
}

// dial connects to addr, or to the configured address when addr is empty.
func (a *app) dial(cmd *cobra.Command, addr string) (*securerpc.Client, error) {
	cfg, err := a.config(cmd)
	if err != nil {
		return nil, err
	}
	if addr == "" {
		addr = cfg.Addr
	}
	if addr == "" {
		return nil, errors.New("no server address given")
	}
	log, err := a.logger(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options(securerpc.NewProxySettings())
	if err != nil {
		return nil, err
	}
	opts = append(opts, securerpc.WithLogger(log))
	return securerpc.Dial(cmd.Context(), addr, opts...)
}

// dumpLogs writes the buffered client log when --verbose is set.
func (a *app) dumpLogs(w io.Writer) {
	if !a.flags.Verbose {
		return
	}
	for _, line := range a.logs.Lines() {
		_, _ = fmt.Fprintln(w, line)
	}
}

func (a *app) discoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <address>",
		Short: "Show what a server advertises, without trusting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, pinned, err := discoveryBase(args[0])
			if err != nil {
				return err
			}
			cfg, err := a.config(cmd)
			if err != nil {
				return err
			}
			proxy := securerpc.NewProxySettings()
			if err := proxy.Set(cfg.Proxy); err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			d, err := securerpc.Discover(ctx, securerpc.NewHTTPClient(cfg.Timeout, proxy.Func()), base)
			if err != nil {
				return err
			}
			raw, err := hex.DecodeString(d.PubKey)
			if err != nil {
				return fmt.Errorf("server advertised a malformed key: %w", err)
			}

			out := cmd.OutOrStdout()
			fp := securerpc.Fingerprint(raw)
			_, _ = fmt.Fprintf(out, "version:     %s\n", d.Version)
			_, _ = fmt.Fprintf(out, "fingerprint: %s\n", fp)
			_, _ = fmt.Fprintf(out, "features:    %s\n", strings.Join(securerpc.NewFeatureSet(d.Features).List(), ", "))
			if pinned != "" {
				match := "no"
				if strings.EqualFold(pinned, fp) {
					match = "yes"
				}
				_, _ = fmt.Fprintf(out, "pinned:      %s\n", match)
			}
			return nil
		},
	}
}

// discoveryBase accepts an address with or without a fingerprint.
func discoveryBase(addr string) (*url.URL, string, error) {
	base, fp, err := securerpc.ParseAddress(addr)
	if err == nil {
		return base, fp, nil
	}
	if !errors.Is(err, securerpc.ErrNoFingerprint) {
		return nil, "", err
	}
	base, err = url.Parse(addr)
	if err != nil {
		return nil, "", err
	}
	if base.Path == "" {
		base.Path = "/"
	}
	return base, "", nil
}

func (a *app) fingerprintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <public-key-hex>",
		Short: "Print the fingerprint of a hex encoded public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid argument: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), securerpc.Fingerprint(raw))
			return err
		},
	}
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [address]",
		Short: "Pin a server and check its version",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.dial(cmd, firstArg(args))
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.CheckVersion(cmd.Context()); err != nil {
				return err
			}
			s := c.Server()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s version %s (minimum %s)\n", s.URL, s.Version, securerpc.MinimumVersion)
			return err
		},
	}
}

func (a *app) callCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call <address> <method> [params-json-array]",
		Short: "Send one encrypted call and print the raw JSON-RPC response",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := []any{}
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &params); err != nil {
					return fmt.Errorf("invalid argument: params must be a JSON array: %w", err)
				}
			}
			c, err := a.dial(cmd, args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			body, err := c.CallRaw(cmd.Context(), args[1], params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
			return err
		},
	}
}

func (a *app) proxyTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "proxy-test <proxy> <address>",
		Short: "Check that a server is reachable through a proxy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := securerpc.NewProxySettings().Test(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reachable: version %s\n", version)
			return err
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
