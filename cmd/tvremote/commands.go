package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/tvremote/internal/control"
	"github.com/muurk/tvremote/internal/device"
	"github.com/muurk/tvremote/internal/keymap"
	"github.com/muurk/tvremote/internal/logging"
	"github.com/muurk/tvremote/internal/server"
	"github.com/muurk/tvremote/internal/tui"
)

// Command flags
var (
	scanTimeout   time.Duration
	jsonOutput    bool
	connectVendor string
	connectName   string
	sendDelay     time.Duration
	buttonsVendor string
	serveListen   string
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(buttonsCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(serveCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// scanCmd discovers TVs on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the network for TVs",
	Long: `Scan the local network for TVs using SSDP and DNS-SD (mDNS).

Both discovery mechanisms run concurrently until the timeout expires or
you press Ctrl+C. Devices found by both are listed once.`,
	Example: `  # Scan with the configured timeout (30s by default)
  tvremote scan

  # Quick scan
  tvremote scan --timeout 5s

  # JSON output for scripting
  tvremote scan --json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 0, "Scan timeout (default from config, 30s)")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print devices as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanTimeout > 0 {
		cfg.Discovery.ScanTimeout = scanTimeout
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	out := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprintf(out, "Scanning for TVs (timeout: %s)...\n\n", cfg.Discovery.ScanTimeout)
	}

	a.remote.StartDiscovery()
	select {
	case <-a.remote.DiscoveryDone():
	case <-ctx.Done():
		a.remote.StopDiscovery()
	}

	state := a.remote.State()
	if state.DiscoveryError != "" {
		logging.Warn("discovery reported an error", zap.String("error", state.DiscoveryError))
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", state.DiscoveryError)
	}

	if jsonOutput {
		devices := state.Devices
		if devices == nil {
			devices = []*device.Device{}
		}
		return writeJSON(out, devices)
	}

	if len(state.Devices) == 0 {
		fmt.Fprintln(out, "No TVs found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Make sure the TV is on and on the same network")
		fmt.Fprintln(out, "  - Some networks block multicast; try a wired connection")
		fmt.Fprintln(out, "  - Try a longer --timeout")
		fmt.Fprintln(out, "  - Use 'tvremote connect <host> --vendor <vendor>' to add a TV by address")
		return nil
	}

	fmt.Fprintf(out, "Found %d TV(s):\n\n", len(state.Devices))
	for i, d := range state.Devices {
		fmt.Fprintf(out, "%d. %s\n", i+1, d.Name)
		fmt.Fprintf(out, "   Type:    %s\n", d.Vendor.DisplayName())
		fmt.Fprintf(out, "   Address: %s\n", d.Address())
		if d.Model != "" {
			fmt.Fprintf(out, "   Model:   %s\n", d.Model)
		}
		fmt.Fprintf(out, "   Found:   %s\n", d.Source)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Use 'tvremote connect <address> --vendor <type>' to select one")

	return nil
}

// connectCmd selects a TV by address and remembers it
var connectCmd = &cobra.Command{
	Use:   "connect <host[:port]>",
	Short: "Connect to a TV by address and remember it",
	Long: `Select a TV by address. The TV is remembered and used by 'send',
'remote' and 'serve' until you connect to another or run 'forget'.

When the port is omitted, the vendor's usual control port is used
(roku 8060, samsung 8001, lg 3000, appletv 3689).`,
	Example: `  tvremote connect 192.168.1.20 --vendor roku
  tvremote connect 192.168.1.30:8001 --vendor samsung --name "Lounge TV"`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&connectVendor, "vendor", "roku", "TV type: roku, samsung, lg, appletv")
	connectCmd.Flags().StringVar(&connectName, "name", "", "Display name")
}

func runConnect(cmd *cobra.Command, args []string) error {
	vendor, err := device.ParseVendor(connectVendor)
	if err != nil {
		return err
	}
	d, err := device.NewManual(args[0], vendor)
	if err != nil {
		return err
	}
	if connectName != "" {
		d.Name = connectName
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	if err := a.remote.Connect(cmd.Context(), d); err != nil {
		return err
	}
	defer a.remote.Disconnect()

	if msg := a.remote.State().LastError; msg != "" {
		return fmt.Errorf("connected but %s", msg)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Connected to %s\n", d)
	return nil
}

// sendCmd presses buttons on the remembered TV
var sendCmd = &cobra.Command{
	Use:   "send <button>...",
	Short: "Press one or more buttons on the connected TV",
	Long: `Press buttons on the remembered TV, in order. Stops at the first failure.

Run 'tvremote buttons' for the list of button names. Digits can be given
bare ("7"), and vol+/vol-/ch+/ch- are accepted as shorthands.`,
	Example: `  tvremote send home
  tvremote send vol+ vol+ vol+
  tvremote send 1 0 1 select`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().DurationVar(&sendDelay, "delay", 250*time.Millisecond, "Pause between presses")
}

func runSend(cmd *cobra.Command, args []string) error {
	buttons := make([]device.Button, 0, len(args))
	for _, arg := range args {
		b, err := device.ParseButton(arg)
		if err != nil {
			return err
		}
		buttons = append(buttons, b)
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	if err := a.restore(ctx); err != nil {
		return err
	}
	defer a.remote.Disconnect()

	out := cmd.OutOrStdout()
	for i, b := range buttons {
		if i > 0 && sendDelay > 0 {
			select {
			case <-time.After(sendDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := a.remote.SendCommand(ctx, b); err != nil {
			if hint := control.TroubleshootingHint(err); hint != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Hint: %s\n", hint)
			}
			return fmt.Errorf("%s: %s", b, control.ShortMessage(err))
		}
		fmt.Fprintf(out, "✓ %s\n", b.Glyph())
	}
	return nil
}

// statusCmd shows the remembered TV
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remembered TV",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		d, err := a.store.Load()
		if err != nil {
			return fmt.Errorf("failed to read last device: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return writeJSON(out, d)
		}
		if d == nil {
			fmt.Fprintln(out, "No TV remembered.")
			return nil
		}

		fmt.Fprintf(out, "Name:    %s\n", d.Name)
		fmt.Fprintf(out, "Type:    %s\n", d.Vendor.DisplayName())
		fmt.Fprintf(out, "Address: %s\n", d.Address())
		if d.LastConnected != nil {
			fmt.Fprintf(out, "Last:    %s\n", d.LastConnected.Local().Format(time.RFC1123))
		}
		fmt.Fprintf(out, "Stored:  %s\n", a.store.Path())
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the device as JSON")
}

// forgetCmd clears the remembered TV
var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forget the remembered TV",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		if err := a.remote.Forget(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Forgot the last connected TV.")
		return nil
	},
}

// buttonsCmd lists buttons and their protocol tokens
var buttonsCmd = &cobra.Command{
	Use:   "buttons",
	Short: "List buttons and the command each TV type receives",
	Example: `  tvremote buttons
  tvremote buttons --vendor samsung`,
	RunE: runButtons,
}

func init() {
	buttonsCmd.Flags().StringVar(&buttonsVendor, "vendor", "", "Show tokens for one TV type only")
}

func runButtons(cmd *cobra.Command, args []string) error {
	vendors := []device.Vendor{device.VendorRoku, device.VendorSamsung, device.VendorLG, device.VendorAppleTV}
	if buttonsVendor != "" {
		v, err := device.ParseVendor(buttonsVendor)
		if err != nil {
			return err
		}
		vendors = []device.Vendor{v}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderButtonTable(vendors))
	return nil
}

func renderButtonTable(vendors []device.Vendor) string {
	headers := []string{"BUTTON", "KEY"}
	for _, v := range vendors {
		headers = append(headers, v.DisplayName())
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.SubtleColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(tui.PrimaryColor).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)

	for _, b := range device.Buttons {
		row := []string{string(b), b.Glyph()}
		for _, v := range vendors {
			token := keymap.Command(b, v)
			if token == keymap.NoMapping {
				token = "-"
			}
			row = append(row, token)
		}
		t.Row(row...)
	}
	return t.String()
}

// remoteCmd opens the full-screen remote
var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Open the interactive terminal remote",
	Long: `Open the full-screen remote. If a TV is remembered it connects straight
away; otherwise a scan starts and you pick a TV from the list.`,
	RunE: runRemote,
}

func runRemote(cmd *cobra.Command, args []string) error {
	if !tui.IsTerminal(os.Stdout) {
		return fmt.Errorf("the interactive remote needs a terminal; use 'tvremote send' in scripts")
	}

	haptics := tui.NewHaptics()
	a, err := newApp(haptics)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	if _, err := a.remote.Restore(ctx); err != nil {
		logging.Warn("failed to restore last device", zap.Error(err))
	}
	defer a.remote.Disconnect()

	return tui.Run(ctx, a.remote, haptics)
}

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the remote over a local HTTP API",
	Long: `Serve a JSON API, a WebSocket event stream and Prometheus metrics so
other programs can drive the remote. The remembered TV is reconnected on
start. Stop with Ctrl+C.`,
	Example: `  tvremote serve
  tvremote serve --listen 127.0.0.1:7420
  curl -X POST localhost:7420/api/buttons/home`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, :7420)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	if _, err := a.remote.Restore(cmd.Context()); err != nil {
		logging.Warn("failed to restore last device", zap.Error(err))
	}
	defer a.remote.Disconnect()

	srv, err := server.New(&server.Config{
		Listen:  cfg.Server.Listen,
		Remote:  a.remote,
		Metrics: a.metrics,
		Logger:  logging.Named("server"),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (Ctrl+C to stop)\n", cfg.Server.Listen)
	return srv.Start()
}
