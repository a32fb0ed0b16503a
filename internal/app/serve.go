package app

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/droidusage/internal/output"
	"github.com/blackwell-systems/droidusage/internal/web"
	"github.com/spf13/cobra"
)

var serveFlagPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Serve the usage reports over HTTP as JSON endpoints for a local
dashboard. With no --port the server scans ports 3000-3999 and binds the
first one available. Stop with Ctrl-C.

Examples:
  droidusage serve
  droidusage serve --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveFlagPort, "port", 0, "Port to listen on (0 = first free port from 3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, loader, err := setup()
	if err != nil {
		return err
	}

	srv := web.NewServer(svc, loader)

	ln, err := srv.Listen(serveFlagPort)
	if err != nil {
		return fmt.Errorf("binding listener: %w", err)
	}

	port := ln.Addr().(*net.TCPAddr).Port
	fmt.Printf("Dashboard API listening on %s\n",
		output.StyleBold.Render(fmt.Sprintf("http://localhost:%d", port)))
	fmt.Println("Press Ctrl-C to stop.")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, ln)
}
