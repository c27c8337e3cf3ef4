package commands

import (
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/kralicky/tools-lite/pkg/jsonrpc2"
	"github.com/spf13/cobra"

	"github.com/scriptls/scriptls/pkg/analyzer/scan"
	"github.com/scriptls/scriptls/pkg/lsp"
	"github.com/scriptls/scriptls/pkg/lsprpc"
)

// ServeCmd represents the serve command
func BuildServeCmd() *cobra.Command {
	var pipe string
	var logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the language server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if level, ok := lsp.ParseLogLevel(logLevel); ok {
				lsp.GlobalAtomicLeveler.SetLevel(level)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.OutOrStderr(), &slog.HandlerOptions{
				AddSource: true,
				Level:     lsp.GlobalAtomicLeveler,
			})))

			var nc net.Conn
			if pipe != "" {
				cc, err := net.Dial("unix", pipe)
				if err != nil {
					return err
				}
				nc = cc
			} else {
				nc = stdioPipe{}
			}

			conn := jsonrpc2.NewConn(jsonrpc2.NewHeaderStream(nc))
			analyzer := scan.New()
			server := lsprpc.NewStreamServer(analyzer,
				lsp.WithDispatcherOptions(
					lsp.WithBackgroundAnalyzers(scan.BackgroundAnalyzers()...),
				),
			)
			return server.ServeStream(cmd.Context(), conn)
		},
	}

	cmd.Flags().StringVar(&pipe, "pipe", "", "socket name to connect to, defaults to stdio")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

// stdioPipe adapts the process's standard streams to a net.Conn so they
// can back a header stream. Deadlines are not supported on pipes.
type stdioPipe struct{}

var _ net.Conn = stdioPipe{}

func (stdioPipe) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioPipe) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdioPipe) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

func (stdioPipe) LocalAddr() net.Addr              { return stdioAddr{} }
func (stdioPipe) RemoteAddr() net.Addr             { return stdioAddr{} }
func (stdioPipe) SetDeadline(time.Time) error      { return nil }
func (stdioPipe) SetReadDeadline(time.Time) error  { return nil }
func (stdioPipe) SetWriteDeadline(time.Time) error { return nil }

type stdioAddr struct{}

func (stdioAddr) Network() string { return "stdio" }
func (stdioAddr) String() string  { return "stdio" }
