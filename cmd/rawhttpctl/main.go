// Command rawhttpctl is a thin CLI over the request builder and engine,
// grounded on docker-compose/cli's cobra root-command layout (a root
// command with a --debug persistent flag wired to logrus, and a small
// tree of subcommands).
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/WhileEndless/rawhttp2/pkg/engine"
	"github.com/WhileEndless/rawhttp2/pkg/rawhttplog"
	"github.com/WhileEndless/rawhttp2/pkg/request"
	"github.com/WhileEndless/rawhttp2/pkg/websocket"
)

func main() {
	var debug bool

	root := &cobra.Command{
		Use:           "rawhttpctl",
		Short:         "send one raw HTTP request over a hand-built socket client",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				rawhttplog.Logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(getCommand(), postCommand(), wsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags is the option set shared by get/post: header overrides,
// redirect policy, buffer size, and decode toggling.
type commonFlags struct {
	headers      []string
	timeout      int64
	insecure     bool
	redirect     bool
	maxRedirects int
	buffer       int
	noDecode     bool
	http2Only    bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "extra header as Name:Value (repeatable)")
	cmd.Flags().Int64VarP(&f.timeout, "timeout", "t", 30000, "timeout in milliseconds")
	cmd.Flags().BoolVar(&f.insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVarP(&f.redirect, "redirect", "r", false, "follow redirects")
	cmd.Flags().IntVar(&f.maxRedirects, "max-redirects", request.DefaultMaxRedirectTimes, "maximum redirects to follow")
	cmd.Flags().IntVar(&f.buffer, "buffer", request.DefaultBufferSize, "read buffer size in bytes")
	cmd.Flags().BoolVar(&f.noDecode, "no-decode", false, "disable automatic Content-Encoding decoding")
	cmd.Flags().BoolVar(&f.http2Only, "http2-only", false, "write the HTTP/2 request-line token (no HTTP/2 framing)")
}

func (f *commonFlags) apply(b *request.Builder) *request.Builder {
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			continue
		}
		b = b.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	b = b.Timeout(f.timeout).Buffer(f.buffer).MaxRedirectTimes(f.maxRedirects)
	if f.insecure {
		b = b.InsecureSkipVerify()
	}
	if f.redirect {
		b = b.Redirect()
	}
	if f.noDecode {
		b = b.Undecode()
	}
	if f.http2Only {
		b = b.HTTP2Only()
	}
	return b
}

func getCommand() *cobra.Command {
	var f commonFlags
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "send a GET request and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := f.apply(request.NewBuilder().Get(args[0]))
			return runAndPrint(cmd.Context(), b.Build())
		},
	}
	f.register(cmd)
	return cmd
}

func postCommand() *cobra.Command {
	var f commonFlags
	var body string
	cmd := &cobra.Command{
		Use:   "post <url>",
		Short: "send a POST request with a text body and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := f.apply(request.NewBuilder().Post(args[0]).Text(body))
			return runAndPrint(cmd.Context(), b.Build())
		},
	}
	cmd.Flags().StringVarP(&body, "body", "b", "", "request body text")
	f.register(cmd)
	return cmd
}

func wsCommand() *cobra.Command {
	var (
		timeout  int64
		insecure bool
		headers  []string
	)
	cmd := &cobra.Command{
		Use:   "ws <url>",
		Short: "open a WebSocket session and relay stdin lines as text frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hdrs := make(map[string]string, len(headers))
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					continue
				}
				hdrs[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}

			var tlsCfg *tls.Config
			if insecure {
				tlsCfg = &tls.Config{InsecureSkipVerify: true}
			}

			sess, err := websocket.Connect(ctx, args[0], hdrs, timeout, tlsCfg)
			if err != nil {
				return err
			}
			defer sess.Close(ctx)

			sess.StartKeepalive(ctx)

			go func() {
				for {
					msg, err := sess.Receive(ctx)
					if err != nil {
						return
					}
					fmt.Printf("< %s: %s\n", msg.Kind, msg.Text())
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if err := sess.SendText(ctx, scanner.Text()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&timeout, "timeout", "t", 10000, "handshake timeout in milliseconds")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra handshake header as Name:Value (repeatable)")
	return cmd
}

func runAndPrint(parent context.Context, req *request.Request) error {
	ctx, cancel := context.WithTimeout(parent, req.Config.Timeout()+5*time.Second)
	defer cancel()

	resp, err := engine.Send(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(resp.String())
	fmt.Println(resp.Text())
	return nil
}
