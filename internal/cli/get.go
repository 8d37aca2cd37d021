package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-fetch/internal/core/ports"
	"github.com/tjfontaine/polyglot-fetch/internal/decode"
	"github.com/tjfontaine/polyglot-fetch/internal/request"
	"github.com/tjfontaine/polyglot-fetch/pkg/fetch"
)

type getOptions struct {
	method      string
	headers     []string
	data        string
	contentType string
	format      string
	output      string
	retain      bool
}

func newGetCommand(a *app) *cobra.Command {
	o := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Fetch a URL and print the decoded body",
		Long: `Fetch a URL and print the decoded body.

Relative URLs are resolved against client.base_url. The response is accepted
when its status falls within classifier.accept_min..accept_max and it has a
body; anything else is printed as an error and fetchctl exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("retain") {
				o.retain = a.cfg.Pipeline.Retain
			}
			if o.format == "" {
				o.format = a.cfg.Decode.Format
			}
			return runGet(cmd, a, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.method, "method", "X", "GET", "HTTP method")
	f.StringArrayVarP(&o.headers, "header", "H", nil, "request header as key=value (repeatable)")
	f.StringVarP(&o.data, "data", "d", "", "request body")
	f.StringVar(&o.contentType, "content-type", "application/json", "content type of --data")
	f.StringVar(&o.format, "format", "", "body format: json, yaml or raw (default from config)")
	f.StringVarP(&o.output, "output", "o", "json", "output format: json, yaml or raw")
	f.BoolVar(&o.retain, "retain", true, "keep the call alive independently of the command (default from config)")

	return cmd
}

func parseHeader(s string) (string, string, error) {
	sep := strings.IndexAny(s, "=:")
	if sep <= 0 {
		return "", "", fmt.Errorf("invalid header %q: want key=value", s)
	}
	return strings.TrimSpace(s[:sep]), strings.TrimSpace(s[sep+1:]), nil
}

func decoderFor(format string) (ports.Decoder[any], error) {
	if format == "raw" || format == "text" {
		return ports.DecoderFunc[any](func(data []byte) (any, error) {
			return string(data), nil
		}), nil
	}
	return decode.ForFormat[any](format)
}

func runGet(cmd *cobra.Command, a *app, o *getOptions, target string) error {
	ctx := cmd.Context()

	method, err := request.ParseMethod(o.method)
	if err != nil {
		return err
	}
	dec, err := decoderFor(o.format)
	if err != nil {
		return err
	}

	var reqOpts []request.RequestOption
	for _, h := range o.headers {
		k, v, err := parseHeader(h)
		if err != nil {
			return err
		}
		reqOpts = append(reqOpts, request.WithHeader(k, v))
	}
	if o.data != "" {
		reqOpts = append(reqOpts, request.WithBody(o.contentType, []byte(o.data)))
	}

	d, err := openDeps(a.cfg, a.logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer d.Close(ctx)

	req, err := d.client.NewRequest(ctx, method, target, reqOpts...)
	if err != nil {
		return err
	}

	a.logger.Debug("fetching", "method", req.Method, "url", req.URL.String(), "retain", o.retain)

	outcome, err := fetch.Await(ctx, d.client, req, dec, fetch.Retained(o.retain))
	if err != nil {
		return err
	}

	v, err := fetch.Unpack(outcome)
	if err != nil {
		reportFailure(cmd.ErrOrStderr(), err)
		return err
	}

	return writeValue(cmd.OutOrStdout(), o.output, v)
}

func reportFailure(w io.Writer, err error) {
	var fe *fetch.Error
	if !errors.As(err, &fe) {
		return
	}
	fmt.Fprintf(w, "kind:     %s\n", fe.Kind)
	fmt.Fprintf(w, "category: %s\n", fe.Category())
	if fe.StatusCode != 0 {
		fmt.Fprintf(w, "status:   %d\n", fe.StatusCode)
	}
	if body := fe.Body(); len(body) > 0 {
		fmt.Fprintf(w, "body:     %s\n", body)
	}
}
