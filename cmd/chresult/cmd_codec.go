package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/revrobotics/chupdater/application/receiver"
	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/wireformat"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type encodeOptions struct {
	category     string
	presentation string
	detailType   string
	code         int
	template     string
	detail       string
	cause        string
}

func newEncodeCmd() *cobra.Command {
	opts := &encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a result from flags and print its bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.category, "category", entities.CategoryCommon.String(), "COMMON, OTA_UPDATE or APP_UPDATE")
	cmd.Flags().StringVar(&opts.presentation, "presentation", entities.PresentationStatus.String(), "SUCCESS, ERROR, STATUS or PROMPT")
	cmd.Flags().StringVar(&opts.detailType, "detail-type", entities.DetailLogged.String(), "LOGGED, DISPLAYED or SUBSTITUTED")
	cmd.Flags().IntVar(&opts.code, "code", 0, "Result code")
	cmd.Flags().StringVar(&opts.template, "template", "", "Message template")
	cmd.Flags().StringVar(&opts.detail, "detail", "", "Detail message")
	cmd.Flags().StringVar(&opts.cause, "cause", "", "Cause error text")
	return cmd
}

func runEncode(cmd *cobra.Command, opts *encodeOptions) error {
	category, ok := entities.ParseCategory(opts.category)
	if !ok {
		return fmt.Errorf("unknown category %q", opts.category)
	}
	presentation, ok := entities.ParsePresentationType(opts.presentation)
	if !ok {
		return fmt.Errorf("unknown presentation type %q", opts.presentation)
	}
	detailType, ok := entities.ParseDetailMessageType(opts.detailType)
	if !ok {
		return fmt.Errorf("unknown detail message type %q", opts.detailType)
	}

	var resultOpts []entities.ResultOption
	if cmd.Flags().Changed("detail") {
		resultOpts = append(resultOpts, entities.WithDetailMessage(opts.detail))
	}
	if opts.cause != "" {
		resultOpts = append(resultOpts, entities.WithCause(errors.New(opts.cause)))
	}
	result := entities.NewResult(
		entities.NewResultType(category, opts.code, presentation, detailType, opts.template),
		resultOpts...,
	)

	f := bundleFormat()
	data, err := wireformat.Encode(result, f)
	if err != nil {
		return err
	}
	logger.Debug("encoded result", zap.String("route", receiver.RouteKey(result)), zap.String("format", string(f)))

	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		_, err = fmt.Fprintln(out)
	}
	return err
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a bundle and print how it would be shown",
		Long: `Decode reads a serialized bundle from file, or from stdin when file is
omitted or "-", and prints its route key followed by its display text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDecode,
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	result, err := wireformat.Decode(data, bundleFormat())
	if err != nil {
		return err
	}

	recv := receiver.New(logger, receiver.WithDisplayPrefix(cfg.DisplayPrefix))
	d := recv.Deliver(cmd.Context(), result)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", d.RouteKey, d.Display)
	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return data, nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of serialized bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := wireformat.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return err
		},
	}
}
