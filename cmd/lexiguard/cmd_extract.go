package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexiguard-backend/internal/bootstrap"
	"lexiguard-backend/internal/shared/config"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, mediaType, err := readDocument(args[0])
	if err != nil {
		return err
	}
	core, closeFn, err := bootstrap.OpenCore(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer closeFn()

	text, err := core.Extract.Extract(cmd.Context(), data, mediaType)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
