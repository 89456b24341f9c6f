package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/rtfeed/internal/adapters/schema"
)

// errInvalidPayload makes the process exit non-zero after the errors were printed.
var errInvalidPayload = errors.New("payload does not satisfy schema")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema.json> <data.json>",
		Short: "Validate a JSON document against a JSON Schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaDoc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read schema: %w", err)
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read data: %w", err)
			}

			res, err := schema.NewValidator(1).Validate(schemaDoc, data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Valid {
				fmt.Fprintln(out, "valid")
				return nil
			}
			for _, msg := range res.Errors {
				fmt.Fprintln(out, msg)
			}
			return errInvalidPayload
		},
	}
}
