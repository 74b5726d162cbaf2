// Package tosql implements the linqsql CLI's only subcommand: read a
// builder source file plus an optional JSON params file, compile it for the
// requested dialect, and print {sql, params} as JSON.
package tosql

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linqsql/linqsql"
)

var dialects = map[string]linqsql.Dialect{
	"postgres": linqsql.Postgres,
	"sqlite":   linqsql.SQLite,
}

// Command returns the to-sql cobra command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "to-sql",
		Short: "Compile a builder chain into parameterised SQL",
		Long: `Compile a LINQ-style builder chain, captured as JavaScript arrow-function
source text, into parameterised SQL for a chosen dialect.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			dialectName, _ := cmd.Flags().GetString("dialect")
			paramsFile, _ := cmd.Flags().GetString("params")
			kind, _ := cmd.Flags().GetString("kind")

			dialect, ok := dialects[dialectName]
			if !ok {
				return fmt.Errorf("unknown dialect %q (want postgres or sqlite)", dialectName)
			}

			source, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading builder file: %w", err)
			}

			userParams := make(map[string]any)

			if paramsFile != "" {
				raw, err := os.ReadFile(paramsFile)
				if err != nil {
					return fmt.Errorf("reading params file: %w", err)
				}

				if err := json.Unmarshal(raw, &userParams); err != nil {
					return fmt.Errorf("parsing params file: %w", err)
				}
			}

			result, err := compile(kind, string(source), dialect, userParams)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Path to the builder source file (required)")
	cmd.Flags().StringP("dialect", "d", "postgres", "Target dialect: postgres or sqlite")
	cmd.Flags().StringP("params", "p", "", "Path to a JSON file of runtime parameter values")
	cmd.Flags().StringP("kind", "k", "select", "Chain kind: select, insert, update, or delete")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func compile(kind, source string, dialect linqsql.Dialect, userParams map[string]any) (linqsql.SQLResult, error) {
	schema := linqsql.CreateSchema[any]()

	switch kind {
	case "select":
		return linqsql.SelectStatement(schema, dialect, source, userParams)
	case "insert":
		return linqsql.InsertStatement(schema, dialect, source, userParams)
	case "update":
		return linqsql.UpdateStatement(schema, dialect, source, userParams)
	case "delete":
		return linqsql.DeleteStatement(schema, dialect, source, userParams)
	default:
		return linqsql.SQLResult{}, fmt.Errorf("unknown chain kind %q (want select, insert, update, or delete)", kind)
	}
}
