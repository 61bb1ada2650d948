package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	clientpkg "github.com/claudehenchoz/trinket/client"
	"github.com/claudehenchoz/trinket/pkg/store"
	"github.com/claudehenchoz/trinket/snippet"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewGetCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "get [pattern]",
		Short: "Search snippets and optionally copy a match to the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ctx     = cmd.Context()
				pattern = strings.Join(args, " ")
				results []snippet.Result
			)

			if addr := daemonAddressFlag(v); addr != "" {
				var err error
				results, err = clientpkg.New("http://"+addr+basePathFlag(v)).Query(ctx, pattern)
				if err != nil {
					return errors.Wrap(err, "failed to query daemon")
				}
			} else {
				repository, err := store.NewRepository(zap.L().Named("inst.repository"), storeDirFlag(v))
				if err != nil {
					return errors.Wrap(err, "failed to open snippet repository")
				}
				s := store.New(zap.L().Named("inst.store"), repository)
				if err := s.Reload(ctx); err != nil {
					return errors.Wrap(err, "failed to load snippets")
				}
				results = s.Query(pattern)
			}

			if copyFlag(v) {
				if len(results) == 0 {
					return errors.New("no snippet matched")
				}
				if err := clipboard.WriteAll(results[0].Snippet.Content); err != nil {
					return errors.Wrap(err, "failed to copy snippet to clipboard")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "copied", results[0].Snippet.ID)
				return nil
			}

			for _, result := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", result.Snippet.ID, result.Snippet.Preview)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	addStoreDirFlag(flags, v)
	addDaemonAddressFlag(flags, v)
	addBasePathFlag(flags, v)
	addCopyFlag(flags, v)

	return cmd
}
