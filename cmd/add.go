package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/claudehenchoz/trinket/client"
	"github.com/claudehenchoz/trinket/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewAddCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Capture a new snippet from arguments or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd, args)
			if err != nil {
				return err
			}
			if content == "" {
				return errors.New("refusing to save an empty snippet")
			}

			ctx := cmd.Context()

			if addr := daemonAddressFlag(v); addr != "" {
				snip, err := client.New("http://" + addr + basePathFlag(v)).Save(ctx, content)
				if err != nil {
					return errors.Wrap(err, "failed to save snippet via daemon")
				}
				fmt.Fprintln(cmd.OutOrStdout(), snip.ID)
				return nil
			}

			repository, err := store.NewRepository(zap.L().Named("inst.repository"), storeDirFlag(v))
			if err != nil {
				return errors.Wrap(err, "failed to open snippet repository")
			}
			snip, err := store.New(zap.L().Named("inst.store"), repository).Save(ctx, content)
			if err != nil {
				return errors.Wrap(err, "failed to save snippet")
			}
			fmt.Fprintln(cmd.OutOrStdout(), snip.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	addStoreDirFlag(flags, v)
	addDaemonAddressFlag(flags, v)
	addBasePathFlag(flags, v)

	return cmd
}

// readContent joins the arguments, or reads stdin when no arguments are
// given.
func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "failed to read snippet content from stdin")
	}
	return string(data), nil
}
