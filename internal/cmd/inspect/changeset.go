package inspect

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kiprasmel/sapling/pkg/changeset"
	"github.com/kiprasmel/sapling/pkg/log"
)

// NewChangesetCommand returns the changeset lookup commands.
func NewChangesetCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{Use: "changeset", Short: "Changeset operations"}
	cmd.AddCommand(newChangesetShowCommand(logger))
	return cmd
}

func newChangesetShowCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id-hex>",
		Short: "Decode and print a stored changeset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := changeset.IDFromHex(args[0])
			if err != nil {
				return err
			}
			repoName, _ := cmd.Flags().GetString("repo")

			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			r, err := rt.OpenRepo(repoName)
			if err != nil {
				return err
			}
			cs, err := r.Changeset(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("changeset: %s\n", id)
			fmt.Printf("author:    %s\n", cs.Author)
			fmt.Printf("date:      %s\n", time.UnixMilli(cs.AuthoredAtMs).UTC().Format(time.RFC3339))
			for _, p := range cs.Parents {
				fmt.Printf("parent:    %s\n", p)
			}
			if gen, ok, err := r.Generation(cmd.Context(), id); err == nil && ok {
				fmt.Printf("generation: %d\n", gen)
			}
			for k, v := range cs.Extra {
				fmt.Printf("extra:     %s=%s\n", k, v)
			}
			fmt.Printf("\n%s\n", cs.Message)
			return nil
		},
	}
	addStorageFlags(cmd)
	cmd.Flags().String("repo", "main", "Repository name")
	return cmd
}
