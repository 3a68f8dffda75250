package inspect

import (
	"encoding/hex"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kiprasmel/sapling/internal/auxstore"
	"github.com/kiprasmel/sapling/internal/logstore"
	"github.com/kiprasmel/sapling/pkg/log"
)

// NewAuxCommand returns the aux metadata store inspection commands.
func NewAuxCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{Use: "aux", Short: "Inspect a file metadata store"}
	cmd.AddCommand(newAuxScanCommand(logger))
	cmd.AddCommand(newAuxGetCommand(logger))
	return cmd
}

func openAux(cmd *cobra.Command, logger log.Logger) (*auxstore.Store, error) {
	name, _ := cmd.Flags().GetString("name")
	rt, err := openRuntime(cmd, logger)
	if err != nil {
		return nil, err
	}
	// The runtime only hands out the aux directory path; the store owns its
	// own files, so the database handle is released immediately.
	s, err := rt.OpenAuxStore(name, logstore.AccessLocal)
	if cerr := rt.Close(); err == nil {
		err = cerr
	}
	return s, err
}

func newAuxScanCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List every decodable entry in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openAux(cmd, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			var n int
			err = s.Nodes(func(node auxstore.NodeID, e auxstore.Entry) error {
				n++
				fmt.Printf("%s  %10s  blake3=%s\n", node, humanize.Bytes(e.TotalSize), hex.EncodeToString(e.Blake3[:8]))
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("%d entries\n", n)
			return nil
		},
	}
	addStorageFlags(cmd)
	cmd.Flags().String("name", "files", "Aux store name under the data directory")
	return cmd
}

func newAuxGetCommand(logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <node-hex>",
		Short: "Show the entry for one node id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("invalid node id: %w", err)
			}
			node, err := auxstore.NodeIDFromBytes(raw)
			if err != nil {
				return err
			}

			s, err := openAux(cmd, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			e, ok, err := s.Get(node)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("node %s not found", node)
			}
			fmt.Printf("node:       %s\n", node)
			fmt.Printf("size:       %d (%s)\n", e.TotalSize, humanize.Bytes(e.TotalSize))
			fmt.Printf("content id: %s\n", hex.EncodeToString(e.ContentID[:]))
			fmt.Printf("sha1:       %s\n", hex.EncodeToString(e.SHA1[:]))
			fmt.Printf("blake3:     %s\n", hex.EncodeToString(e.Blake3[:]))
			return nil
		},
	}
	addStorageFlags(cmd)
	cmd.Flags().String("name", "files", "Aux store name under the data directory")
	return cmd
}
