package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/84codes/lz4stream"
)

var decompressOutput string

var decompressCmd = &cobra.Command{
	Use:   "decompress [input]",
	Short: "Decompress an LZ4 frame",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecompress,
}

func init() {
	decompressCmd.Flags().StringVarP(&decompressOutput, "output", "o", "-", "output target (path, s3://, gs:// or - for stdout)")
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	src, err := openInput(ctx, args[0])
	if err != nil {
		return err
	}

	r, err := lz4stream.NewReader(src,
		lz4stream.WithLogger(logger),
		lz4stream.WithOwnedStream(),
	)
	if err != nil {
		src.Close()
		return err
	}
	defer r.Close()

	dst, err := createOutput(ctx, decompressOutput)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := r.WriteTo(dst); err != nil {
		return fmt.Errorf("decompressing: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d bytes in, %d bytes out, ratio %.3f\n",
			r.CompressedBytesIn(), r.UncompressedBytesIn(), r.Ratio())
	}
	return nil
}
