package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/84codes/lz4stream"
	"github.com/84codes/lz4stream/internal/blob"
)

var compressOutput string

var compressCmd = &cobra.Command{
	Use:   "compress [input]",
	Short: "Compress input into an LZ4 frame",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompress,
}

func init() {
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "-", "output target (path, s3://, gs:// or - for stdout)")
	compressCmd.Flags().IntVar(&level, "level", 0, "compression level (0 fast, up to 12)")
	compressCmd.Flags().StringVar(&blockSizeName, "block-size", "default", "block size: 64KB, 256KB, 1MB, 4MB")
	compressCmd.Flags().BoolVar(&blockLinked, "linked", false, "record linked block mode in the frame")
	compressCmd.Flags().BoolVar(&blockChecksum, "block-checksum", false, "checksum every block")
	compressCmd.Flags().BoolVar(&noChecksum, "no-content-checksum", false, "omit the content checksum")
	compressCmd.Flags().BoolVar(&autoFlush, "auto-flush", false, "emit blocks immediately instead of buffering")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	prefs, err := preferencesFromFlags()
	if err != nil {
		return err
	}
	ctx := context.Background()
	logger := newLogger()

	src, err := openInput(ctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := createOutput(ctx, compressOutput)
	if err != nil {
		return err
	}

	w, err := lz4stream.NewWriter(dst,
		lz4stream.WithPreferences(prefs),
		lz4stream.WithLogger(logger),
		lz4stream.WithOwnedStream(),
	)
	if err != nil {
		dst.Close()
		return err
	}

	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		return fmt.Errorf("compressing: %w", err)
	}

	if err := w.Close(); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%d bytes in, %d bytes out, ratio %.3f\n",
			w.UncompressedBytesOut(), w.CompressedBytesOut(), w.Ratio())
	}
	return nil
}

// openInput resolves an input target; "-" is stdin.
func openInput(ctx context.Context, target string) (io.ReadCloser, error) {
	if target == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return blob.Open(ctx, target)
}

// createOutput resolves an output target; "-" is stdout.
func createOutput(ctx context.Context, target string) (io.WriteCloser, error) {
	if target == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return blob.Create(ctx, target)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
