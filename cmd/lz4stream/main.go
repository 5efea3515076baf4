// Package main provides the lz4stream CLI tool for compressing,
// decompressing and inspecting LZ4 frame files, locally or on S3/GCS.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
