package util

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// SetupInterruptHandler removes leftover temp files in the given dirs when the
// process is interrupted.
func SetupInterruptHandler(dirs ...string) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		fmt.Println("\nInterrupt received. Cleaning up...")

		for _, d := range dirs {
			CleanupTempFiles(d)
		}
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()
}

// CleanupTempFiles removes the *.tmp files left behind by WriteFileAtomic.
func CleanupTempFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, ".tmp") {
			full := filepath.Join(dir, name)

			if err := os.Remove(full); err != nil {
				fmt.Printf("Error cleaning up %s: %v\n", full, err)
			} else {
				fmt.Printf("Removed %s\n", full)
			}
		}
	}
}

// RemoveQuietly deletes path and ignores every error, including a missing file.
func RemoveQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
