package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"imgoptimizer/src/common"
	"imgoptimizer/src/manifest"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: verify_manifest <optimized-images-dir> [manifest-file]")
		os.Exit(1)
	}

	outputDir := os.Args[1]
	manifestName := "optimization-manifest.json"
	if len(os.Args) > 2 {
		manifestName = os.Args[2]
	}

	record, err := manifest.Read(filepath.Join(outputDir, manifestName))
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}

	fmt.Printf("Manifest generated at %s lists %d files\n\n", record.GeneratedAt, record.TotalFilesOptimized)

	missing := 0
	for _, entry := range append(record.Products, record.Logos...) {
		if err := check(outputDir, entry); err != nil {
			fmt.Printf("❌ %s: %v\n", entry.Name, err)
			missing++
		}
	}

	if missing > 0 {
		fmt.Printf("\n%d of %d optimized files are missing or unreadable\n", missing, record.TotalFilesOptimized)
		os.Exit(1)
	}

	fmt.Println("\n✅ All optimized files present")
}

func check(outputDir string, entry manifest.Entry) error {
	path := filepath.Join(outputDir, filepath.FromSlash(entry.Optimized))

	size, err := common.FileSize(path)
	if err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("%s is empty", entry.Optimized)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", entry.Optimized, err)
	}

	fmt.Printf("✅ %-20s %-40s %4dx%-4d %s %8.2f KB\n",
		entry.Name, entry.Optimized, cfg.Width, cfg.Height, format, common.KB(size))
	return nil
}
