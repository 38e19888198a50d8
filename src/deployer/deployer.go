package deployer

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"imgoptimizer/src/config"
)

// Deployer publishes optimized images into the site's public folder
type Deployer struct {
	cfg *config.Config
}

// NewDeployer creates a new deployer
func NewDeployer(cfg *config.Config) *Deployer {
	return &Deployer{cfg: cfg}
}

// Deploy copies <outputDir>/products and <outputDir>/logos into the
// configured public locations
func (d *Deployer) Deploy(outputDir string) error {
	log.Printf("🚀 Publishing optimized images to %s...", d.cfg.Deploy.PublicDir)

	targets := []struct {
		src string
		dst string
	}{
		{filepath.Join(outputDir, "products"), filepath.Join(d.cfg.Deploy.PublicDir, d.cfg.Deploy.ProductsDir)},
		{filepath.Join(outputDir, "logos"), filepath.Join(d.cfg.Deploy.PublicDir, d.cfg.Deploy.LogosDir)},
	}

	for _, t := range targets {
		var err error
		switch d.cfg.Deploy.Method {
		case "rsync":
			err = d.rsync(t.src, t.dst)
		default:
			err = copyDir(t.src, t.dst)
		}
		if err != nil {
			return fmt.Errorf("failed to publish %s: %w", t.src, err)
		}
		log.Printf("✓ Published %s → %s", t.src, t.dst)
	}

	return nil
}

// rsync mirrors src into dst. Existing files in dst are left alone since
// logos share their folder with the rest of the site's images.
func (d *Deployer) rsync(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return fmt.Errorf("failed to create target directory: %w", err)
	}

	args := []string{
		"-a",
		src + "/", // Trailing slash is important!
		dst + "/",
	}

	cmd := exec.Command("rsync", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("rsync failed: %w\nOutput: %s", err, string(output))
	}

	return nil
}

// copyDir copies all files below src into dst, creating folders as needed
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(dstPath, 0755)
		}

		return copyFile(path, dstPath, info.Mode())
	})
}

// copyFile copies a single file
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}

	return dstFile.Close()
}
