package deployer

import (
	"os"
	"path/filepath"
	"testing"

	"imgoptimizer/src/config"
)

func TestDeployCopy(t *testing.T) {
	tmpDir := t.TempDir()
	outputDir := filepath.Join(tmpDir, "optimized-images")
	publicDir := filepath.Join(tmpDir, "site", "public")

	files := map[string]string{
		"products/cupcake-chocolate.webp": "webp-bytes",
		"products/cupcake-morango.webp":   "more-webp-bytes",
		"logos/logo.png":                  "png-bytes",
	}
	for name, content := range files {
		path := filepath.Join(outputDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create folder: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}

	// The manifest stays in the output root
	if err := os.WriteFile(filepath.Join(outputDir, "optimization-manifest.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create manifest: %v", err)
	}

	// Existing site images next to the logos survive
	existing := filepath.Join(publicDir, "images", "hero.jpg")
	if err := os.MkdirAll(filepath.Dir(existing), 0755); err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if err := os.WriteFile(existing, []byte("hero"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	cfg := config.Default()
	cfg.Deploy.Enabled = true
	cfg.Deploy.PublicDir = publicDir

	if err := NewDeployer(cfg).Deploy(outputDir); err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	expected := map[string]string{
		"images/products/cupcake-chocolate.webp": "webp-bytes",
		"images/products/cupcake-morango.webp":   "more-webp-bytes",
		"images/logo.png":                        "png-bytes",
		"images/hero.jpg":                        "hero",
	}
	for name, want := range expected {
		got, err := os.ReadFile(filepath.Join(publicDir, name))
		if err != nil {
			t.Errorf("Expected %s in public dir: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s: expected %q, got %q", name, want, got)
		}
	}

	if _, err := os.Stat(filepath.Join(publicDir, "images", "optimization-manifest.json")); !os.IsNotExist(err) {
		t.Error("Manifest should not be published")
	}
}

func TestDeployMissingOutput(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.Deploy.PublicDir = filepath.Join(tmpDir, "public")

	if err := NewDeployer(cfg).Deploy(filepath.Join(tmpDir, "nothing-here")); err == nil {
		t.Error("Expected error when output folders are missing")
	}
}
