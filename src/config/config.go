package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the optimizer configuration
type Config struct {
	Input        string           `yaml:"input"`
	Output       string           `yaml:"output"`
	Products     ConversionConfig `yaml:"products"`
	Logos        ConversionConfig `yaml:"logos"`
	ProductFiles []FileConfig     `yaml:"product_files"`
	LogoFiles    []FileConfig     `yaml:"logo_files"`
	Manifest     ManifestConfig   `yaml:"manifest"`
	Deploy       DeployConfig     `yaml:"deploy"`
	Watch        WatchConfig      `yaml:"watch"`
}

// ConversionConfig holds the fixed parameters for one image class
type ConversionConfig struct {
	Width            int    `yaml:"width"`
	Height           int    `yaml:"height"`
	Fit              string `yaml:"fit"`
	Position         string `yaml:"position"`
	Format           string `yaml:"format"`
	Quality          int    `yaml:"quality"`
	CompressionLevel int    `yaml:"compression_level"`
}

// FileConfig maps a source file to its optimized name
type FileConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Name   string `yaml:"name"`
}

type ManifestConfig struct {
	Filename     string `yaml:"filename"`
	UsageExample string `yaml:"usage_example"`
}

type DeployConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Method      string `yaml:"method"`
	PublicDir   string `yaml:"public_dir"`
	ProductsDir string `yaml:"products_dir"`
	LogosDir    string `yaml:"logos_dir"`
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// DefaultUsageExample is the Next.js snippet written into the manifest
const DefaultUsageExample = "import Image from 'next/image'\n\n<Image \n  src=\"/images/products/cupcake-chocolate.webp\"\n  alt=\"Cupcake de Chocolate\"\n  width={800}\n  height={1200}\n  quality={85}\n  placeholder=\"blur\"\n/>"

// Environment variables that override file values
const (
	EnvInput     = "IMGOPT_INPUT"
	EnvOutput    = "IMGOPT_OUTPUT"
	EnvPublicDir = "IMGOPT_PUBLIC_DIR"
)

var (
	validFits      = map[string]bool{"cover": true, "contain": true, "fill": true, "inside": true}
	validFormats   = map[string]bool{"webp": true, "png": true, "jpeg": true}
	validPositions = map[string]bool{
		"center": true, "top": true, "bottom": true, "left": true, "right": true,
		"top-left": true, "top-right": true, "bottom-left": true, "bottom-right": true,
	}
)

// Default returns the configuration of the Cake & Cia image set
func Default() *Config {
	cfg := &Config{
		ProductFiles: []FileConfig{
			{Input: "03.jpg", Output: "cupcake-chocolate.webp", Name: "Chocolate"},
			{Input: "04.jpg", Output: "cupcake-morango.webp", Name: "Morango"},
			{Input: "11.jpg", Output: "cupcake-baunilha.webp", Name: "Baunilha"},
			{Input: "15.jpg", Output: "cupcake-caramelo.webp", Name: "Caramelo"},
			{Input: "16.jpg", Output: "cupcake-doce-leite.webp", Name: "Doce de Leite"},
		},
		LogoFiles: []FileConfig{
			{Input: "logo.png", Output: "logo.png", Name: "Logo Principal"},
			{Input: "14.png", Output: "logo-alt.png", Name: "Logo Alternativo"},
			{Input: "qrcode.png", Output: "qrcode-pix.png", Name: "QR Code PIX"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads, parses and validates the configuration file
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse reads the configuration file and applies defaults without
// validating, so env overrides and flags can still fill in required fields
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadEnv loads .env files (missing files are ignored) and applies the
// IMGOPT_* overrides on top of the file configuration
func (c *Config) LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if v := os.Getenv(EnvInput); v != "" {
		c.Input = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvPublicDir); v != "" {
		c.Deploy.PublicDir = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Input == "" {
		c.Input = "./edson/images"
	}
	if c.Output == "" {
		c.Output = "./optimized-images"
	}

	// Products: 800x1200 cover crop to WebP
	if c.Products.Width == 0 && c.Products.Height == 0 {
		c.Products.Width = 800
		c.Products.Height = 1200
	}
	if c.Products.Fit == "" {
		c.Products.Fit = "cover"
	}
	if c.Products.Position == "" {
		c.Products.Position = "center"
	}
	if c.Products.Format == "" {
		c.Products.Format = "webp"
	}
	if c.Products.Quality == 0 {
		c.Products.Quality = 85
	}

	// Logos: re-encode only
	if c.Logos.Fit == "" {
		c.Logos.Fit = "inside"
	}
	if c.Logos.Position == "" {
		c.Logos.Position = "center"
	}
	if c.Logos.Format == "" {
		c.Logos.Format = "png"
	}
	if c.Logos.Quality == 0 {
		c.Logos.Quality = 90
	}
	if c.Logos.CompressionLevel == 0 {
		c.Logos.CompressionLevel = 9
	}

	if c.Manifest.Filename == "" {
		c.Manifest.Filename = "optimization-manifest.json"
	}
	if c.Manifest.UsageExample == "" {
		c.Manifest.UsageExample = DefaultUsageExample
	}

	if c.Deploy.Method == "" {
		c.Deploy.Method = "copy"
	}
	if c.Deploy.ProductsDir == "" {
		c.Deploy.ProductsDir = "images/products"
	}
	if c.Deploy.LogosDir == "" {
		c.Deploy.LogosDir = "images"
	}

	if c.Watch.DebounceMS == 0 {
		c.Watch.DebounceMS = 500
	}
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if len(c.ProductFiles) == 0 && len(c.LogoFiles) == 0 {
		return fmt.Errorf("at least one product_files or logo_files entry is required")
	}
	if err := c.Products.validate("products"); err != nil {
		return err
	}
	if err := c.Logos.validate("logos"); err != nil {
		return err
	}
	if c.Products.Width <= 0 || c.Products.Height <= 0 {
		return fmt.Errorf("products.width and products.height must be positive")
	}
	if err := validateFiles("product_files", c.ProductFiles); err != nil {
		return err
	}
	if err := validateFiles("logo_files", c.LogoFiles); err != nil {
		return err
	}
	if c.Deploy.Enabled {
		if c.Deploy.PublicDir == "" {
			return fmt.Errorf("deploy.public_dir is required when deploy is enabled")
		}
		if c.Deploy.Method != "copy" && c.Deploy.Method != "rsync" {
			return fmt.Errorf("deploy.method must be 'copy' or 'rsync', got '%s'", c.Deploy.Method)
		}
	}
	return nil
}

func (cc ConversionConfig) validate(section string) error {
	if cc.Width < 0 || cc.Height < 0 {
		return fmt.Errorf("%s: width and height must not be negative", section)
	}
	if !validFits[cc.Fit] {
		return fmt.Errorf("%s.fit: unknown fit mode '%s'", section, cc.Fit)
	}
	if !validPositions[cc.Position] {
		return fmt.Errorf("%s.position: unknown position '%s'", section, cc.Position)
	}
	if !validFormats[cc.Format] {
		return fmt.Errorf("%s.format: unknown format '%s'", section, cc.Format)
	}
	if cc.Quality < 1 || cc.Quality > 100 {
		return fmt.Errorf("%s.quality must be between 1 and 100, got %d", section, cc.Quality)
	}
	if cc.CompressionLevel < 0 || cc.CompressionLevel > 9 {
		return fmt.Errorf("%s.compression_level must be between 0 and 9, got %d", section, cc.CompressionLevel)
	}
	return nil
}

func validateFiles(section string, files []FileConfig) error {
	seen := make(map[string]bool, len(files))
	for i, f := range files {
		if f.Input == "" || f.Output == "" || f.Name == "" {
			return fmt.Errorf("%s[%d]: input, output and name are required", section, i)
		}
		// Outputs are written as <group>/<output> and listed verbatim in the manifest
		if f.Output != filepath.Base(f.Output) || f.Output == "." || f.Output == ".." || strings.ContainsAny(f.Output, `/\`) {
			return fmt.Errorf("%s[%d]: output '%s' must be a plain file name", section, i, f.Output)
		}
		if seen[f.Output] {
			return fmt.Errorf("%s[%d]: duplicate output '%s'", section, i, f.Output)
		}
		seen[f.Output] = true
	}
	return nil
}

// ProductsDir returns the products output subfolder
func (c *Config) ProductsDir() string {
	return filepath.Join(c.Output, "products")
}

// LogosDir returns the logos output subfolder
func (c *Config) LogosDir() string {
	return filepath.Join(c.Output, "logos")
}

// ManifestPath returns where the manifest is written
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Output, c.Manifest.Filename)
}

// TotalFiles returns the number of configured descriptors
func (c *Config) TotalFiles() int {
	return len(c.ProductFiles) + len(c.LogoFiles)
}
