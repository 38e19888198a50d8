package optimizer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"imgoptimizer/src/common"
	"imgoptimizer/src/config"
	"imgoptimizer/src/manifest"
)

// Deployer publishes the optimized output tree somewhere else
type Deployer interface {
	Deploy(outputDir string) error
}

// Optimizer runs the conversion pipeline for one configuration
type Optimizer struct {
	cfg      *config.Config
	logger   *log.Logger
	deployer Deployer
	now      func() time.Time
	stage    Stage
}

// NewOptimizer creates a new pipeline runner
func NewOptimizer(cfg *config.Config) *Optimizer {
	return &Optimizer{
		cfg:    cfg,
		logger: log.Default(),
		now:    time.Now,
	}
}

// SetLogger replaces the logger used for progress output
func (o *Optimizer) SetLogger(logger *log.Logger) {
	o.logger = logger
}

// SetDeployer enables publishing after the manifest is written
func (o *Optimizer) SetDeployer(d Deployer) {
	o.deployer = d
}

// Stage returns the last stage the run reached
func (o *Optimizer) Stage() Stage {
	return o.stage
}

// PrepareDirs creates the output root and its products and logos folders
func (o *Optimizer) PrepareDirs() error {
	dirs := []string{
		o.cfg.Output,
		o.cfg.ProductsDir(),
		o.cfg.LogosDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// OptimizeProducts converts every product image in configured order
func (o *Optimizer) OptimizeProducts() GroupSummary {
	o.logger.Printf("🍰 Optimizing product images...")

	summary := GroupSummary{Group: "products"}
	params := paramsFor(o.cfg.Products)

	for _, f := range o.cfg.ProductFiles {
		r := o.convert(f, o.cfg.ProductsDir(), params)
		summary.add(r)

		if !r.OK() {
			o.logger.Printf("❌ Error processing %s: %v", r.Descriptor.Name, r.Err)
			continue
		}
		o.logger.Printf("✅ %s", r.Descriptor.Name)
		o.logger.Printf("   Original: %.2f KB", r.OriginalKB)
		o.logger.Printf("   Optimized: %.2f KB", r.OptimizedKB)
		o.logger.Printf("   Savings: %.1f%%", r.Savings)
	}

	o.logTotals("Total products", summary)
	return summary
}

// OptimizeLogos re-encodes every logo image in configured order
func (o *Optimizer) OptimizeLogos() GroupSummary {
	o.logger.Printf("🎨 Optimizing logos...")

	summary := GroupSummary{Group: "logos"}
	params := paramsFor(o.cfg.Logos)

	for _, f := range o.cfg.LogoFiles {
		r := o.convert(f, o.cfg.LogosDir(), params)
		summary.add(r)

		if !r.OK() {
			o.logger.Printf("❌ Error processing %s: %v", r.Descriptor.Name, r.Err)
			continue
		}
		o.logger.Printf("✅ %s", r.Descriptor.Name)
		o.logger.Printf("   %.2f KB → %.2f KB (%.1f%% savings)", r.OriginalKB, r.OptimizedKB, r.Savings)
	}

	o.logTotals("Total logos", summary)
	return summary
}

// convert runs one descriptor. Any failure is captured in the result.
func (o *Optimizer) convert(f config.FileConfig, outDir string, params common.ConversionParams) ItemResult {
	r := ItemResult{
		Descriptor: common.FileDescriptor{Input: f.Input, Output: f.Output, Name: f.Name},
		InputPath:  filepath.Join(o.cfg.Input, f.Input),
		OutputPath: filepath.Join(outDir, f.Output),
	}

	originalBytes, err := common.FileSize(r.InputPath)
	if err != nil {
		r.Err = fmt.Errorf("source %s: %w", r.InputPath, err)
		return r
	}
	r.OriginalKB = common.KB(originalBytes)

	if err := common.Convert(r.InputPath, r.OutputPath, params); err != nil {
		r.Err = err
		return r
	}

	optimizedBytes, err := common.FileSize(r.OutputPath)
	if err != nil {
		r.Err = fmt.Errorf("output %s: %w", r.OutputPath, err)
		return r
	}
	r.OptimizedBytes = optimizedBytes
	r.OptimizedKB = common.KB(optimizedBytes)
	r.Savings = common.Savings(r.OriginalKB, r.OptimizedKB)

	return r
}

func (o *Optimizer) logTotals(label string, summary GroupSummary) {
	o.logger.Printf("📊 %s (%d/%d converted):", label, summary.Succeeded(), len(summary.Items))
	o.logger.Printf("   Original: %.2f KB", summary.TotalOriginalKB)
	o.logger.Printf("   Optimized: %.2f KB", summary.TotalOptimizedKB)
	o.logger.Printf("   Savings: %.1f%%", summary.Savings())
}

// WriteManifest writes the manifest for the configured descriptors and
// returns its path
func (o *Optimizer) WriteManifest() (string, error) {
	path := o.cfg.ManifestPath()
	if err := manifest.Write(path, manifest.Build(o.cfg, o.now())); err != nil {
		return "", err
	}
	o.logger.Printf("📄 Manifest created: %s", o.cfg.Manifest.Filename)
	return path, nil
}

// Run executes the whole pipeline. Per-item failures are reported in the
// returned Report; any other failure aborts the run and is returned.
func (o *Optimizer) Run() (*Report, error) {
	o.stage = StageStart
	report := &Report{}

	if err := o.PrepareDirs(); err != nil {
		return nil, fmt.Errorf("failed to prepare output directories: %w", err)
	}
	o.stage = StageDirsReady

	report.Products = o.OptimizeProducts()
	o.stage = StageProductsDone

	report.Logos = o.OptimizeLogos()
	o.stage = StageLogosDone

	path, err := o.WriteManifest()
	if err != nil {
		return nil, fmt.Errorf("failed to generate manifest: %w", err)
	}
	report.ManifestPath = path
	o.stage = StageManifestWritten

	if o.deployer != nil {
		if err := o.deployer.Deploy(o.cfg.Output); err != nil {
			return nil, fmt.Errorf("failed to deploy optimized images: %w", err)
		}
		report.Deployed = true
	}

	o.stage = StageEnd
	return report, nil
}

// PrintSummary logs the final summary and suggested next steps
func (o *Optimizer) PrintSummary(report *Report) {
	o.logger.Println(strings.Repeat("=", 60))
	o.logger.Printf("✅ Optimization complete!")

	failed := report.Products.Failed() + report.Logos.Failed()
	if failed > 0 {
		o.logger.Printf("⚠️  %d of %d images could not be converted", failed, o.cfg.TotalFiles())
	}

	o.logger.Printf("📁 Optimized images in: %s/", o.cfg.Output)

	if report.Deployed {
		o.logger.Printf("🚀 Images published to: %s", o.cfg.Deploy.PublicDir)
		return
	}

	o.logger.Printf("💡 Next steps:")
	o.logger.Printf("   1. Copy %s to public/%s", o.cfg.ProductsDir(), o.cfg.Deploy.ProductsDir)
	o.logger.Printf("   2. Copy %s to public/%s", o.cfg.LogosDir(), o.cfg.Deploy.LogosDir)
	o.logger.Printf("   3. Serve the images with the Next.js Image component")
	o.logger.Printf("   4. Consider uploading to a CDN such as Cloudinary")
}

func paramsFor(cc config.ConversionConfig) common.ConversionParams {
	return common.ConversionParams{
		Width:            cc.Width,
		Height:           cc.Height,
		Fit:              cc.Fit,
		Position:         cc.Position,
		Format:           cc.Format,
		Quality:          cc.Quality,
		CompressionLevel: cc.CompressionLevel,
	}
}
