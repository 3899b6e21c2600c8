// Command blurdemo blurs an image file and writes the result as PNG.
//
// Usage:
//
//	blurdemo -in photo.jpg -out blurred.png -radius 12 -mode stack -scheme native
//
// Without -in, a generated test pattern is blurred.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/gogpu/blur"
)

func main() {
	var (
		input    = flag.String("in", "", "input image (PNG, JPEG or WebP); empty for a test pattern")
		output   = flag.String("out", "blurred.png", "output PNG file")
		radius   = flag.Int("radius", 10, "blur radius in pixels")
		mode     = flag.String("mode", "gaussian", "algorithm: box, gaussian or stack")
		scheme   = flag.String("scheme", "portable", "backend: portable, native or gpu")
		sample   = flag.Float64("sample", 1, "downscale factor applied before blurring")
		upscale  = flag.Bool("upscale", true, "scale a downsampled result back to the input size")
		par      = flag.Bool("parallel", false, "split CPU passes into stripes")
		workers  = flag.Int("workers", 0, "stripes per pass (0 = number of CPUs)")
		software = flag.Bool("software-gpu", false, "run the gpu scheme on the CPU")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		blur.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	m, err := blur.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	s, err := blur.ParseScheme(*scheme)
	if err != nil {
		log.Fatal(err)
	}

	src, err := loadSource(*input)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	var engineOpts []blur.EngineOption
	if *software {
		engineOpts = append(engineOpts, blur.WithSoftwareGPU())
	}
	engine := blur.NewEngine(engineOpts...)
	defer engine.Close()

	p, err := engine.NewProcessor(blur.NewConfig(
		blur.WithRadius(*radius),
		blur.WithMode(m),
		blur.WithScheme(s),
		blur.WithSampleFactor(*sample),
		blur.WithUpscale(*upscale),
		blur.WithParallel(*par),
		blur.WithWorkers(*workers),
	))
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	out, err := p.BlurSurface(src)
	if err != nil {
		log.Fatalf("Blur failed: %v", err)
	}
	elapsed := time.Since(start)

	if err := savePNG(*output, out.ToImage()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Blurred %dx%d with %s/%s r=%d in %v, saved to %s\n",
		src.Bounds().Dx(), src.Bounds().Dy(), m, s, *radius, elapsed, *output)
}

func loadSource(path string) (image.Image, error) {
	if path == "" {
		return testPattern(512, 384), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	log.Printf("Loaded %s (%s, %dx%d)\n", path, format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// testPattern draws a checkerboard over a diagonal gradient.
func testPattern(w, h int) image.Image {
	buf, _ := blur.NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8(x * 255 / w)
			g := uint8(y * 255 / h)
			c := blur.ARGB(255, r, g, 160)
			if (x/32+y/32)%2 == 0 {
				c = blur.ARGB(255, 255-r, 255-g, 40)
			}
			buf.Set(x, y, c)
		}
	}
	return buf.ToImage()
}
