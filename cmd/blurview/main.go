// Command blurview previews blur settings in the terminal.
//
// Defaults come from BLUR_RADIUS, BLUR_MODE, BLUR_SCHEME and BLUR_SAMPLE,
// optionally set in a .env file in the working directory.
package main

import (
	"flag"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/gogpu/blur"
)

func main() {
	input := flag.String("in", "", "image to preview; empty for a test pattern")
	software := flag.Bool("software-gpu", false, "run the gpu scheme on the CPU")
	flag.Parse()

	// .env is optional.
	_ = godotenv.Load()

	s, err := loadSettings(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	source, err := loadSource(*input)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	var opts []blur.EngineOption
	if *software {
		opts = append(opts, blur.WithSoftwareGPU())
	}
	engine := blur.NewEngine(opts...)
	defer engine.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	newViewer(screen, engine, source, s).run()
}

func loadSource(path string) (*blur.PixelBuffer, error) {
	if path == "" {
		return pattern(160, 96), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return blur.FromImage(img)
}

// pattern draws colored stripes with a checkerboard overlay.
func pattern(w, h int) *blur.PixelBuffer {
	buf, _ := blur.NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := blur.ARGB(255, uint8(x*255/w), 96, uint8(y*255/h))
			if (x/8+y/8)%2 == 0 {
				c = blur.ARGB(255, 240, 240, 240)
			}
			buf.Set(x, y, c)
		}
	}
	return buf
}
