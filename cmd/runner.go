package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/vnovak404/worldgen"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
var memprofile = flag.String("memprofile", "", "write memory profile to this file")

var (
	seed   uint64 = 42
	width  int    = 2048
	height int    = 1024
	outDir string = "artifacts"
)

func init() {
	flag.Uint64Var(&seed, "seed", seed, "the world seed")
	flag.IntVar(&width, "width", width, "grid width in cells")
	flag.IntVar(&height, "height", height, "grid height in cells")
	flag.StringVar(&outDir, "out", outDir, "output directory for layer PNGs")
}

func main() {
	flag.Parse()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	params := worldgen.NewParams()
	params.Width = width
	params.Height = height

	log.Printf("Generating %dx%d map with seed=%d, macro=%d, micro=%d",
		width, height, seed, params.NumMacroplates, params.NumMicroplates)

	m, timings, err := worldgen.Generate(context.Background(), seed, params)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("\nTimings:")
	for _, t := range timings {
		fmt.Printf("  %-20s %8.1f ms\n", t.Name, t.Ms)
	}

	for _, layer := range m.Layers() {
		path := filepath.Join(outDir, layer.Name+".png")
		if err := savePNG(path, layer.RGBA, width, height); err != nil {
			log.Fatal(err)
		}
		log.Println("Saved", path)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}

func savePNG(path string, rgba []byte, w, h int) error {
	img := &image.RGBA{
		Pix:    rgba,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
