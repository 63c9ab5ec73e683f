// Command railway loads a Railway file, applies any argument overrides
// given on the command line, evaluates it, prints its named outputs, and
// optionally rasterizes it to a PNG, a thin demo harness around the
// railway and render packages, not part of the core library.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/NathanRoyer/railway"
	"github.com/NathanRoyer/railway/render"
)

// argFlags collects repeated -arg name=x,y flags, in the same spirit as
// the teacher's os.Args-remainder convention (vm package's main.go):
// package flag handles the structured bits, plain positional arguments
// handle the rest.
type argFlags map[string]railway.Couple

func (a argFlags) String() string { return "" }

func (a argFlags) Set(s string) error {
	name, rest, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected name=x,y, got %q", s)
	}
	x, y, ok := strings.Cut(rest, ",")
	if !ok {
		return fmt.Errorf("expected name=x,y, got %q", s)
	}
	xf, err := strconv.ParseFloat(strings.TrimSpace(x), 32)
	if err != nil {
		return err
	}
	yf, err := strconv.ParseFloat(strings.TrimSpace(y), 32)
	if err != nil {
		return err
	}
	a[name] = railway.Couple{X: float32(xf), Y: float32(yf)}
	return nil
}

var (
	outPath    = flag.String("out", "", "write a PNG render to this path (skip to only print outputs)")
	widthFlag  = flag.Int("width", 0, "canvas width override (0 = use RAILWAY_CANVAS_WIDTH / default)")
	heightFlag = flag.Int("height", 0, "canvas height override (0 = use RAILWAY_CANVAS_HEIGHT / default)")
	tolerance  = flag.Float64("tolerance", 0, "flattening tolerance override in pixels (0 = use RAILWAY_TOLERANCE / default)")
	setArgs    = make(argFlags)
)

func init() {
	flag.Var(setArgs, "arg", "override a named argument, e.g. -arg angle=1.5,0 (repeatable)")
	flag.Parse()
}

func main() {
	files := flag.Args()
	if len(files) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: railway [-arg name=x,y]... [-out path.png] [-width N] [-height N] [-tolerance T] <file.rwy>")
		os.Exit(2)
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	program, err := railway.Decode(data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "decode:", err)
		os.Exit(1)
	}

	cfg, err := render.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *widthFlag > 0 {
		cfg.CanvasWidth = *widthFlag
	}
	if *heightFlag > 0 {
		cfg.CanvasHeight = *heightFlag
	}
	if *tolerance > 0 {
		cfg.Tolerance = float32(*tolerance)
	}

	stack := program.NewStack()
	for name, value := range setArgs {
		if err := program.SetArgument(stack, name, value); err != nil {
			fmt.Fprintf(os.Stderr, "set argument %q: %s\n", name, err)
			os.Exit(1)
		}
	}

	program.Compute(stack)

	for _, o := range program.Outputs() {
		v, _ := program.ReadOutput(stack, o.Name)
		fmt.Printf("%s = (%g, %g)\n", o.Name, v.X, v.Y)
	}

	if *outPath == "" {
		return
	}

	canvas := render.NewRasterCanvas(cfg.CanvasWidth, cfg.CanvasHeight)
	program.Render(stack, canvas, cfg.Tolerance)

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, canvas.Image()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
