// sketcher renders sample shape drawings and submits them to a running
// shape gallery server. Handy for seeding a gallery or smoke-testing the
// submission endpoint end to end.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"math/rand"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"
)

const canvasSize = 256

// jitter is the per-point wobble applied for each quality grade, in pixels.
var jitter = map[string]float64{
	"perfect":   0,
	"medium":    2.5,
	"irregular": 6,
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the shape gallery server")
	label := flag.String("label", "all", "shape to draw: circle, square, triangle or all")
	quality := flag.String("quality", "perfect", "quality grade to submit: perfect, medium or irregular")
	count := flag.Int("count", 1, "number of drawings per shape")
	flag.Parse()

	labels := []string{*label}
	if *label == "all" {
		labels = []string{"circle", "square", "triangle"}
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(4)
	for _, l := range labels {
		for i := 0; i < *count; i++ {
			g.Go(func() error {
				return submit(ctx, *addr, l, *quality)
			})
		}
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Error submitting drawings")
	}
}

func submit(ctx context.Context, addr, label, quality string) error {
	dataURL, err := render(label, jitter[quality])
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"image":   dataURL,
		"label":   label,
		"quality": quality,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/v1/shapes", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	d, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server responded %d: %s", resp.StatusCode, d)
	}

	log.Info().
		Str("label", label).
		Str("quality", quality).
		RawJSON("response", d).
		Msg("drawing submitted")
	return nil
}

// render rasterizes one shape outline onto a white 256x256 canvas and
// returns it as a PNG data URL, the same format the drawing page produces.
func render(label string, wobble float64) (string, error) {
	var pts [][2]float32
	switch label {
	case "circle":
		const segments = 48
		for i := 0; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / segments
			pts = append(pts, [2]float32{
				128 + 90*float32(math.Cos(a)),
				128 + 90*float32(math.Sin(a)),
			})
		}
	case "square":
		pts = [][2]float32{{38, 38}, {218, 38}, {218, 218}, {38, 218}, {38, 38}}
	case "triangle":
		pts = [][2]float32{{128, 30}, {222, 212}, {34, 212}, {128, 30}}
	default:
		return "", fmt.Errorf("unknown shape %q", label)
	}

	if wobble > 0 {
		for i := range pts {
			pts[i][0] += float32((rand.Float64()*2 - 1) * wobble)
			pts[i][1] += float32((rand.Float64()*2 - 1) * wobble)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	z := vector.NewRasterizer(canvasSize, canvasSize)
	strokePolyline(z, pts, 3)
	z.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{})

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// strokePolyline fills each segment of the polyline as a thin quad of the
// given width. Overlap at the joints saturates coverage, so consecutive
// segments blend cleanly.
func strokePolyline(z *vector.Rasterizer, pts [][2]float32, width float32) {
	half := width / 2
	for i := 0; i+1 < len(pts); i++ {
		x1, y1 := pts[i][0], pts[i][1]
		x2, y2 := pts[i+1][0], pts[i+1][1]
		dx, dy := x2-x1, y2-y1
		length := float32(math.Hypot(float64(dx), float64(dy)))
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		z.MoveTo(x1+nx, y1+ny)
		z.LineTo(x2+nx, y2+ny)
		z.LineTo(x2-nx, y2-ny)
		z.LineTo(x1-nx, y1-ny)
		z.ClosePath()
	}
}
