// Command plot-run draws the dead ends of a recorded exploration run as a
// scatter over the arena floor, sized by light intensity, with the selected
// target and the arrival point highlighted.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/lightseeker/internal/db"
	"github.com/banshee-data/lightseeker/internal/explore"
)

// runPlot is everything drawn for one run.
type runPlot struct {
	runID     string
	deadEnds  []explore.Record
	target    explore.Record
	hasTarget bool
	arrival   db.Arrival
	arrived   bool
}

func main() {
	var dbPath, runID, format, out string

	flag.StringVar(&dbPath, "db", "runs.db", "path to sqlite run store")
	flag.StringVar(&runID, "run", "", "run id to plot (default latest)")
	flag.StringVar(&format, "format", "png", "output format: png or html")
	flag.StringVar(&out, "out", "", "output file (default run-<id>.<format>)")
	flag.Parse()

	if format != "png" && format != "html" {
		log.Fatalf("unsupported format %q: expected png or html", format)
	}

	store, err := db.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	rp, err := loadRun(store, runID)
	if err != nil {
		log.Fatalf("load run: %v", err)
	}
	if out == "" {
		out = fmt.Sprintf("run-%.8s.%s", rp.runID, format)
	}

	switch format {
	case "png":
		err = renderPNG(rp, out)
	case "html":
		err = renderHTMLFile(rp, out)
	}
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	fmt.Printf("wrote %d dead ends for run %s to %s\n", len(rp.deadEnds), rp.runID, out)
}

func loadRun(store *db.DB, runID string) (runPlot, error) {
	if runID == "" {
		latest, err := store.LatestRun()
		if err != nil {
			return runPlot{}, err
		}
		runID = latest.ID
	}

	rp := runPlot{runID: runID}
	var err error
	if rp.deadEnds, err = store.DeadEnds(runID); err != nil {
		return rp, err
	}
	if len(rp.deadEnds) == 0 {
		return rp, fmt.Errorf("run %s has no dead ends", runID)
	}
	if rp.target, rp.hasTarget, err = store.TargetFor(runID); err != nil {
		return rp, err
	}
	if rp.arrival, rp.arrived, err = store.ArrivalFor(runID); err != nil {
		return rp, err
	}
	return rp, nil
}

// lightRange returns the min and max light over the dead ends.
func lightRange(recs []explore.Record) (lo, hi float64) {
	lights := make([]float64, len(recs))
	for i, r := range recs {
		lights[i] = r.Light
	}
	return floats.Min(lights), floats.Max(lights)
}

// glyphRadius maps light onto 3..12pt.
func glyphRadius(light, lo, hi float64) vg.Length {
	if hi <= lo {
		return vg.Points(6)
	}
	return vg.Points(3 + 9*(light-lo)/(hi-lo))
}

func renderPNG(rp runPlot, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run %.8s - dead ends by light intensity", rp.runID)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rp.deadEnds))
	for i, r := range rp.deadEnds {
		pts[i] = plotter.XY{X: r.Position.X, Y: r.Position.Y}
	}
	lo, hi := lightRange(rp.deadEnds)

	deadEnds, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("dead end scatter: %w", err)
	}
	deadEnds.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  color.RGBA{R: 49, G: 104, B: 142, A: 255},
			Radius: glyphRadius(rp.deadEnds[i].Light, lo, hi),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(deadEnds)
	p.Legend.Add("dead end", deadEnds)

	if rp.hasTarget {
		target, err := plotter.NewScatter(plotter.XYs{{X: rp.target.Position.X, Y: rp.target.Position.Y}})
		if err != nil {
			return fmt.Errorf("target scatter: %w", err)
		}
		target.GlyphStyle = draw.GlyphStyle{Color: color.RGBA{R: 220, G: 40, B: 40, A: 255}, Radius: vg.Points(14), Shape: draw.RingGlyph{}}
		p.Add(target)
		p.Legend.Add(fmt.Sprintf("target (dead end %d)", rp.target.Index), target)
	}

	if rp.arrived {
		arrival, err := plotter.NewScatter(plotter.XYs{{X: rp.arrival.Position.X, Y: rp.arrival.Position.Y}})
		if err != nil {
			return fmt.Errorf("arrival scatter: %w", err)
		}
		arrival.GlyphStyle = draw.GlyphStyle{Color: color.Black, Radius: vg.Points(5), Shape: draw.CrossGlyph{}}
		p.Add(arrival)
		p.Legend.Add("arrival", arrival)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func renderHTMLFile(rp runPlot, path string) error {
	var buf bytes.Buffer
	if err := renderHTML(rp, &buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func renderHTML(rp runPlot, w io.Writer) error {
	lo, hi := lightRange(rp.deadEnds)

	data := make([]opts.ScatterData, 0, len(rp.deadEnds))
	for _, r := range rp.deadEnds {
		data = append(data, opts.ScatterData{
			Name:  fmt.Sprintf("dead end %d", r.Index),
			Value: []interface{}{r.Position.X, r.Position.Y, r.Light},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Exploration run", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Dead ends by light intensity", Subtitle: fmt.Sprintf("run=%s dead_ends=%d", rp.runID, len(rp.deadEnds))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("dead ends", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	if rp.hasTarget {
		scatter.AddSeries("target", []opts.ScatterData{{
			Name:  fmt.Sprintf("target (dead end %d)", rp.target.Index),
			Value: []interface{}{rp.target.Position.X, rp.target.Position.Y, rp.target.Light},
		}}, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 24}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#dc2828"}))
	}
	if rp.arrived {
		scatter.AddSeries("arrival", []opts.ScatterData{{
			Name:  "arrival",
			Value: []interface{}{rp.arrival.Position.X, rp.arrival.Position.Y},
		}}, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#000000"}))
	}

	return scatter.Render(w)
}
