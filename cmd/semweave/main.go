// semweave - temporal semantic weaving engine
//
// Experiences become interfering waves in a resonance field; queries
// collapse the field into insights.

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"

	"github.com/dotsetgreg/semweave/pkg/archive"
	"github.com/dotsetgreg/semweave/pkg/config"
	"github.com/dotsetgreg/semweave/pkg/embed"
	"github.com/dotsetgreg/semweave/pkg/events"
	"github.com/dotsetgreg/semweave/pkg/field"
	"github.com/dotsetgreg/semweave/pkg/index"
	"github.com/dotsetgreg/semweave/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

const appName = "semweave"

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func printVersion() {
	fmt.Printf("%s %s\n", appName, formatVersion())
	if buildTime != "" {
		fmt.Printf("  Build: %s\n", buildTime)
	}
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	fmt.Printf("  Go: %s\n", goVer)
}

func main() {
	if err := executeCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app wires config, embedding, field, optional index and archive. When
// the archive is enabled, field activity flows to it through an event bus
// drained by a background recorder.
type app struct {
	cfg   *config.Config
	field *field.ResonanceField
	arch  *archive.Archive

	bus          *events.Bus
	recorderDone chan struct{}
	crystalsSeen int
}

func newApp(configPath string, debug bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
	} else {
		logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	}

	engine, err := embed.NewCached(embed.NewChargram(cfg.Embedding.Dimensions), cfg.Embedding.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}

	f, err := field.New(cfg.EngineConfig(), engine)
	if err != nil {
		return nil, fmt.Errorf("resonance field: %w", err)
	}

	if cfg.Index.Enabled {
		idx, err := index.New("waves")
		if err != nil {
			return nil, fmt.Errorf("candidate index: %w", err)
		}
		f.SetCandidateIndex(idx, cfg.Index.CandidateLimit)
		logger.InfoCF("cli", "candidate index enabled", map[string]interface{}{
			"limit": cfg.Index.CandidateLimit,
		})
	}

	a := &app{cfg: cfg, field: f}
	if cfg.Archive.Enabled {
		arch, err := archive.New(cfg.ArchivePath())
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.arch = arch
		a.bus = events.NewBus()
		a.recorderDone = make(chan struct{})
		go a.recordEvents()
		logger.InfoCF("cli", "archive enabled", map[string]interface{}{
			"path": cfg.ArchivePath(),
		})
	}
	return a, nil
}

func (a *app) close() {
	if a.bus != nil {
		a.bus.Close()
		<-a.recorderDone
	}
	if a.arch != nil {
		_ = a.arch.Close()
	}
}

// recordEvents drains the bus into the archive until the bus closes.
func (a *app) recordEvents() {
	defer close(a.recorderDone)
	ctx := context.Background()
	for {
		ev, ok := a.bus.Consume(ctx)
		if !ok {
			return
		}
		var err error
		switch {
		case ev.Wave != nil:
			err = a.arch.RecordExperience(ctx, archive.ExperienceRecord{
				WaveID:    ev.Wave.WaveID,
				Text:      ev.Wave.Text,
				Step:      ev.Step,
				Amplitude: ev.Wave.Amplitude,
				Frequency: ev.Wave.Frequency,
				Keywords:  ev.Wave.Keywords,
			})
		case ev.Crystal != nil:
			err = a.arch.RecordCrystal(ctx, archive.CrystalRecord{
				ID:        ev.Crystal.CrystalID,
				Step:      ev.Step,
				Stability: ev.Crystal.Stability,
				Members:   ev.Crystal.Members,
				Keywords:  ev.Crystal.Keywords,
			})
		case ev.Insight != nil:
			err = a.arch.RecordInsight(ctx, archive.InsightRecord{
				Query:      ev.Insight.Query,
				Summary:    ev.Insight.Summary,
				Confidence: ev.Insight.Confidence,
				Collapse:   ev.Insight.Collapse,
				Evidence:   ev.Insight.Evidence,
			})
		}
		if err != nil {
			logger.WarnCF("cli", "archive record failed", map[string]interface{}{
				"event": string(ev.Type),
				"error": err.Error(),
			})
		}
	}
}

func (a *app) add(ctx context.Context, text string) error {
	id, err := a.field.AddExperience(text)
	if err != nil {
		return err
	}
	w, _ := a.field.Wave(id)
	fmt.Printf("wave %s  amplitude=%.2f  frequency=%.2f  keywords=%s\n",
		shortID(id), w.Amplitude, w.Frequency, strings.Join(w.Keywords, ","))

	if a.bus != nil {
		a.bus.Publish(events.Event{
			Type: events.WaveInserted,
			Step: w.CreatedStep,
			Wave: &events.WavePayload{
				WaveID:    id,
				Text:      text,
				Amplitude: w.Amplitude,
				Frequency: w.Frequency,
				Keywords:  w.Keywords,
			},
		})
		// Crystals are append-only, so everything past the watermark is new.
		crystals := a.field.Crystals()
		for _, c := range crystals[a.crystalsSeen:] {
			a.bus.Publish(events.Event{
				Type: events.CrystalFormed,
				Step: c.Step,
				Crystal: &events.CrystalPayload{
					CrystalID: c.ID,
					Stability: c.Stability,
					Members:   c.Members,
					Keywords:  c.Keywords,
				},
			})
		}
		a.crystalsSeen = len(crystals)
	}
	return nil
}

func (a *app) query(ctx context.Context, text string) error {
	ins, err := a.field.Query(text)
	if err != nil {
		return err
	}
	fmt.Printf("Insight: %s\n", ins.Summary)
	fmt.Printf("Confidence: %.0f%%  Collapse: %.3f\n", ins.Confidence*100, ins.Collapse)
	for i, ev := range ins.Evidence {
		fmt.Printf("  %d. [%s] %s (interference %.3f)\n", i+1, shortID(ev.WaveID), truncate(ev.Source, 60), ev.Interference)
	}

	if a.bus != nil {
		evidence := make([]string, 0, len(ins.Evidence))
		for _, ev := range ins.Evidence {
			evidence = append(evidence, ev.WaveID)
		}
		a.bus.Publish(events.Event{
			Type: events.InsightProduced,
			Step: a.field.Step(),
			Insight: &events.InsightPayload{
				Query:      text,
				Summary:    ins.Summary,
				Confidence: ins.Confidence,
				Collapse:   ins.Collapse,
				Evidence:   evidence,
			},
		})
	}
	return nil
}

func (a *app) stats() {
	st := a.field.GetStats()
	fmt.Printf("Waves:         %s\n", humanize.Comma(int64(st.WaveCount)))
	fmt.Printf("Field energy:  %s\n", humanize.FtoaWithDigits(st.FieldEnergy, 3))
	fmt.Printf("Crystals:      %d\n", st.CrystalCount)
	fmt.Printf("Entanglements: %d\n", st.EntanglementCount)
	fmt.Printf("Avg amplitude: %.3f\n", st.AvgAmplitude)
}

func (a *app) crystals() {
	cs := a.field.Crystals()
	if len(cs) == 0 {
		fmt.Println("No crystals formed yet.")
		return
	}
	for _, c := range cs {
		fmt.Printf("crystal %s  step=%d  stability=%.2f  members=%d  keywords=%s\n",
			shortID(c.ID), c.Step, c.Stability, len(c.Members), strings.Join(c.Keywords, ","))
	}
}

func (a *app) braids() {
	patterns := a.field.BraidPatterns(2)
	if len(patterns) == 0 {
		fmt.Println("No recurring braid patterns yet.")
		return
	}
	for _, p := range patterns {
		fmt.Printf("braid x%d  %s\n", p.Count, strings.Join(p.Keywords, ","))
	}
}

func (a *app) loops(limit int) {
	scanner := a.field.CausalLoops()
	found := 0
	for found < limit {
		loop, ok := scanner.Next()
		if !ok {
			break
		}
		ids := make([]string, len(loop.IDs))
		for i, id := range loop.IDs {
			ids[i] = shortID(id)
		}
		fmt.Printf("loop %s  keywords=%s\n", strings.Join(ids, " -> "), strings.Join(loop.Keywords, ","))
		found++
	}
	if found == 0 {
		fmt.Println("No causal loops detected.")
	}
}

// recoverDemo encodes the current field holographically, damages half the
// spectrum and reports how well the wave vectors survive.
func (a *app) recoverDemo(fraction float64) {
	snap := a.field.GetSnapshot()
	if len(snap.Waves) == 0 {
		fmt.Println("Field is empty, nothing to encode.")
		return
	}
	h := field.EncodeHologram(snap, field.HologramConfig{})
	mask := field.HalfDamageMask(h.Coefficients(), fraction, 42)
	decoded := h.Damage(mask).Decode()

	var worst float64
	for i, rw := range decoded {
		err := relativeError(snap.Waves[i].Vector, rw.Vector)
		if err > worst {
			worst = err
		}
	}
	fmt.Printf("Encoded %d waves into %s spectral coefficients each.\n",
		h.Size(), humanize.Comma(int64(h.Coefficients())))
	fmt.Printf("Zeroed %.0f%% of coefficients; worst reconstruction error %.1f%%.\n",
		fraction*100, worst*100)
}

func relativeError(want, got []float32) float64 {
	var num, den float64
	for i := range want {
		d := float64(want[i])
		g := 0.0
		if i < len(got) {
			g = float64(got[i])
		}
		num += (d - g) * (d - g)
		den += d * d
	}
	if den == 0 {
		return 0
	}
	return math.Sqrt(num / den)
}

func (a *app) replay(ctx context.Context) error {
	if a.arch == nil {
		return fmt.Errorf("archive is disabled; enable it in config or SEMWEAVE_ARCHIVE_ENABLED=true")
	}
	records, err := a.arch.ListExperiences(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Archive is empty.")
		return nil
	}
	for _, rec := range records {
		if _, err := a.field.AddExperience(rec.Text); err != nil {
			logger.WarnCF("cli", "replay insert failed", map[string]interface{}{
				"wave_id": rec.WaveID,
				"error":   err.Error(),
			})
		}
	}
	fmt.Printf("Replayed %d experiences.\n", len(records))
	a.stats()
	return nil
}

var demoExperiences = []string{
	"Met Sarah for coffee, she got promoted and seems stressed about managing",
	"Practiced guitar today, fingers hurt from bar chords",
	"Tom mentioned his promotion last month at lunch",
	"Coffee always helps me think through problems",
	"Sarah plays guitar too, we should jam",
	"Feeling stuck with my career lately",
	"Morning coffee ritual is sacred",
	"Sarah helped me with bar chords over coffee",
	"Tom's promotion made me think about my path",
	"Morning coffee is when I practice guitar",
	"Had energizing coffee with Sarah today",
	"Guitar practice reminds me of learning to code",
	"Sarah and I discussed career transitions over coffee",
}

var demoQueries = []string{
	"Why do I keep meeting Sarah?",
	"What connects guitar and coffee?",
	"What patterns exist in my life?",
	"How does Tom influence my thinking?",
	"What emerges from coffee meetings?",
}

func (a *app) demo(ctx context.Context) error {
	fmt.Println("Loading experiences...")
	for _, exp := range demoExperiences {
		if err := a.add(ctx, exp); err != nil {
			return err
		}
	}

	fmt.Println("\nQueries:")
	for _, q := range demoQueries {
		fmt.Printf("\n> %s\n", q)
		if err := a.query(ctx, q); err != nil {
			return err
		}
	}

	fmt.Println("\nField state:")
	a.stats()
	fmt.Println()
	a.crystals()
	fmt.Println()
	a.braids()
	fmt.Println()
	a.loops(5)

	fmt.Println("\nHolographic recovery:")
	a.recoverDemo(0.5)
	return nil
}

func (a *app) repl(ctx context.Context) error {
	fmt.Println("semweave interactive field. Plain text adds an experience;")
	fmt.Println("prefix with ? to query. /help lists commands, exit quits.")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "semweave> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".semweave_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initialize readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return nil
		}

		switch {
		case strings.HasPrefix(input, "?"):
			q := strings.TrimSpace(strings.TrimPrefix(input, "?"))
			if q == "" {
				fmt.Println("Usage: ? <question>")
				continue
			}
			if err := a.query(ctx, q); err != nil {
				fmt.Printf("query failed: %v\n", err)
			}
		case input == "/help":
			fmt.Println("  <text>      add an experience wave")
			fmt.Println("  ? <text>    query the field")
			fmt.Println("  /stats      field summary")
			fmt.Println("  /crystals   crystallized patterns")
			fmt.Println("  /braids     recurring keyword braids")
			fmt.Println("  /loops      causal loops")
			fmt.Println("  /tick       advance field time one step")
			fmt.Println("  /prune      evict faded waves")
			fmt.Println("  /recover    holographic damage demonstration")
			fmt.Println("  exit        leave")
		case input == "/stats":
			a.stats()
		case input == "/crystals":
			a.crystals()
		case input == "/braids":
			a.braids()
		case input == "/loops":
			a.loops(10)
		case input == "/tick":
			a.field.Tick()
			fmt.Printf("step=%d\n", a.field.Step())
		case input == "/prune":
			evicted := a.field.Prune(0)
			fmt.Printf("evicted %d waves\n", len(evicted))
		case input == "/recover":
			a.recoverDemo(0.5)
		case strings.HasPrefix(input, "/"):
			fmt.Println("Unknown command, /help for the list.")
		default:
			if err := a.add(ctx, input); err != nil {
				fmt.Printf("add failed: %v\n", err)
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
