package tui

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// ShimmerConfig controls the highlight that sweeps over the loading text
type ShimmerConfig struct {
	Enabled      bool
	ReduceMotion bool    // static highlight instead of a sweep
	WidthRatio   float64 // highlight width relative to the text
	Cycle        time.Duration
	PauseBetween time.Duration
}

func DefaultShimmerConfig() ShimmerConfig {
	return ShimmerConfig{
		Enabled:      true,
		WidthRatio:   0.25,
		Cycle:        1800 * time.Millisecond,
		PauseBetween: 500 * time.Millisecond,
	}
}

// Shimmer renders text with a moving highlight. The position is derived
// from the time since Start, so the caller only has to re-render.
type Shimmer struct {
	config    ShimmerConfig
	trueColor bool
	start     time.Time
	now       func() time.Time
}

func NewShimmer(config ShimmerConfig) *Shimmer {
	return &Shimmer{
		config:    config,
		trueColor: os.Getenv("COLORTERM") == "truecolor",
		start:     time.Now(),
		now:       time.Now,
	}
}

// Start restarts the sweep from the left edge
func (s *Shimmer) Start() {
	s.start = s.now()
}

func (s *Shimmer) animated() bool {
	return s.config.Enabled && !s.config.ReduceMotion
}

// center returns the highlight position for text of length n, or false
// while the sweep is paused between cycles
func (s *Shimmer) center(n int) (float64, bool) {
	period := s.config.Cycle + s.config.PauseBetween
	if period <= 0 || s.config.Cycle <= 0 {
		return 0, false
	}
	elapsed := s.now().Sub(s.start) % period
	if elapsed >= s.config.Cycle {
		return 0, false
	}

	margin := float64(n) * s.config.WidthRatio
	progress := float64(elapsed) / float64(s.config.Cycle)
	return -margin + progress*(float64(n)+2*margin), true
}

// Render returns text with the highlight at its current position
func (s *Shimmer) Render(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	if !s.animated() {
		return fmt.Sprintf("\033[38;2;167;139;250m%s\033[0m", text)
	}

	center, ok := s.center(len(runes))
	if !ok {
		center = -float64(len(runes)) // out of reach, base color only
	}
	if !s.trueColor {
		return renderFallback(runes, center, s.config.WidthRatio)
	}
	return s.renderTrueColor(runes, center)
}

func (s *Shimmer) renderTrueColor(runes []rune, center float64) string {
	var b strings.Builder

	// #B1B8C7 blended towards #EAE6FF
	baseR, baseG, baseB := 177.0, 184.0, 199.0
	highR, highG, highB := 234.0, 230.0, 255.0

	sigma := math.Max(1, s.config.WidthRatio*float64(len(runes))/2)
	for i, r := range runes {
		dx := float64(i) - center
		w := math.Exp(-(dx * dx) / (2 * sigma * sigma))
		fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm%c",
			int(baseR*(1-w)+highR*w),
			int(baseG*(1-w)+highG*w),
			int(baseB*(1-w)+highB*w),
			r)
	}
	b.WriteString("\033[0m")
	return b.String()
}

// renderFallback approximates the sweep with the 256-color palette
func renderFallback(runes []rune, center, widthRatio float64) string {
	width := max(1, int(widthRatio*float64(len(runes))))
	from := int(center) - width/2
	to := from + width

	var b strings.Builder
	for i, r := range runes {
		if i >= from && i < to {
			fmt.Fprintf(&b, "\033[38;5;147m%c", r)
		} else {
			fmt.Fprintf(&b, "\033[38;5;250m%c", r)
		}
	}
	b.WriteString("\033[0m")
	return b.String()
}
