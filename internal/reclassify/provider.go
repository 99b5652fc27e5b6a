// Package reclassify re-judges detected poses from their thumbnails with an
// external vision provider and asks text providers for coaching feedback.
package reclassify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/analysis"
)

var (
	// ErrProviderNotFound is returned when no provider is registered under a name.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrUnsupported is returned when a provider lacks the requested capability.
	ErrUnsupported = errors.New("provider does not support this action")

	// ErrUnknownPose is returned when a verdict names a pose outside the catalogue.
	ErrUnknownPose = errors.New("unknown pose name")
)

// Verdict is a provider's judgement of one thumbnail.
type Verdict struct {
	PoseName     analysis.PoseName `json:"poseName"`
	Confidence   int               `json:"confidence"`
	QualityScore int               `json:"qualityScore"`
	Note         string            `json:"note,omitempty"`
}

// Provider classifies pose images and generates free text.
type Provider interface {
	Name() string
	ClassifyPose(ctx context.Context, image []byte) (Verdict, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type verdictPayload struct {
	PoseName   string  `json:"poseName"`
	Confidence float64 `json:"confidence"`
	Quality    float64 `json:"quality"`
	Notes      string  `json:"notes"`
}

// parseVerdict decodes the JSON verdict format shared by every provider.
func parseVerdict(data []byte) (Verdict, error) {
	var p verdictPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}

	name, ok := analysis.ParsePoseName(p.PoseName)
	if !ok {
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnknownPose, p.PoseName)
	}

	return Verdict{
		PoseName:     name,
		Confidence:   percent(p.Confidence),
		QualityScore: percent(p.Quality),
		Note:         p.Notes,
	}, nil
}

func percent(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// Registry holds providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds p, replacing any provider with the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
