package dataset

import (
	"context"
	"fmt"
	"sync"
)

// LoadFunc produces a dataset for info. Open is the default.
type LoadFunc func(ctx context.Context, info Info) (*Dataset, error)

type pending struct {
	done chan struct{}
	ds   *Dataset
	err  error
}

// Provider loads datasets keyed by name and caches the result, so every
// sensor chart of one dataset shares a single load.
type Provider struct {
	load LoadFunc

	mu      sync.Mutex
	entries map[string]*pending
}

// NewProvider creates a provider. A nil load reads files with Open.
func NewProvider(load LoadFunc) *Provider {
	if load == nil {
		load = func(_ context.Context, info Info) (*Dataset, error) {
			return Open(info.Path, info)
		}
	}
	return &Provider{load: load, entries: make(map[string]*pending)}
}

// Load starts (or joins) the load for info.Name and waits for it.
func (p *Provider) Load(ctx context.Context, info Info) (*Dataset, error) {
	p.mu.Lock()
	e, ok := p.entries[info.Name]
	if !ok {
		e = &pending{done: make(chan struct{})}
		p.entries[info.Name] = e
		go func() {
			e.ds, e.err = p.load(context.WithoutCancel(ctx), info)
			close(e.done)
		}()
	}
	p.mu.Unlock()
	return p.wait(ctx, e)
}

func (p *Provider) get(ctx context.Context, name string) (*Dataset, error) {
	p.mu.Lock()
	e, ok := p.entries[name]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("dataset %q was never loaded", name)
	}
	return p.wait(ctx, e)
}

func (p *Provider) wait(ctx context.Context, e *pending) (*Dataset, error) {
	select {
	case <-e.done:
		return e.ds, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SensorStreams returns the channels idx of a loaded dataset.
func (p *Provider) SensorStreams(ctx context.Context, name string, idx []int) (*Dataset, error) {
	ds, err := p.get(ctx, name)
	if err != nil {
		return nil, err
	}
	return ds.Filter(idx), nil
}

// Labels returns the per-sample label channel (the last channel) of a
// loaded dataset, or nil when the dataset has no channels.
func (p *Provider) Labels(ctx context.Context, name string) ([]float64, error) {
	ds, err := p.get(ctx, name)
	if err != nil {
		return nil, err
	}
	ch, ok := ds.LabelsChannel().Channel(0)
	if !ok {
		return nil, nil
	}
	return ch.Samples, nil
}

// Forget drops a cached dataset so the next Load reads it again.
func (p *Provider) Forget(name string) {
	p.mu.Lock()
	delete(p.entries, name)
	p.mu.Unlock()
}
