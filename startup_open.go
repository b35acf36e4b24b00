package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/olivier-w/databar/internal/config"
	"github.com/olivier-w/databar/internal/dataset"
	"github.com/olivier-w/databar/internal/store"
	"github.com/olivier-w/databar/internal/ui"
)

// datasetInfo checks that path is a readable dataset file and describes it.
func datasetInfo(path string, cfg *config.Config) (dataset.Info, error) {
	info, err := os.Stat(path)
	if err != nil {
		return dataset.Info{}, err
	}
	if info.IsDir() {
		return dataset.Info{}, fmt.Errorf("%s is a directory", path)
	}

	kind, compressed := dataset.FormatFromPath(path)
	if kind == dataset.FormatUnknown {
		return dataset.Info{}, fmt.Errorf("unsupported format %s (supported: %s)", filepath.Ext(path), dataset.SupportedExtsList())
	}

	base := filepath.Base(path)
	if compressed {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return dataset.Info{
		Name:   strings.TrimSuffix(base, filepath.Ext(base)),
		Path:   path,
		Format: kind,
		Hz:     cfg.Hz,
	}, nil
}

// parseCharts turns the chart arguments into channel index lists. With no
// arguments a single chart shows channel 0.
func parseCharts(args []string) ([][]int, error) {
	if len(args) == 0 {
		return [][]int{{0}}, nil
	}
	charts := make([][]int, 0, len(args))
	for _, arg := range args {
		idx, err := ui.ParseChannels(arg)
		if err != nil {
			return nil, err
		}
		charts = append(charts, idx)
	}
	return charts, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if cfg.StorePath == "" {
		return store.OpenInMemory()
	}
	return store.Open(cfg.StorePath)
}

// buildParams resolves the command line into what the TUI shows.
func buildParams(args []string, cfg *config.Config, st *store.Store) (ui.Params, error) {
	if len(args) == 0 {
		return ui.Params{}, fmt.Errorf("usage: databar <dataset> [channels...]")
	}
	info, err := datasetInfo(args[0], cfg)
	if err != nil {
		return ui.Params{}, err
	}
	charts, err := parseCharts(args[1:])
	if err != nil {
		return ui.Params{}, err
	}

	p := ui.Params{
		Info:     info,
		Charts:   charts,
		Provider: dataset.NewProvider(nil),
		Store:    st,
		Config:   cfg,
	}
	if cfg.Energy != "" {
		einfo, err := datasetInfo(cfg.Energy, cfg)
		if err != nil {
			return ui.Params{}, fmt.Errorf("energy dataset: %w", err)
		}
		einfo.Name = "energy:" + einfo.Name
		p.Energy = &einfo
	}
	return p, nil
}

// openDataset loads the dataset (and energy) into the provider cache so the
// charts draw from memory, and checks the chart channels against it.
func openDataset(ctx context.Context, p ui.Params) error {
	ds, err := p.Provider.Load(ctx, p.Info)
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		return fmt.Errorf("%s has no samples", p.Info.Path)
	}
	for _, idx := range p.Charts {
		for _, i := range idx {
			if i >= ds.ChannelCount() {
				log.WithFields(log.Fields{"channel": i, "channels": ds.ChannelCount()}).Warn("channel index out of range, omitted")
			}
		}
	}
	if p.Energy != nil {
		if _, err := p.Provider.Load(ctx, *p.Energy); err != nil {
			return fmt.Errorf("energy dataset: %w", err)
		}
	}
	return nil
}
