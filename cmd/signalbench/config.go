package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenarios is the layout of a --config file.
//
//	propagate:
//	  - {width: 10, depth: 10, iterations: 100}
//	fanout:
//	  - {name: wide, sources: 4, subscribers: 100, updates: 10000}
type Scenarios struct {
	Propagate []PropagateScenario `yaml:"propagate"`
	Fanout    []FanoutScenario    `yaml:"fanout"`
}

// PropagateScenario is Width independent chains of Depth lifts hanging off
// one source, updated Iterations times.
type PropagateScenario struct {
	Width      int `yaml:"width"`
	Depth      int `yaml:"depth"`
	Iterations int `yaml:"iterations"`
}

// FanoutScenario merges Sources finite sources, each producing Updates
// values, and hands the merged stream to Subscribers readers.
type FanoutScenario struct {
	Name        string `yaml:"name"`
	Sources     int    `yaml:"sources"`
	Subscribers int    `yaml:"subscribers"`
	Updates     int    `yaml:"updates"`
}

func defaultScenarios() Scenarios {
	var s Scenarios
	for _, w := range []int{1, 10, 100} {
		for _, d := range []int{1, 10, 100} {
			s.Propagate = append(s.Propagate, PropagateScenario{Width: w, Depth: d, Iterations: 100})
		}
	}
	s.Fanout = []FanoutScenario{
		{Name: "narrow", Sources: 1, Subscribers: 10, Updates: 10_000},
		{Name: "wide", Sources: 4, Subscribers: 100, Updates: 10_000},
		{Name: "crowd", Sources: 8, Subscribers: 1_000, Updates: 1_000},
	}
	return s
}

// loadScenarios reads path, or returns the defaults when path is empty.
// Sections missing from the file keep their defaults.
func loadScenarios(path string) (Scenarios, error) {
	defaults := defaultScenarios()
	if path == "" {
		return defaults, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return Scenarios{}, err
	}
	var s Scenarios
	if err := yaml.Unmarshal(src, &s); err != nil {
		return Scenarios{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.Propagate == nil {
		s.Propagate = defaults.Propagate
	}
	if s.Fanout == nil {
		s.Fanout = defaults.Fanout
	}
	return s, s.validate()
}

func (s Scenarios) validate() error {
	for i, p := range s.Propagate {
		if p.Width < 1 || p.Depth < 1 || p.Iterations < 1 {
			return fmt.Errorf("propagate scenario %d: width, depth and iterations must be positive", i)
		}
	}
	for i, f := range s.Fanout {
		if f.Sources < 1 || f.Subscribers < 1 || f.Updates < 1 {
			return fmt.Errorf("fanout scenario %d (%s): sources, subscribers and updates must be positive", i, f.Name)
		}
	}
	return nil
}
