// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// resizeEvent requests a resize before a given frame.
type resizeEvent struct {
	frame  int
	width  int
	height int
}

var errResizeSyntax = errors.New("resize must be of the form WxH@FRAME")

// parseResize parses a string of the form "WxH@FRAME".
func parseResize(s string) (resizeEvent, error) {
	size, frame, ok := strings.Cut(s, "@")
	if !ok {
		return resizeEvent{}, fmt.Errorf("%q: %w", s, errResizeSyntax)
	}
	w, h, ok := strings.Cut(strings.ToLower(size), "x")
	if !ok {
		return resizeEvent{}, fmt.Errorf("%q: %w", s, errResizeSyntax)
	}
	var ev resizeEvent
	var err error
	for _, x := range [...]struct {
		s string
		p *int
	}{{w, &ev.width}, {h, &ev.height}, {frame, &ev.frame}} {
		if *x.p, err = strconv.Atoi(x.s); err != nil || *x.p < 0 {
			return resizeEvent{}, fmt.Errorf("%q: %w", s, errResizeSyntax)
		}
	}
	return ev, nil
}

// parseResizes parses every string in ss and sorts
// the events by frame.
func parseResizes(ss []string) ([]resizeEvent, error) {
	evs := make([]resizeEvent, 0, len(ss))
	for _, s := range ss {
		ev, err := parseResize(s)
		if err != nil {
			return nil, err
		}
		evs = append(evs, ev)
	}
	slices.SortStableFunc(evs, func(a, b resizeEvent) int { return a.frame - b.frame })
	return evs, nil
}
