// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package poll provides a focus-gated polling scheduler for Bubble Tea
// programs.
//
// The scheduler owns no goroutines. Each tick is a tea.Tick command tagged
// with a generation number; Stop and Blur bump the generation so ticks that
// are already in flight are ignored when they arrive. The model calls Handle
// for every TickMsg and fetches when it reports fire.
//
//	s := poll.New(poll.Options{Interval: 500 * time.Millisecond, RefetchOnFocus: true})
//	cmd := s.Start()
//	...
//	case poll.TickMsg:
//	    fire, next := s.Handle(msg)
//	    if fire { cmds = append(cmds, fetch()) }
//	    cmds = append(cmds, next)
package poll
