// Zaparoo WAD Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo WAD Launcher.
//
// Zaparoo WAD Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo WAD Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo WAD Launcher.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ZaparooProject/wadlauncher/internal/telemetry"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/ZaparooProject/wadlauncher/pkg/sourceports"
	"github.com/gocarina/gocsv"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

const (
	// minSuggestSimilarity is the Jaro-Winkler score a game ID needs to be
	// offered for a mistyped one.
	minSuggestSimilarity = 0.8
	maxSuggestions       = 3
	sessionTimeFormat    = "2006-01-02 15:04:05"
)

// ErrGameFailed is returned by StartGame when the source port exits with
// a non-zero status.
var ErrGameFailed = errors.New("game exited with an error")

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// ListGames prints every game in the library with its tags and total play
// time.
func ListGames(ctx context.Context, w io.Writer, cat database.Catalog) error {
	games, err := cat.Games(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tTAGS\tPLAY TIME")
	for i := range games {
		sessions, err := cat.PlaySessions(ctx, games[i].ID)
		if err != nil {
			return fmt.Errorf("failed to read play sessions of %q: %w", games[i].ID, err)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			games[i].ID,
			strings.Join(games[i].Tags, ","),
			database.TotalPlayTime(sessions),
		)
	}
	return tw.Flush()
}

// ListKnown prints the supported engines and an example of the command
// line each one is given.
func ListKnown(w io.Writer, metaDir string) error {
	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tEXAMPLE")
	for _, p := range sourceports.All() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			p.ID(),
			p.Name(),
			strings.Join(sourceports.ExampleCommand(p, metaDir), " "),
		)
	}
	return tw.Flush()
}

// Suggest returns up to three candidates similar to query, best first.
func Suggest(query string, candidates []string) []string {
	type scored struct {
		id    string
		score float32
	}

	q := strings.ToLower(strings.TrimRight(query, "/"))
	var matches []scored
	for _, c := range candidates {
		score := edlib.JaroWinklerSimilarity(q, strings.ToLower(strings.TrimRight(c, "/")))
		if score >= minSuggestSimilarity {
			matches = append(matches, scored{id: c, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].id)
	}
	return out
}

// withSuggestions adds similar game IDs to err if it is about gameID not
// existing in the library.
func withSuggestions(ctx context.Context, cat database.Catalog, gameID string, err error) error {
	if !errors.Is(err, launcher.ErrNotFound) && !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if _, findErr := cat.FindGameByID(ctx, gameID); !errors.Is(findErr, database.ErrNotFound) {
		return err
	}

	games, listErr := cat.Games(ctx)
	if listErr != nil {
		log.Debug().Err(listErr).Msg("error listing games for suggestions")
		return err
	}
	ids := make([]string, len(games))
	for i := range games {
		ids[i] = games[i].ID
	}

	suggestions := Suggest(gameID, ids)
	if len(suggestions) == 0 {
		return err
	}
	for i, s := range suggestions {
		suggestions[i] = fmt.Sprintf("%q", s)
	}
	return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
}

// StartGame launches gameID and blocks until the source port exits.
func StartGame(
	ctx context.Context,
	w io.Writer,
	l *launcher.Launcher,
	cat database.Catalog,
	gameID string,
) error {
	plan, err := l.Plan(ctx, gameID)
	if err != nil {
		return withSuggestions(ctx, cat, gameID, err)
	}
	_, _ = fmt.Fprintf(w, "Starting %s with %s\n", plan.GameID, plan.Profile.Name())

	ok, err := l.StartGame(ctx, gameID)
	if err != nil {
		telemetry.ReportLaunchFailure(err)
		return withSuggestions(ctx, cat, gameID, err)
	}
	if !ok {
		return ErrGameFailed
	}
	return nil
}

// PrintCommand prints the command line gameID would be launched with.
func PrintCommand(
	ctx context.Context,
	w io.Writer,
	l *launcher.Launcher,
	cat database.Catalog,
	gameID string,
) error {
	plan, err := l.Plan(ctx, gameID)
	if err != nil {
		return withSuggestions(ctx, cat, gameID, err)
	}
	_, err = fmt.Fprintln(w, plan.CommandLine())
	return err
}

// PrintSessions prints each recorded play session of gameID and the total.
func PrintSessions(ctx context.Context, w io.Writer, cat database.Catalog, gameID string) error {
	if _, err := cat.FindGameByID(ctx, gameID); err != nil {
		return withSuggestions(ctx, cat, gameID, err)
	}

	sessions, err := cat.PlaySessions(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to read play sessions: %w", err)
	}

	tw := newTable(w)
	_, _ = fmt.Fprintln(tw, "STARTED\tENDED\tDURATION")
	for _, s := range sessions {
		ended := "-"
		if s.EndedAt != nil {
			ended = s.EndedAt.Local().Format(sessionTimeFormat)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			s.StartedAt.Local().Format(sessionTimeFormat),
			ended,
			s.Duration(),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "Total: %s\n", database.TotalPlayTime(sessions))
	return err
}

type sessionRow struct {
	GameID    string `csv:"game_id"`
	StartedAt string `csv:"started_at"`
	EndedAt   string `csv:"ended_at"`
	Duration  int64  `csv:"duration_seconds"`
}

// ExportSessions writes the play sessions of every game as CSV.
func ExportSessions(ctx context.Context, w io.Writer, cat database.Catalog) error {
	games, err := cat.Games(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}

	rows := make([]*sessionRow, 0, len(games))
	for i := range games {
		sessions, err := cat.PlaySessions(ctx, games[i].ID)
		if err != nil {
			return fmt.Errorf("failed to read play sessions of %q: %w", games[i].ID, err)
		}
		for _, s := range sessions {
			row := &sessionRow{
				GameID:    games[i].ID,
				StartedAt: s.StartedAt.Format(time.RFC3339),
				Duration:  int64(s.Duration().Seconds()),
			}
			if s.EndedAt != nil {
				row.EndedAt = s.EndedAt.Format(time.RFC3339)
			}
			rows = append(rows, row)
		}
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
