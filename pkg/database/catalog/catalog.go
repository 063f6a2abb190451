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

// Package catalog implements database.Catalog on top of plain JSON files in
// the launcher's data directory:
//
//	<data>/Games/                   game files and folders
//	<data>/SourcePorts/             user managed port installs
//	<data>/Meta/<id>/meta.json      per-game metadata and file selection
//	<data>/Meta/<id>/playSessions.json
//	<data>/sourcePorts.json         registered source ports
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/wadlauncher/pkg/sourceports"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	GamesDirName       = "Games"
	SourcePortsDirName = "SourcePorts"
	MetaDirName        = "Meta"
	MetaFileName       = "meta.json"
	SessionsFileName   = "playSessions.json"
	SourcePortsFile    = "sourcePorts.json"
)

type Catalog struct {
	fs      afero.Fs
	dataDir string
	// per-game locks around read-modify-write of meta and session files
	games syncutil.KeyedMutex
	// guards sourcePorts.json
	portsMu syncutil.RWMutex
}

var _ database.Catalog = (*Catalog)(nil)

// New returns a catalog rooted at dataDir. Nothing is created on disk until
// InitDirectories or a write.
func New(afs afero.Fs, dataDir string) *Catalog {
	return &Catalog{
		fs:      afs,
		dataDir: dataDir,
	}
}

func (c *Catalog) DataDirectory() string {
	return c.dataDir
}

func (c *Catalog) GamesDirectory() string {
	return filepath.Join(c.dataDir, GamesDirName)
}

func (c *Catalog) SourcePortsDirectory() string {
	return filepath.Join(c.dataDir, SourcePortsDirName)
}

func (c *Catalog) MetaDirectory() string {
	return filepath.Join(c.dataDir, MetaDirName)
}

func (c *Catalog) InitDirectories() error {
	for _, dir := range []string{
		c.GamesDirectory(),
		c.SourcePortsDirectory(),
		c.MetaDirectory(),
	} {
		if err := c.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

/*
 * Games
 */

// gameMeta is the on-disk form of meta.json. Game ID and name come from
// the Games directory entry, not the file.
type gameMeta struct {
	Description       string               `json:"description,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	SourcePortID      string               `json:"source_port_id,omitempty"`
	IWADID            string               `json:"iwad_id,omitempty"`
	Tags              []string             `json:"tags,omitempty"`
	PreviousFileState []database.FileState `json:"previous_file_state,omitempty"`
	Rating            int                  `json:"rating,omitempty"`
	UseCustomConfig   bool                 `json:"use_custom_config,omitempty"`
}

func (m *gameMeta) apply(g *database.Game) {
	g.Description = m.Description
	g.Notes = m.Notes
	g.SourcePortID = m.SourcePortID
	g.IWADID = m.IWADID
	g.Tags = m.Tags
	g.PreviousFileState = m.PreviousFileState
	g.Rating = m.Rating
	g.UseCustomConfig = m.UseCustomConfig
}

func metaFromGame(g *database.Game) gameMeta {
	return gameMeta{
		Description:       g.Description,
		Notes:             g.Notes,
		SourcePortID:      g.SourcePortID,
		IWADID:            g.IWADID,
		Tags:              g.Tags,
		PreviousFileState: g.PreviousFileState,
		Rating:            g.Rating,
		UseCustomConfig:   g.UseCustomConfig,
	}
}

func (c *Catalog) metaPath(gameID string) string {
	return filepath.Join(sourceports.GameMetaDir(c.MetaDirectory(), gameID), MetaFileName)
}

func (c *Catalog) sessionsPath(gameID string) string {
	return filepath.Join(sourceports.GameMetaDir(c.MetaDirectory(), gameID), SessionsFileName)
}

func gameName(id string) string {
	return strings.TrimSuffix(id, "/")
}

func gameID(name string, isDir bool) string {
	if isDir {
		return name + "/"
	}
	return name
}

func (c *Catalog) loadGame(id string) (*database.Game, error) {
	game := &database.Game{
		ID:   id,
		Name: gameName(id),
	}

	var meta gameMeta
	found, err := c.readJSON(c.metaPath(id), &meta)
	if err != nil {
		return nil, err
	}
	if found {
		meta.apply(game)
	}
	return game, nil
}

// Games lists every entry of the Games directory, skipping dot files, in
// name order. Metadata is read concurrently.
func (c *Catalog) Games(ctx context.Context) ([]database.Game, error) {
	entries, err := afero.ReadDir(c.fs, c.GamesDirectory())
	if errors.Is(err, fs.ErrNotExist) {
		return []database.Game{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read games directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ids = append(ids, gameID(e.Name(), e.IsDir()))
	}

	games := make([]database.Game, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("loading games: %w", err)
			}
			game, err := c.loadGame(id)
			if err != nil {
				return err
			}
			games[i] = *game
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return games, nil
}

// FindGameByID looks the game up in the Games directory. The trailing
// slash of folder IDs is optional on input; the returned game always has
// the canonical ID.
func (c *Catalog) FindGameByID(_ context.Context, id string) (*database.Game, error) {
	name := gameName(id)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("game %q: %w", id, database.ErrNotFound)
	}

	info, err := c.fs.Stat(filepath.Join(c.GamesDirectory(), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("game %q: %w", id, database.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat game %q: %w", id, err)
	}

	return c.loadGame(gameID(name, info.IsDir()))
}

// GameFiles returns the files of a game. File games are a single entry,
// folder games are walked recursively. Relative paths are taken from the
// Games directory and use forward slashes on every platform.
func (c *Catalog) GameFiles(ctx context.Context, id string) ([]database.GameFile, error) {
	game, err := c.FindGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	root := c.GamesDirectory()
	gamePath := filepath.Join(root, game.Name)
	var files []database.GameFile

	err = afero.Walk(c.fs, gamePath, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if path != gamePath && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		files = append(files, database.GameFile{
			Absolute: path,
			Relative: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files of game %q: %w", id, err)
	}

	return files, nil
}

func (c *Catalog) UpdateGame(
	ctx context.Context,
	id string,
	update database.GameUpdate,
) (*database.Game, error) {
	game, err := c.FindGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := c.games.Lock(sourceports.NormalizeGameID(game.ID))
	defer unlock()

	// reload under the lock so concurrent updates don't drop each other
	game, err = c.loadGame(game.ID)
	if err != nil {
		return nil, err
	}

	update.Apply(game)

	meta := metaFromGame(game)
	if err := c.writeJSON(c.metaPath(game.ID), &meta); err != nil {
		return nil, err
	}

	log.Debug().Str("game", game.ID).Msg("saved game meta")
	return game, nil
}

// Tags returns the default tags followed by every other tag used by a
// game, sorted and without duplicates.
func (c *Catalog) Tags(ctx context.Context) ([]string, error) {
	games, err := c.Games(ctx)
	if err != nil {
		return nil, err
	}

	var extra []string
	for i := range games {
		for _, tag := range games[i].Tags {
			same := func(t string) bool { return strings.EqualFold(t, tag) }
			if slices.ContainsFunc(database.DefaultTags, same) || slices.ContainsFunc(extra, same) {
				continue
			}
			extra = append(extra, tag)
		}
	}
	slices.Sort(extra)

	return append(slices.Clone(database.DefaultTags), extra...), nil
}

/*
 * Play sessions
 */

type sessionsFile struct {
	Sessions []database.PlaySession `json:"sessions"`
}

func (c *Catalog) PlaySessions(_ context.Context, gameID string) ([]database.PlaySession, error) {
	var f sessionsFile
	if _, err := c.readJSON(c.sessionsPath(gameID), &f); err != nil {
		return nil, err
	}
	if f.Sessions == nil {
		return []database.PlaySession{}, nil
	}
	return f.Sessions, nil
}

// AppendPlaySession adds a session to the game's history and writes it out.
// Appends for the same game are serialized.
func (c *Catalog) AppendPlaySession(
	_ context.Context,
	gameID string,
	session database.PlaySession,
) error {
	unlock := c.games.Lock(sourceports.NormalizeGameID(gameID))
	defer unlock()

	path := c.sessionsPath(gameID)

	var f sessionsFile
	if _, err := c.readJSON(path, &f); err != nil {
		return err
	}
	f.Sessions = append(f.Sessions, session)

	if err := c.writeJSON(path, &f); err != nil {
		return err
	}

	log.Debug().
		Str("game", gameID).
		Int("sessions", len(f.Sessions)).
		Msg("recorded play session")
	return nil
}

/*
 * Source ports
 */

func (c *Catalog) sourcePortsPath() string {
	return filepath.Join(c.dataDir, SourcePortsFile)
}

func (c *Catalog) loadSourcePorts() ([]database.SourcePort, error) {
	var ports []database.SourcePort
	if _, err := c.readJSON(c.sourcePortsPath(), &ports); err != nil {
		return nil, err
	}
	if ports == nil {
		ports = []database.SourcePort{}
	}
	return ports, nil
}

func (c *Catalog) ListSourcePorts(_ context.Context) ([]database.SourcePort, error) {
	c.portsMu.RLock()
	defer c.portsMu.RUnlock()
	return c.loadSourcePorts()
}

func (c *Catalog) FindSourcePortByID(_ context.Context, id string) (*database.SourcePort, error) {
	c.portsMu.RLock()
	defer c.portsMu.RUnlock()

	ports, err := c.loadSourcePorts()
	if err != nil {
		return nil, err
	}
	for i := range ports {
		if ports[i].ID == id {
			return &ports[i], nil
		}
	}
	return nil, fmt.Errorf("source port %q: %w", id, database.ErrNotFound)
}

// SaveSourcePort replaces the port with the same ID in place, or appends it
// if it is new. Marking a port default clears the flag on all others.
func (c *Catalog) SaveSourcePort(
	_ context.Context,
	sp database.SourcePort,
) (*database.SourcePort, error) {
	c.portsMu.Lock()
	defer c.portsMu.Unlock()

	ports, err := c.loadSourcePorts()
	if err != nil {
		return nil, err
	}

	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	sp.Command = slices.Clone(sp.Command)

	idx := slices.IndexFunc(ports, func(p database.SourcePort) bool {
		return p.ID == sp.ID
	})
	if idx >= 0 {
		ports[idx] = sp
	} else {
		ports = append(ports, sp)
	}

	if sp.IsDefault {
		for i := range ports {
			ports[i].IsDefault = ports[i].ID == sp.ID
		}
	}

	if err := c.writeJSON(c.sourcePortsPath(), ports); err != nil {
		return nil, err
	}

	log.Info().Str("id", sp.ID).Str("engine", sp.Engine()).Msg("saved source port")
	return &sp, nil
}

func (c *Catalog) DeleteSourcePort(_ context.Context, id string) error {
	c.portsMu.Lock()
	defer c.portsMu.Unlock()

	ports, err := c.loadSourcePorts()
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(ports, func(p database.SourcePort) bool {
		return p.ID == id
	})
	if idx < 0 {
		return fmt.Errorf("source port %q: %w", id, database.ErrNotFound)
	}
	ports = slices.Delete(ports, idx, idx+1)

	if err := c.writeJSON(c.sourcePortsPath(), ports); err != nil {
		return err
	}

	log.Info().Str("id", id).Msg("deleted source port")
	return nil
}

/*
 * Files
 */

// readJSON decodes path into v. A missing file is not an error and leaves v
// untouched; found reports if the file existed.
func (c *Catalog) readJSON(path string, v any) (found bool, err error) {
	data, err := afero.ReadFile(c.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

// writeJSON writes v to a temp file next to path and renames it over the
// original so readers never see a partial file.
func (c *Catalog) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := c.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := c.fs.Rename(tmp, path); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
