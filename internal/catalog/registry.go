package catalog

import (
	"cmp"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed games/*.yaml
var embedded embed.FS

// Embedded returns the built-in game files.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "games")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded games: %v", err))
	}
	return sub
}

// Registry is an immutable index of games, built once at startup.
type Registry struct {
	games []Game
	byID  map[string]int
}

// Load reads every *.yaml and *.yml file at the root of each source. A game
// id may appear once per source; later sources replace games from earlier
// ones. Every game's next reference must resolve.
func Load(sources ...fs.FS) (*Registry, error) {
	merged := make(map[string]Game)
	for _, src := range sources {
		names, err := gameFiles(src)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]string, len(names))
		for _, name := range names {
			data, err := fs.ReadFile(src, name)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", name, err)
			}
			g, err := Parse(name, data)
			if err != nil {
				return nil, err
			}
			if prev, dup := seen[g.ID]; dup {
				return nil, fmt.Errorf("duplicate game id %q in %s and %s", g.ID, prev, name)
			}
			seen[g.ID] = name
			merged[g.ID] = g
		}
	}

	r := &Registry{byID: make(map[string]int, len(merged))}
	for _, g := range merged {
		r.games = append(r.games, g)
	}
	slices.SortFunc(r.games, compareGames)
	for i, g := range r.games {
		r.byID[g.ID] = i
	}

	for _, g := range r.games {
		if g.Next == "" {
			continue
		}
		if g.Next == g.ID {
			return nil, fmt.Errorf("game %q: next points to itself", g.ID)
		}
		if _, ok := r.byID[g.Next]; !ok {
			return nil, fmt.Errorf("game %q: next game %q not found", g.ID, g.Next)
		}
	}
	return r, nil
}

// LoadDefault loads the built-in games plus, when dir is non-empty, the game
// files in dir.
func LoadDefault(dir string) (*Registry, error) {
	sources := []fs.FS{Embedded()}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("content dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("content dir %s is not a directory", dir)
		}
		sources = append(sources, os.DirFS(dir))
	}
	return Load(sources...)
}

func gameFiles(src fs.FS) ([]string, error) {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := fs.Glob(src, pattern)
		if err != nil {
			return nil, fmt.Errorf("list game files: %w", err)
		}
		names = append(names, m...)
	}
	slices.Sort(names)
	return names, nil
}

// Len returns the number of games.
func (r *Registry) Len() int { return len(r.games) }

// Get returns the game with the given id.
func (r *Registry) Get(id string) (Game, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Game{}, false
	}
	return r.games[i], true
}

// All returns every game ordered by pillar, then by id.
func (r *Registry) All() []Game {
	return slices.Clone(r.games)
}

// ByPillar returns the games of one pillar in play order.
func (r *Registry) ByPillar(p Pillar) []Game {
	var out []Game
	for _, g := range r.games {
		if g.Pillar == p {
			out = append(out, g)
		}
	}
	return out
}

// Pillars returns the pillars that have at least one game.
func (r *Registry) Pillars() []Pillar {
	var out []Pillar
	for _, g := range r.games {
		if !slices.Contains(out, g.Pillar) {
			out = append(out, g.Pillar)
		}
	}
	return out
}

// Next returns the game unlocked by passing id.
func (r *Registry) Next(id string) (Game, bool) {
	g, ok := r.Get(id)
	if !ok || g.Next == "" {
		return Game{}, false
	}
	return r.Get(g.Next)
}

// IsEntry reports whether no other game unlocks id. Entry games are playable
// without any prior pass.
func (r *Registry) IsEntry(id string) bool {
	_, locked := r.UnlockedBy(id)
	return !locked
}

// UnlockedBy returns the game whose pass unlocks id.
func (r *Registry) UnlockedBy(id string) (Game, bool) {
	for _, g := range r.games {
		if g.Next == id {
			return g, true
		}
	}
	return Game{}, false
}

func compareGames(a, b Game) int {
	if c := cmp.Compare(pillarRank(a.Pillar), pillarRank(b.Pillar)); c != 0 {
		return c
	}
	return compareIDs(a.ID, b.ID)
}

func pillarRank(p Pillar) int {
	if i := slices.Index(AllPillars(), p); i >= 0 {
		return i
	}
	return len(AllPillars())
}

// compareIDs orders "finance-kids-2" before "finance-kids-12".
func compareIDs(a, b string) int {
	ap, an := splitOrdinal(a)
	bp, bn := splitOrdinal(b)
	if c := strings.Compare(ap, bp); c != 0 {
		return c
	}
	if c := cmp.Compare(an, bn); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func splitOrdinal(id string) (string, int) {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return id, -1
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return id, -1
	}
	return id[:i], n
}

// FileName returns the conventional file name for a game.
func FileName(id string) string {
	return path.Clean(id + ".yaml")
}

// NextID returns the first unused id of the form "<pillar>-<ageGroup>-<n>",
// numbering after the highest ordinal already in the registry.
func (r *Registry) NextID(p Pillar, ageGroup string) string {
	prefix := string(p) + "-" + ageGroup
	highest := 0
	for _, g := range r.games {
		base, n := splitOrdinal(g.ID)
		if base == prefix && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%d", prefix, highest+1)
}
