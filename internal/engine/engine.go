// Package engine wires the classifier, the three candidate sources, the
// ranker and the frecency store into the launcher's query surface.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/tomhartill/omnidex/internal/appindex"
	"github.com/tomhartill/omnidex/internal/calc"
	"github.com/tomhartill/omnidex/internal/frecency"
	"github.com/tomhartill/omnidex/internal/hostindex"
	"github.com/tomhartill/omnidex/internal/intent"
	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/logging"
	"github.com/tomhartill/omnidex/internal/procindex"
	"github.com/tomhartill/omnidex/internal/rank"
)

var engLog = logging.ForComponent(logging.CompEngine)

const (
	cacheSize = 128
	cacheTTL  = 30 * time.Second

	// hostFetchLimit over-fetches so post-merge dedup still fills the
	// caller's limit.
	hostFetchMultiplier = 2
)

// Options configures engine construction. Zero values give a working
// engine with no host index and no persistence.
type Options struct {
	// Conn is the host file-index binding; nil disables that source.
	Conn hostindex.Conn

	// ScanConfig configures the in-process indexer.
	ScanConfig procindex.ScanConfig

	// FrecencyDBPath is the SQLite access log; empty keeps frecency
	// in memory only.
	FrecencyDBPath string

	// ExtraEngines are user-configured web search engines layered over
	// the builtins.
	ExtraEngines []intent.Engine
}

// Engine is the single entry point callers hold. All methods are safe for
// concurrent use.
type Engine struct {
	classifier *intent.Classifier
	apps       *appindex.Indexer
	files      *procindex.Indexer
	host       *hostindex.Service
	store      *frecency.Store
	ranker     *rank.Ranker

	cache *expirable.LRU[string, []launcher.Entry]
}

// New builds an engine. The host index source is optional; everything else
// always runs.
func New(opts Options) (*Engine, error) {
	store, err := frecency.Open(opts.FrecencyDBPath)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		classifier: intent.NewWithEngines(opts.ExtraEngines),
		apps:       appindex.New(),
		files:      procindex.New(opts.ScanConfig),
		host:       hostindex.New(opts.Conn),
		store:      store,
		ranker:     rank.New(store),
		cache:      expirable.NewLRU[string, []launcher.Entry](cacheSize, nil, cacheTTL),
	}
	return e, nil
}

// Close releases the host index handle and the frecency database.
func (e *Engine) Close() error {
	e.host.Close()
	return e.store.Close()
}

// Apps exposes the application indexer for refresh and seeding.
func (e *Engine) Apps() *appindex.Indexer { return e.apps }

// Files exposes the in-process file indexer for add/remove/update/watch.
func (e *Engine) Files() *procindex.Indexer { return e.files }

// Frecency exposes the access store, mainly for purge.
func (e *Engine) Frecency() *frecency.Store { return e.store }

// Classify maps one input line to an intent. Pure.
func (e *Engine) Classify(input string) intent.Intent {
	return e.classifier.Classify(input)
}

// Evaluate resolves a Math or UnitConvert intent to display text.
func (e *Engine) Evaluate(in intent.Intent) (string, string) {
	return calc.Evaluate(in)
}

// RecordAccess logs an activation for entry id and drops cached result
// lists, since frecency contributions just changed.
func (e *Engine) RecordAccess(id string) {
	e.store.RecordAccess(id)
	e.cache.Purge()
}

// Search classifies query and returns the ranked, deduplicated result list.
// Non-FileOrApp intents produce exactly one synthetic row. A failing host
// index contributes nothing; the other sources still answer.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]launcher.Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	in := e.classifier.Classify(query)

	switch in.Type {
	case intent.Empty:
		return nil, nil
	case intent.Math, intent.UnitConvert:
		return []launcher.Entry{e.calcEntry(in)}, nil
	case intent.URL:
		return []launcher.Entry{synthetic(launcher.KindURL, in.Text, in.Text)}, nil
	case intent.WebSearch:
		ent := synthetic(launcher.KindWeb, fmt.Sprintf("Search %s for %q", in.EngineName, in.Query), in.URL)
		return []launcher.Entry{ent}, nil
	case intent.AI:
		return []launcher.Entry{synthetic(launcher.KindAI, in.Text, "")}, nil
	case intent.ClipboardLookup:
		return []launcher.Entry{synthetic(launcher.KindClipboard, in.Text, "")}, nil
	case intent.Shell:
		return []launcher.Entry{synthetic(launcher.KindCommand, in.Text, "")}, nil
	}

	return e.searchFileOrApp(ctx, in.Text, limit)
}

func (e *Engine) calcEntry(in intent.Intent) launcher.Entry {
	display, errMsg := calc.Evaluate(in)
	if errMsg != "" {
		display = errMsg
	}
	return synthetic(launcher.KindCalc, display, "")
}

func synthetic(kind launcher.Kind, name, url string) launcher.Entry {
	ent := launcher.Entry{
		Kind:      kind,
		Name:      name,
		URL:       url,
		Source:    launcher.SourceSynthetic,
		MatchType: launcher.MatchSynthetic,
	}
	ent.ID = ent.DedupKey()
	return ent
}

// searchFileOrApp fans out to the three candidate sources concurrently,
// then merges into one score space.
func (e *Engine) searchFileOrApp(ctx context.Context, text string, limit int) ([]launcher.Entry, error) {
	key := cacheKey(text, limit)
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	var (
		appResults  []appindex.Result
		procMatches []procindex.Match
		hostRows    []hostindex.FileRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appResults = e.apps.Search(text, limit)
		return nil
	})
	g.Go(func() error {
		procMatches = e.files.Search(text)
		return nil
	})
	g.Go(func() error {
		if !e.host.Available() {
			return nil
		}
		rows, err := e.host.Search(gctx, text, uint32(limit*hostFetchMultiplier))
		if err != nil {
			// recoverable: the host source just contributes nothing
			engLog.Warn("host_search_failed", "error", err.Error())
			return nil
		}
		hostRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]launcher.Entry, 0, len(appResults)+len(procMatches)+len(hostRows))
	for _, r := range appResults {
		merged = append(merged, e.appEntry(text, r))
	}
	for _, m := range procMatches {
		merged = append(merged, e.procEntry(text, m))
	}
	for _, row := range hostRows {
		merged = append(merged, e.hostEntry(text, row))
	}

	merged = dedupe(merged)
	rank.Sort(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	e.cache.Add(key, merged)
	return merged, nil
}

func cacheKey(text string, limit int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(text), limit)
}

func (e *Engine) appEntry(query string, r appindex.Result) launcher.Entry {
	ent := launcher.Entry{
		Kind:        launcher.KindApp,
		Name:        r.Entry.Name,
		DisplayName: r.Entry.DisplayName,
		Path:        r.Entry.Path,
		Extension:   r.Entry.Extension,
		Source:      launcher.SourceAppIndex,
		MatchType:   r.MatchType,
		Spans:       r.Spans,
	}
	ent.ID = ent.DedupKey()
	ent.Score = e.ranker.ScoreApp(query, &ent, r.Score)
	return ent
}

func (e *Engine) procEntry(query string, m procindex.Match) launcher.Entry {
	// zero trigram score means the hit came from the token trie
	mt := launcher.MatchTrigram
	if m.Score == 0 {
		mt = launcher.MatchPrefixName
	}
	ent := launcher.Entry{
		Kind:        launcher.KindFile,
		Name:        m.Entry.Name,
		DisplayName: m.Entry.DisplayName,
		Path:        m.Entry.Path,
		Extension:   extOf(m.Entry.Name),
		Source:      launcher.SourceProcIndex,
		MatchType:   mt,
		Modified:    m.Entry.Modified,
	}
	ent.ID = ent.DedupKey()
	ent.Score = e.ranker.ScoreProc(query, &ent)
	return ent
}

func (e *Engine) hostEntry(query string, row hostindex.FileRow) launcher.Entry {
	ent := launcher.Entry{
		Kind:        row.Kind,
		Name:        row.Filename,
		DisplayName: row.DisplayPath,
		Path:        row.Path,
		Extension:   row.Extension,
		Source:      launcher.SourceHostIndex,
		MatchType:   launcher.MatchContainsName,
		Modified:    row.Modified,
	}
	ent.ID = ent.DedupKey()
	ent.Score = e.ranker.ScoreHost(query, &ent)
	return ent
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i+1:])
	}
	return ""
}

// dedupe collapses entries sharing a DedupKey. Higher score wins; on a tie
// the source with the lower ordinal wins (app > in-proc > host).
func dedupe(entries []launcher.Entry) []launcher.Entry {
	out := entries[:0]
	byKey := make(map[string]int, len(entries))
	for _, ent := range entries {
		key := ent.DedupKey()
		i, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, ent)
			continue
		}
		prev := &out[i]
		if ent.Score > prev.Score ||
			(ent.Score == prev.Score && ent.Source < prev.Source) {
			*prev = ent
		}
	}
	return out
}
