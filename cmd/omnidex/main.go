package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tomhartill/omnidex/internal/clipboard"
	"github.com/tomhartill/omnidex/internal/config"
	"github.com/tomhartill/omnidex/internal/engine"
	"github.com/tomhartill/omnidex/internal/intent"
	"github.com/tomhartill/omnidex/internal/logging"
	"github.com/tomhartill/omnidex/internal/procindex"
)

const Version = "0.3.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printHelp()
		return
	}

	initLogging()
	defer logging.Shutdown()

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Printf("omnidex v%s\n", Version)
	case "help", "--help", "-h":
		printHelp()
	case "query", "q":
		handleQuery(args[1:])
	case "classify":
		handleClassify(args[1:])
	case "calc":
		handleCalc(args[1:])
	case "apps":
		handleApps(args[1:])
	case "index":
		handleIndex(args[1:])
	case "watch":
		handleWatch(args[1:])
	case "recent":
		handleRecent(args[1:])
	case "purge-history":
		handlePurge(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`omnidex - unified launcher query engine

Usage:
  omnidex query <text> [-limit N] [-json] [-copy]
                                            classify and search
  omnidex classify <text>                   show the intent for an input
  omnidex calc [-copy] <expression>         evaluate math or unit conversion
  omnidex apps [-json]                      refresh and count installed apps
  omnidex index <dir> [dir...]              scan directories into the file index
  omnidex watch <dir> [dir...]              index then watch for live updates
  omnidex recent [-n N]                     most recently modified indexed files
  omnidex purge-history                     clear usage history
  omnidex version                           print version`)
}

func initLogging() {
	settings := config.GetLogSettings()
	dir, err := config.Dir()
	if err != nil {
		dir = ""
	}
	logging.Init(logging.Config{
		LogDir:                dir,
		Level:                 settings.Level,
		Format:                settings.Format,
		MaxSizeMB:             settings.MaxMB,
		MaxBackups:            settings.Backups,
		MaxAgeDays:            settings.RetentionDays,
		Compress:              settings.Compress,
		AggregateIntervalSecs: settings.AggregateIntervalS,
		Debug:                 os.Getenv("OMNIDEX_DEBUG") != "",
	})
}

// newEngine builds an engine from user config. The host index binding is
// platform-supplied; the standalone CLI runs without it.
func newEngine() (*engine.Engine, error) {
	idx := config.GetIndexerSettings()
	scanCfg := procindex.DefaultScanConfig()
	scanCfg.MaxDepth = idx.MaxDepth
	if len(idx.ExcludeGlobs) > 0 {
		scanCfg.ExcludeGlobs = idx.ExcludeGlobs
	}
	scanCfg.ExcludeExts = idx.ExcludeExts
	scanCfg.IncludeHidden = idx.IncludeHidden
	if idx.MaxFileSizeMB > 0 {
		scanCfg.MaxFileSizeBytes = uint64(idx.MaxFileSizeMB) << 20
	}

	var extra []intent.Engine
	for _, def := range config.GetEngineDefs() {
		extra = append(extra, intent.Engine{
			Keyword:     def.Keyword,
			Name:        def.Name,
			URLTemplate: def.URL,
		})
	}

	return engine.New(engine.Options{
		ScanConfig:     scanCfg,
		FrecencyDBPath: config.GetFrecencyDBPath(),
		ExtraEngines:   extra,
	})
}

func handleQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	limit := fs.Int("limit", 10, "maximum results")
	asJSON := fs.Bool("json", false, "JSON output")
	copyTop := fs.Bool("copy", false, "copy the top result's target to the clipboard")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: omnidex query <text>")
		os.Exit(1)
	}
	text := strings.Join(fs.Args(), " ")

	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	if _, err := eng.Apps().Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: app scan failed: %v\n", err)
	}
	for _, root := range config.GetIndexerSettings().Roots {
		if _, err := eng.Files().IndexDirectory(root); err != nil {
			fmt.Fprintf(os.Stderr, "warning: index %s: %v\n", root, err)
		}
	}

	results, err := eng.Search(ctx, text, *limit)
	if err != nil {
		fatal(err)
	}
	if *asJSON {
		printJSON(results)
		return
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, r := range results {
		loc := r.Path
		if loc == "" {
			loc = r.URL
		}
		fmt.Printf("%2d. [%-9s] %-40s %s\n", i+1, r.Kind, r.Name, loc)
	}
	if *copyTop {
		top := results[0]
		target := top.Path
		if target == "" {
			target = top.URL
		}
		if target == "" {
			target = top.Name
		}
		if _, err := clipboard.Copy(target); err != nil {
			fmt.Fprintf(os.Stderr, "warning: copy failed: %v\n", err)
		}
	}
}

func handleClassify(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: omnidex classify <text>")
		os.Exit(1)
	}
	in := intent.New().Classify(strings.Join(args, " "))
	printJSON(map[string]any{
		"type":     in.Type.String(),
		"text":     in.Text,
		"value":    in.Value,
		"from":     in.FromUnit,
		"to":       in.ToUnit,
		"category": in.Category,
		"engine":   in.EngineName,
		"query":    in.Query,
		"url":      in.URL,
	})
}

func handleCalc(args []string) {
	fs := flag.NewFlagSet("calc", flag.ExitOnError)
	toClipboard := fs.Bool("copy", false, "copy the result to the clipboard")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: omnidex calc [-copy] <expression>")
		os.Exit(1)
	}
	text := strings.Join(fs.Args(), " ")
	cls := intent.New()
	in := cls.Classify(text)
	if in.Type != intent.Math && in.Type != intent.UnitConvert {
		// bare expressions still work when prefixed explicitly
		in = cls.Classify("=" + text)
	}
	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	display, errMsg := eng.Evaluate(in)
	if errMsg != "" {
		fmt.Println(errMsg)
		os.Exit(1)
	}
	fmt.Println(display)
	if *toClipboard {
		if res, err := clipboard.Copy(display); err != nil {
			fmt.Fprintf(os.Stderr, "warning: copy failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Copied via %s.\n", res.Method)
		}
	}
}

func handleApps(args []string) {
	fs := flag.NewFlagSet("apps", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "JSON output")
	_ = fs.Parse(args)

	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	count, err := eng.Apps().Refresh(context.Background())
	if err != nil {
		fatal(err)
	}
	if *asJSON {
		printJSON(map[string]int{"count": count})
		return
	}
	fmt.Printf("Indexed %d applications.\n", count)
}

func handleIndex(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: omnidex index <dir> [dir...]")
		os.Exit(1)
	}
	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	total := 0
	for _, root := range args {
		n, err := eng.Files().IndexDirectory(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "index %s: %v\n", root, err)
			continue
		}
		total += n
	}
	fmt.Printf("Indexed %d files.\n", total)
}

func handleWatch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: omnidex watch <dir> [dir...]")
		os.Exit(1)
	}
	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for _, root := range args {
		if n, err := eng.Files().IndexDirectory(root); err != nil {
			fmt.Fprintf(os.Stderr, "index %s: %v\n", root, err)
		} else {
			fmt.Printf("Indexed %d files under %s\n", n, root)
		}
	}

	w, err := eng.Files().StartWatching(ctx, args)
	if err != nil {
		fatal(err)
	}
	defer w.Close()

	fmt.Println("Watching for changes. Ctrl+C to stop.")
	<-ctx.Done()
}

func handleRecent(args []string) {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	n := fs.Int("n", 20, "number of files")
	_ = fs.Parse(args)

	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	for _, root := range config.GetIndexerSettings().Roots {
		if _, err := eng.Files().IndexDirectory(root); err != nil {
			fmt.Fprintf(os.Stderr, "warning: index %s: %v\n", root, err)
		}
	}
	for _, f := range eng.Files().Recent(*n) {
		fmt.Printf("%s  %s\n", f.Modified.Format("2006-01-02 15:04"), f.Path)
	}
}

func handlePurge(args []string) {
	eng, err := newEngine()
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	if err := eng.Frecency().Purge(); err != nil {
		fatal(err)
	}
	fmt.Println("Usage history cleared.")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
