package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/akozyrev/profvibe/internal/config"
	"github.com/akozyrev/profvibe/internal/vacancies"
)

// vibecollect pulls vacancies from the jobs API and either dumps them as JSON
// or upserts them into the configured postgres store.
type options struct {
	queries  string
	area     int
	perQuery int
	rps      float64
	baseURL  string
	output   string
	toDB     bool
	timeout  time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.queries, "queries", "", "comma-separated search queries (required)")
	flag.IntVar(&opts.area, "area", 0, "area id override (default from HH_AREA_ID)")
	flag.IntVar(&opts.perQuery, "per-query", 0, "vacancies per query override")
	flag.Float64Var(&opts.rps, "rps", 0, "request rate override")
	flag.StringVar(&opts.baseURL, "base-url", "", "jobs API base URL override")
	flag.StringVar(&opts.output, "o", "", "write collected vacancies as JSON to this file (default stdout)")
	flag.BoolVar(&opts.toDB, "db", false, "upsert into postgres (DATABASE_URL) instead of dumping JSON")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall collection timeout")
	flag.Parse()

	queries := splitQueries(opts.queries)
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: vibecollect -queries 'go developer,data engineer' [-db] [-o out.json]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if opts.area == 0 {
		opts.area = cfg.HHAreaID
	}
	if opts.perQuery == 0 {
		opts.perQuery = cfg.HHVacanciesPerRole
	}
	if opts.rps == 0 {
		opts.rps = float64(cfg.HHRequestsPerSec)
	}
	if strings.TrimSpace(opts.baseURL) == "" {
		opts.baseURL = cfg.HHBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	collector := vacancies.NewCollector(opts.baseURL, opts.area, opts.perQuery, opts.rps)
	log.Printf("collecting %d queries from %s (area %d, %d per query)", len(queries), opts.baseURL, opts.area, opts.perQuery)

	list, err := collector.Collect(ctx, queries)
	if err != nil {
		log.Fatalf("collect failed: %v", err)
	}
	log.Printf("collected %d vacancies", len(list))

	if opts.toDB {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			log.Fatalf("-db requires DATABASE_URL")
		}
		store, err := vacancies.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("vacancy store init failed: %v", err)
		}
		defer store.Close()

		imported, err := store.Upsert(ctx, list)
		if err != nil {
			log.Fatalf("upsert failed: %v", err)
		}
		log.Printf("imported %d vacancies", imported)

		stats, err := store.Stats(ctx, vacancies.StatsFilter{})
		if err != nil {
			log.Fatalf("stats failed: %v", err)
		}
		log.Printf("store now holds %d vacancies, %d with salary, avg middle %.0f %s",
			stats.Count, stats.WithSalary, stats.AverageMiddle, stats.Currency)
		return
	}

	out := os.Stdout
	if strings.TrimSpace(opts.output) != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			log.Fatalf("create %s: %v", opts.output, err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		log.Fatalf("encode vacancies: %v", err)
	}
}

func splitQueries(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
