package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/cognicore/arconv/pkg/arconv"
	"github.com/cognicore/arconv/pkg/arconv/config"
	"github.com/cognicore/arconv/pkg/arconv/diag"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		coeffPath  = flag.String("coefficients", "", "Coefficient table, JSON or YAML")
		unitsPath  = flag.String("units", "", "Unit vocabulary override (optional)")
		dbPath     = flag.String("db", "", "Database for diagnostics and history (optional)")
		logPath    = flag.String("log", "", "Diagnostics log file (optional, default stderr)")
		outPath    = flag.String("o", "", "Output file (default stdout)")
		isHTML     = flag.Bool("html", false, "Input is an HTML page")
	)
	flag.Parse()

	loader := config.Loader{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal("Failed to load config:", err)
		}
		loader = cfg.Loader()
	}
	override(&loader.CoefficientsPath, *coeffPath)
	override(&loader.UnitsPath, *unitsPath)
	override(&loader.DatabasePath, *dbPath)
	override(&loader.LogPath, *logPath)

	if loader.CoefficientsPath == "" {
		log.Fatal("--coefficients required")
	}

	ctx := context.Background()
	comp, err := loader.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	defer comp.Close()

	if loader.LogPath == "" {
		comp.Sink = diag.Multi{comp.Sink, diag.NewLogSink(log.New(os.Stderr, "", 0))}
	}
	engine := comp.Engine()

	in := io.Reader(os.Stdin)
	source := "stdin"
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatal("Failed to open input:", err)
		}
		defer f.Close()
		in = f
		source = flag.Arg(0)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		log.Fatal("Failed to read input:", err)
	}

	conv, err := engine.Convert(ctx, arconv.Document{Source: source, Text: string(data), HTML: *isHTML}, 1)
	if err != nil {
		log.Fatal("Conversion failed:", err)
	}

	out := io.Writer(os.Stdout)
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal("Failed to create output:", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, conv.Output+"\n"); err != nil {
		log.Fatal("Failed to write output:", err)
	}

	if comp.Store != nil {
		log.Printf("Saved conversion %s (%d/%d lines changed)", conv.ID, conv.Converted, conv.Lines)
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
