// Command rvmscene is a thin CLI front end over pkg/pipeline: parse
// flags, load config, run the pipeline, write one export format. All
// logic lives in the library packages; this file only wires flags to
// calls.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dshills/rvmscene/pkg/export"
	"github.com/dshills/rvmscene/pkg/pipeline"
	"github.com/dshills/rvmscene/pkg/rvmbin"
	"github.com/dshills/rvmscene/pkg/rvmcfg"
	"github.com/dshills/rvmscene/pkg/rvmlog"
)

const version = "0.1.0"

var (
	configPath = flag.String("config", "", "Path to YAML configuration file (optional, defaults applied otherwise)")
	inputPath  = flag.String("input", "", "Path to the input .rvm binary file (required)")
	outputPath = flag.String("output", "", "Output file path (required)")
	format     = flag.String("format", "obj", "Export format: obj, gltf, json, or rvm")
	attrPath   = flag.String("attributes", "", "Path to an attribute (.att) file to merge in")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("rvmscene version %s\n", version)
		return
	}
	if *help {
		printHelp()
		return
	}
	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -input and -output are required")
		printUsage()
		os.Exit(1)
	}
	validFormats := map[string]bool{"obj": true, "gltf": true, "json": true, "rvm": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: obj, gltf, json, rvm\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := rvmcfg.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = rvmcfg.Load(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	log := rvmlog.Logger(rvmlog.Nop{})
	if *verbose {
		log = rvmlog.NewStdLogger(true)
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	opt := pipeline.DefaultOptions()
	opt.Config = cfg

	if *attrPath != "" {
		attrFile, err := os.Open(*attrPath)
		if err != nil {
			return fmt.Errorf("opening attribute file: %w", err)
		}
		defer attrFile.Close()
		opt.AttributeFile = attrFile
	}

	if *verbose {
		fmt.Printf("Parsing %s\n", *inputPath)
	}
	start := time.Now()
	s, res, err := pipeline.Run(in, opt, log)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}
	elapsed := time.Since(start)

	if *verbose {
		fmt.Printf("Parsed in %v: %d files, %d models, %d groups, %d geometries\n",
			elapsed, res.Stats.Files, res.Stats.Models, res.Stats.Groups, res.Stats.Geometries)
		fmt.Printf("Connections: %d across %d components\n", res.Connections, res.Components)
		fmt.Printf("Tessellation: %d caps discarded, %d leaves culled, %d geometries culled\n",
			res.TessellateReport.DiscardedCaps, res.TessellateReport.CulledLeaf, res.TessellateReport.CulledGeometry)
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	switch *format {
	case "obj":
		err = export.WriteOBJ(out, s)
	case "gltf":
		err = export.WriteGLTF(out, s)
	case "json":
		data, jerr := export.ExportJSON(s)
		if jerr != nil {
			return fmt.Errorf("exporting json: %w", jerr)
		}
		_, err = out.Write(data)
	case "rvm":
		err = rvmbin.Write(out, s)
	}
	if err != nil {
		return fmt.Errorf("writing %s output: %w", *format, err)
	}

	fmt.Printf("Wrote %s (%s format)\n", *outputPath, *format)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: rvmscene -input <file.rvm> -output <file> [options]")
	fmt.Fprintln(os.Stderr, "Run 'rvmscene -help' for detailed help")
}

func printHelp() {
	fmt.Printf("rvmscene version %s\n\n", version)
	fmt.Println("Parses a plant-design RVM binary scene and tessellates it for export.")
	fmt.Println("\nUsage:")
	fmt.Println("  rvmscene -input <file.rvm> -output <file> [options]")
	fmt.Println("\nFlags:")
	fmt.Println("  -input string        Path to the input .rvm binary file (required)")
	fmt.Println("  -output string       Output file path (required)")
	fmt.Println("  -format string       Export format: obj, gltf, json, or rvm (default: obj)")
	fmt.Println("  -config string       Path to YAML configuration file")
	fmt.Println("  -attributes string   Path to an attribute (.att) file to merge in")
	fmt.Println("  -verbose             Enable verbose logging")
	fmt.Println("  -version             Print version and exit")
	fmt.Println("  -help                Show this help message")
}
