// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command sparqlgen evaluates a generation plan and writes the statements it
// produces, either all at once after the plan completes or as a stream while
// it runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/sparqlgen/config"
	"github.com/ebay/sparqlgen/generate"
	"github.com/ebay/sparqlgen/iterfn"
	"github.com/ebay/sparqlgen/output"
	"github.com/ebay/sparqlgen/plan"
	"github.com/ebay/sparqlgen/source"
	"github.com/ebay/sparqlgen/util/clocks"
	"github.com/ebay/sparqlgen/util/debuglog"
	"github.com/ebay/sparqlgen/util/tracing"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

const usage = `sparqlgen evaluates a generation plan and writes the generated RDF.

Usage:
  sparqlgen [options] [--source=MAPPING...]

Options:
  -d DIR, --dir=DIR            Directory holding the plan, configuration, and documents [default: .]
  -p FILE, --plan=FILE         Plan file, relative to the directory [default: plan.yaml]
  -c FILE, --config=FILE       Configuration file, relative to the directory. It's skipped if it
                               doesn't exist [default: sparql-generate-conf.json]
  -o FILE, --output=FILE       Write to this file instead of standard output.
  --output-append              Append to the output file instead of replacing it.
  -f FORMAT, --output-format=FORMAT
                               Output syntax: turtle or ntriples [default: turtle]
  -s, --stream                 Write statements as they're generated, instead of once the plan
                               completes. Duplicate statements are not removed.
  --source=MAPPING             Read a source of the plan from elsewhere, as "uri=uri". May be
                               repeated.
  -l LEVEL, --log-level=LEVEL  Minimum log level: debug, info, warn, or error. Overrides the
                               configuration file.
  --log-file=FILE              Append logs to this file instead of standard error.
  --write-config=FILE          Write the configuration, with the --source and --log-level
                               options merged in, to this file relative to the directory, and
                               exit without running the plan.

Examples:
  # Run plan.yaml in the current directory, printing the result.
  sparqlgen

  # Stream the output of another plan into a file.
  sparqlgen -d examples/weather -p forecast.yaml --stream -o forecast.ttl

  # Read the plan's source urn:sg:source from a local file.
  sparqlgen --source urn:sg:source=file:///data/a.json

  # Remember that override in the configuration file.
  sparqlgen --source urn:sg:source=file:///data/a.json --write-config sparql-generate-conf.json
`

type options struct {
	Dir          string   `docopt:"--dir"`
	Plan         string   `docopt:"--plan"`
	Config       string   `docopt:"--config"`
	Output       string   `docopt:"--output"`
	OutputAppend bool     `docopt:"--output-append"`
	OutputFormat string   `docopt:"--output-format"`
	Stream       bool     `docopt:"--stream"`
	Sources      []string `docopt:"--source"`
	LogLevel     string   `docopt:"--log-level"`
	LogFile      string   `docopt:"--log-file"`
	WriteConfig  string   `docopt:"--write-config"`
	// Parsed from Sources.
	overrides map[string]string
	// Parsed from OutputFormat.
	format output.Format
}

// helpHandler is called by docopt for --help and usage errors.
var helpHandler = docopt.PrintHelpAndExit

func parseArgs(args []string) (*options, error) {
	parser := &docopt.Parser{HelpHandler: helpHandler}
	opts, err := parser.ParseArgs(usage, args, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		return nil, fmt.Errorf("error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	options.overrides, err = source.ParseOverrides(options.Sources)
	if err != nil {
		return nil, err
	}
	options.format, err = output.ParseFormat(options.OutputFormat)
	if err != nil {
		return nil, err
	}
	if options.OutputAppend && options.Output == "" {
		return nil, fmt.Errorf("--output-append requires --output")
	}
	return &options, nil
}

func main() {
	options, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		<-interrupts
		cancel()
	}()
	if err := run(ctx, options, os.Stdout); err != nil {
		logrus.Fatalf("Command failure: %v", err)
	}
}

// run executes the command. Statements that aren't written to a file go to
// stdout. Once logging is set up, failures are also logged there, so that they
// reach the log file.
func run(ctx context.Context, options *options, stdout io.Writer) (err error) {
	start := clocks.Wall.Now()
	cfg, err := loadConfig(filepath.Join(options.Dir, options.Config))
	if err != nil {
		return err
	}
	mergeOptions(cfg, options)
	if options.WriteConfig != "" {
		return config.Write(cfg, filepath.Join(options.Dir, options.WriteConfig))
	}
	logOpts := debuglog.Options{
		Level:  cfg.LogLevel,
		Output: os.Stderr,
	}
	if options.LogFile != "" {
		f, err := os.OpenFile(options.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOpts.Output = f
	}
	log, err := debuglog.Configure(logOpts)
	if err != nil {
		return err
	}
	if options.LogFile != "" {
		defer func() {
			if err != nil {
				log.WithError(err).Error("Command failure")
			}
		}()
	}
	tracer, err := tracing.New("sparqlgen", cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer tracer.Close()

	p, err := plan.LoadFile(filepath.Join(options.Dir, options.Plan))
	if err != nil {
		return err
	}
	applyConfig(p, cfg)
	locator := &plan.DirLocator{
		Dir:      options.Dir,
		Mappings: make(map[string]plan.Mapping, len(cfg.Documents)),
	}
	for _, doc := range cfg.Documents {
		locator.Mappings[doc.URI] = plan.Mapping{Location: doc.Location, MediaType: doc.MediaType}
	}
	req := generate.Request{
		Plan:    p,
		Dataset: plan.EmptyDataset(),
		Context: &plan.Context{
			Locator:         locator,
			Functions:       iterfn.NewRegistry(log),
			StrictIterators: cfg.StrictIterators,
			Logger:          log,
		},
		Overrides: cfg.Sources,
	}
	engine := generate.New(generate.Options{Logger: log})

	var stats generate.Stats
	if options.Stream {
		sink, err := openSink(options, stdout, p)
		if err != nil {
			return err
		}
		completion := engine.RunToStream(ctx, req, sink)
		err = completion.Wait()
		stats = completion.Stats()
		if err != nil {
			return err
		}
	} else {
		g, runStats, err := engine.RunToGraph(ctx, req)
		stats = runStats
		if err != nil {
			return err
		}
		sink, err := openSink(options, stdout, p)
		if err != nil {
			return err
		}
		if err := output.WriteGraph(g, p.Base(), sink); err != nil {
			return err
		}
	}

	elapsed := clocks.Since(clocks.Wall, start)
	log.WithFields(logrus.Fields{
		"statements":   fmtr.Sprintf("%d", stats.Statements),
		"replacements": stats.Replacements,
	}).Info(fmtr.Sprintf("Program finished in %d min, %d sec",
		int(elapsed/time.Minute), int((elapsed%time.Minute)/time.Second)))
	return nil
}

// loadConfig reads the configuration file, if it exists.
func loadConfig(filename string) (*config.Config, error) {
	cfg, err := config.Load(filename)
	if os.IsNotExist(err) {
		return new(config.Config), nil
	}
	return cfg, err
}

// mergeOptions applies the command-line options that override settings of the
// configuration file.
func mergeOptions(cfg *config.Config, options *options) {
	if len(options.overrides) > 0 {
		sources := make(map[string]string, len(cfg.Sources)+len(options.overrides))
		for from, to := range cfg.Sources {
			sources[from] = to
		}
		for from, to := range options.overrides {
			sources[from] = to
		}
		cfg.Sources = sources
	}
	if options.LogLevel != "" {
		cfg.LogLevel = options.LogLevel
	}
}

// applyConfig fills in the plan's prefixes and base IRI from the
// configuration, where the plan doesn't declare them.
func applyConfig(p *plan.Basic, cfg *config.Config) {
	if len(cfg.Prefixes) > 0 && p.PrefixMap == nil {
		p.PrefixMap = make(map[string]string, len(cfg.Prefixes))
	}
	for name, ns := range cfg.Prefixes {
		if _, declared := p.PrefixMap[name]; !declared {
			p.PrefixMap[name] = ns
		}
	}
	if p.BaseIRI == "" {
		p.BaseIRI = cfg.Base
	}
}

// openSink returns a stream writing to the output file, or to stdout.
func openSink(options *options, stdout io.Writer, p plan.Plan) (output.Sink, error) {
	var s *output.Stream
	if options.Output != "" {
		var err error
		s, err = output.CreateStream(filepath.Join(options.Dir, options.Output), options.OutputAppend, p.Prefixes())
		if err != nil {
			return nil, err
		}
	} else {
		s = output.NewStream(stdout, p.Prefixes())
	}
	s.SetFormat(options.format)
	return s, nil
}
