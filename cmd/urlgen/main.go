// Command urlgen prints the signed ingest and playback URLs for one stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/technosupport/live-urlgen/internal/authkey"
	"github.com/technosupport/live-urlgen/internal/config"
	"github.com/technosupport/live-urlgen/internal/urlgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("urlgen: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("urlgen", flag.ContinueOnError)
	example := fs.Bool("example", false, "Start from the example form data")
	configPath := fs.String("config", "", "Config file whose example section seeds the fields (with -example)")
	debug := fs.Bool("debug", false, "Log every digest input and hash")

	var in urlgen.FormInput
	fs.StringVar(&in.IngestDomain, "ingest-domain", "", "Ingest (push) domain")
	fs.StringVar(&in.IngestValidationKey, "ingest-key", "", "Ingest URL validation key; empty leaves the URL unsigned")
	fs.StringVar(&in.StreamDomain, "stream-domain", "", "Streaming (pull) domain")
	fs.StringVar(&in.StreamValidationKey, "stream-key", "", "Streaming URL validation key; empty leaves URLs unsigned")
	fs.StringVar(&in.TranscodingTemplates, "templates", "", "Comma separated transcoding template ids")
	fs.StringVar(&in.AppName, "app", "", "App name")
	fs.StringVar(&in.StreamName, "stream", "", "Stream name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *example {
		cfg, err := config.Load(config.ResolvePath(*configPath))
		if err != nil {
			return err
		}
		base := cfg.Example
		// explicitly passed flags win over the example
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "ingest-domain":
				base.IngestDomain = in.IngestDomain
			case "ingest-key":
				base.IngestValidationKey = in.IngestValidationKey
			case "stream-domain":
				base.StreamDomain = in.StreamDomain
			case "stream-key":
				base.StreamValidationKey = in.StreamValidationKey
			case "templates":
				base.TranscodingTemplates = in.TranscodingTemplates
			case "app":
				base.AppName = in.AppName
			case "stream":
				base.StreamName = in.StreamName
			}
		})
		in = base
	}

	signer := authkey.NewSigner()
	signer.Debug = *debug

	res, err := urlgen.NewGenerator(signer).Generate(in)
	if err != nil {
		return err
	}
	if err := res.WriteText(out); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out)
	return err
}
