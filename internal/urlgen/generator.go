// Package urlgen enumerates the ingest and playback URLs for one live stream.
package urlgen

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/technosupport/live-urlgen/internal/authkey"
)

const IngestScheme = "rtmp"

// Protocol is a playback scheme and the container extensions it is served with.
type Protocol struct {
	Scheme     string
	Extensions []string
}

// DefaultProtocols is the playback set, in output order.
var DefaultProtocols = []Protocol{
	{Scheme: "rtmp", Extensions: []string{""}},
	{Scheme: "http", Extensions: []string{".flv", ".m3u8"}},
}

// Group holds the URLs for one (scheme, extension) pair, one per template.
type Group struct {
	Scheme    string   `json:"scheme"`
	Extension string   `json:"extension"`
	URLs      []string `json:"urls"`
}

type Result struct {
	ID        string  `json:"id"`
	Groups    []Group `json:"groups"`
	IngestURL string  `json:"ingest_url"`
}

// URLs flattens all playback URLs in output order.
func (r *Result) URLs() []string {
	var out []string
	for _, g := range r.Groups {
		out = append(out, g.URLs...)
	}
	return out
}

// SignFunc returns the query string for a path, "" when key is empty.
type SignFunc func(path, key string) (string, error)

type Generator struct {
	Protocols []Protocol
	Sign      SignFunc
}

// NewGenerator uses DefaultProtocols and the given signer (nil for crypto/rand + wall clock).
func NewGenerator(s *authkey.Signer) *Generator {
	if s == nil {
		s = authkey.NewSigner()
	}
	return &Generator{Protocols: DefaultProtocols, Sign: s.Sign}
}

// Generate builds the ingest URL and every playback URL for in.
func (g *Generator) Generate(in FormInput) (*Result, error) {
	base := in.BasePath()

	ingestSig, err := g.Sign(base, in.IngestValidationKey)
	if err != nil {
		return nil, fmt.Errorf("sign ingest: %w", err)
	}

	res := &Result{
		ID:        uuid.New().String(),
		IngestURL: IngestScheme + "://" + in.IngestDomain + base + ingestSig,
	}

	templates := ParseTemplates(in.TranscodingTemplates)
	for _, p := range g.Protocols {
		for _, ext := range p.Extensions {
			grp := Group{Scheme: p.Scheme, Extension: ext, URLs: make([]string, 0, len(templates))}
			for _, suffix := range templates {
				path := base + suffix + ext
				sig, err := g.Sign(path, in.StreamValidationKey)
				if err != nil {
					return nil, fmt.Errorf("sign %s: %w", path, err)
				}
				grp.URLs = append(grp.URLs, p.Scheme+"://"+in.StreamDomain+path+sig)
			}
			res.Groups = append(res.Groups, grp)
		}
	}
	return res, nil
}
