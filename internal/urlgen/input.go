package urlgen

import "strings"

// FormInput is one snapshot of the generator form. All fields are plain strings
// and are concatenated into URLs without validation.
type FormInput struct {
	IngestDomain         string `json:"ingestDomain" yaml:"ingest_domain"`
	IngestValidationKey  string `json:"ingestValidationKey" yaml:"ingest_validation_key"`
	StreamDomain         string `json:"streamDomain" yaml:"stream_domain"`
	StreamValidationKey  string `json:"streamValidationKey" yaml:"stream_validation_key"`
	TranscodingTemplates string `json:"transcodingTemplates" yaml:"transcoding_templates"`
	AppName              string `json:"appName" yaml:"app_name"`
	StreamName           string `json:"streamName" yaml:"stream_name"`
}

// FieldNames lists the form field identifiers in display order.
var FieldNames = []string{
	"ingestDomain", "ingestValidationKey",
	"streamDomain", "streamValidationKey",
	"transcodingTemplates", "appName",
	"streamName",
}

// Get returns the value of a field by its form identifier.
func (in FormInput) Get(field string) string {
	switch field {
	case "ingestDomain":
		return in.IngestDomain
	case "ingestValidationKey":
		return in.IngestValidationKey
	case "streamDomain":
		return in.StreamDomain
	case "streamValidationKey":
		return in.StreamValidationKey
	case "transcodingTemplates":
		return in.TranscodingTemplates
	case "appName":
		return in.AppName
	case "streamName":
		return in.StreamName
	}
	return ""
}

// FromValues reads a FormInput from a field lookup (e.g. url.Values.Get).
func FromValues(get func(string) string) FormInput {
	return FormInput{
		IngestDomain:         get("ingestDomain"),
		IngestValidationKey:  get("ingestValidationKey"),
		StreamDomain:         get("streamDomain"),
		StreamValidationKey:  get("streamValidationKey"),
		TranscodingTemplates: get("transcodingTemplates"),
		AppName:              get("appName"),
		StreamName:           get("streamName"),
	}
}

// BasePath is "/{app}/{stream}", shared by ingest and playback URLs.
func (in FormInput) BasePath() string {
	return "/" + in.AppName + "/" + in.StreamName
}

// ParseTemplates turns the raw comma-separated template list into URL suffixes.
// The first entry is always "" (no transcoding). Only the first space in raw is
// removed before splitting, so "lhd, lud, lsd" keeps the space before "lsd".
func ParseTemplates(raw string) []string {
	suffixes := []string{""}
	for _, t := range strings.Split(strings.Replace(raw, " ", "", 1), ",") {
		if len(t) > 0 {
			suffixes = append(suffixes, "_"+t)
		}
	}
	return suffixes
}
