// Package schemas embeds the JSON Schemas for the JSON artifacts consumed by the recommender.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
