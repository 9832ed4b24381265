/*
Package art2img extracts Build-engine ART tile archives to PNG, TGA or
BMP images using a PALETTE.DAT file to resolve indexed pixels.
*/
package art2img

import "log"

// Extractor drives batch extraction of ART archives.
type Extractor struct {
	logger *log.Logger
}

// New returns an Extractor logging per-tile failures to logger.
func New(logger *log.Logger) *Extractor {
	return &Extractor{
		logger: logger,
	}
}
