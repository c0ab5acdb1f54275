package brackets

import (
	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/models"
)

// unsupportedGenerator keeps a format in the strategy table without guessing an algorithm for it.
type unsupportedGenerator struct {
	format models.Format
	name   string
	reason string
}

func newUnsupportedGenerator(format models.Format, name, reason string) FormatStrategy {
	return &unsupportedGenerator{format: format, name: name, reason: reason}
}

func (g *unsupportedGenerator) Format() models.Format {
	return g.format
}

func (g *unsupportedGenerator) GetName() string {
	return g.name
}

func (g *unsupportedGenerator) Generate(GenerateParams) ([]*models.Match, error) {
	return nil, errs.Validation("format %s: %s", g.format, g.reason)
}
