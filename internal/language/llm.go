package language

import (
	"context"
	"fmt"
	"strings"

	"faqbot/internal/domain"
)

// GeneratorTranslator translates by prompting a text generator.
type GeneratorTranslator struct {
	generator domain.Generator
}

func NewGeneratorTranslator(generator domain.Generator) *GeneratorTranslator {
	return &GeneratorTranslator{generator: generator}
}

func (g *GeneratorTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Reply with the translation only.\n\n%s",
		source, target, text,
	)
	out, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s translate: %w", g.generator.Name(), err)
	}
	return strings.TrimSpace(out), nil
}
