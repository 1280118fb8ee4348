package translate

import (
	"context"

	"go.uber.org/zap"
)

// Composite chains a primary translator with a fallback. Callers see one
// Translate/Detect contract and cannot tell which tier answered.
type Composite struct {
	primary  Translator
	fallback Translator
	logger   *zap.SugaredLogger
}

// NewComposite builds the chain. primary may be nil (no external service
// configured), in which case the fallback serves everything. fallback may
// be nil to disable the offline tier.
func NewComposite(primary, fallback Translator, logger *zap.SugaredLogger) *Composite {
	return &Composite{primary: primary, fallback: fallback, logger: logger}
}

func (c *Composite) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	if c.primary != nil {
		result, err := c.primary.Translate(ctx, text, source, target)
		if err == nil {
			return result, nil
		}
		if c.fallback == nil {
			return Translation{}, err
		}
		c.logger.Warnw("primary translator failed, using fallback", "error", err, "target", target)
	}
	if c.fallback == nil {
		return Translation{}, ErrNoTranslator
	}
	return c.fallback.Translate(ctx, text, source, target)
}

func (c *Composite) Detect(ctx context.Context, text string) (Detection, error) {
	if c.primary != nil {
		result, err := c.primary.Detect(ctx, text)
		if err == nil {
			return result, nil
		}
		if c.fallback == nil {
			return Detection{}, err
		}
		c.logger.Warnw("primary detection failed, using fallback", "error", err)
	}
	if c.fallback == nil {
		return Detection{}, ErrNoTranslator
	}
	return c.fallback.Detect(ctx, text)
}
