package build

import (
	"context"
	"errors"

	derrors "git.home.luguber.info/inful/mdxsite/internal/docs/errors"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdxsite/internal/linkverify"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/mdx"
	"git.home.luguber.info/inful/mdxsite/internal/page"
	"git.home.luguber.info/inful/mdxsite/internal/render"
	"git.home.luguber.info/inful/mdxsite/internal/site"
)

// Classify wraps err in a ClassifiedError whose category follows the typed
// domain error inside it. Cancellation and already classified errors pass
// through unchanged. document and link are added as context when set.
func Classify(stage string, err error, document, link string) error {
	if err == nil || isCanceled(err) || dberrors.IsClassified(err) {
		return err
	}

	category, message := categorize(stage, err)
	b := dberrors.WrapError(err, category, message).WithContext(logfields.KeyStage, stage)
	if document != "" {
		b = b.WithContext(logfields.KeyDocument, document)
	}
	if link != "" {
		b = b.WithContext(logfields.KeyLink, link)
	}
	return b.Build()
}

func categorize(stage string, err error) (dberrors.ErrorCategory, string) {
	var (
		malformed *mdx.MalformedBlockError
		missing   *page.MissingFieldError
		unknown   *page.UnknownPageTypeError
		label     *render.MissingSourceLabelError
		collision *site.LinkCollisionError
		broken    *linkverify.BrokenLinksError
	)

	switch {
	case errors.As(err, &malformed):
		return dberrors.CategoryParse, "malformed document body"
	case errors.As(err, &missing), errors.As(err, &unknown),
		errors.Is(err, frontmatter.ErrMissingHeader),
		errors.Is(err, frontmatter.ErrMissingClosingDelimiter),
		errors.Is(err, frontmatter.ErrInvalidHeader):
		return dberrors.CategoryMetadata, "invalid document metadata"
	case errors.As(err, &label):
		return dberrors.CategoryRender, "code block without source label"
	case errors.As(err, &collision):
		return dberrors.CategoryIntegrity, "two outputs share a link"
	case errors.As(err, &broken):
		return dberrors.CategoryIntegrity, "broken internal links"
	case errors.Is(err, site.ErrRegistrySealed):
		return dberrors.CategoryInternal, "registry modified after rendering began"
	case errors.Is(err, derrors.ErrSourceNotFound),
		errors.Is(err, derrors.ErrSourceNotDirectory),
		errors.Is(err, derrors.ErrNoDocsFound):
		return dberrors.CategoryConfig, "unusable source directory"
	}

	switch stage {
	case StageRender:
		return dberrors.CategoryRender, "rendering failed"
	case StageDiscover, StageAssets, StageManifest, StageFinalize:
		return dberrors.CategoryFileSystem, stage + " failed"
	default:
		return dberrors.CategoryInternal, stage + " failed"
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
