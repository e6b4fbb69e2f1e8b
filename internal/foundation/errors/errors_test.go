package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "config.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "config.yaml" {
			t.Errorf("expected context file=config.yaml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ParseError("unterminated fence").Build()

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryParse) {
			t.Error("expected error to have parse category")
		}
		if !err.IsFatal() {
			t.Error("expected parse error to be fatal")
		}
	})

	t.Run("Classified error found through fmt wrapping", func(t *testing.T) {
		inner := MetadataError("missing field").Build()
		wrapped := fmt.Errorf("build: %w", inner)

		if GetCategory(wrapped) != CategoryMetadata {
			t.Errorf("expected metadata category, got %s", GetCategory(wrapped))
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Errorf("expected fatal severity, got %s", GetSeverity(wrapped))
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		plain := errors.New("plain")
		if GetCategory(plain) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(plain))
		}
		if GetSeverity(plain) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(plain))
		}
	})
}

type lineError struct{ line int }

func (e *lineError) Error() string { return fmt.Sprintf("line %d", e.line) }

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := &lineError{line: 3}
		err := WrapError(originalErr, CategoryParse, "parse document").
			Warning().
			WithContext("document", "a.mdx").
			WithContext("line", 3).
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}

		var target *lineError
		if !errors.As(err, &target) || target.line != 3 {
			t.Error("expected errors.As to reach the typed cause")
		}

		doc, _ := err.Context().GetString("document")
		if doc != "a.mdx" {
			t.Errorf("expected document context 'a.mdx', got %s", doc)
		}
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := RenderError("render failed").Build()
		derived := base.WithContext("page", "/index.html")

		if _, ok := base.Context().Get("page"); ok {
			t.Error("expected original error context to be untouched")
		}
		if page, _ := derived.Context().GetString("page"); page != "/index.html" {
			t.Errorf("expected page context, got %q", page)
		}
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := IntegrityError("link collision").Build()
		b := IntegrityError("link collision").WithContext("link", "/x").Build()
		c := RenderError("link collision").Build()

		if !errors.Is(a, b) {
			t.Error("expected errors with same category and message to match")
		}
		if errors.Is(a, c) {
			t.Error("expected different categories not to match")
		}
	})
}

func TestErrorContextMerge(t *testing.T) {
	var nilCtx ErrorContext
	other := ErrorContext{"a": 1}
	if got := nilCtx.Merge(other); got["a"] != 1 {
		t.Errorf("expected merge into nil to return other, got %v", got)
	}

	base := ErrorContext{"a": 1, "b": 2}
	merged := base.Merge(ErrorContext{"b": 3})
	if merged["a"] != 1 || merged["b"] != 3 {
		t.Errorf("expected other to take precedence, got %v", merged)
	}
	if base["b"] != 2 {
		t.Error("expected merge not to mutate receiver")
	}
}
