package oaserrors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestMissingPointerError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &MissingPointerError{
			Ref:          "/specs/ext.yaml#/components/schemas/Gone",
			Token:        "Gone",
			PathFromRoot: "#/paths/~1x/get",
		}
		expected := `missing pointer: token "Gone" in /specs/ext.yaml#/components/schemas/Gone (at #/paths/~1x/get)`
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Error message minimal", func(t *testing.T) {
		err := &MissingPointerError{}
		if err.Error() != "missing pointer" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches ErrMissingPointer and ErrReference", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &MissingPointerError{Token: "x"})
		if !errors.Is(err, ErrMissingPointer) {
			t.Error("MissingPointerError should match ErrMissingPointer")
		}
		if !errors.Is(err, ErrReference) {
			t.Error("MissingPointerError should match ErrReference")
		}
		if errors.Is(err, ErrResolver) {
			t.Error("MissingPointerError should not match ErrResolver")
		}
	})
}

func TestResolverError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &ResolverError{
			Location: "/specs/ext.yaml",
			Ref:      "ext.yaml#/a",
			Message:  "fetch failed",
			Cause:    os.ErrNotExist,
		}
		expected := "resolver error for /specs/ext.yaml (ref ext.yaml#/a): fetch failed: file does not exist"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Ref equal to location is not repeated", func(t *testing.T) {
		err := &ResolverError{Location: "a.yaml", Ref: "a.yaml"}
		if err.Error() != "resolver error for a.yaml" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Cause is reachable", func(t *testing.T) {
		err := fmt.Errorf("bundle: %w", &ResolverError{Cause: os.ErrNotExist})
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("should find root cause through Unwrap chain")
		}
		if !errors.Is(err, ErrResolver) {
			t.Error("ResolverError should match ErrResolver")
		}
	})
}

func TestSyntaxError(t *testing.T) {
	err := &SyntaxError{Path: "api.yaml", Message: "root must be a mapping"}
	if err.Error() != "syntax error in api.yaml: root must be a mapping" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrSyntax) {
		t.Error("SyntaxError should match ErrSyntax")
	}
	if errors.Is(err, ErrParse) {
		t.Error("SyntaxError should not match ErrParse")
	}
}

func TestParseError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := &ParseError{
			Path:    "/path/to/file.yaml",
			Line:    42,
			Column:  10,
			Message: "invalid syntax",
			Cause:   cause,
		}

		msg := err.Error()
		if msg != "parse error in /path/to/file.yaml at line 42, column 10: invalid syntax: underlying error" {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("As extracts ParseError", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &ParseError{Path: "test.yaml", Line: 5})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatal("errors.As should succeed")
		}
		if parseErr.Line != 5 {
			t.Errorf("unexpected line: %d", parseErr.Line)
		}
	})
}

func TestReferenceError(t *testing.T) {
	t.Run("Error message for path traversal", func(t *testing.T) {
		err := &ReferenceError{
			Ref:             "../../../etc/passwd",
			IsPathTraversal: true,
			Message:         "blocked for security",
		}
		expected := "path traversal detected: ../../../etc/passwd: blocked for security"
		if err.Error() != expected {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Is matches flags", func(t *testing.T) {
		err := &ReferenceError{IsCircular: true}
		if !errors.Is(err, ErrCircularReference) || !errors.Is(err, ErrReference) {
			t.Error("circular ReferenceError should match ErrCircularReference and ErrReference")
		}
		if errors.Is(err, ErrPathTraversal) {
			t.Error("circular ReferenceError should not match ErrPathTraversal")
		}
	})
}

func TestResourceLimitError(t *testing.T) {
	err := &ResourceLimitError{
		ResourceType: "ref_depth",
		Limit:        100,
		Actual:       150,
		Message:      "too many nested references",
	}
	expected := "resource limit exceeded: ref_depth (limit: 100, actual: 150): too many nested references"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Error("ResourceLimitError should match ErrResourceLimit")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "concurrency", Value: -1, Message: "must be positive"}
	expected := "configuration error for concurrency (value: -1): must be positive"
	if err.Error() != expected {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if !errors.Is(err, ErrConfig) {
		t.Error("ConfigError should match ErrConfig")
	}
}

func TestErrorGroup(t *testing.T) {
	t.Run("members are visible to Is and As", func(t *testing.T) {
		group := &ErrorGroup{Errors: []error{
			&ResolverError{Location: "a.yaml", Cause: os.ErrNotExist},
			&SyntaxError{Path: "b.yaml"},
		}}
		err := fmt.Errorf("bundle: %w", group)

		if !errors.Is(err, ErrResolver) || !errors.Is(err, ErrSyntax) {
			t.Error("group should match each member's sentinel")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Error("group should expose member causes")
		}
		var syn *SyntaxError
		if !errors.As(err, &syn) || syn.Path != "b.yaml" {
			t.Error("errors.As should find the SyntaxError member")
		}
		if group.Len() != 2 {
			t.Errorf("unexpected length: %d", group.Len())
		}
	})

	t.Run("Error message", func(t *testing.T) {
		single := &ErrorGroup{Errors: []error{errors.New("one")}}
		if single.Error() != "one" {
			t.Errorf("unexpected message: %s", single.Error())
		}
		multi := &ErrorGroup{Errors: []error{errors.New("one"), errors.New("two")}}
		if multi.Error() != "2 errors occurred:\n\t* one\n\t* two" {
			t.Errorf("unexpected message: %q", multi.Error())
		}
	})

	t.Run("NewErrorGroup", func(t *testing.T) {
		if NewErrorGroup() != nil || NewErrorGroup(nil, nil) != nil {
			t.Error("no errors should yield nil")
		}
		inner := &ErrorGroup{Errors: []error{errors.New("x")}}
		//nolint:errorlint // testing pointer identity
		if NewErrorGroup(inner) != error(inner) {
			t.Error("a single group should be returned as-is")
		}
		var g *ErrorGroup
		if !errors.As(NewErrorGroup(errors.New("a"), nil, errors.New("b")), &g) || g.Len() != 2 {
			t.Error("nil members should be dropped")
		}
	})
}

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	sentinels := []error{
		ErrMissingPointer,
		ErrResolver,
		ErrSyntax,
		ErrParse,
		ErrReference,
		ErrCircularReference,
		ErrPathTraversal,
		ErrResourceLimit,
		ErrConfig,
	}

	for i, s1 := range sentinels {
		for j, s2 := range sentinels {
			if i != j && errors.Is(s1, s2) {
				t.Errorf("sentinel errors should be distinct: %v should not match %v", s1, s2)
			}
		}
	}
}
