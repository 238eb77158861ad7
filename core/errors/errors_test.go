package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "span creator", ID: "REGION_SPAN"},
			wantMsg:  "span creator not found: REGION_SPAN",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "original text"},
			wantMsg:  "original text not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("sql: no rows")
		err := &NotFoundError{Resource: "document", ID: "x", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExists("span creator", "NAME_SPAN")
	if got, want := err.Error(), "span creator already exists: NAME_SPAN"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("errors.Is(%v, ErrAlreadyExists) = false", err)
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with field",
			err:      &ValidationError{Field: "find", Message: "must not be empty"},
			wantMsg:  "validation failed for find: must not be empty",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "bad range"},
			wantMsg:  "validation failed: bad range",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestBoundsError(t *testing.T) {
	tests := []struct {
		name    string
		err     *BoundsError
		wantMsg string
	}{
		{
			name:    "index",
			err:     NewBounds("insert", 3, 7),
			wantMsg: "insert: index 7 out of range [0,3]",
		},
		{
			name:    "range order",
			err:     NewRangeOrder("remove", 5, 2),
			wantMsg: "remove: end 2 is less than start 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrOutOfBounds) {
				t.Errorf("errors.Is(%v, ErrOutOfBounds) = false", tt.err)
			}
		})
	}
}

func TestInconsistencyError(t *testing.T) {
	err := NewInconsistency("remove", "runs do not tile the text")
	if got, want := err.Error(), "internal inconsistency in remove: runs do not tile the text"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrInternal) {
		t.Errorf("errors.Is(%v, ErrInternal) = false", err)
	}
}

func TestIOError(t *testing.T) {
	baseErr := fmt.Errorf("permission denied")
	tests := []struct {
		name    string
		err     *IOError
		wantMsg string
	}{
		{
			name:    "with path",
			err:     &IOError{Operation: "read", Path: "/test/file.sgm", Err: baseErr},
			wantMsg: "failed to read /test/file.sgm: permission denied",
		},
		{
			name:    "without path",
			err:     &IOError{Operation: "write", Err: baseErr},
			wantMsg: "failed to write: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, baseErr) {
				t.Errorf("Unwrap() = %v, want %v", got, baseErr)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ParseError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with path",
			err:      &ParseError{Format: "XML", Path: "OffsetSpan", Message: "missing start_pos"},
			wantMsg:  "failed to parse XML at OffsetSpan: missing start_pos",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "without path",
			err:      &ParseError{Format: "UTF-8", Message: "invalid byte sequence"},
			wantMsg:  "failed to parse UTF-8: invalid byte sequence",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("unexpected EOF")
		err := &ParseError{Format: "XML", Message: "truncated", Err: underlyingErr}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestUnsupportedError(t *testing.T) {
	tests := []struct {
		name    string
		err     *UnsupportedError
		wantMsg string
	}{
		{
			name:    "with reason",
			err:     NewUnsupported("offset conversion", "char to asr"),
			wantMsg: "unsupported offset conversion: char to asr",
		},
		{
			name:    "without reason",
			err:     &UnsupportedError{Feature: "charset"},
			wantMsg: "unsupported charset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrUnsupported) {
				t.Errorf("errors.Is(%v, ErrUnsupported) = false", tt.err)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps error", func(t *testing.T) {
		baseErr := NewBounds("remove", 2, 9)
		wrapped := Wrap(baseErr, "editing region")
		if wrapped == nil {
			t.Fatal("Wrap() returned nil")
		}
		if !errors.Is(wrapped, ErrOutOfBounds) {
			t.Errorf("Wrap() error does not unwrap to sentinel")
		}
		wantMsg := "editing region: remove: index 9 out of range [0,2]"
		if wrapped.Error() != wantMsg {
			t.Errorf("Wrap() = %q, want %q", wrapped.Error(), wantMsg)
		}
	})

	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(nil, "context"); got != nil {
			t.Errorf("Wrap(nil) = %v, want nil", got)
		}
	})
}

func TestWrapf(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	wrapped := Wrapf(baseErr, "failed to load %s", "region 3")
	if !errors.Is(wrapped, baseErr) {
		t.Errorf("Wrapf() error does not unwrap to base error")
	}
	if got, want := wrapped.Error(), "failed to load region 3: base error"; got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
	if got := Wrapf(nil, "context %s", "test"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestAs(t *testing.T) {
	err := Wrap(NewBounds("insert", 1, 4), "ctx")
	var bErr *BoundsError
	if !As(err, &bErr) {
		t.Fatal("As() failed to match BoundsError")
	}
	if bErr.Index != 4 {
		t.Errorf("As() bErr.Index = %d, want 4", bErr.Index)
	}
	if !Is(err, ErrOutOfBounds) {
		t.Error("Is() failed to match BoundsError to ErrOutOfBounds")
	}
}
