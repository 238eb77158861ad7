package span

import (
	"errors"
	"testing"

	doctexterrors "github.com/FocuswithJustin/doctext/core/errors"
	"github.com/FocuswithJustin/doctext/core/xml"
)

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	tags := r.Tags()
	if tags[0] != NameSpanType || tags[1] != RegionSpanType {
		t.Errorf("Tags() = %v", tags)
	}
	if _, err := r.Lookup("NOPE"); !errors.Is(err, doctexterrors.ErrNotFound) {
		t.Errorf("Lookup(NOPE) error = %v, want not found", err)
	}
}

type stubCreator struct{}

func (stubCreator) Create(start, end int, _ any) (Span, error) {
	return NewRegionSpan(start, end, "stub"), nil
}

func (stubCreator) Load(_ *xml.Element, start, end int) (Span, error) {
	return NewRegionSpan(start, end, "stub"), nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("STUB", stubCreator{}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if err := r.Register("STUB", stubCreator{}); !errors.Is(err, doctexterrors.ErrAlreadyExists) {
		t.Errorf("duplicate Register() error = %v, want already exists", err)
	}
	if err := r.Register("", stubCreator{}); !errors.Is(err, doctexterrors.ErrInvalidInput) {
		t.Errorf("Register(\"\") error = %v", err)
	}
	if err := r.Register("NIL", nil); !errors.Is(err, doctexterrors.ErrInvalidInput) {
		t.Errorf("Register(nil) error = %v", err)
	}
}

func TestCreate(t *testing.T) {
	r := NewDefaultRegistry()
	tests := []struct {
		name       string
		tag        string
		start, end int
		param      any
		restricts  bool
		wantErr    error
	}{
		{"region", RegionSpanType, 0, 9, "TEXT", false, nil},
		{"name", NameSpanType, 3, 5, "PER", true, nil},
		{"single offset", NameSpanType, 4, 4, "ORG", true, nil},
		{"reversed", RegionSpanType, 5, 4, "TEXT", false, doctexterrors.ErrInvalidInput},
		{"bad param", NameSpanType, 0, 1, 42, false, doctexterrors.ErrInvalidInput},
		{"unknown type", "NOPE", 0, 1, "x", false, doctexterrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp, err := r.Create(tt.tag, tt.start, tt.end, tt.param)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error: %v", err)
			}
			if sp.Start() != tt.start || sp.End() != tt.end {
				t.Errorf("extent = [%d,%d]", sp.Start(), sp.End())
			}
			if sp.Length() != tt.end-tt.start+1 {
				t.Errorf("Length() = %d", sp.Length())
			}
			if sp.Type() != tt.tag {
				t.Errorf("Type() = %q", sp.Type())
			}
			if sp.RestrictsSentenceBreak() != tt.restricts {
				t.Errorf("RestrictsSentenceBreak() = %v", sp.RestrictsSentenceBreak())
			}
			if !sp.ForcesTokenBreak() {
				t.Error("ForcesTokenBreak() = false")
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	r := NewDefaultRegistry()
	for _, sp := range []Span{
		NewRegionSpan(0, 120, "HEADLINE"),
		NewNameSpan(17, 29, "GPE"),
	} {
		t.Run(sp.Type(), func(t *testing.T) {
			doc := xml.NewDocument("Metadata", xml.DefaultOptions())
			Save(sp, doc.Root().AddChild("Span"))

			parsed, err := xml.Parse(doc.Serialize())
			if err != nil {
				t.Fatal(err)
			}
			elem, err := parsed.Root().RequiredChild("Span")
			if err != nil {
				t.Fatal(err)
			}
			got, err := Load(r, elem)
			if err != nil {
				t.Fatalf("Load() error: %v\n%s", err, doc.Serialize())
			}
			if String(got) != String(sp) {
				t.Errorf("loaded %s, want %s", String(got), String(sp))
			}
			switch want := sp.(type) {
			case *RegionSpan:
				if got.(*RegionSpan).RegionTag() != want.RegionTag() {
					t.Errorf("RegionTag() = %q", got.(*RegionSpan).RegionTag())
				}
			case *NameSpan:
				if got.(*NameSpan).EntityType() != want.EntityType() {
					t.Errorf("EntityType() = %q", got.(*NameSpan).EntityType())
				}
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	r := NewDefaultRegistry()
	tests := []struct {
		name    string
		xml     string
		wantErr error
	}{
		{"no type", `<Span start_edt="0" end_edt="1"/>`, doctexterrors.ErrNotFound},
		{"unknown type", `<Span span_type="X" start_edt="0" end_edt="1"/>`, doctexterrors.ErrNotFound},
		{"no offsets", `<Span span_type="REGION_SPAN"/>`, doctexterrors.ErrInvalidInput},
		{"reversed", `<Span span_type="REGION_SPAN" start_edt="4" end_edt="1"/>`, doctexterrors.ErrInvalidInput},
		{"name without entity", `<Span span_type="NAME_SPAN" start_edt="0" end_edt="1"/>`, doctexterrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := xml.Parse([]byte(tt.xml))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := Load(r, doc.Root()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
