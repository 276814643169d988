package engine

import (
	"fmt"
	"sort"

	"go.starlark.net/starlark"
)

// Sys is the mutable "sys" module. Scripts may assign its fields,
// e.g. sys.ps1 = "$ ", and the shell reads the prompts back from it.
type Sys struct {
	attrs  starlark.StringDict
	frozen bool
}

var (
	_ starlark.HasAttrs    = (*Sys)(nil)
	_ starlark.HasSetField = (*Sys)(nil)
)

// NewSys creates the sys module.
func NewSys(ps1, ps2 string, argv []string) *Sys {
	elems := make([]starlark.Value, len(argv))
	for i, a := range argv {
		elems[i] = starlark.String(a)
	}
	return &Sys{attrs: starlark.StringDict{
		"ps1":  starlark.String(ps1),
		"ps2":  starlark.String(ps2),
		"argv": starlark.NewList(elems),
	}}
}

func (s *Sys) String() string        { return "<module sys>" }
func (s *Sys) Type() string          { return "module" }
func (s *Sys) Truth() starlark.Bool  { return starlark.True }
func (s *Sys) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: module") }

// Freeze makes the module and its values immutable.
func (s *Sys) Freeze() {
	if s.frozen {
		return
	}
	s.frozen = true
	for _, v := range s.attrs {
		v.Freeze()
	}
}

// Attr returns nil, nil for unknown names, which Starlark reports as a missing attribute.
func (s *Sys) Attr(name string) (starlark.Value, error) {
	return s.attrs[name], nil
}

func (s *Sys) AttrNames() []string {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Sys) SetField(name string, val starlark.Value) error {
	if s.frozen {
		return fmt.Errorf("cannot set field %s of frozen module sys", name)
	}
	s.attrs[name] = val
	return nil
}
