package wasm

import (
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/wasmc/errors"
)

// Validate checks every index the module holds against the size of the
// index space it refers to: function type indices, imported function types,
// export targets, the start function, element segment functions, and the
// data count. All violations are reported, combined with multierr.
//
// Encode does not call Validate; a module with dangling indices still
// encodes.
func (m *Module) Validate() error {
	var err error
	err = multierr.Append(err, m.validateTypeIndices())
	err = multierr.Append(err, m.validateExports())
	err = multierr.Append(err, m.validateStart())
	err = multierr.Append(err, m.validateElements())
	err = multierr.Append(err, m.validateDataCount())
	return err
}

func (m *Module) numTypes() int {
	if m.Types == nil {
		return 0
	}
	return len(m.Types.Entries)
}

func (m *Module) validateTypeIndices() error {
	var err error
	numTypes := m.numTypes()
	if m.Imports != nil {
		for i, imp := range m.Imports.Entries {
			if imp.Kind == KindFunc && int(imp.TypeIndex) >= numTypes {
				err = multierr.Append(err, outOfBounds("import", i, int(imp.TypeIndex), numTypes))
			}
		}
	}
	if m.Functions != nil {
		for i, idx := range m.Functions.TypeIndices {
			if int(idx) >= numTypes {
				err = multierr.Append(err, outOfBounds("function", i, int(idx), numTypes))
			}
		}
	}
	return err
}

func (m *Module) validateExports() error {
	if m.Exports == nil {
		return nil
	}
	var err error
	seen := make(map[string]struct{}, len(m.Exports.Entries))
	for i, e := range m.Exports.Entries {
		if _, dup := seen[e.Name]; dup {
			err = multierr.Append(err, errors.New(errors.PhaseValidate, errors.KindDuplicate).
				Path("export", strconv.Itoa(i)).Value(e.Name).
				Detail("duplicate export name %q", e.Name).Build())
		}
		seen[e.Name] = struct{}{}
		if size := m.IndexSpace(e.Kind); int(e.Index) >= size {
			err = multierr.Append(err, outOfBounds("export", i, int(e.Index), size))
		}
	}
	return err
}

func (m *Module) validateStart() error {
	if m.Start == nil {
		return nil
	}
	if size := m.IndexSpace(KindFunc); int(m.Start.Func) >= size {
		return errors.OutOfBounds(errors.PhaseValidate, []string{"start"}, int(m.Start.Func), size)
	}
	sig, ok := m.FuncType(m.Start.Func)
	if ok && (len(sig.params) != 0 || len(sig.results) != 0) {
		return errors.InvalidData(errors.PhaseValidate, []string{"start"}, "start function must have type () -> ()")
	}
	return nil
}

func (m *Module) validateElements() error {
	if m.Elements == nil {
		return nil
	}
	var err error
	if len(m.Elements.Entries) > 0 && m.IndexSpace(KindTable) == 0 {
		err = multierr.Append(err, errors.InvalidData(errors.PhaseValidate, []string{"element"}, "element segments without a table"))
	}
	funcs := m.IndexSpace(KindFunc)
	for i, e := range m.Elements.Entries {
		for j, f := range e.Funcs {
			if int(f) >= funcs {
				err = multierr.Append(err, errors.OutOfBounds(errors.PhaseValidate,
					[]string{"element", strconv.Itoa(i), strconv.Itoa(j)}, int(f), funcs))
			}
		}
	}
	return err
}

func (m *Module) validateDataCount() error {
	segments := 0
	if m.Data != nil {
		segments = len(m.Data.Segments)
	}
	if m.DataCount != nil && int(m.DataCount.Count) != segments {
		e := errors.StructuralMismatch("data segments", int(m.DataCount.Count), segments)
		e.Phase = errors.PhaseValidate
		return e
	}
	if segments > 0 && m.IndexSpace(KindMemory) == 0 {
		return errors.InvalidData(errors.PhaseValidate, []string{"data"}, "data segments without a memory")
	}
	return nil
}

func outOfBounds(section string, i, index, length int) error {
	return errors.OutOfBounds(errors.PhaseValidate, []string{section, strconv.Itoa(i)}, index, length)
}
