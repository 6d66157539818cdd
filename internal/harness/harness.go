package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/roach88/recgen/internal/compiler"
	"github.com/roach88/recgen/internal/interp"
	"github.com/roach88/recgen/internal/ir"
	"github.com/roach88/recgen/record"
)

// DefaultPackage is the package scenarios compile under when they name
// none.
const DefaultPackage = "scenario"

// Harness executes the steps of one scenario.
type Harness struct {
	registry *interp.Registry
	values   map[string]*record.Instance
	logger   *slog.Logger
}

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a scenario and returns the result.
//
// Execution flow:
// 1. Load and compile the schema files
// 2. Load the compiled records into the interpreter
// 3. Execute steps in order, checking expect clauses
// 4. Evaluate assertions over the bound values
//
// Schema errors abort the run; step and assertion failures are reported
// in the result.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	registry, err := compileSchemas(scenario)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		registry: registry,
		values:   make(map[string]*record.Instance),
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(i+1, step, result)
	}
	for _, msg := range EvaluateAssertions(h.values, scenario.Assertions) {
		result.AddError(msg)
	}

	logger.Info("scenario finished",
		"scenario", scenario.Name,
		"steps", len(scenario.Steps),
		"pass", result.Pass,
	)
	return result, nil
}

func compileSchemas(scenario *Scenario) (*interp.Registry, error) {
	var decls []*ir.RecordDecl
	for _, path := range scenario.Schemas {
		ds, err := compiler.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load schema %s: %w", path, err)
		}
		decls = append(decls, ds...)
	}

	pkg := scenario.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	unit, err := compiler.Compile(decls, compiler.Options{Package: pkg})
	if err != nil {
		return nil, fmt.Errorf("compile schemas: %w", err)
	}
	return interp.Load(unit), nil
}

// stepOutcome is what a step produced: a new instance, or an encoded
// value for encode steps.
type stepOutcome struct {
	inst    *record.Instance
	encoded any
	subject string
}

func (h *Harness) executeStep(n int, step Step, result *Result) {
	out, err := h.apply(step)

	ev := TraceEvent{Step: n, Op: step.Op, Subject: out.subject, As: step.As}
	switch {
	case err != nil:
		ev.Error = traceError(err)
	case step.Op == OpEncode:
		ev.Output = out.encoded
	default:
		enc, encErr := out.inst.Encode()
		if encErr != nil {
			err = encErr
			ev.Error = traceError(encErr)
		} else {
			ev.Output = enc
		}
	}
	result.AddEvent(ev)

	if err == nil && step.As != "" && out.inst != nil {
		h.values[step.As] = out.inst
	}

	for _, msg := range h.checkExpect(step, out, err) {
		result.AddError(fmt.Sprintf("step %d (%s): %s", n, step.Op, msg))
	}

	h.logger.Debug("step executed", "step", n, "op", step.Op, "subject", out.subject, "error", err)
}

func traceError(err error) *TraceError {
	if rerr, ok := record.AsError(err); ok {
		return &TraceError{Code: rerr.Code, Field: rerr.Field}
	}
	return &TraceError{Code: "error"}
}

func (h *Harness) checkExpect(step Step, out stepOutcome, err error) []string {
	exp := step.Expect
	if err != nil && (exp == nil || exp.Error == "") {
		return []string{"unexpected error: " + err.Error()}
	}
	if exp == nil {
		return nil
	}

	var msgs []string
	if exp.Error != "" {
		if err == nil {
			return []string{fmt.Sprintf("expected error %s, got success", exp.Error)}
		}
		rerr, ok := record.AsError(err)
		switch {
		case !ok:
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %v", exp.Error, err))
		case rerr.Code != exp.Error:
			msgs = append(msgs, fmt.Sprintf("expected error %s, got %s (%v)", exp.Error, rerr.Code, err))
		case exp.Field != "" && rerr.Field != exp.Field:
			msgs = append(msgs, fmt.Sprintf("expected error on field %s, got %s", exp.Field, rerr.Field))
		}
		return msgs
	}

	if exp.Output != nil {
		actual := out.encoded
		if step.Op != OpEncode {
			actual, _ = out.inst.Encode()
		}
		if !jsonEqual(actual, exp.Output) {
			msgs = append(msgs, fmt.Sprintf("output mismatch: expected %s, got %s", jsonString(exp.Output), jsonString(actual)))
		}
	}
	if exp.Same != "" {
		prev, ok := h.values[exp.Same]
		switch {
		case !ok:
			msgs = append(msgs, fmt.Sprintf("unknown value %q", exp.Same))
		case prev != out.inst:
			msgs = append(msgs, fmt.Sprintf("expected the identical instance as %s", exp.Same))
		}
	}
	return msgs
}

// apply runs one operation.
func (h *Harness) apply(step Step) (stepOutcome, error) {
	switch step.Op {
	case OpNew, OpDecode, OpDecodeJSON:
		out := stepOutcome{subject: step.Type}
		t, err := h.registry.Lookup(step.Type)
		if err != nil {
			return out, err
		}
		switch step.Op {
		case OpNew:
			fields, ok := step.Input.(map[string]any)
			if !ok {
				return out, fmt.Errorf("new input must be a field map")
			}
			out.inst, err = t.New(record.Fields(fields))
		case OpDecode:
			out.inst, err = t.Decode(step.Input)
		default:
			out.inst, err = record.UnmarshalJSON(t, []byte(step.Input.(string)))
		}
		return out, err
	}

	out := stepOutcome{subject: step.Target}
	in, ok := h.values[step.Target]
	if !ok {
		return out, fmt.Errorf("unknown target %q", step.Target)
	}
	if step.Op == OpEncode {
		out.inst = in
		var err error
		out.encoded, err = encode(in, step.Form)
		return out, err
	}
	if step.Op == OpSet {
		var err error
		out.inst, err = in.SetMany(record.Fields(step.Input.(map[string]any)))
		return out, err
	}

	out.subject = step.Target + "." + step.Field
	info, ok := in.RecordType().Field(step.Field)
	if !ok {
		return out, &record.Error{Type: in.RecordType().Identity(), Field: step.Field, Code: record.CodeUnknownField, Message: "no such field"}
	}
	var err error
	out.inst, err = applyFieldOp(in, info.Index, step)
	return out, err
}

// applyFieldOp runs a container or field operation. Mutators that cannot
// fail panic with a *record.Error on misuse; that becomes the step error.
func applyFieldOp(in *record.Instance, i int, step Step) (_ *record.Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(*record.Error)
			if !ok {
				panic(r)
			}
			err = rerr
		}
	}()
	args := step.Args
	switch step.Op {
	case OpUnset:
		return in.Unset(i)
	case OpWithChild:
		r, err := in.WithChild(step.Field, step.Input)
		if err != nil {
			return nil, err
		}
		return r.Instance(), nil
	case OpPush:
		return in.Push(i, args...)
	case OpPop:
		return in.Pop(i), nil
	case OpShift:
		return in.Shift(i), nil
	case OpUnshift:
		return in.Unshift(i, args...)
	case OpSplice:
		start, err := intArg(args[0])
		if err != nil {
			return nil, err
		}
		count, err := intArg(args[1])
		if err != nil {
			return nil, err
		}
		return in.Splice(i, start, count, args[2:]...)
	case OpReverse:
		return in.Reverse(i), nil
	case OpSort:
		return in.Sort(i, nil), nil
	case OpFill:
		start, end, err := intPair(args[1], args[2])
		if err != nil {
			return nil, err
		}
		return in.Fill(i, args[0], start, end)
	case OpCopyWithin:
		target, err := intArg(args[0])
		if err != nil {
			return nil, err
		}
		start, end, err := intPair(args[1], args[2])
		if err != nil {
			return nil, err
		}
		return in.CopyWithin(i, target, start, end), nil
	case OpAdd:
		return in.Add(i, args[0])
	case OpAddAll:
		return in.AddAll(i, args...)
	case OpDelete:
		return in.Delete(i, args[0]), nil
	case OpDeleteAll:
		return in.DeleteAll(i, args...), nil
	case OpClear:
		return in.Clear(i), nil
	case OpSetEntry:
		return in.SetEntry(i, args[0], args[1])
	case OpDeleteEntry:
		return in.DeleteEntry(i, args[0]), nil
	case OpMerge:
		return in.Merge(i, args[0])
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func encode(in *record.Instance, form string) (any, error) {
	switch form {
	case "tagged":
		return in.EncodeTagged()
	case "compact":
		return in.EncodeCompact()
	}
	return in.Encode()
}

func intArg(v any) (int, error) {
	switch x := record.Canonical(v).(type) {
	case int64:
		return int(x), nil
	case string:
		return strconv.Atoi(x)
	}
	return 0, errors.New("expected an integer argument")
}

func intPair(a, b any) (int, int, error) {
	x, err := intArg(a)
	if err != nil {
		return 0, 0, err
	}
	y, err := intArg(b)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
