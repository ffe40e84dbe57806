package propbind

import (
	"fmt"
	"os"

	"github.com/dop251/goja"
)

// Transform produces the value written to the destination when the source
// property changes. old is nil when no previous value was reported. Returning
// ErrValueRejected skips the write silently; any other error is logged by the
// binding and the write is skipped.
type Transform func(old, value any) (any, error)

// ScriptTransform compiles a JavaScript snippet into a Transform. The snippet
// must evaluate to a function, or define a named transform function; it is
// called as fn(value, old) and its return value becomes the destination
// value. Returning null or undefined rejects the value.
func ScriptTransform(script string) (Transform, error) {
	// Validate up front so a bad script fails at binding construction, not
	// on the first change.
	if _, err := scriptFunction(goja.New(), script); err != nil {
		return nil, err
	}
	return func(old, value any) (any, error) {
		// A fresh runtime per invocation: goja.Runtime is not goroutine-safe.
		vm := goja.New()
		fn, err := scriptFunction(vm, script)
		if err != nil {
			return nil, err
		}
		oldArg := goja.Undefined()
		if old != nil {
			oldArg = vm.ToValue(old)
		}
		res, err := fn(goja.Undefined(), vm.ToValue(value), oldArg)
		if err != nil {
			return nil, fmt.Errorf("script transform failed: %w", err)
		}
		if res == nil || goja.IsUndefined(res) || goja.IsNull(res) {
			return nil, ErrValueRejected
		}
		return res.Export(), nil
	}, nil
}

// ScriptTransformFile reads path and compiles its contents with
// ScriptTransform.
func ScriptTransformFile(path string) (Transform, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ScriptTransform(string(b))
}

// scriptFunction evaluates script on vm and returns its transform function:
// either the script's own result (an anonymous function) or a function named
// transform defined by it.
func scriptFunction(vm *goja.Runtime, script string) (goja.Callable, error) {
	result, err := vm.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("failed to execute script: %w", err)
	}
	if result != nil && !goja.IsUndefined(result) && !goja.IsNull(result) {
		if fn, ok := goja.AssertFunction(result); ok {
			return fn, nil
		}
	}
	v := vm.Get("transform")
	if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		if fn, ok := goja.AssertFunction(v); ok {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("script must evaluate to a function or define a 'transform' function")
}
