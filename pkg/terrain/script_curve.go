package terrain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

var ErrCurveScript = errors.New("invalid curve script")

// ScriptCurve evaluates a user-supplied tengo snippet. The snippet reads the
// normalized input from x and must assign the result to y, for example:
//
//	math := import("math")
//	y := math.pow(x, 2.2)
//
// A ScriptCurve is not safe for concurrent use.
type ScriptCurve struct {
	source   string
	compiled *tengo.Compiled
	failures int
}

// NewScriptCurve compiles src and checks that it yields a number for x = 0.
func NewScriptCurve(src string) (*ScriptCurve, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrCurveScript)
	}

	script := tengo.NewScript([]byte(src))
	if err := script.Add("x", 0.0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCurveScript, err)
	}
	script.SetImports(stdlib.GetModuleMap("math"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCurveScript, err)
	}

	c := &ScriptCurve{source: src, compiled: compiled}
	if _, err := c.eval(0); err != nil {
		return nil, err
	}
	return c, nil
}

// Source returns the script text.
func (c *ScriptCurve) Source() string {
	return c.source
}

// Failures counts evaluations that fell back to the input value.
func (c *ScriptCurve) Failures() int {
	return c.failures
}

// Evaluate runs the script for t. On a runtime error the input is returned
// unchanged and the failure is counted.
func (c *ScriptCurve) Evaluate(t float32) float32 {
	y, err := c.eval(t)
	if err != nil {
		c.failures++
		return t
	}
	return y
}

func (c *ScriptCurve) eval(t float32) (float32, error) {
	if err := c.compiled.Set("x", float64(t)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCurveScript, err)
	}
	if err := c.compiled.Run(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCurveScript, err)
	}
	if !c.compiled.IsDefined("y") {
		return 0, fmt.Errorf("%w: script does not define y", ErrCurveScript)
	}
	switch v := c.compiled.Get("y").Value().(type) {
	case float64:
		return float32(v), nil
	case int64:
		return float32(v), nil
	default:
		return 0, fmt.Errorf("%w: y is %T, want number", ErrCurveScript, v)
	}
}
