package selector

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Script runs a tengo script for every choice. Before each run the script
// sees
//
//	count  number of options
//	call   how many picks were made before this one
//	seed   the seed the selector was created with
//
// and must assign the chosen index to the predeclared global pick:
//
//	rand := import("rand")
//	r := rand.rand(seed + call)
//	pick = r.intn(count)
//
// All tengo stdlib modules are importable. Scripts should draw from their
// own rand.rand generator; the module-level rand functions share the
// process-wide source and ignore seeding.
type Script struct {
	name     string
	seed     int64
	compiled *tengo.Compiled
	calls    int
	err      error
}

// NewScript compiles src. name is only used in error messages.
func NewScript(name string, src []byte, seed int64) (*Script, error) {
	if strings.TrimSpace(string(src)) == "" {
		return nil, fmt.Errorf("selector: script %s is empty", name)
	}
	script := tengo.NewScript(src)
	_ = script.Add("count", 0)
	_ = script.Add("call", 0)
	_ = script.Add("seed", seed)
	_ = script.Add("pick", -1)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("selector: compile %s: %w", name, err)
	}
	return &Script{name: name, seed: seed, compiled: compiled}, nil
}

// Pick runs the script. A failing script or a non-integer result yields -1,
// which callers treat as an invalid choice; the cause is kept in Err.
func (s *Script) Pick(n int) int {
	call := s.calls
	s.calls++

	if err := s.run(n, call); err != nil {
		s.err = fmt.Errorf("selector: %s (call %d): %w", s.name, call, err)
		return -1
	}
	v := s.compiled.Get("pick")
	if v.ValueType() != "int" {
		s.err = fmt.Errorf("selector: %s (call %d): pick is %s, expected int", s.name, call, v.ValueType())
		return -1
	}
	return v.Int()
}

func (s *Script) run(n, call int) error {
	if err := s.compiled.Set("count", n); err != nil {
		return err
	}
	if err := s.compiled.Set("call", call); err != nil {
		return err
	}
	if err := s.compiled.Set("pick", -1); err != nil {
		return err
	}
	return s.compiled.Run()
}

// Err returns the most recent script failure, if any.
func (s *Script) Err() error { return s.err }
