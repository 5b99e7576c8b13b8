package system

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/prefabs"
)

// ChanceScript computes the anomaly probability of the next progression
// candidate. The script sees index, total and base and must set chance.
type ChanceScript struct {
	path     string
	compiled *tengo.Compiled
}

func LoadChanceScript(path string) (*ChanceScript, error) {
	src, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, fmt.Errorf("chance script %s: %w", path, err)
	}

	script := tengo.NewScript(src)
	_ = script.Add("index", 0)
	_ = script.Add("total", 0)
	_ = script.Add("base", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("chance script %s: compile: %w", path, err)
	}
	return &ChanceScript{path: path, compiled: compiled}, nil
}

// Chance runs the script. Results are clamped to [0,1].
func (c *ChanceScript) Chance(index, total int, base float64) (float64, error) {
	if c == nil || c.compiled == nil {
		return base, nil
	}
	if err := c.compiled.Set("index", index); err != nil {
		return base, err
	}
	if err := c.compiled.Set("total", total); err != nil {
		return base, err
	}
	if err := c.compiled.Set("base", base); err != nil {
		return base, err
	}
	if err := c.compiled.Run(); err != nil {
		return base, fmt.Errorf("chance script %s: %w", c.path, err)
	}
	if !c.compiled.IsDefined("chance") {
		return base, fmt.Errorf("chance script %s: chance is not defined", c.path)
	}
	return common.Clamp01(c.compiled.Get("chance").Float()), nil
}
