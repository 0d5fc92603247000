package budget

import (
	"encoding/json"
	"fmt"
)

// ModelParams is the network-configuration form of one cost model.
type ModelParams struct {
	CostType string `json:"cost_type"`
	ConstCpu uint64 `json:"const_cpu"`
	LinCpu   uint64 `json:"lin_cpu"`
	ConstMem uint64 `json:"const_mem"`
	LinMem   uint64 `json:"lin_mem"`
}

// Config carries the global limits and per-cost-type models supplied by
// network configuration. Cost types missing from Models fall back to the
// defaults.
type Config struct {
	CpuLimit uint64        `json:"cpu_limit"`
	MemLimit uint64        `json:"mem_limit"`
	Models   []ModelParams `json:"models"`
}

// DefaultConfig returns mainnet-shaped limits and models.
func DefaultConfig() Config {
	return Config{
		CpuLimit: 100_000_000,
		MemLimit: 40 * 1024 * 1024,
		Models: []ModelParams{
			{CostType: "wasm_insn_exec", ConstCpu: 4, LinCpu: 0, ConstMem: 0, LinMem: 0},
			{CostType: "mem_alloc", ConstCpu: 434, LinCpu: 1, ConstMem: 16, LinMem: 1},
			{CostType: "mem_cpy", ConstCpu: 42, LinCpu: 1, ConstMem: 0, LinMem: 0},
			{CostType: "compute_sha256_hash", ConstCpu: 3738, LinCpu: 7, ConstMem: 40, LinMem: 0},
			{CostType: "dispatch_host_function", ConstCpu: 310, LinCpu: 0, ConstMem: 0, LinMem: 0},
			{CostType: "read_ledger_entry", ConstCpu: 6300, LinCpu: 2, ConstMem: 0, LinMem: 1},
			{CostType: "write_ledger_entry", ConstCpu: 8000, LinCpu: 3, ConstMem: 0, LinMem: 1},
			{CostType: "has_ledger_entry", ConstCpu: 3500, LinCpu: 0, ConstMem: 0, LinMem: 0},
			{CostType: "extend_ledger_ttl", ConstCpu: 1200, LinCpu: 0, ConstMem: 0, LinMem: 0},
		},
	}
}

// ParseConfig decodes a Config from its JSON network-configuration form.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid budget config: %w", err)
	}
	if _, err := cfg.models(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) models() ([numCostTypes]CostModel, error) {
	var models [numCostTypes]CostModel
	for _, p := range DefaultConfig().Models {
		ty, ok := CostTypeByName(p.CostType)
		if !ok {
			continue
		}
		models[ty] = CostModel{ConstCpu: p.ConstCpu, LinCpu: p.LinCpu, ConstMem: p.ConstMem, LinMem: p.LinMem}
	}
	for _, p := range cfg.Models {
		ty, ok := CostTypeByName(p.CostType)
		if !ok {
			return models, fmt.Errorf("unknown cost type %q in budget config", p.CostType)
		}
		models[ty] = CostModel{ConstCpu: p.ConstCpu, LinCpu: p.LinCpu, ConstMem: p.ConstMem, LinMem: p.LinMem}
	}
	return models, nil
}
