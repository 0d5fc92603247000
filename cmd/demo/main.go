package main

import (
	"fmt"
	"os"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/rs/zerolog"

	lumenvm "github.com/lumenvm/lumenvm"
	"github.com/lumenvm/lumenvm/budget"
	"github.com/lumenvm/lumenvm/storage"
	"github.com/lumenvm/lumenvm/types"
)

// This is just a demo: it runs a native counter contract twice, first in
// recording mode to discover the footprint, then replayed in enforcing
// mode, and prints the resource charges.
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	db := dbm.NewMemDB()
	snapshot := storage.NewDBSnapshot(db)

	var counterID types.ContractID
	copy(counterID[:], "counter-contract")

	counter := func(h *lumenvm.Host, args []uint64) (uint64, error) {
		key, err := h.NewBytesObject([]byte("count"))
		if err != nil {
			return 0, err
		}
		reg := h.Registry()
		has, _ := reg.Resolve("l", "has_contract_data", 2)
		get, _ := reg.Resolve("l", "get_contract_data", 2)
		put, _ := reg.Resolve("l", "put_contract_data", 3)

		st := uint64(types.Persistent)
		var count byte
		present, err := reg.Dispatch(h, has, []uint64{key, st})
		if err != nil {
			return 0, err
		}
		if present == 1 {
			val, err := reg.Dispatch(h, get, []uint64{key, st})
			if err != nil {
				return 0, err
			}
			data, err := h.ObjectBytes(val)
			if err != nil {
				return 0, err
			}
			count = data[0]
		}
		count++
		val, err := h.NewBytesObject([]byte{count})
		if err != nil {
			return 0, err
		}
		if _, err := reg.Dispatch(h, put, []uint64{key, val, st}); err != nil {
			return 0, err
		}
		return uint64(count), nil
	}

	info := types.DefaultLedgerInfo()
	info.SequenceNumber = 1000

	// Recording run: discover the footprint and the resource charges.
	recHost, err := lumenvm.NewHost(snapshot, budget.DefaultConfig(), info)
	if err != nil {
		panic(err)
	}
	recHost.SetLogger(logger)
	recHost.RegisterContract(counterID, counter)

	res, err := recHost.Invoke(counterID, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("recording run: counter=%d, footprint keys=%d\n", res, recHost.Footprint().Len())

	report := recHost.BudgetReport()
	fmt.Printf("cpu used %d / %d, mem used %d / %d\n",
		report.CpuUsed, report.CpuLimit, report.MemUsed, report.MemLimit)
	for ty, usage := range report.PerType {
		fmt.Printf("  %-24s cpu=%-8d mem=%d\n", ty, usage.Cpu, usage.Mem)
	}

	// Enforcing replay with the discovered footprint.
	enfHost, err := lumenvm.NewHost(snapshot, budget.DefaultConfig(), info)
	if err != nil {
		panic(err)
	}
	enfHost.SetLogger(logger)
	enfHost.RegisterContract(counterID, counter)
	if err := enfHost.SetEnforcing(recHost.Footprint()); err != nil {
		panic(err)
	}

	res, err = enfHost.Invoke(counterID, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("enforcing run: counter=%d, %d dirty entries for commit\n",
		res, len(enfHost.Modified()))
	fmt.Println("finished")
}
