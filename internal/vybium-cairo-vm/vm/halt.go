package vm

import (
	"fmt"

	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/core"
	"github.com/vybium/vybium-cairo-vm/internal/vybium-cairo-vm/utils"
)

// HaltPolicy decides, after a step from curr produced next, whether the run
// is over
type HaltPolicy func(curr, next Pointers) bool

// HaltOnUnallocatedPC stops once the next pc is at or past the current
// allocation pointer. This is a layout convention rather than a termination
// proof: the program is placed below the execution segment, so the final ret
// of main jumps to the return address the caller placed past the allocated
// area, while every jump inside the program stays below ap.
func HaltOnUnallocatedPC(curr, next Pointers) bool {
	return core.Compare(curr.AP, next.PC) <= 0
}

// HaltAtPC stops when the next pc equals end
func HaltAtPC(end core.Felt) HaltPolicy {
	return func(_, next Pointers) bool {
		return next.PC.Equal(&end)
	}
}

// HaltPolicyByName resolves a configured policy name, one of
// utils.HaltPolicyUnallocatedPC or utils.HaltPolicyEndPC
func HaltPolicyByName(name string, endPC uint64) (HaltPolicy, error) {
	switch name {
	case "", utils.HaltPolicyUnallocatedPC:
		return HaltOnUnallocatedPC, nil
	case utils.HaltPolicyEndPC:
		return HaltAtPC(core.NewFelt(endPC)), nil
	}
	return nil, fmt.Errorf("unknown halt policy %q", name)
}
